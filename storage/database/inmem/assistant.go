package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/assistant"
)

var assistantDefaultOrdering = core.DBOrdering{Field: "nombre", Ascending: true}

type assistantRepository struct {
	db *assistantTable
}

func NewAssistantRepository(db *DB) assistant.Repository {
	return &assistantRepository{db: db.assistant}
}

func (repo *assistantRepository) query() []assistant.Assistant {
	assistants := make([]assistant.Assistant, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		assistants = append(assistants, *a)
	}
	return assistants
}

func (repo *assistantRepository) CheckUniqueness(_ context.Context, cedula, email string, excluded ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.table {
		if isExcluded(a.Cedula, excluded) {
			continue
		}
		if a.Cedula == cedula {
			return assistant.ErrCedulaExists
		}
		if a.Email == email {
			return assistant.ErrEmailExists
		}
	}
	return nil
}

func (repo *assistantRepository) CreateAssistant(_ context.Context, a assistant.Assistant) (assistant.Assistant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[a.Cedula]; ok {
		return assistant.Assistant{}, assistant.ErrCedulaExists
	}
	repo.db.table[a.Cedula] = &a
	return a, nil
}

func (repo *assistantRepository) QueryAssistants(
	_ context.Context,
	filter assistant.QueryFilter,
	ordering ...core.DBOrdering,
) ([]assistant.Assistant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assistants := make([]assistant.Assistant, 0, len(repo.db.table))
	for _, a := range repo.query() {
		if filter.Match(a) {
			assistants = append(assistants, a)
		}
	}
	sortRows(
		len(assistants),
		func(i, j int) { assistants[i], assistants[j] = assistants[j], assistants[i] },
		func(i int, field string) interface{} {
			a := assistants[i]
			switch field {
			case "cedula":
				return a.Cedula
			case "correo":
				return a.Email
			case "created_at":
				return a.CreatedAt
			}
			return a.Name
		},
		ordering,
		assistantDefaultOrdering,
	)
	return assistants, nil
}

func (repo *assistantRepository) GetAssistantByCedula(_ context.Context, cedula string) (assistant.Assistant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.table[cedula]; ok {
		return *a, nil
	}
	return assistant.Assistant{}, assistant.ErrNotFound
}

func (repo *assistantRepository) GetAssistantByEmail(_ context.Context, email string) (assistant.Assistant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.table {
		if a.Email == email {
			return *a, nil
		}
	}
	return assistant.Assistant{}, assistant.ErrNotFound
}

func (repo *assistantRepository) UpdateAssistant(_ context.Context, a assistant.Assistant) (assistant.Assistant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[a.Cedula]
	if !ok {
		return assistant.Assistant{}, assistant.ErrNotFound
	}
	if a.PasswordHash != nil {
		orig.PasswordHash = a.PasswordHash
	}
	orig.Name = a.Name
	orig.Email = a.Email
	orig.Level = a.Level
	orig.Faculty = a.Faculty
	orig.Major = a.Major
	orig.UpdatedAt = a.UpdatedAt
	return *orig, nil
}

func (repo *assistantRepository) SetPassword(_ context.Context, cedula string, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.table[cedula]
	if !ok {
		return assistant.ErrNotFound
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *assistantRepository) SetLastLogin(_ context.Context, cedula string, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.table[cedula]
	if !ok {
		return assistant.ErrNotFound
	}
	a.LastLogin = &at
	return nil
}

func isExcluded(id string, excluded []string) bool {
	for _, ex := range excluded {
		if ex == id {
			return true
		}
	}
	return false
}
