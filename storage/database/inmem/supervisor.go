package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/supervisor"
)

var supervisorDefaultOrdering = core.DBOrdering{Field: "nombre", Ascending: true}

type supervisorRepository struct {
	db *supervisorTable
}

func NewSupervisorRepository(db *DB) supervisor.Repository {
	return &supervisorRepository{db: db.supervisor}
}

func (repo *supervisorRepository) CheckUniqueness(_ context.Context, cedula, email string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.table {
		if s.Cedula == cedula {
			return supervisor.ErrCedulaExists
		}
		if s.Email == email {
			return supervisor.ErrEmailExists
		}
	}
	return nil
}

func (repo *supervisorRepository) CreateSupervisor(_ context.Context, s supervisor.Supervisor) (supervisor.Supervisor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[s.Cedula]; ok {
		return supervisor.Supervisor{}, supervisor.ErrCedulaExists
	}
	repo.db.table[s.Cedula] = &s
	return s, nil
}

func (repo *supervisorRepository) QuerySupervisors(
	_ context.Context,
	filter supervisor.QueryFilter,
	ordering ...core.DBOrdering,
) ([]supervisor.Supervisor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	supervisors := make([]supervisor.Supervisor, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		if filter.Match(*s) {
			supervisors = append(supervisors, *s)
		}
	}
	sortRows(
		len(supervisors),
		func(i, j int) { supervisors[i], supervisors[j] = supervisors[j], supervisors[i] },
		func(i int, field string) interface{} {
			s := supervisors[i]
			switch field {
			case "cedula":
				return s.Cedula
			case "correo":
				return s.Email
			case "created_at":
				return s.CreatedAt
			}
			return s.Name
		},
		ordering,
		supervisorDefaultOrdering,
	)
	return supervisors, nil
}

func (repo *supervisorRepository) GetSupervisorByCedula(_ context.Context, cedula string) (supervisor.Supervisor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[cedula]; ok {
		return *s, nil
	}
	return supervisor.Supervisor{}, supervisor.ErrNotFound
}

func (repo *supervisorRepository) GetSupervisorByEmail(_ context.Context, email string) (supervisor.Supervisor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.table {
		if s.Email == email {
			return *s, nil
		}
	}
	return supervisor.Supervisor{}, supervisor.ErrNotFound
}

func (repo *supervisorRepository) SetPassword(_ context.Context, cedula string, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.table[cedula]
	if !ok {
		return supervisor.ErrNotFound
	}
	s.PasswordHash = hash
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *supervisorRepository) SetLastLogin(_ context.Context, cedula string, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.table[cedula]
	if !ok {
		return supervisor.ErrNotFound
	}
	s.LastLogin = &at
	return nil
}
