package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/ayudantias/core/admin"
)

type adminRepository struct {
	db *adminTable
}

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{db: db.admin}
}

func (repo *adminRepository) GetAdminByEmail(_ context.Context, email string) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if adm, ok := repo.db.table[email]; ok {
		return *adm, nil
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) SaveAdmin(_ context.Context, adm admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[adm.Email] = &adm
	return adm, nil
}

func (repo *adminRepository) SetPassword(_ context.Context, email string, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	adm, ok := repo.db.table[email]
	if !ok {
		return admin.ErrNotFound
	}
	adm.PasswordHash = hash
	adm.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *adminRepository) SetLastLogin(_ context.Context, email string, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	adm, ok := repo.db.table[email]
	if !ok {
		return admin.ErrNotFound
	}
	adm.LastLogin = &at
	return nil
}
