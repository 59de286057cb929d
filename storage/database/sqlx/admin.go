package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core/admin"
)

var adminColumns = []string{"correo", "nombre", "password_hash", "last_login", "created_at", "updated_at"}

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) admin.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) GetAdminByEmail(ctx context.Context, email string) (admin.Admin, error) {
	q, args, err := psql.Select(adminColumns...).From("admins").Where(sq.Eq{"correo": email}).ToSql()
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "building query")
	}
	var adm admin.Admin
	if err = repo.db.GetContext(ctx, &adm, q, args...); err != nil {
		if isNoRows(err) {
			return admin.Admin{}, admin.ErrNotFound
		}
		return admin.Admin{}, errors.Wrap(err, "selecting admin")
	}
	return adm, nil
}

func (repo *adminRepository) SaveAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	q, args, err := psql.Insert("admins").
		Columns(adminColumns...).
		Values(adm.Email, adm.Name, adm.PasswordHash, adm.LastLogin, adm.CreatedAt, adm.UpdatedAt).
		Suffix("ON CONFLICT (correo) DO UPDATE SET " +
			"nombre = EXCLUDED.nombre, password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at " +
			"RETURNING " + joinColumns(adminColumns)).
		ToSql()
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "building query")
	}
	var saved admin.Admin
	if err = repo.db.GetContext(ctx, &saved, q, args...); err != nil {
		return admin.Admin{}, errors.Wrap(err, "saving admin")
	}
	return saved, nil
}

func (repo *adminRepository) SetPassword(ctx context.Context, email string, hash []byte) error {
	return repo.set(ctx, email, map[string]interface{}{"password_hash": hash, "updated_at": time.Now().UTC()})
}

func (repo *adminRepository) SetLastLogin(ctx context.Context, email string, at time.Time) error {
	return repo.set(ctx, email, map[string]interface{}{"last_login": at})
}

func (repo *adminRepository) set(ctx context.Context, email string, values map[string]interface{}) error {
	q, args, err := psql.Update("admins").SetMap(values).Where(sq.Eq{"correo": email}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "updating admin")
	}
	return checkAffected(res, admin.ErrNotFound)
}
