package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/supervisor"
)

var supervisorColumns = []string{"cedula", "nombre", "correo", "password_hash", "last_login", "created_at", "updated_at"}

type supervisorRepository struct {
	db *sqlx.DB
}

func NewSupervisorRepository(db *sqlx.DB) supervisor.Repository {
	return &supervisorRepository{db: db}
}

func (repo *supervisorRepository) CheckUniqueness(ctx context.Context, cedula, email string) error {
	q, args, err := psql.Select("cedula", "correo").From("supervisores").
		Where(sq.Or{sq.Eq{"cedula": cedula}, sq.Eq{"correo": email}}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var rows []struct {
		Cedula string `db:"cedula"`
		Email  string `db:"correo"`
	}
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	for _, r := range rows {
		if r.Cedula == cedula {
			return supervisor.ErrCedulaExists
		}
	}
	if len(rows) > 0 {
		return supervisor.ErrEmailExists
	}
	return nil
}

func (repo *supervisorRepository) CreateSupervisor(ctx context.Context, s supervisor.Supervisor) (supervisor.Supervisor, error) {
	q, args, err := psql.Insert("supervisores").
		Columns(supervisorColumns...).
		Values(s.Cedula, s.Name, s.Email, s.PasswordHash, s.LastLogin, s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		return supervisor.Supervisor{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		switch uniqueConstraint(err) {
		case "":
			return supervisor.Supervisor{}, errors.Wrap(err, "inserting supervisor")
		case "supervisores_correo_key":
			return supervisor.Supervisor{}, supervisor.ErrEmailExists
		default:
			return supervisor.Supervisor{}, supervisor.ErrCedulaExists
		}
	}
	return s, nil
}

func (repo *supervisorRepository) QuerySupervisors(
	ctx context.Context,
	filter supervisor.QueryFilter,
	ordering ...core.DBOrdering,
) ([]supervisor.Supervisor, error) {
	query := psql.Select(supervisorColumns...).From("supervisores")
	if filter.Search != "" {
		pattern := contains(filter.Search)
		query = query.Where(sq.Or{sq.ILike{"cedula": pattern}, sq.ILike{"nombre": pattern}})
	}
	q, args, err := query.OrderBy(orderBy(ordering, "nombre ASC")...).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	supervisors := make([]supervisor.Supervisor, 0)
	if err = repo.db.SelectContext(ctx, &supervisors, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting supervisors")
	}
	return supervisors, nil
}

func (repo *supervisorRepository) getSupervisor(ctx context.Context, where sq.Eq) (supervisor.Supervisor, error) {
	q, args, err := psql.Select(supervisorColumns...).From("supervisores").Where(where).Limit(1).ToSql()
	if err != nil {
		return supervisor.Supervisor{}, errors.Wrap(err, "building query")
	}
	var s supervisor.Supervisor
	if err = repo.db.GetContext(ctx, &s, q, args...); err != nil {
		if isNoRows(err) {
			return supervisor.Supervisor{}, supervisor.ErrNotFound
		}
		return supervisor.Supervisor{}, errors.Wrap(err, "selecting supervisor")
	}
	return s, nil
}

func (repo *supervisorRepository) GetSupervisorByCedula(ctx context.Context, cedula string) (supervisor.Supervisor, error) {
	return repo.getSupervisor(ctx, sq.Eq{"cedula": cedula})
}

func (repo *supervisorRepository) GetSupervisorByEmail(ctx context.Context, email string) (supervisor.Supervisor, error) {
	return repo.getSupervisor(ctx, sq.Eq{"correo": email})
}

func (repo *supervisorRepository) SetPassword(ctx context.Context, cedula string, hash []byte) error {
	return repo.set(ctx, cedula, map[string]interface{}{"password_hash": hash, "updated_at": time.Now().UTC()})
}

func (repo *supervisorRepository) SetLastLogin(ctx context.Context, cedula string, at time.Time) error {
	return repo.set(ctx, cedula, map[string]interface{}{"last_login": at})
}

func (repo *supervisorRepository) set(ctx context.Context, cedula string, values map[string]interface{}) error {
	q, args, err := psql.Update("supervisores").SetMap(values).Where(sq.Eq{"cedula": cedula}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "updating supervisor")
	}
	return checkAffected(res, supervisor.ErrNotFound)
}
