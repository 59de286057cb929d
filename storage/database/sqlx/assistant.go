package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/assistant"
)

var assistantColumns = []string{
	"cedula", "nombre", "correo", "nivel", "facultad", "carrera",
	"password_hash", "last_login", "created_at", "updated_at",
}

type assistantRepository struct {
	db *sqlx.DB
}

func NewAssistantRepository(db *sqlx.DB) assistant.Repository {
	return &assistantRepository{db: db}
}

func (repo *assistantRepository) CheckUniqueness(ctx context.Context, cedula, email string, excluded ...string) error {
	// SELECT cedula, correo FROM ayudantes WHERE (cedula = $1 OR correo = $2) AND cedula NOT IN ($3)
	where := sq.And{sq.Or{sq.Eq{"cedula": cedula}, sq.Eq{"correo": email}}}
	if len(excluded) > 0 {
		where = append(where, sq.NotEq{"cedula": excluded})
	}
	q, args, err := psql.Select("cedula", "correo").From("ayudantes").Where(where).ToSql()
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
			return assistant.ErrCedulaExists
		}
	}
	if len(rows) > 0 {
		return assistant.ErrEmailExists
	}
	return nil
}

func (repo *assistantRepository) CreateAssistant(ctx context.Context, a assistant.Assistant) (assistant.Assistant, error) {
	q, args, err := psql.Insert("ayudantes").
		Columns(assistantColumns...).
		Values(a.Cedula, a.Name, a.Email, a.Level, a.Faculty, a.Major, a.PasswordHash, a.LastLogin, a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return assistant.Assistant{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		switch uniqueConstraint(err) {
		case "":
			return assistant.Assistant{}, errors.Wrap(err, "inserting assistant")
		case "ayudantes_correo_key":
			return assistant.Assistant{}, assistant.ErrEmailExists
		default:
			return assistant.Assistant{}, assistant.ErrCedulaExists
		}
	}
	return a, nil
}

func (repo *assistantRepository) QueryAssistants(
	ctx context.Context,
	filter assistant.QueryFilter,
	ordering ...core.DBOrdering,
) ([]assistant.Assistant, error) {
	query := psql.Select(assistantColumns...).From("ayudantes")
	if filter.Search != "" {
		pattern := contains(filter.Search)
		query = query.Where(sq.Or{sq.ILike{"cedula": pattern}, sq.ILike{"nombre": pattern}})
	}
	if filter.Faculty != "" {
		query = query.Where(sq.Eq{"facultad": filter.Faculty})
	}
	q, args, err := query.OrderBy(orderBy(ordering, "nombre ASC")...).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	assistants := make([]assistant.Assistant, 0)
	if err = repo.db.SelectContext(ctx, &assistants, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting assistants")
	}
	return assistants, nil
}

func (repo *assistantRepository) getAssistant(ctx context.Context, where sq.Eq) (assistant.Assistant, error) {
	q, args, err := psql.Select(assistantColumns...).From("ayudantes").Where(where).Limit(1).ToSql()
	if err != nil {
		return assistant.Assistant{}, errors.Wrap(err, "building query")
	}
	var a assistant.Assistant
	if err = repo.db.GetContext(ctx, &a, q, args...); err != nil {
		if isNoRows(err) {
			return assistant.Assistant{}, assistant.ErrNotFound
		}
		return assistant.Assistant{}, errors.Wrap(err, "selecting assistant")
	}
	return a, nil
}

func (repo *assistantRepository) GetAssistantByCedula(ctx context.Context, cedula string) (assistant.Assistant, error) {
	return repo.getAssistant(ctx, sq.Eq{"cedula": cedula})
}

func (repo *assistantRepository) GetAssistantByEmail(ctx context.Context, email string) (assistant.Assistant, error) {
	return repo.getAssistant(ctx, sq.Eq{"correo": email})
}

func (repo *assistantRepository) UpdateAssistant(ctx context.Context, a assistant.Assistant) (assistant.Assistant, error) {
	// only save set fields
	update := psql.Update("ayudantes").SetMap(map[string]interface{}{
		"nombre":     a.Name,
		"correo":     a.Email,
		"nivel":      a.Level,
		"facultad":   a.Faculty,
		"carrera":    a.Major,
		"updated_at": a.UpdatedAt,
	})
	if a.PasswordHash != nil {
		update = update.Set("password_hash", a.PasswordHash)
	}
	q, args, err := update.
		Where(sq.Eq{"cedula": a.Cedula}).
		Suffix("RETURNING " + joinColumns(assistantColumns)).
		ToSql()
	if err != nil {
		return assistant.Assistant{}, errors.Wrap(err, "building query")
	}

	var updated assistant.Assistant
	if err = repo.db.GetContext(ctx, &updated, q, args...); err != nil {
		if isNoRows(err) {
			return assistant.Assistant{}, assistant.ErrNotFound
		}
		if uniqueConstraint(err) != "" {
			return assistant.Assistant{}, assistant.ErrEmailExists
		}
		return assistant.Assistant{}, errors.Wrap(err, "updating assistant")
	}
	return updated, nil
}

func (repo *assistantRepository) SetPassword(ctx context.Context, cedula string, hash []byte) error {
	return repo.set(ctx, cedula, map[string]interface{}{"password_hash": hash, "updated_at": time.Now().UTC()})
}

func (repo *assistantRepository) SetLastLogin(ctx context.Context, cedula string, at time.Time) error {
	return repo.set(ctx, cedula, map[string]interface{}{"last_login": at})
}

func (repo *assistantRepository) set(ctx context.Context, cedula string, values map[string]interface{}) error {
	q, args, err := psql.Update("ayudantes").SetMap(values).Where(sq.Eq{"cedula": cedula}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "updating assistant")
	}
	return checkAffected(res, assistant.ErrNotFound)
}
