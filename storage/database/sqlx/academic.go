package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core/academic"
)

type academicRepository struct {
	db *sqlx.DB
}

func NewAcademicRepository(db *sqlx.DB) academic.Repository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateFaculty(ctx context.Context, f academic.Faculty) error {
	q, args, err := psql.Insert("facultades").Columns("nombre").Values(f.Name).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		if uniqueConstraint(err) != "" {
			return academic.ErrFacultyExists
		}
		return errors.Wrap(err, "inserting faculty")
	}
	return nil
}

func (repo *academicRepository) QueryFaculties(ctx context.Context) ([]academic.Faculty, error) {
	q, args, err := psql.Select("nombre").From("facultades").OrderBy("nombre ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	faculties := make([]academic.Faculty, 0)
	if err = repo.db.SelectContext(ctx, &faculties, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting faculties")
	}
	return faculties, nil
}

func (repo *academicRepository) GetFaculty(ctx context.Context, name string) (academic.Faculty, error) {
	q, args, err := psql.Select("nombre").From("facultades").Where("nombre = ?", name).ToSql()
	if err != nil {
		return academic.Faculty{}, errors.Wrap(err, "building query")
	}
	var f academic.Faculty
	if err = repo.db.GetContext(ctx, &f, q, args...); err != nil {
		if isNoRows(err) {
			return academic.Faculty{}, academic.ErrFacultyNotFound
		}
		return academic.Faculty{}, errors.Wrap(err, "selecting faculty")
	}
	return f, nil
}

func (repo *academicRepository) CreateMajor(ctx context.Context, m academic.Major) error {
	q, args, err := psql.Insert("carreras").Columns("nombre", "facultad").Values(m.Name, m.Faculty).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		if uniqueConstraint(err) != "" {
			return academic.ErrMajorExists
		}
		return errors.Wrap(err, "inserting major")
	}
	return nil
}

func (repo *academicRepository) QueryMajors(ctx context.Context, faculty string) ([]academic.Major, error) {
	q, args, err := psql.Select("nombre", "facultad").From("carreras").
		Where("facultad = ?", faculty).
		OrderBy("nombre ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	majors := make([]academic.Major, 0)
	if err = repo.db.SelectContext(ctx, &majors, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting majors")
	}
	return majors, nil
}

func (repo *academicRepository) CreatePeriod(ctx context.Context, p academic.Period) error {
	q, args, err := psql.Insert("periodos").Columns("nombre", "actual").Values(p.Name, false).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		if uniqueConstraint(err) != "" {
			return academic.ErrPeriodExists
		}
		return errors.Wrap(err, "inserting period")
	}
	return nil
}

func (repo *academicRepository) QueryPeriods(ctx context.Context) ([]academic.Period, error) {
	q, args, err := psql.Select("nombre", "actual").From("periodos").OrderBy("nombre DESC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	periods := make([]academic.Period, 0)
	if err = repo.db.SelectContext(ctx, &periods, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting periods")
	}
	return periods, nil
}

func (repo *academicRepository) getPeriod(ctx context.Context, pred interface{}, args ...interface{}) (academic.Period, error) {
	q, qArgs, err := psql.Select("nombre", "actual").From("periodos").Where(pred, args...).Limit(1).ToSql()
	if err != nil {
		return academic.Period{}, errors.Wrap(err, "building query")
	}
	var p academic.Period
	err = repo.db.GetContext(ctx, &p, q, qArgs...)
	return p, err
}

func (repo *academicRepository) GetPeriod(ctx context.Context, name string) (academic.Period, error) {
	p, err := repo.getPeriod(ctx, "nombre = ?", name)
	if err != nil {
		if isNoRows(err) {
			return academic.Period{}, academic.ErrPeriodNotFound
		}
		return academic.Period{}, errors.Wrap(err, "selecting period")
	}
	return p, nil
}

func (repo *academicRepository) GetCurrentPeriod(ctx context.Context) (academic.Period, error) {
	p, err := repo.getPeriod(ctx, "actual")
	if err != nil {
		if isNoRows(err) {
			return academic.Period{}, academic.ErrNoCurrentPeriod
		}
		return academic.Period{}, errors.Wrap(err, "selecting current period")
	}
	return p, nil
}

func (repo *academicRepository) SetCurrentPeriod(ctx context.Context, name string) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q, args, err := psql.Update("periodos").Set("actual", false).Where("actual AND nombre <> ?", name).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = tx.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "clearing current period")
	}

	q, args, err = psql.Update("periodos").Set("actual", true).Where("nombre = ?", name).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "setting current period")
	}
	if err = checkAffected(res, academic.ErrPeriodNotFound); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
