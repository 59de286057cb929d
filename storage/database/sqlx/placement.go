package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core/placement"
)

var (
	placementColumns = []string{"id", "cedula_ayudante", "cedula_supervisor", "plaza", "tipo_ayudante", "objetivo"}
	activityColumns  = []string{
		"id", "ayudantia_id", "to_char(fecha, 'YYYY-MM-DD') AS fecha", "descripcion", "evidencia", "periodo", "created_at",
	}
	approvalColumns = []string{"ayudantia_id", "periodo", "created_at"}
)

type placementRepository struct {
	db *sqlx.DB
}

func NewPlacementRepository(db *sqlx.DB) placement.Repository {
	return &placementRepository{db: db}
}

func (repo *placementRepository) CreatePlacement(ctx context.Context, p placement.Placement) (placement.Placement, error) {
	q, args, err := psql.Insert("ayudantias").
		Columns("cedula_ayudante", "cedula_supervisor", "plaza", "tipo_ayudante", "objetivo").
		Values(p.AssistantCedula, p.SupervisorCedula, p.Position, p.AssistantType, p.Objective).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return placement.Placement{}, errors.Wrap(err, "building query")
	}
	if err = repo.db.QueryRowxContext(ctx, q, args...).Scan(&p.ID); err != nil {
		if uniqueConstraint(err) != "" {
			return placement.Placement{}, placement.ErrAssistantPlaced
		}
		return placement.Placement{}, errors.Wrap(err, "inserting placement")
	}
	return p, nil
}

func (repo *placementRepository) QueryPlacements(ctx context.Context, filter placement.Filter) ([]placement.Placement, error) {
	query := psql.Select(placementColumns...).From("ayudantias")
	if filter.AssistantCedula != "" {
		query = query.Where(sq.Eq{"cedula_ayudante": filter.AssistantCedula})
	}
	if filter.SupervisorCedula != "" {
		query = query.Where(sq.Eq{"cedula_supervisor": filter.SupervisorCedula})
	}
	q, args, err := query.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	placements := make([]placement.Placement, 0)
	if err = repo.db.SelectContext(ctx, &placements, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting placements")
	}
	return placements, nil
}

func (repo *placementRepository) GetPlacement(ctx context.Context, id int) (placement.Placement, error) {
	q, args, err := psql.Select(placementColumns...).From("ayudantias").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return placement.Placement{}, errors.Wrap(err, "building query")
	}
	var p placement.Placement
	if err = repo.db.GetContext(ctx, &p, q, args...); err != nil {
		if isNoRows(err) {
			return placement.Placement{}, placement.ErrNotFound
		}
		return placement.Placement{}, errors.Wrap(err, "selecting placement")
	}
	return p, nil
}

func (repo *placementRepository) SetObjective(ctx context.Context, id int, objective string) (placement.Placement, error) {
	q, args, err := psql.Update("ayudantias").
		Set("objetivo", objective).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(placementColumns)).
		ToSql()
	if err != nil {
		return placement.Placement{}, errors.Wrap(err, "building query")
	}
	var p placement.Placement
	if err = repo.db.GetContext(ctx, &p, q, args...); err != nil {
		if isNoRows(err) {
			return placement.Placement{}, placement.ErrNotFound
		}
		return placement.Placement{}, errors.Wrap(err, "updating objective")
	}
	return p, nil
}

func (repo *placementRepository) CreateActivity(ctx context.Context, a placement.Activity) (placement.Activity, error) {
	q, args, err := psql.Insert("actividades").
		Columns("ayudantia_id", "fecha", "descripcion", "evidencia", "periodo", "created_at").
		Values(a.PlacementID, a.Date, a.Description, a.Evidence, a.Period, a.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return placement.Activity{}, errors.Wrap(err, "building query")
	}
	if err = repo.db.QueryRowxContext(ctx, q, args...).Scan(&a.ID); err != nil {
		return placement.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return a, nil
}

func (repo *placementRepository) QueryActivities(ctx context.Context, placementID int) ([]placement.Activity, error) {
	q, args, err := psql.Select(activityColumns...).From("actividades").
		Where(sq.Eq{"ayudantia_id": placementID}).
		OrderBy("actividades.fecha DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	activities := make([]placement.Activity, 0)
	if err = repo.db.SelectContext(ctx, &activities, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting activities")
	}
	return activities, nil
}

func (repo *placementRepository) CreateApproval(ctx context.Context, a placement.Approval) (placement.Approval, error) {
	q, args, err := psql.Insert("aprobados").
		Columns(approvalColumns...).
		Values(a.PlacementID, a.Period, a.CreatedAt).
		ToSql()
	if err != nil {
		return placement.Approval{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		if uniqueConstraint(err) != "" {
			return placement.Approval{}, placement.ErrAlreadyApproved
		}
		return placement.Approval{}, errors.Wrap(err, "inserting approval")
	}
	return a, nil
}

func (repo *placementRepository) QueryApprovals(ctx context.Context, period string) ([]placement.Approval, error) {
	query := psql.Select(approvalColumns...).From("aprobados")
	if period != "" {
		query = query.Where(sq.Eq{"periodo": period})
	}
	q, args, err := query.OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	approvals := make([]placement.Approval, 0)
	if err = repo.db.SelectContext(ctx, &approvals, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting approvals")
	}
	return approvals, nil
}

func (repo *placementRepository) GetWindow(ctx context.Context) (placement.Window, error) {
	q, args, err := psql.Select("abierta").From("ventana_aprobacion").Where(sq.Eq{"id": 1}).ToSql()
	if err != nil {
		return placement.Window{}, errors.Wrap(err, "building query")
	}
	var w placement.Window
	if err = repo.db.GetContext(ctx, &w, q, args...); err != nil && !isNoRows(err) {
		return placement.Window{}, errors.Wrap(err, "selecting evaluation window")
	}
	return w, nil
}

func (repo *placementRepository) SetWindow(ctx context.Context, open bool) (placement.Window, error) {
	q, args, err := psql.Insert("ventana_aprobacion").
		Columns("id", "abierta").
		Values(1, open).
		Suffix("ON CONFLICT (id) DO UPDATE SET abierta = EXCLUDED.abierta RETURNING abierta").
		ToSql()
	if err != nil {
		return placement.Window{}, errors.Wrap(err, "building query")
	}
	var w placement.Window
	if err = repo.db.GetContext(ctx, &w, q, args...); err != nil {
		return placement.Window{}, errors.Wrap(err, "updating evaluation window")
	}
	return w, nil
}
