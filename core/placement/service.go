package placement

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/supervisor"
)

var (
	// errors
	ErrNotFound           = errors.New("placement not found")
	ErrAssistantPlaced    = errors.New("this assistant already has a placement")
	ErrAlreadyApproved    = errors.New("this placement is already approved for the period")
	ErrWindowClosed       = errors.New("the evaluation window is closed")
	errAssistantNotFound  = errors.New("assistant not found")
	errSupervisorNotFound = errors.New("supervisor not found")
	errPeriodNotFound     = errors.New("period not found")
)

type (
	Repository interface {
		CreatePlacement(ctx context.Context, p Placement) (Placement, error)
		QueryPlacements(ctx context.Context, filter Filter) ([]Placement, error)
		GetPlacement(ctx context.Context, id int) (Placement, error)
		SetObjective(ctx context.Context, id int, objective string) (Placement, error)

		CreateActivity(ctx context.Context, a Activity) (Activity, error)
		QueryActivities(ctx context.Context, placementID int) ([]Activity, error)

		// CreateApproval returns ErrAlreadyApproved when the (placement, period) pair exists.
		CreateApproval(ctx context.Context, a Approval) (Approval, error)
		// QueryApprovals lists the approvals of period, or all of them when period is empty.
		QueryApprovals(ctx context.Context, period string) ([]Approval, error)

		GetWindow(ctx context.Context) (Window, error)
		SetWindow(ctx context.Context, open bool) (Window, error)
	}

	assistantFinder interface {
		GetByCedula(ctx context.Context, cedula string) (assistant.Assistant, error)
	}

	supervisorFinder interface {
		GetByCedula(ctx context.Context, cedula string) (supervisor.Supervisor, error)
	}

	periodFinder interface {
		GetPeriod(ctx context.Context, name string) (academic.Period, error)
		CurrentPeriod(ctx context.Context) (academic.Period, error)
	}

	Service struct {
		repo        Repository
		assistants  assistantFinder
		supervisors supervisorFinder
		periods     periodFinder
	}
)

func NewService(repo Repository, assistants assistantFinder, supervisors supervisorFinder, periods periodFinder) *Service {
	return &Service{
		repo:        repo,
		assistants:  assistants,
		supervisors: supervisors,
		periods:     periods,
	}
}

// Assign creates a placement after checking both ends exist and the assistant is not placed yet.
func (svc *Service) Assign(ctx context.Context, np NewPlacement) (Placement, error) {
	if _, err := svc.assistants.GetByCedula(ctx, np.AssistantCedula); err != nil {
		if errors.Cause(err) == assistant.ErrNotFound {
			return Placement{}, core.NewFieldValidationError("cedula_ayudante", errAssistantNotFound)
		}
		return Placement{}, errors.Wrap(err, "finding assistant")
	}
	if _, err := svc.supervisors.GetByCedula(ctx, np.SupervisorCedula); err != nil {
		if errors.Cause(err) == supervisor.ErrNotFound {
			return Placement{}, core.NewFieldValidationError("cedula_supervisor", errSupervisorNotFound)
		}
		return Placement{}, errors.Wrap(err, "finding supervisor")
	}
	if _, err := svc.GetByAssistant(ctx, np.AssistantCedula); err == nil {
		return Placement{}, core.NewFieldValidationError("cedula_ayudante", ErrAssistantPlaced)
	} else if errors.Cause(err) != ErrNotFound {
		return Placement{}, errors.Wrap(err, "finding placement by assistant")
	}

	return svc.repo.CreatePlacement(ctx, Placement{
		AssistantCedula:  np.AssistantCedula,
		SupervisorCedula: np.SupervisorCedula,
		Position:         np.Position,
		AssistantType:    np.AssistantType,
		Objective:        np.Objective,
	})
}

func (svc *Service) Query(ctx context.Context, filter Filter) ([]Placement, error) {
	filter.AssistantCedula = core.CleanString(filter.AssistantCedula)
	filter.SupervisorCedula = core.CleanString(filter.SupervisorCedula)
	return svc.repo.QueryPlacements(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, id int) (Placement, error) {
	return svc.repo.GetPlacement(ctx, id)
}

// GetByAssistant returns ErrNotFound when the assistant has no placement.
func (svc *Service) GetByAssistant(ctx context.Context, cedula string) (Placement, error) {
	ps, err := svc.Query(ctx, Filter{AssistantCedula: cedula})
	if err != nil {
		return Placement{}, err
	}
	if len(ps) == 0 {
		return Placement{}, ErrNotFound
	}
	return ps[0], nil
}

func (svc *Service) QueryBySupervisor(ctx context.Context, cedula string) ([]Placement, error) {
	return svc.Query(ctx, Filter{SupervisorCedula: cedula})
}

func (svc *Service) UpdateObjective(ctx context.Context, id int, uo UpdateObjective) (Placement, error) {
	return svc.repo.SetObjective(ctx, id, uo.Objective)
}

// RecordActivity logs an activity; without an explicit period it is tagged with the current one, if any.
func (svc *Service) RecordActivity(ctx context.Context, na NewActivity) (Activity, error) {
	if _, err := svc.Get(ctx, na.PlacementID); err != nil {
		return Activity{}, err
	}
	period := na.Period
	if period == "" {
		if p, err := svc.periods.CurrentPeriod(ctx); err == nil {
			period = p.Name
		} else if errors.Cause(err) != academic.ErrNoCurrentPeriod {
			return Activity{}, errors.Wrap(err, "getting current period")
		}
	}
	return svc.repo.CreateActivity(ctx, Activity{
		PlacementID: na.PlacementID,
		Date:        na.Date,
		Description: na.Description,
		Evidence:    na.Evidence,
		Period:      period,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) Activities(ctx context.Context, placementID int) ([]Activity, error) {
	if _, err := svc.Get(ctx, placementID); err != nil {
		return nil, err
	}
	return svc.repo.QueryActivities(ctx, placementID)
}

// Approve records an approval while the evaluation window is open.
// The period defaults to the current one.
func (svc *Service) Approve(ctx context.Context, na NewApproval) (Approval, error) {
	w, err := svc.repo.GetWindow(ctx)
	if err != nil {
		return Approval{}, errors.Wrap(err, "getting evaluation window")
	}
	if !w.Open {
		return Approval{}, ErrWindowClosed
	}
	if _, err = svc.Get(ctx, na.PlacementID); err != nil {
		return Approval{}, err
	}

	period, err := svc.resolvePeriod(ctx, na.Period)
	if err != nil {
		return Approval{}, err
	}

	a, err := svc.repo.CreateApproval(ctx, Approval{
		PlacementID: na.PlacementID,
		Period:      period,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyApproved {
			return Approval{}, core.NewFieldValidationError("ayudantia_id", ErrAlreadyApproved)
		}
		return Approval{}, err
	}
	return a, nil
}

func (svc *Service) resolvePeriod(ctx context.Context, name string) (string, error) {
	if name == "" {
		p, err := svc.periods.CurrentPeriod(ctx)
		if err != nil {
			if errors.Cause(err) == academic.ErrNoCurrentPeriod {
				return "", core.NewFieldValidationError("periodo", academic.ErrNoCurrentPeriod)
			}
			return "", errors.Wrap(err, "getting current period")
		}
		return p.Name, nil
	}
	p, err := svc.periods.GetPeriod(ctx, name)
	if err != nil {
		if errors.Cause(err) == academic.ErrPeriodNotFound {
			return "", core.NewFieldValidationError("periodo", errPeriodNotFound)
		}
		return "", errors.Wrap(err, "getting period")
	}
	return p.Name, nil
}

func (svc *Service) Approvals(ctx context.Context, period string) ([]Approval, error) {
	return svc.repo.QueryApprovals(ctx, core.CleanString(period))
}

func (svc *Service) Window(ctx context.Context) (Window, error) {
	return svc.repo.GetWindow(ctx)
}

func (svc *Service) SetWindow(ctx context.Context, open bool) (Window, error) {
	return svc.repo.SetWindow(ctx, open)
}
