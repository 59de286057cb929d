package academic

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
)

var (
	// errors
	ErrFacultyNotFound = errors.New("faculty not found")
	ErrFacultyExists   = errors.New("a faculty with this name already exists")
	ErrMajorExists     = errors.New("this faculty already has a major with this name")
	ErrPeriodNotFound  = errors.New("period not found")
	ErrPeriodExists    = errors.New("a period with this name already exists")
	ErrNoCurrentPeriod = errors.New("there is no current period")
	ErrMajorRequired   = errors.New("a major of the selected faculty is required")
	ErrMajorNotAllowed = errors.New("the selected faculty has no majors")
	ErrUnknownMajor    = errors.New("the major does not belong to the selected faculty")
)

type (
	Repository interface {
		CreateFaculty(ctx context.Context, f Faculty) error
		QueryFaculties(ctx context.Context) ([]Faculty, error)
		GetFaculty(ctx context.Context, name string) (Faculty, error)
		CreateMajor(ctx context.Context, m Major) error
		QueryMajors(ctx context.Context, faculty string) ([]Major, error)
		CreatePeriod(ctx context.Context, p Period) error
		QueryPeriods(ctx context.Context) ([]Period, error)
		GetPeriod(ctx context.Context, name string) (Period, error)
		GetCurrentPeriod(ctx context.Context) (Period, error)
		// SetCurrentPeriod flags the named period as current and clears every other one atomically.
		SetCurrentPeriod(ctx context.Context, name string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateFaculty(ctx context.Context, nf NewFaculty) (Faculty, error) {
	f := Faculty{Name: nf.Name}
	if err := svc.repo.CreateFaculty(ctx, f); err != nil {
		if errors.Cause(err) == ErrFacultyExists {
			return Faculty{}, core.NewFieldValidationError("nombre", ErrFacultyExists)
		}
		return Faculty{}, err
	}
	return f, nil
}

func (svc *Service) QueryFaculties(ctx context.Context) ([]Faculty, error) {
	return svc.repo.QueryFaculties(ctx)
}

func (svc *Service) GetFaculty(ctx context.Context, name string) (Faculty, error) {
	return svc.repo.GetFaculty(ctx, core.CleanString(name))
}

func (svc *Service) CreateMajor(ctx context.Context, faculty string, nm NewMajor) (Major, error) {
	fac, err := svc.GetFaculty(ctx, faculty)
	if err != nil {
		return Major{}, err
	}
	m := Major{Name: nm.Name, Faculty: fac.Name}
	if err = svc.repo.CreateMajor(ctx, m); err != nil {
		if errors.Cause(err) == ErrMajorExists {
			return Major{}, core.NewFieldValidationError("nombre", ErrMajorExists)
		}
		return Major{}, err
	}
	return m, nil
}

// QueryMajors lists the majors of faculty. A known faculty without majors yields an empty list.
func (svc *Service) QueryMajors(ctx context.Context, faculty string) ([]Major, error) {
	fac, err := svc.GetFaculty(ctx, faculty)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryMajors(ctx, fac.Name)
}

// CheckEnrollment validates that major fits faculty: required when the faculty has majors,
// forbidden when it has none. Errors are reported on the "facultad" and "carrera" fields.
func (svc *Service) CheckEnrollment(ctx context.Context, faculty, major string) error {
	majors, err := svc.QueryMajors(ctx, faculty)
	if err != nil {
		if errors.Cause(err) == ErrFacultyNotFound {
			return core.NewFieldValidationError("facultad", ErrFacultyNotFound)
		}
		return errors.Wrap(err, "querying majors")
	}
	if len(majors) == 0 {
		if major != "" {
			return core.NewFieldValidationError("carrera", ErrMajorNotAllowed)
		}
		return nil
	}
	if major == "" {
		return core.NewFieldValidationError("carrera", ErrMajorRequired)
	}
	for _, m := range majors {
		if m.Name == major {
			return nil
		}
	}
	return core.NewFieldValidationError("carrera", ErrUnknownMajor)
}

func (svc *Service) CreatePeriod(ctx context.Context, np NewPeriod) (Period, error) {
	p := Period{Name: np.Name}
	if err := svc.repo.CreatePeriod(ctx, p); err != nil {
		if errors.Cause(err) == ErrPeriodExists {
			return Period{}, core.NewFieldValidationError("nombre", ErrPeriodExists)
		}
		return Period{}, err
	}
	if np.Current {
		if err := svc.repo.SetCurrentPeriod(ctx, p.Name); err != nil {
			return Period{}, errors.Wrap(err, "setting current period")
		}
		p.Current = true
	}
	return p, nil
}

func (svc *Service) QueryPeriods(ctx context.Context) ([]Period, error) {
	return svc.repo.QueryPeriods(ctx)
}

func (svc *Service) GetPeriod(ctx context.Context, name string) (Period, error) {
	return svc.repo.GetPeriod(ctx, core.CleanString(name))
}

// CurrentPeriod returns ErrNoCurrentPeriod when no period is flagged as current.
func (svc *Service) CurrentPeriod(ctx context.Context) (Period, error) {
	return svc.repo.GetCurrentPeriod(ctx)
}

func (svc *Service) SetCurrentPeriod(ctx context.Context, name string) (Period, error) {
	p, err := svc.GetPeriod(ctx, name)
	if err != nil {
		return Period{}, err
	}
	if err = svc.repo.SetCurrentPeriod(ctx, p.Name); err != nil {
		return Period{}, err
	}
	p.Current = true
	return p, nil
}
