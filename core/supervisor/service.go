package supervisor

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
)

var (
	// errors
	ErrNotFound     = errors.New("supervisor not found")
	ErrCedulaExists = errors.New("a supervisor with this cedula already exists")
	ErrEmailExists  = errors.New("a supervisor with this email already exists")

	orderingFields = []string{"cedula", "nombre", "correo", "created_at"}
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, cedula, email string) error
		CreateSupervisor(ctx context.Context, s Supervisor) (Supervisor, error)
		QuerySupervisors(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Supervisor, error)
		GetSupervisorByCedula(ctx context.Context, cedula string) (Supervisor, error)
		GetSupervisorByEmail(ctx context.Context, email string) (Supervisor, error)
		SetPassword(ctx context.Context, cedula string, hash []byte) error
		SetLastLogin(ctx context.Context, cedula string, at time.Time) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}

	welcomeData struct {
		Name      string
		Email     string
		RoleLabel string
	}
)

var _ account.Source = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) CheckUniqueness(ctx context.Context, cedula, email string) error {
	if err := svc.repo.CheckUniqueness(ctx, cedula, email); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrCedulaExists:
			field = "cedula"
		case ErrEmailExists:
			field = "correo"
		default:
			return err
		}
		return core.NewFieldValidationError(field, errors.Cause(err))
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSupervisor) (Supervisor, error) {
	now := time.Now().UTC()
	s := Supervisor{
		Cedula:    ns.Cedula,
		Name:      ns.Name,
		Email:     ns.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SetPassword(ns.Password); err != nil {
		return Supervisor{}, errors.Wrap(err, "hashing password")
	}
	s, err := svc.repo.CreateSupervisor(ctx, s)
	if err != nil {
		return Supervisor{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: s.Name, Address: s.Email}},
		Subject:      "Bienvenido al sistema de ayudantías",
		TemplateName: "welcome",
		TemplateData: welcomeData{Name: s.Name, Email: s.Email, RoleLabel: account.RoleLabel(account.RoleSupervisor)},
	})
	return s, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Supervisor, error) {
	filter.Clean()
	return svc.repo.QuerySupervisors(ctx, filter, core.AllowedOrderings(ordering, orderingFields...)...)
}

func (svc *Service) GetByCedula(ctx context.Context, cedula string) (Supervisor, error) {
	return svc.repo.GetSupervisorByCedula(ctx, core.CleanString(cedula))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Supervisor, error) {
	return svc.repo.GetSupervisorByEmail(ctx, core.CleanString(email, true /* lower */))
}

// account.Source

func (svc *Service) FindAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	s, err := svc.GetByEmail(ctx, email)
	return accountOrErr(s, err)
}

func (svc *Service) FindAccountByID(ctx context.Context, id string) (account.Account, error) {
	s, err := svc.GetByCedula(ctx, id)
	return accountOrErr(s, err)
}

func (svc *Service) SetAccountPassword(ctx context.Context, id string, hash []byte) error {
	return svc.repo.SetPassword(ctx, id, hash)
}

func (svc *Service) SetAccountLastLogin(ctx context.Context, id string, at time.Time) error {
	return svc.repo.SetLastLogin(ctx, id, at)
}

func accountOrErr(s Supervisor, err error) (account.Account, error) {
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
