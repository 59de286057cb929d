package assistant

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/account"
)

var (
	// errors
	ErrNotFound     = errors.New("assistant not found")
	ErrCedulaExists = errors.New("an assistant with this cedula already exists")
	ErrEmailExists  = errors.New("an assistant with this email already exists")

	orderingFields = []string{"cedula", "nombre", "correo", "created_at"}
)

type (
	Repository interface {
		// CheckUniqueness returns ErrCedulaExists or ErrEmailExists when another assistant,
		// not listed in excluded, already uses cedula or email.
		CheckUniqueness(ctx context.Context, cedula, email string, excluded ...string) error
		CreateAssistant(ctx context.Context, a Assistant) (Assistant, error)
		QueryAssistants(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Assistant, error)
		GetAssistantByCedula(ctx context.Context, cedula string) (Assistant, error)
		GetAssistantByEmail(ctx context.Context, email string) (Assistant, error)
		UpdateAssistant(ctx context.Context, a Assistant) (Assistant, error)
		SetPassword(ctx context.Context, cedula string, hash []byte) error
		SetLastLogin(ctx context.Context, cedula string, at time.Time) error
	}

	Service struct {
		repo     Repository
		academic *academic.Service
		mailSvc  core.EmailService
	}

	welcomeData struct {
		Name      string
		Email     string
		RoleLabel string
	}
)

var _ account.Source = (*Service)(nil)

func NewService(repo Repository, academicSvc *academic.Service, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, academic: academicSvc, mailSvc: mailSvc}
}

func (svc *Service) CheckUniqueness(ctx context.Context, cedula, email string, excluded ...string) error {
	if err := svc.repo.CheckUniqueness(ctx, cedula, email, excluded...); err != nil {
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

// Create registers the assistant and emails them a welcome message.
func (svc *Service) Create(ctx context.Context, na NewAssistant) (Assistant, error) {
	now := time.Now().UTC()
	a := Assistant{
		Cedula:    na.Cedula,
		Name:      na.Name,
		Email:     na.Email,
		Level:     na.Level,
		Faculty:   na.Faculty,
		Major:     na.Major,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.SetPassword(na.Password); err != nil {
		return Assistant{}, errors.Wrap(err, "hashing password")
	}
	a, err := svc.repo.CreateAssistant(ctx, a)
	if err != nil {
		return Assistant{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: a.Name, Address: a.Email}},
		Subject:      "Bienvenido al sistema de ayudantías",
		TemplateName: "welcome",
		TemplateData: welcomeData{Name: a.Name, Email: a.Email, RoleLabel: account.RoleLabel(account.RoleAssistant)},
	})
	return a, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Assistant, error) {
	filter.Clean()
	return svc.repo.QueryAssistants(ctx, filter, core.AllowedOrderings(ordering, orderingFields...)...)
}

func (svc *Service) GetByCedula(ctx context.Context, cedula string) (Assistant, error) {
	return svc.repo.GetAssistantByCedula(ctx, core.CleanString(cedula))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Assistant, error) {
	return svc.repo.GetAssistantByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, ua UpdateAssistant) (Assistant, error) {
	a := Assistant{
		Cedula:    ua.Cedula,
		Name:      ua.Name,
		Email:     ua.Email,
		Level:     ua.Level,
		Faculty:   ua.Faculty,
		Major:     ua.Major,
		UpdatedAt: time.Now().UTC(),
	}
	if ua.Password != "" {
		if err := a.SetPassword(ua.Password); err != nil {
			return Assistant{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateAssistant(ctx, a)
}

// account.Source

func (svc *Service) FindAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	a, err := svc.GetByEmail(ctx, email)
	return accountOrErr(a, err)
}

func (svc *Service) FindAccountByID(ctx context.Context, id string) (account.Account, error) {
	a, err := svc.GetByCedula(ctx, id)
	return accountOrErr(a, err)
}

func (svc *Service) SetAccountPassword(ctx context.Context, id string, hash []byte) error {
	return svc.repo.SetPassword(ctx, id, hash)
}

func (svc *Service) SetAccountLastLogin(ctx context.Context, id string, at time.Time) error {
	return svc.repo.SetLastLogin(ctx, id, at)
}

func accountOrErr(a Assistant, err error) (account.Account, error) {
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
