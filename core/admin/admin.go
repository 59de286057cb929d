// Package admin manages the administrator accounts. They are created from the admin CLI only.
package admin

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
)

var ErrNotFound = errors.New("admin not found")

type Admin struct {
	Email     string    `json:"correo" db:"correo"`
	Name      string    `json:"nombre" db:"nombre"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC

	account.Credentials
}

var _ account.Account = Admin{}

func (a Admin) AccountID() string                       { return a.Email }
func (a Admin) AccountRole() string                     { return account.RoleAdmin }
func (a Admin) AccountEmail() string                    { return a.Email }
func (a Admin) AccountName() string                     { return a.Name }
func (a Admin) AccountCredentials() account.Credentials { return a.Credentials }

type NewAdmin struct {
	Email    string `json:"correo" validate:"required,email"`
	Name     string `json:"nombre" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Name = core.CleanString(na.Name)
	if err := validate.Struct(na); err != nil {
		return err
	}
	return account.ValidatePassword(na.Password, na.Name, na.Email)
}

type (
	Repository interface {
		GetAdminByEmail(ctx context.Context, email string) (Admin, error)
		// SaveAdmin creates the admin or replaces the one with the same email.
		SaveAdmin(ctx context.Context, a Admin) (Admin, error)
		SetPassword(ctx context.Context, email string, hash []byte) error
		SetLastLogin(ctx context.Context, email string, at time.Time) error
	}

	Service struct {
		repo Repository
	}
)

var _ account.Source = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save updates or creates an Admin.
func (svc *Service) Save(ctx context.Context, na NewAdmin) (Admin, error) {
	now := time.Now().UTC()
	adm, err := svc.repo.GetAdminByEmail(ctx, na.Email)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Admin{}, err
		}
		adm = Admin{Email: na.Email, CreatedAt: now}
	}
	adm.Name = na.Name
	adm.UpdatedAt = now
	if err = adm.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.SaveAdmin(ctx, adm)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
}

// account.Source

func (svc *Service) FindAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	adm, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return adm, nil
}

func (svc *Service) FindAccountByID(ctx context.Context, id string) (account.Account, error) {
	return svc.FindAccountByEmail(ctx, id)
}

func (svc *Service) SetAccountPassword(ctx context.Context, id string, hash []byte) error {
	return svc.repo.SetPassword(ctx, id, hash)
}

func (svc *Service) SetAccountLastLogin(ctx context.Context, id string, at time.Time) error {
	return svc.repo.SetLastLogin(ctx, id, at)
}
