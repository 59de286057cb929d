package supervisor

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
)

// Supervisor is a faculty member who oversees and evaluates placements.
type Supervisor struct {
	Cedula    string    `json:"cedula" db:"cedula"`
	Name      string    `json:"nombre" db:"nombre"`
	Email     string    `json:"correo" db:"correo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC

	account.Credentials
}

var _ account.Account = Supervisor{}

func (s Supervisor) AccountID() string                       { return s.Cedula }
func (s Supervisor) AccountRole() string                     { return account.RoleSupervisor }
func (s Supervisor) AccountEmail() string                    { return s.Email }
func (s Supervisor) AccountName() string                     { return s.Name }
func (s Supervisor) AccountCredentials() account.Credentials { return s.Credentials }

// NewSupervisor contains information needed to register a new Supervisor.
type NewSupervisor struct {
	Cedula          string `json:"cedula" validate:"required,cedula"`
	Name            string `json:"nombre" validate:"required,notblank,max=150"`
	Email           string `json:"correo" validate:"required,email,institutional_email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewSupervisor) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.Cedula = core.CleanString(ns.Cedula)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ns.Cedula, ns.Email)
}

type QueryFilter struct {
	// Search does a case-insensitive match on the cedula or the name.
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf QueryFilter) Match(s Supervisor) bool {
	return qf.Search == "" || core.ContainsFold(s.Cedula, qf.Search) || core.ContainsFold(s.Name, qf.Search)
}
