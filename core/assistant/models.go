package assistant

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
)

// Assistant is a student holding (or applying for) a teaching-assistant placement.
type Assistant struct {
	Cedula    string    `json:"cedula" db:"cedula"`
	Name      string    `json:"nombre" db:"nombre"`
	Email     string    `json:"correo" db:"correo"`
	Level     string    `json:"nivel" db:"nivel"`
	Faculty   string    `json:"facultad" db:"facultad"`
	Major     string    `json:"carrera" db:"carrera"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC

	account.Credentials
}

var _ account.Account = Assistant{}

func (a Assistant) AccountID() string                       { return a.Cedula }
func (a Assistant) AccountRole() string                     { return account.RoleAssistant }
func (a Assistant) AccountEmail() string                    { return a.Email }
func (a Assistant) AccountName() string                     { return a.Name }
func (a Assistant) AccountCredentials() account.Credentials { return a.Credentials }

// NewAssistant contains information needed to register a new Assistant.
type NewAssistant struct {
	Cedula          string `json:"cedula" validate:"required,cedula"`
	Name            string `json:"nombre" validate:"required,notblank,max=150"`
	Email           string `json:"correo" validate:"required,email,institutional_email"`
	Level           string `json:"nivel" validate:"required,notblank,max=50"`
	Faculty         string `json:"facultad" validate:"required,notblank"`
	Major           string `json:"carrera"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAssistant) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	na.Cedula = core.CleanString(na.Cedula)
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Level = core.CleanString(na.Level)
	na.Faculty = core.CleanString(na.Faculty)
	na.Major = core.CleanString(na.Major)

	if err := validate.Struct(na); err != nil {
		return err
	}
	if err := svc.CheckUniqueness(ctx, na.Cedula, na.Email); err != nil {
		return err
	}
	return svc.academic.CheckEnrollment(ctx, na.Faculty, na.Major)
}

// UpdateAssistant defines what information may be provided to modify an existing Assistant.
// Blank fields keep their current value.
type UpdateAssistant struct {
	Cedula          string `json:"cedula" validate:"required"`
	Name            string `json:"nombre" validate:"omitempty,max=150"`
	Email           string `json:"correo" validate:"omitempty,email,institutional_email"`
	Level           string `json:"nivel" validate:"omitempty,max=50"`
	Faculty         string `json:"facultad"`
	Major           string `json:"carrera"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ua *UpdateAssistant) Validate(ctx context.Context, orig Assistant, validate *validator.Validate, svc *Service) error {
	ua.Cedula = orig.Cedula
	ua.Name = cleanOr(ua.Name, orig.Name)
	ua.Email = cleanOr(core.CleanString(ua.Email, true /* lower */), orig.Email)
	ua.Level = cleanOr(ua.Level, orig.Level)

	facultyChanged := core.CleanString(ua.Faculty) != "" && core.CleanString(ua.Faculty) != orig.Faculty
	ua.Faculty = cleanOr(ua.Faculty, orig.Faculty)
	if facultyChanged {
		ua.Major = core.CleanString(ua.Major)
	} else {
		ua.Major = cleanOr(ua.Major, orig.Major)
	}

	if err := validate.Struct(ua); err != nil {
		return err
	}
	if err := svc.CheckUniqueness(ctx, ua.Cedula, ua.Email, orig.Cedula); err != nil {
		return err
	}
	return svc.academic.CheckEnrollment(ctx, ua.Faculty, ua.Major)
}

type QueryFilter struct {
	// Search does a case-insensitive match on the cedula or the name.
	Search  string `query:"search"`
	Faculty string `query:"facultad"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Faculty = core.CleanString(qf.Faculty)
}

func (qf QueryFilter) Match(a Assistant) bool {
	if qf.Faculty != "" && a.Faculty != qf.Faculty {
		return false
	}
	return qf.Search == "" || core.ContainsFold(a.Cedula, qf.Search) || core.ContainsFold(a.Name, qf.Search)
}

func cleanOr(s, fallback string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return fallback
}
