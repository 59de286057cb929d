// Package forms holds the portal's input forms. Each form is checked locally before
// it is submitted, with the same rules the API applies.
package forms

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
)

var (
	errMajorRequired   = "select a major of the faculty"
	errMajorNotOffered = "the faculty offers no majors yet"
	errUnknownMajor    = "the major does not belong to the faculty"
)

// Errors maps the JSON name of a field to its message.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator returns a validator for institutional emails ending with domain.
func NewValidator(domain string) *Validator {
	validate, translator := core.NewValidator(domain)
	account.InitValidators(validate, translator)
	return &Validator{validate: validate, translator: translator}
}

func (v *Validator) check(form interface{}) Errors {
	errs := make(Errors)
	if err := v.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs.Add(fe.Field(), fe.Translate(v.translator))
			}
		} else {
			errs.Add("form", err.Error())
		}
	}
	return errs
}

func (v *Validator) checkPassword(errs Errors, pwd string, attrs ...string) {
	if pwd == "" {
		return
	}
	var verr *core.ValidationError
	if err := account.ValidatePassword(pwd, attrs...); errors.As(err, &verr) {
		for _, f := range verr.Fields {
			errs.Add(f.Field, f.Error)
		}
	}
}

type LoginForm struct {
	Role     string `json:"rol" validate:"required,oneof=admin supervisor ayudante"`
	Email    string `json:"correo" validate:"required,email,institutional_email"`
	Password string `json:"password" validate:"required"`
}

func (f *LoginForm) Validate(v *Validator) Errors {
	f.Role = core.CleanString(f.Role, true /* lower */)
	f.Email = core.CleanString(f.Email, true /* lower */)
	return v.check(f)
}

// AssistantForm creates an assistant, or edits one when Edit is set.
// On edit the password is optional and blank fields keep their value.
type AssistantForm struct {
	Cedula          string `json:"cedula" validate:"required,cedula"`
	Name            string `json:"nombre" validate:"required,notblank,max=150"`
	Email           string `json:"correo" validate:"required,email,institutional_email"`
	Level           string `json:"nivel" validate:"required,notblank,max=50"`
	Faculty         string `json:"facultad" validate:"required,notblank"`
	Major           string `json:"carrera"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"eqfield=Password"`

	Edit bool `json:"-"`
}

// Validate checks the form against majors, the majors offered by the selected faculty.
// A faculty without majors cannot be submitted until it offers one.
func (f *AssistantForm) Validate(v *Validator, majors []string) Errors {
	f.Cedula = core.CleanString(f.Cedula)
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Level = core.CleanString(f.Level)
	f.Faculty = core.CleanString(f.Faculty)
	f.Major = core.CleanString(f.Major)

	errs := v.check(f)
	if !f.Edit && f.Password == "" {
		errs.Add("password", "this field is required")
	}
	v.checkPassword(errs, f.Password, f.Name, f.Email, f.Cedula)

	if f.Faculty != "" {
		switch {
		case len(majors) == 0:
			errs.Add("carrera", errMajorNotOffered)
		case f.Major == "":
			errs.Add("carrera", errMajorRequired)
		case !contains(majors, f.Major):
			errs.Add("carrera", errUnknownMajor)
		}
	}
	return errs
}

// CanSubmit reports whether the form would pass Validate.
func (f AssistantForm) CanSubmit(v *Validator, majors []string) bool {
	return len(f.Validate(v, majors)) == 0
}

func (f AssistantForm) New() assistant.NewAssistant {
	return assistant.NewAssistant{
		Cedula:          f.Cedula,
		Name:            f.Name,
		Email:           f.Email,
		Level:           f.Level,
		Faculty:         f.Faculty,
		Major:           f.Major,
		Password:        f.Password,
		PasswordConfirm: f.PasswordConfirm,
	}
}

func (f AssistantForm) Update() assistant.UpdateAssistant {
	return assistant.UpdateAssistant{
		Cedula:          f.Cedula,
		Name:            f.Name,
		Email:           f.Email,
		Level:           f.Level,
		Faculty:         f.Faculty,
		Major:           f.Major,
		Password:        f.Password,
		PasswordConfirm: f.PasswordConfirm,
	}
}

type SupervisorForm struct {
	Cedula          string `json:"cedula" validate:"required,cedula"`
	Name            string `json:"nombre" validate:"required,notblank,max=150"`
	Email           string `json:"correo" validate:"required,email,institutional_email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (f *SupervisorForm) Validate(v *Validator) Errors {
	f.Cedula = core.CleanString(f.Cedula)
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)

	errs := v.check(f)
	v.checkPassword(errs, f.Password, f.Name, f.Email, f.Cedula)
	return errs
}

func (f SupervisorForm) New() supervisor.NewSupervisor {
	return supervisor.NewSupervisor{
		Cedula:          f.Cedula,
		Name:            f.Name,
		Email:           f.Email,
		Password:        f.Password,
		PasswordConfirm: f.PasswordConfirm,
	}
}

type PlacementForm struct {
	AssistantCedula  string `json:"cedula_ayudante" validate:"required,cedula"`
	SupervisorCedula string `json:"cedula_supervisor" validate:"required,cedula"`
	Position         string `json:"plaza" validate:"required,notblank,max=150"`
	AssistantType    string `json:"tipo_ayudante" validate:"required,notblank,max=50"`
	Objective        string `json:"objetivo" validate:"max=2000"`
}

func (f *PlacementForm) Validate(v *Validator) Errors {
	f.AssistantCedula = core.CleanString(f.AssistantCedula)
	f.SupervisorCedula = core.CleanString(f.SupervisorCedula)
	f.Position = core.CleanString(f.Position)
	f.AssistantType = core.CleanString(f.AssistantType)
	f.Objective = core.CleanString(f.Objective)
	return v.check(f)
}

func (f PlacementForm) New() placement.NewPlacement {
	return placement.NewPlacement(f)
}

// ActivityForm records an activity. Evidence is a link or text; EvidenceFile,
// when set, is uploaded first and replaces it.
type ActivityForm struct {
	PlacementID  int    `json:"ayudantia_id" validate:"required,gt=0"`
	Date         string `json:"fecha" validate:"required,datetime=2006-01-02"`
	Description  string `json:"descripcion" validate:"required,notblank,max=2000"`
	Evidence     string `json:"evidencia"`
	EvidenceFile string `json:"archivo" validate:"omitempty,file"`
	Period       string `json:"periodo" validate:"max=50"`
}

func (f *ActivityForm) Validate(v *Validator) Errors {
	f.Date = core.CleanString(f.Date)
	f.Description = core.CleanString(f.Description)
	f.Evidence = core.CleanString(f.Evidence)
	f.EvidenceFile = core.CleanString(f.EvidenceFile)
	f.Period = core.CleanString(f.Period)
	return v.check(f)
}

func (f ActivityForm) New() placement.NewActivity {
	return placement.NewActivity{
		PlacementID: f.PlacementID,
		Date:        f.Date,
		Description: f.Description,
		Evidence:    f.Evidence,
		Period:      f.Period,
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
