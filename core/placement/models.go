package placement

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ayudantias/core"
)

// Placement (ayudantía) assigns one assistant to one supervisor.
type Placement struct {
	ID               int    `json:"id" db:"id"`
	AssistantCedula  string `json:"cedula_ayudante" db:"cedula_ayudante"`
	SupervisorCedula string `json:"cedula_supervisor" db:"cedula_supervisor"`
	Position         string `json:"plaza" db:"plaza"`
	AssistantType    string `json:"tipo_ayudante" db:"tipo_ayudante"`
	Objective        string `json:"objetivo" db:"objetivo"`
}

// Activity is a work log entry of a placement.
// Evidence is either a URL, an /uploads path, a data URL or plain text.
type Activity struct {
	ID          int       `json:"id" db:"id"`
	PlacementID int       `json:"ayudantia_id" db:"ayudantia_id"`
	Date        string    `json:"fecha" db:"fecha"` // YYYY-MM-DD
	Description string    `json:"descripcion" db:"descripcion"`
	Evidence    string    `json:"evidencia,omitempty" db:"evidencia"`
	Period      string    `json:"periodo,omitempty" db:"periodo"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Approval records that a placement was approved for a period.
type Approval struct {
	PlacementID int       `json:"ayudantia_id" db:"ayudantia_id"`
	Period      string    `json:"periodo" db:"periodo"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Window is the global evaluation window; approvals are only accepted while it is open.
type Window struct {
	Open bool `json:"abierta" db:"abierta"`
}

type Filter struct {
	AssistantCedula  string `query:"cedula_ayudante"`
	SupervisorCedula string `query:"cedula_supervisor"`
}

func (f Filter) Match(p Placement) bool {
	return (f.AssistantCedula == "" || p.AssistantCedula == f.AssistantCedula) &&
		(f.SupervisorCedula == "" || p.SupervisorCedula == f.SupervisorCedula)
}

type NewPlacement struct {
	AssistantCedula  string `json:"cedula_ayudante" validate:"required,cedula"`
	SupervisorCedula string `json:"cedula_supervisor" validate:"required,cedula"`
	Position         string `json:"plaza" validate:"required,notblank,max=150"`
	AssistantType    string `json:"tipo_ayudante" validate:"required,notblank,max=50"`
	Objective        string `json:"objetivo" validate:"max=2000"`
}

func (np *NewPlacement) Validate(validate *validator.Validate) error {
	np.AssistantCedula = core.CleanString(np.AssistantCedula)
	np.SupervisorCedula = core.CleanString(np.SupervisorCedula)
	np.Position = core.CleanString(np.Position)
	np.AssistantType = core.CleanString(np.AssistantType)
	np.Objective = core.CleanString(np.Objective)
	return validate.Struct(np)
}

type UpdateObjective struct {
	Objective string `json:"objetivo" validate:"max=2000"`
}

func (uo *UpdateObjective) Validate(validate *validator.Validate) error {
	uo.Objective = core.CleanString(uo.Objective)
	return validate.Struct(uo)
}

type NewActivity struct {
	PlacementID int    `json:"ayudantia_id" validate:"required,gt=0"`
	Date        string `json:"fecha" validate:"required,datetime=2006-01-02"`
	Description string `json:"descripcion" validate:"required,notblank,max=2000"`
	Evidence    string `json:"evidencia"`
	Period      string `json:"periodo" validate:"max=50"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Date = core.CleanString(na.Date)
	na.Description = core.CleanString(na.Description)
	na.Evidence = core.CleanString(na.Evidence)
	na.Period = core.CleanString(na.Period)
	return validate.Struct(na)
}

type NewApproval struct {
	PlacementID int    `json:"ayudantia_id" validate:"required,gt=0"`
	Period      string `json:"periodo" validate:"max=50"`
}

func (na *NewApproval) Validate(validate *validator.Validate) error {
	na.Period = core.CleanString(na.Period)
	return validate.Struct(na)
}

type UpdateWindow struct {
	Open *bool `json:"abierta" validate:"required"`
}

func (uw *UpdateWindow) Validate(validate *validator.Validate) error {
	return validate.Struct(uw)
}
