package academic

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ayudantias/core"
)

type Faculty struct {
	Name string `json:"nombre" db:"nombre"`
}

type Major struct {
	Name    string `json:"nombre" db:"nombre"`
	Faculty string `json:"facultad" db:"facultad"`
}

// Period is an academic term. Exactly one period is current at any time.
type Period struct {
	Name    string `json:"nombre" db:"nombre"`
	Current bool   `json:"actual" db:"actual"`
}

type NewFaculty struct {
	Name string `json:"nombre" validate:"required,notblank,max=150"`
}

func (nf *NewFaculty) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	return validate.Struct(nf)
}

type NewMajor struct {
	Name string `json:"nombre" validate:"required,notblank,max=150"`
}

func (nm *NewMajor) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	return validate.Struct(nm)
}

type NewPeriod struct {
	Name    string `json:"nombre" validate:"required,notblank,max=50"`
	Current bool   `json:"actual"`
}

func (np *NewPeriod) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	return validate.Struct(np)
}
