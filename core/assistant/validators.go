package assistant

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ayudantias/core/account"
)

// InitValidators registers the struct level validations of this package.
func InitValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(assistantStructValidation, NewAssistant{}, UpdateAssistant{})
}

// assistantStructValidation applies the password policy on NewAssistant and UpdateAssistant.
func assistantStructValidation(sl validator.StructLevel) {
	switch a := sl.Current().Interface().(type) {
	case NewAssistant:
		if a.Password != "" {
			account.ReportPassword(sl, a.Password, a.Name, a.Email, a.Cedula)
		}
	case UpdateAssistant:
		if a.Password != "" {
			account.ReportPassword(sl, a.Password, a.Name, a.Email, a.Cedula)
		}
	}
}
