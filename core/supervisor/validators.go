package supervisor

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ayudantias/core/account"
)

// InitValidators registers the struct level validations of this package.
func InitValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		if ns, ok := sl.Current().Interface().(NewSupervisor); ok && ns.Password != "" {
			account.ReportPassword(sl, ns.Password, ns.Name, ns.Email, ns.Cedula)
		}
	}, NewSupervisor{})
}
