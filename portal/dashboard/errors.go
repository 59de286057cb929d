// Package dashboard holds the state and actions of the admin, assistant and
// supervisor portals, on top of the API client.
package dashboard

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/portal/api"
	"github.com/trezcool/ayudantias/portal/forms"
)

// User facing messages
const (
	MsgCedulaTaken     = "La cédula ya está registrada."
	MsgEmailTaken      = "El correo ya está registrado."
	MsgInvalid         = "Revisa los datos del formulario."
	MsgNetwork         = "No se pudo conectar con el servidor. Intenta nuevamente."
	MsgServer          = "Ocurrió un error en el servidor. Intenta nuevamente."
	MsgSessionExpired  = "Tu sesión expiró. Inicia sesión nuevamente."
	MsgForbidden       = "No tienes permiso para realizar esta acción."
	MsgNotFound        = "El registro no existe."
	MsgWindowClosed    = "La ventana de evaluación está cerrada."
	MsgAlreadyApproved = "La ayudantía ya fue aprobada en este periodo."
	MsgNoPeriod        = "No hay un periodo académico actual."
	MsgNoPlacement     = "Aún no tienes una ayudantía asignada."
)

// Failure is an action that did not go through. Message is meant for the user;
// Fields holds the offending form fields, if any.
type Failure struct {
	Message string
	Fields  forms.Errors
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

func invalid(errs forms.Errors) *Failure {
	return &Failure{Message: MsgInvalid, Fields: errs}
}

// fail wraps err into a Failure with the message a user should see for it.
// The API field key of a validation error is its code: forms are checked locally
// before they are sent, so a cedula or correo error left is a duplicate.
func fail(err error) *Failure {
	var (
		tErr   *api.TransportError
		apiErr *api.APIError
		f      *Failure
	)
	switch {
	case errors.As(err, &f):
		return f
	case errors.As(err, &tErr):
		return &Failure{Message: MsgNetwork, Err: err}
	case errors.As(err, &apiErr):
		f = &Failure{Message: apiMessage(apiErr), Err: err}
		if f.Message == MsgInvalid {
			f.Fields = apiErr.Fields
		}
		return f
	default:
		return &Failure{Message: MsgServer, Err: err}
	}
}

func apiMessage(apiErr *api.APIError) string {
	switch {
	case apiErr.Has("cedula"):
		return MsgCedulaTaken
	case apiErr.Has("correo"):
		return MsgEmailTaken
	case len(apiErr.Fields) > 0:
		return MsgInvalid
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return MsgSessionExpired
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		return MsgNotFound
	}
	return MsgServer
}

// Describe renders a failure with its field errors, one per line.
func Describe(err error) string {
	f := fail(err)
	if len(f.Fields) == 0 {
		return f.Message
	}
	var sb strings.Builder
	sb.WriteString(f.Message)
	for field, msg := range f.Fields {
		sb.WriteString("\n  " + field + ": " + msg)
	}
	return sb.String()
}
