package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/admin"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "account not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errEmailNotSent         = echo.NewHTTPError(http.StatusBadGateway, "the email could not be sent")

	notFoundErrs = []error{
		core.ErrFileNotFound,
		account.ErrNotFound,
		admin.ErrNotFound,
		assistant.ErrNotFound,
		supervisor.ErrNotFound,
		placement.ErrNotFound,
		academic.ErrFacultyNotFound,
		academic.ErrPeriodNotFound,
		academic.ErrNoCurrentPeriod,
	}
)

// domainHTTPError maps the sentinel errors of the core packages to HTTP errors.
func domainHTTPError(err error) *echo.HTTPError {
	for _, nf := range notFoundErrs {
		if err == nf {
			return errHttpNotFound
		}
	}
	switch err {
	case core.ErrForbidden:
		return errHttpForbidden
	case placement.ErrWindowClosed:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case account.ErrAuthenticationFailed:
		return errAuthenticationFailed
	case account.ErrUnknownRole:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if herr := domainHTTPError(cause); herr != nil {
			cause = herr
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr core.LogUser
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr = claims.logUser()
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}

			if ctx.Echo().Debug {
				message = err.Error()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
