package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
)

type accountApi struct {
	auth     *authenticator
	svc      *account.Service
	validate *validator.Validate
	logger   core.Logger
}

func registerAccountAPI(e *echo.Echo, jwt echo.MiddlewareFunc, auth *authenticator, deps ServerDeps) {
	api := accountApi{
		auth:     auth,
		svc:      deps.AccountSvc,
		validate: deps.Validate,
		logger:   deps.Logger,
	}

	// un-authed endpoints
	e.POST("/admin/login", api.login(account.RoleAdmin))
	e.POST("/ayudantes/login", api.login(account.RoleAssistant))
	e.POST("/supervisores/login", api.login(account.RoleSupervisor))

	ag := e.Group("/auth")
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt)
}

// Handlers

func (api *accountApi) login(role string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data LoginRequest
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to LoginRequest")
		}
		if err := data.Validate(api.validate); err != nil {
			return err
		}

		acc, err := api.svc.Authenticate(ctx.Request().Context(), role, data.Email, data.Password)
		if err != nil {
			return errors.Wrap(err, "authenticating")
		}
		claims := NewClaims(acc, api.auth.conf)
		token, err := GenerateToken(claims, api.auth.conf)
		if err != nil {
			return errors.Wrap(err, "generating token")
		}

		return ctx.JSON(http.StatusOK, newLoginResponse(token, *claims))
	}
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, claims, err := api.auth.refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, newLoginResponse(token, claims))
}

func (api *accountApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Role, data.Email)
	if !(err == nil || errors.Cause(err) == account.ErrNotFound) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "Si el correo pertenece a una cuenta registrada, recibirá en breve las instrucciones " +
			"para restablecer su contraseña.",
	})
}

func (api *accountApi) confirmPasswordReset(ctx echo.Context) error {
	var data account.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "La contraseña ha sido restablecida."})
}

type (
	LoginRequest struct {
		Email    string `json:"correo" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// LoginResponse carries the session token and the identity it was issued for.
	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"rol"`
		Email string `json:"correo"`
		Name  string `json:"nombre"`
		ID    string `json:"id"`
	}

	PasswordResetRequest struct {
		Email string `json:"correo" validate:"required,email"`
		Role  string `json:"rol" validate:"required,oneof=admin supervisor ayudante"`
	}
)

func newLoginResponse(token string, claims Claims) LoginResponse {
	return LoginResponse{
		Token: token,
		Role:  claims.Role,
		Email: claims.Email,
		Name:  claims.Name,
		ID:    claims.Subject,
	}
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	pr.Role = core.CleanString(pr.Role, true /* lower */)
	return validate.Struct(pr)
}
