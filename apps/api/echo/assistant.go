package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/assistant"
)

type assistantApi struct {
	svc      *assistant.Service
	validate *validator.Validate
}

func registerAssistantAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := assistantApi{
		svc:      deps.AssistantSvc,
		validate: deps.Validate,
	}
	admin := requireRoles(account.RoleAdmin)

	ag := e.Group("/ayudantes", jwt)
	ag.GET("", api.query, requireRoles(account.RoleAdmin, account.RoleSupervisor))
	ag.POST("", api.create, admin)
	ag.PUT("", api.update, admin)
	ag.GET("/:cedula", api.retrieve)
	ag.GET("/correo/:email", api.retrieveByEmail)
}

// Handlers

func (api *assistantApi) query(ctx echo.Context) error {
	filter := new(assistant.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assistant.Assistant{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, "cedula", "nombre", "correo", "nivel", "facultad", "created_at")

	assistants, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assistants")
	}
	if assistants == nil {
		assistants = []assistant.Assistant{}
	}
	return ctx.JSON(http.StatusOK, assistants)
}

func (api *assistantApi) create(ctx echo.Context) error {
	var data assistant.NewAssistant
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssistant")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assistant")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assistantApi) update(ctx echo.Context) error {
	var data assistant.UpdateAssistant
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssistant")
	}
	cedula := core.CleanString(data.Cedula)
	if cedula == "" {
		return core.NewFieldValidationError("cedula", errors.New("this field is required"))
	}

	orig, err := api.svc.GetByCedula(ctx.Request().Context(), cedula)
	if err != nil {
		return errors.Wrap(err, "finding assistant by cedula")
	}
	if err = data.Validate(ctx.Request().Context(), orig, api.validate, api.svc); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating assistant")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assistantApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	cedula := ctx.Param("cedula")
	if claims.Role == account.RoleAssistant && claims.Subject != cedula {
		return errHttpNotFound
	}

	a, err := api.svc.GetByCedula(ctx.Request().Context(), cedula)
	if err != nil {
		return errors.Wrap(err, "finding assistant by cedula")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assistantApi) retrieveByEmail(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	email := core.CleanString(pathParam(ctx, "email"), true /* lower */)
	if !(claims.IsAdmin() || (claims.Role == account.RoleAssistant && claims.Email == email)) {
		return errHttpNotFound
	}

	a, err := api.svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		return errors.Wrap(err, "finding assistant by email")
	}
	return ctx.JSON(http.StatusOK, a)
}
