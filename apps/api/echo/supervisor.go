package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/supervisor"
)

type supervisorApi struct {
	svc      *supervisor.Service
	validate *validator.Validate
}

func registerSupervisorAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := supervisorApi{
		svc:      deps.SupervisorSvc,
		validate: deps.Validate,
	}
	admin := requireRoles(account.RoleAdmin)

	sg := e.Group("/supervisores", jwt)
	sg.GET("", api.query, admin)
	sg.POST("", api.create, admin)
	sg.GET("/correo/:email", api.retrieveByEmail)
}

// Handlers

func (api *supervisorApi) query(ctx echo.Context) error {
	filter := new(supervisor.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []supervisor.Supervisor{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, "cedula", "nombre", "correo", "created_at")

	supervisors, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying supervisors")
	}
	if supervisors == nil {
		supervisors = []supervisor.Supervisor{}
	}
	return ctx.JSON(http.StatusOK, supervisors)
}

func (api *supervisorApi) create(ctx echo.Context) error {
	var data supervisor.NewSupervisor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSupervisor")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating supervisor")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *supervisorApi) retrieveByEmail(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	email := core.CleanString(pathParam(ctx, "email"), true /* lower */)
	if !(claims.IsAdmin() || (claims.Role == account.RoleSupervisor && claims.Email == email)) {
		return errHttpNotFound
	}

	s, err := api.svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		return errors.Wrap(err, "finding supervisor by email")
	}
	return ctx.JSON(http.StatusOK, s)
}
