package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/placement"
)

type placementApi struct {
	svc      *placement.Service
	validate *validator.Validate
}

func registerPlacementAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := placementApi{
		svc:      deps.PlacementSvc,
		validate: deps.Validate,
	}
	admin := requireRoles(account.RoleAdmin)
	staff := requireRoles(account.RoleAdmin, account.RoleSupervisor)

	pg := e.Group("/ayudantias", jwt)
	pg.GET("", api.query, admin)
	pg.POST("", api.create, admin)
	pg.GET("/:id/objetivo", api.retrieveObjective)
	pg.PUT("/:id/objetivo", api.updateObjective, requireRoles(account.RoleAdmin, account.RoleAssistant))
	pg.GET("/supervisor/:cedula", api.queryBySupervisor, staff)
	pg.GET("/cedula/:cedula", api.retrieveByAssistant)

	ag := e.Group("/actividades", jwt)
	ag.GET("/ayudantia/:id", api.queryActivities)
	ag.POST("", api.createActivity, requireRoles(account.RoleAssistant))

	apg := e.Group("/aprobado", jwt)
	apg.GET("", api.queryApprovals, staff)
	apg.POST("", api.approve, requireRoles(account.RoleSupervisor))
	apg.GET("/periodo/:periodo", api.queryApprovals, staff)

	wg := e.Group("/ventana-aprob", jwt)
	wg.GET("", api.window)
	wg.PUT("", api.setWindow, staff)
}

// owns reports whether the claims may act on p: admins act on every placement,
// supervisors and assistants only on their own.
func owns(claims Claims, p placement.Placement, roles ...string) bool {
	for _, role := range roles {
		if claims.Role != role {
			continue
		}
		switch role {
		case account.RoleAdmin:
			return true
		case account.RoleSupervisor:
			return claims.Subject == p.SupervisorCedula
		case account.RoleAssistant:
			return claims.Subject == p.AssistantCedula
		}
	}
	return false
}

// ctxPlacement loads the placement named by the :id path parameter
// and checks the context account may act on it.
func (api *placementApi) ctxPlacement(ctx echo.Context, id int, roles ...string) (placement.Placement, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return placement.Placement{}, errors.Wrap(err, "getting context claims")
	}
	p, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return placement.Placement{}, errors.Wrap(err, "finding placement")
	}
	if !owns(claims, p, roles...) {
		return placement.Placement{}, errHttpForbidden
	}
	return p, nil
}

// Handlers

func (api *placementApi) query(ctx echo.Context) error {
	filter := new(placement.Filter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []placement.Placement{})
	}

	placements, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying placements")
	}
	return ctx.JSON(http.StatusOK, placements)
}

func (api *placementApi) create(ctx echo.Context) error {
	var data placement.NewPlacement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPlacement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Assign(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "assigning placement")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *placementApi) retrieveObjective(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.ctxPlacement(ctx, id, account.RoleAdmin, account.RoleSupervisor, account.RoleAssistant)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, placement.UpdateObjective{Objective: p.Objective})
}

func (api *placementApi) updateObjective(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.ctxPlacement(ctx, id, account.RoleAdmin, account.RoleAssistant); err != nil {
		return err
	}

	var data placement.UpdateObjective
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateObjective")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.UpdateObjective(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating objective")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *placementApi) queryBySupervisor(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	cedula := ctx.Param("cedula")
	if claims.Role == account.RoleSupervisor && claims.Subject != cedula {
		return errHttpForbidden
	}

	placements, err := api.svc.QueryBySupervisor(ctx.Request().Context(), cedula)
	if err != nil {
		return errors.Wrap(err, "querying placements by supervisor")
	}
	return ctx.JSON(http.StatusOK, placements)
}

func (api *placementApi) retrieveByAssistant(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	cedula := ctx.Param("cedula")
	if claims.Role == account.RoleAssistant && claims.Subject != cedula {
		return errHttpForbidden
	}

	p, err := api.svc.GetByAssistant(ctx.Request().Context(), cedula)
	if err != nil {
		return errors.Wrap(err, "finding placement by assistant")
	}
	if claims.Role == account.RoleSupervisor && p.SupervisorCedula != claims.Subject {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *placementApi) queryActivities(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.ctxPlacement(ctx, id, account.RoleAdmin, account.RoleSupervisor, account.RoleAssistant); err != nil {
		return err
	}

	activities, err := api.svc.Activities(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	return ctx.JSON(http.StatusOK, activities)
}

func (api *placementApi) createActivity(ctx echo.Context) error {
	var data placement.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if _, err := api.ctxPlacement(ctx, data.PlacementID, account.RoleAssistant); err != nil {
		return err
	}

	a, err := api.svc.RecordActivity(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *placementApi) queryApprovals(ctx echo.Context) error {
	approvals, err := api.svc.Approvals(ctx.Request().Context(), pathParam(ctx, "periodo"))
	if err != nil {
		return errors.Wrap(err, "querying approvals")
	}
	return ctx.JSON(http.StatusOK, approvals)
}

func (api *placementApi) approve(ctx echo.Context) error {
	var data placement.NewApproval
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApproval")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if _, err := api.ctxPlacement(ctx, data.PlacementID, account.RoleSupervisor); err != nil {
		return err
	}

	a, err := api.svc.Approve(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "approving placement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *placementApi) window(ctx echo.Context) error {
	w, err := api.svc.Window(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting evaluation window")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *placementApi) setWindow(ctx echo.Context) error {
	var data placement.UpdateWindow
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateWindow")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	w, err := api.svc.SetWindow(ctx.Request().Context(), *data.Open)
	if err != nil {
		return errors.Wrap(err, "setting evaluation window")
	}
	return ctx.JSON(http.StatusOK, w)
}
