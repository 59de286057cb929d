package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/account"
)

type academicApi struct {
	svc      *academic.Service
	validate *validator.Validate
}

func registerAcademicAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := academicApi{
		svc:      deps.AcademicSvc,
		validate: deps.Validate,
	}
	admin := requireRoles(account.RoleAdmin)

	// faculties are public: the forms need them before login
	fg := e.Group("/facultades")
	fg.GET("", api.queryFaculties)
	fg.GET("/:nombre/carreras", api.queryMajors)
	fg.POST("", api.createFaculty, jwt, admin)
	fg.POST("/:nombre/carreras", api.createMajor, jwt, admin)

	pg := e.Group("/periodos", jwt)
	pg.GET("", api.queryPeriods)
	pg.GET("/actual", api.currentPeriod)
	pg.POST("", api.createPeriod, admin)
	pg.PUT("/:nombre/actual", api.setCurrentPeriod, admin)
}

// Handlers

func (api *academicApi) queryFaculties(ctx echo.Context) error {
	faculties, err := api.svc.QueryFaculties(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying faculties")
	}
	if faculties == nil {
		faculties = []academic.Faculty{}
	}
	return ctx.JSON(http.StatusOK, faculties)
}

func (api *academicApi) createFaculty(ctx echo.Context) error {
	var data academic.NewFaculty
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFaculty")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fac, err := api.svc.CreateFaculty(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating faculty")
	}
	return ctx.JSON(http.StatusCreated, fac)
}

func (api *academicApi) queryMajors(ctx echo.Context) error {
	majors, err := api.svc.QueryMajors(ctx.Request().Context(), pathParam(ctx, "nombre"))
	if err != nil {
		return errors.Wrap(err, "querying majors")
	}
	if majors == nil {
		majors = []academic.Major{}
	}
	return ctx.JSON(http.StatusOK, majors)
}

func (api *academicApi) createMajor(ctx echo.Context) error {
	var data academic.NewMajor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMajor")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	major, err := api.svc.CreateMajor(ctx.Request().Context(), pathParam(ctx, "nombre"), data)
	if err != nil {
		return errors.Wrap(err, "creating major")
	}
	return ctx.JSON(http.StatusCreated, major)
}

func (api *academicApi) queryPeriods(ctx echo.Context) error {
	periods, err := api.svc.QueryPeriods(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying periods")
	}
	if periods == nil {
		periods = []academic.Period{}
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *academicApi) currentPeriod(ctx echo.Context) error {
	p, err := api.svc.CurrentPeriod(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting current period")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *academicApi) createPeriod(ctx echo.Context) error {
	var data academic.NewPeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPeriod")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.CreatePeriod(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating period")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *academicApi) setCurrentPeriod(ctx echo.Context) error {
	p, err := api.svc.SetCurrentPeriod(ctx.Request().Context(), pathParam(ctx, "nombre"))
	if err != nil {
		return errors.Wrap(err, "setting current period")
	}
	return ctx.JSON(http.StatusOK, p)
}
