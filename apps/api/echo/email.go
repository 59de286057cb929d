package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
)

type emailApi struct {
	svc      core.EmailService
	validate *validator.Validate
	logger   core.Logger
}

func registerEmailAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := emailApi{
		svc:      deps.MailSvc,
		validate: deps.Validate,
		logger:   deps.Logger,
	}

	e.POST("/api/send-email", api.send, jwt)
}

type SendEmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,notblank,max=250"`
	HTML    string `json:"html" validate:"required,notblank"`
}

func (r *SendEmailRequest) Validate(validate *validator.Validate) error {
	r.To = core.CleanString(r.To, true /* lower */)
	r.Subject = core.CleanString(r.Subject)
	return validate.Struct(r)
}

// Handlers

func (api *emailApi) send(ctx echo.Context) error {
	var data SendEmailRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendEmailRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:          []mail.Address{{Address: data.To}},
		Subject:     data.Subject,
		HTMLContent: data.HTML,
	}
	if err := api.svc.Send(ctx.Request().Context(), msg); err != nil {
		var usr core.LogUser
		if claims, cErr := getContextClaims(ctx); cErr == nil {
			usr = claims.logUser()
		}
		api.logger.Error("relaying email", errors.Wrap(err, "relaying email"), usr)
		return errEmailNotSent
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}
