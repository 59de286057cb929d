package echoapi

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
)

const (
	uploadField   = "file"
	uploadMaxSize = "10M"
)

var errMissingFile = errors.New("a file is required")

type uploadApi struct {
	files core.FileStorage
}

func registerUploadAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := uploadApi{files: deps.Files}

	ug := e.Group("/uploads", jwt)
	ug.POST("", api.upload, requireRoles(account.RoleAssistant), middleware.BodyLimit(uploadMaxSize))
	ug.GET("/:key", api.download)
}

type UploadResponse struct {
	URL string `json:"url"`
}

// Handlers

func (api *uploadApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		return core.NewFieldValidationError(uploadField, errMissingFile)
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = src.Close() }()

	url, err := api.files.Save(ctx.Request().Context(), uploadKey(fh.Filename), src)
	if err != nil {
		return errors.Wrap(err, "saving uploaded file")
	}
	return ctx.JSON(http.StatusCreated, UploadResponse{URL: url})
}

func (api *uploadApi) download(ctx echo.Context) error {
	key := ctx.Param("key")
	r, err := api.files.Open(ctx.Request().Context(), key)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer func() { _ = r.Close() }()

	ctype := mime.TypeByExtension(filepath.Ext(key))
	if ctype == "" {
		ctype = echo.MIMEOctetStream
	}
	return ctx.Stream(http.StatusOK, ctype, r)
}

// uploadKey names a stored file with a random ID, keeping the original extension.
func uploadKey(filename string) string {
	key := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext != "" && core.ValidUploadKey(ext) && len(ext) <= 10 {
		key += ext
	}
	return key
}
