package echoapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ayudantias/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	if len(allowed) > 0 {
		ord.Orderings = core.AllowedOrderings(ord.Orderings, allowed...)
	}
}

// intParam reads a positive integer path parameter; anything else is a 404.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

type SuccessResponse struct {
	Success interface{} `json:"success"`
}

// pathParam returns the unescaped value of a path parameter.
func pathParam(ctx echo.Context, name string) string {
	val := ctx.Param(name)
	if unescaped, err := url.PathUnescape(val); err == nil {
		return unescaped
	}
	return val
}
