package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const defaultPageSize = 20

// paginated writes items as a `{"count", "next", "previous", "results"}` page.
func paginated[T any](ctx echo.Context, items []T) error {
	page := queryInt(ctx, "page", 1)
	size := queryInt(ctx, "page_size", defaultPageSize)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}

	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	var next, prev interface{}
	if end < len(items) {
		next = pageURL(ctx, page+1)
	}
	if page > 1 {
		prev = pageURL(ctx, page-1)
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"count":    len(items),
		"next":     next,
		"previous": prev,
		"results":  items[start:end],
	})
}

func pageURL(ctx echo.Context, page int) string {
	u := *ctx.Request().URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

func queryInt(ctx echo.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(ctx.QueryParam(name)); err == nil {
		return v
	}
	return fallback
}

// queryBool returns nil when the parameter is absent or not a boolean.
func queryBool(ctx echo.Context, name string) *bool {
	b, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return nil
	}
	return &b
}

func queryTime(ctx echo.Context, name string) time.Time {
	t, _ := time.Parse(time.RFC3339, ctx.QueryParam(name))
	return t
}

// pathID parses the `:id` path parameter; a malformed id is a 404.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errNotFound
	}
	return id, nil
}
