package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ownSchool returns the :id school when it belongs to the context account.
func ownSchool(ctx echo.Context) (int, error) {
	acc, err := contextAccount(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "getting context account")
	}
	id, err := pathID(ctx)
	if err != nil {
		return 0, err
	}
	if id != acc.schoolID {
		return 0, errForbidden
	}
	return id, nil
}

func (api *sandboxAPI) schoolMetrics(ctx echo.Context) error {
	if _, err := ownSchool(ctx); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.store.metrics(ctx.QueryParam("time_range")))
}

func (api *sandboxAPI) schoolActivity(ctx echo.Context) error {
	id, err := ownSchool(ctx)
	if err != nil {
		return err
	}
	var types map[string]bool
	if raw := ctx.QueryParam("activity_types"); raw != "" {
		types = make(map[string]bool)
		for _, t := range strings.Split(raw, ",") {
			types[strings.TrimSpace(t)] = true
		}
	}
	return paginated(ctx, api.store.activities(id, types, queryTime(ctx, "date_from"), queryTime(ctx, "date_to")))
}
