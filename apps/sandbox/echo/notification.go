package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func (api *sandboxAPI) listNotifications(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	filter := notificationFilter{
		NotificationType: ctx.QueryParam("notification_type"),
		IsRead:           queryBool(ctx, "is_read"),
	}
	return paginated(ctx, api.store.notifications(acc.profile.ID, filter))
}

func (api *sandboxAPI) unreadCount(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"unread_count": api.store.unreadCount(acc.profile.ID)})
}

func (api *sandboxAPI) markRead(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if _, ok := api.store.markRead(acc.profile.ID, id); !ok {
		return errNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read."})
}

func (api *sandboxAPI) markAllRead(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	n, _ := api.store.markRead(acc.profile.ID, 0)
	return ctx.JSON(http.StatusOK, echo.Map{"marked_count": n})
}
