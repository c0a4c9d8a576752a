package notification

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
)

const basePath = "/notifications/"

var (
	listMsgs    = transport.Messages{NotFound: "Notifications not found.", Generic: "Failed to load notifications. Please try again."}
	countMsgs   = transport.Messages{NotFound: "Notifications not found.", Generic: "Failed to load unread notifications. Please try again."}
	markMsgs    = transport.Messages{NotFound: "Notification not found.", Generic: "Failed to mark notification as read. Please try again."}
	markAllMsgs = transport.Messages{NotFound: "Notifications not found.", Generic: "Failed to mark notifications as read. Please try again."}
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

func (svc *Service) ListNotifications(ctx context.Context, filter QueryFilter) ([]Notification, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, basePath, filter.Values())
	if err != nil {
		return nil, listMsgs.Translate(err)
	}
	notifs := make([]Notification, 0)
	if err := resp.Results(&notifs); err != nil {
		return nil, listMsgs.Translate(err)
	}
	return notifs, nil
}

func (svc *Service) GetUnreadCount(ctx context.Context) (int, error) {
	resp, err := svc.client.Get(ctx, basePath+"unread-count/", nil)
	if err != nil {
		return 0, countMsgs.Translate(err)
	}
	n, err := countField(resp, "unread_count")
	if err != nil {
		return 0, countMsgs.Translate(err)
	}
	return n, nil
}

func (svc *Service) MarkAsRead(ctx context.Context, id int) error {
	_, err := svc.client.Post(ctx, basePath+strconv.Itoa(id)+"/mark-read/", nil)
	return markMsgs.Translate(err)
}

// MarkAllAsRead returns how many notifications were updated.
func (svc *Service) MarkAllAsRead(ctx context.Context) (int, error) {
	resp, err := svc.client.Post(ctx, basePath+"mark-all-read/", nil)
	if err != nil {
		return 0, markAllMsgs.Translate(err)
	}
	n, err := countField(resp, "marked_count")
	if err != nil {
		return 0, markAllMsgs.Translate(err)
	}
	return n, nil
}

func countField(resp *transport.Response, field string) (int, error) {
	res := gjson.GetBytes(resp.Body, field)
	if !res.Exists() || res.Type != gjson.Number {
		return 0, errors.Errorf("decoding response: %q missing or not a number", field)
	}
	return int(res.Int()), nil
}
