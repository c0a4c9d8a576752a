// Package analytics reads school level metrics and the activity feed.
// Both endpoints are restricted to school owners.
package analytics

import (
	"context"
	"strconv"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
)

var (
	metricsMsgs = transport.Messages{
		NotFound:  "School not found.",
		Forbidden: "Access denied. Only school administrators can view metrics.",
		Generic:   "Failed to load school metrics. Please try again.",
	}
	activityMsgs = transport.Messages{
		NotFound:  "School not found.",
		Forbidden: "Access denied. Only school administrators can view activity.",
		Generic:   "Failed to load school activity. Please try again.",
	}
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

func schoolPath(schoolID int) string {
	return "/accounts/schools/" + strconv.Itoa(schoolID) + "/"
}

func (svc *Service) GetSchoolMetrics(ctx context.Context, schoolID int, filter MetricsFilter) (*Metrics, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, schoolPath(schoolID)+"metrics/", filter.Values())
	if err != nil {
		return nil, metricsMsgs.Translate(err)
	}
	var m Metrics
	if err := resp.JSON(&m); err != nil {
		return nil, metricsMsgs.Translate(err)
	}
	return &m, nil
}

func (svc *Service) GetActivity(ctx context.Context, schoolID int, filter ActivityFilter) ([]Activity, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, schoolPath(schoolID)+"activity/", filter.Values())
	if err != nil {
		return nil, activityMsgs.Translate(err)
	}
	activities := make([]Activity, 0)
	if err := resp.Results(&activities); err != nil {
		return nil, activityMsgs.Translate(err)
	}
	return activities, nil
}
