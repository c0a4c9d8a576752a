package analytics

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/transport/transporttest"
)

func TestService_GetSchoolMetrics(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr string
	}{
		{name: "ok"},
		{name: "not owner", err: transporttest.HTTPError(http.StatusForbidden, `{"detail": "You do not have permission."}`), wantErr: "Access denied. Only school administrators can view metrics."},
		{name: "unknown school", err: transporttest.HTTPError(http.StatusNotFound, ""), wantErr: "School not found."},
		{name: "network", err: transporttest.NetworkError(), wantErr: transport.MsgNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *transport.Response
			if tt.err == nil {
				resp = transporttest.JSON(`{
					"user_metrics": {"total_teachers": 4, "total_students": 40, "active_teachers": 3, "active_students": 31},
					"class_metrics": {"total_classes": 120, "completed_classes": 100, "completion_rate": 83.3},
					"engagement_metrics": {"invitations_sent": 10, "invitations_accepted": 8, "acceptance_rate": 80}
				}`)
			}
			client := new(transporttest.Requester)
			client.On("Get", mock.Anything, "/accounts/schools/1/metrics/", url.Values{"time_range": {"month"}}).Return(resp, tt.err)

			m, err := NewService(client).GetSchoolMetrics(context.Background(), 1, MetricsFilter{TimeRange: RangeMonth})
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 40, m.UserMetrics.TotalStudents)
			assert.Equal(t, 83.3, m.ClassMetrics.CompletionRate)
			assert.Equal(t, 8, m.EngagementMetrics.InvitationsAccepted)
		})
	}

	t.Run("bad range", func(t *testing.T) {
		_, err := NewService(new(transporttest.Requester)).GetSchoolMetrics(context.Background(), 1, MetricsFilter{TimeRange: "year"})
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_GetActivity(t *testing.T) {
	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)

	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, "/accounts/schools/1/activity/", url.Values{
		"activity_types": {"invitation_sent,class_created"},
		"date_from":      {"2024-09-01T00:00:00Z"},
		"date_to":        {"2024-09-30T00:00:00Z"},
	}).Return(transporttest.JSON(`{"results": [{"id": "a1", "activity_type": "class_created", "actor": {"id": 2, "name": "Teacher T", "role": "teacher"}, "timestamp": "2024-09-12T10:00:00Z"}], "pagination": {"count": 1}}`), nil)

	acts, err := NewService(client).GetActivity(context.Background(), 1, ActivityFilter{
		ActivityTypes: []string{"invitation_sent", "class_created"},
		DateFrom:      from,
		DateTo:        to,
	})
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "Teacher T", acts[0].Actor.Name)

	t.Run("inverted dates", func(t *testing.T) {
		_, err := NewService(client).GetActivity(context.Background(), 1, ActivityFilter{DateFrom: to, DateTo: from})
		assert.True(t, core.IsValidationError(err))
	})
}
