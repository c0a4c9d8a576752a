package notification

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/transport/transporttest"
)

func TestService_ListNotifications(t *testing.T) {
	unread := false
	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, "/notifications/", url.Values{"is_read": {"false"}, "notification_type": {"low_balance"}}).
		Return(transporttest.JSON(`{"count": 1, "results": [{"id": 4, "notification_type": "low_balance", "title": "Low balance", "message": "Only 1.5 hours left.", "is_read": false, "read_at": null, "related_transaction_id": null, "created_at": "2024-09-10T08:00:00Z"}]}`), nil)

	notifs, err := NewService(client).ListNotifications(context.Background(), QueryFilter{IsRead: &unread, NotificationType: TypeLowBalance})
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Low balance", notifs[0].Title)
	assert.False(t, notifs[0].ReadAt.Valid)
}

func TestService_GetUnreadCount(t *testing.T) {
	tests := []struct {
		name    string
		resp    *transport.Response
		err     error
		want    int
		wantErr string
	}{
		{name: "ok", resp: transporttest.JSON(`{"unread_count": 3}`), want: 3},
		{name: "zero", resp: transporttest.JSON(`{"unread_count": 0}`)},
		{name: "missing field", resp: transporttest.JSON(`{}`), wantErr: "Failed to load unread notifications. Please try again."},
		{name: "misnamed field", resp: transporttest.JSON(`{"count": 3}`), wantErr: "Failed to load unread notifications. Please try again."},
		{name: "not a number", resp: transporttest.JSON(`{"unread_count": "three"}`), wantErr: "Failed to load unread notifications. Please try again."},
		{name: "network", err: transporttest.NetworkError(), wantErr: transport.MsgNetwork},
		{name: "not found", err: transporttest.HTTPError(http.StatusNotFound, ""), wantErr: "Notifications not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(transporttest.Requester)
			client.On("Get", mock.Anything, "/notifications/unread-count/", mock.Anything).Return(tt.resp, tt.err)

			n, err := NewService(client).GetUnreadCount(context.Background())
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestService_MarkAsRead(t *testing.T) {
	client := new(transporttest.Requester)
	client.On("Post", mock.Anything, "/notifications/4/mark-read/", nil).Return(transporttest.JSON(`{"success": true}`), nil)
	client.On("Post", mock.Anything, "/notifications/5/mark-read/", nil).Return(nil, transporttest.HTTPError(http.StatusNotFound, ""))
	client.On("Post", mock.Anything, "/notifications/mark-all-read/", nil).Return(transporttest.JSON(`{"marked_count": 7}`), nil)

	svc := NewService(client)
	assert.NoError(t, svc.MarkAsRead(context.Background(), 4))
	assert.EqualError(t, svc.MarkAsRead(context.Background(), 5), "Notification not found.")

	n, err := svc.MarkAllAsRead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestService_MarkAllAsRead_badBody(t *testing.T) {
	client := new(transporttest.Requester)
	client.On("Post", mock.Anything, "/notifications/mark-all-read/", nil).Return(transporttest.JSON(`{"success": true}`), nil)

	n, err := NewService(client).MarkAllAsRead(context.Background())
	assert.EqualError(t, err, "Failed to mark notifications as read. Please try again.")
	assert.Zero(t, n)
}

func TestService_ListNotifications_notFound(t *testing.T) {
	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, "/notifications/", mock.Anything).Return(nil, transporttest.HTTPError(http.StatusNotFound, ""))
	client.On("Post", mock.Anything, "/notifications/mark-all-read/", nil).Return(nil, transporttest.HTTPError(http.StatusNotFound, ""))

	svc := NewService(client)
	_, err := svc.ListNotifications(context.Background(), QueryFilter{})
	assert.EqualError(t, err, "Notifications not found.")
	_, err = svc.MarkAllAsRead(context.Background())
	assert.EqualError(t, err, "Notifications not found.")
}
