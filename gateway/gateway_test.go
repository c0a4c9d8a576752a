package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/notification"
	"github.com/trezcool/masomo-client/core/receipt"
	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/transport/transporttest"
	"github.com/trezcool/masomo-client/storage/inmem"
)

// every service must reach the backend through the client given to New
func TestNew_sharesClient(t *testing.T) {
	ctx := context.Background()
	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(transporttest.JSON(`{}`), nil)
	client.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(transporttest.JSON(`{}`), nil)
	client.On("Do", mock.Anything, mock.Anything).Return(transporttest.JSON(`{"url": "https://x"}`), nil)

	gw := New(client)
	assert.Same(t, client, gw.Client())

	calls := []struct {
		name string
		call func() error
		path string
	}{
		{name: "auth", call: func() error { _, err := gw.Auth.RequestEmailCode(ctx, authRequest()); return err }, path: "/accounts/auth/request-code/"},
		{name: "user", call: func() error { _, err := gw.User.GetProfile(ctx); return err }, path: "/accounts/users/me/"},
		{name: "tasks", call: func() error { _, err := gw.Tasks.ListTasks(ctx, task.QueryFilter{}); return err }, path: "/tasks/"},
		{name: "balance", call: func() error { _, err := gw.Balance.GetBalance(ctx); return err }, path: "/finances/student-balance/"},
		{name: "payment", call: func() error { _, err := gw.Payment.GetPricingPlans(ctx); return err }, path: "/finances/pricing-plans/"},
		{name: "receipts", call: func() error { _, err := gw.Receipts.ListReceipts(ctx, receipt.QueryFilter{}); return err }, path: "/api/student-balance/receipts/"},
		{name: "notifications", call: func() error { _, err := gw.Notifications.ListNotifications(ctx, notification.QueryFilter{}); return err }, path: "/notifications/"},
		{name: "analytics", call: func() error { _, err := gw.Analytics.GetActivity(ctx, 1, analyticsFilter()); return err }, path: "/accounts/schools/1/activity/"},
	}
	for _, c := range calls {
		t.Run(c.name, func(t *testing.T) {
			require.NoError(t, c.call())
			found := false
			for _, call := range client.Calls {
				if p, ok := call.Arguments.Get(1).(string); ok && p == c.path {
					found = true
				}
			}
			assert.True(t, found, "no call recorded for %s", c.path)
		})
	}

	t.Run("purchase", func(t *testing.T) {
		_, err := gw.Purchase.InitiatePurchase(ctx, purchaseRequest())
		require.NoError(t, err)
		client.AssertCalled(t, "Do", mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
			return req.Path == "/finances/purchase/initiate/"
		}))
	})
}

func TestNew_isolated(t *testing.T) {
	ctx := context.Background()
	a := new(transporttest.Requester)
	b := new(transporttest.Requester)
	a.On("Get", mock.Anything, "/accounts/users/me/", url.Values(nil)).Return(transporttest.JSON(`{"id": 1}`), nil)
	b.On("Get", mock.Anything, "/accounts/users/me/", url.Values(nil)).Return(transporttest.JSON(`{"id": 2}`), nil)

	gwA, gwB := New(a), New(b)

	p, err := gwA.User.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)
	assert.Len(t, a.Calls, 1)
	assert.Empty(t, b.Calls)

	p, err = gwB.User.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ID)
	assert.Len(t, a.Calls, 1)
	assert.Len(t, b.Calls, 1)
}

func TestGateway_LoadDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("student", func(t *testing.T) {
		client := new(transporttest.Requester)
		client.On("Get", mock.Anything, "/accounts/users/me/", mock.Anything).Return(transporttest.JSON(`{"id": 3, "user_type": "student"}`), nil)
		client.On("Get", mock.Anything, "/finances/student-balance/", mock.Anything).Return(transporttest.JSON(`{"balance_summary": {"remaining_hours": 4}}`), nil)
		client.On("Get", mock.Anything, "/tasks/", url.Values{"status": {"pending"}}).Return(transporttest.JSON(`[{"id": 1}, {"id": 2}]`), nil)
		client.On("Get", mock.Anything, "/notifications/unread-count/", mock.Anything).Return(transporttest.JSON(`{"unread_count": 5}`), nil)

		dash, err := New(client).LoadDashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, dash.Profile.ID)
		require.NotNil(t, dash.Balance)
		assert.Equal(t, 4.0, dash.Balance.Summary.RemainingHours)
		assert.Len(t, dash.PendingTasks, 2)
		assert.Equal(t, 5, dash.UnreadCount)
		client.AssertExpectations(t)
	})

	t.Run("teacher skips balance", func(t *testing.T) {
		client := new(transporttest.Requester)
		client.On("Get", mock.Anything, "/accounts/users/me/", mock.Anything).Return(transporttest.JSON(`{"id": 4, "user_type": "teacher"}`), nil)
		client.On("Get", mock.Anything, "/tasks/", mock.Anything).Return(transporttest.JSON(`[]`), nil)
		client.On("Get", mock.Anything, "/notifications/unread-count/", mock.Anything).Return(transporttest.JSON(`{"unread_count": 0}`), nil)

		dash, err := New(client).LoadDashboard(ctx)
		require.NoError(t, err)
		assert.Nil(t, dash.Balance)
		client.AssertNotCalled(t, "Get", mock.Anything, "/finances/student-balance/", mock.Anything)
	})

	t.Run("first failure wins", func(t *testing.T) {
		client := new(transporttest.Requester)
		client.On("Get", mock.Anything, "/accounts/users/me/", mock.Anything).Return(nil, transporttest.HTTPError(http.StatusUnauthorized, ""))
		client.On("Get", mock.Anything, "/tasks/", mock.Anything).Return(transporttest.JSON(`[]`), nil)
		client.On("Get", mock.Anything, "/notifications/unread-count/", mock.Anything).Return(transporttest.JSON(`{"unread_count": 0}`), nil)

		_, err := New(client).LoadDashboard(ctx)
		assert.EqualError(t, err, transport.MsgUnauthorized)
	})
}

func TestBuild(t *testing.T) {
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		if r.URL.Path == "/v2/accounts/users/me/" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	ctx := context.Background()
	store := inmem.New()
	require.NoError(t, store.Set(ctx, core.AuthTokenKey, "abc"))

	var authErrors int32
	gw, client, err := Build(store,
		WithBaseURL(srv.URL+"/v2"),
		WithTimeout(time.Second),
		WithHeaders(map[string]string{"X-Client-Name": "tests"}),
		WithAuthErrorHandler(func(context.Context) error {
			atomic.AddInt32(&authErrors, 1)
			return nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/v2", client.BaseURL())
	assert.Same(t, client, gw.Client())

	_, err = gw.Tasks.ListTasks(ctx, task.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Token abc", gotHeader.Get("Authorization"))
	assert.Equal(t, "tests", gotHeader.Get("X-Client-Name"))

	_, err = gw.User.GetProfile(ctx)
	assert.EqualError(t, err, transport.MsgUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&authErrors))

	tok, err := store.Get(ctx, core.AuthTokenKey)
	require.NoError(t, err)
	assert.Empty(t, tok)

	t.Run("no storage", func(t *testing.T) {
		_, _, err := Build(nil)
		assert.Equal(t, errNoStorage, err)
	})
	t.Run("defaults", func(t *testing.T) {
		_, client, err := Build(inmem.New())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api", client.BaseURL())
	})
	t.Run("from config", func(t *testing.T) {
		conf := &core.Config{}
		conf.API.BaseURL = "https://api.masomo.cd/"
		_, client, err := BuildFromConfig(conf, inmem.New())
		require.NoError(t, err)
		assert.Equal(t, "https://api.masomo.cd", client.BaseURL())

		_, client, err = BuildFromConfig(conf, inmem.New(), WithBaseURL("http://override"))
		require.NoError(t, err)
		assert.Equal(t, "http://override", client.BaseURL())
	})
}
