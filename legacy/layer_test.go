package legacy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/core/transport/transporttest"
	"github.com/trezcool/masomo-client/gateway"
	"github.com/trezcool/masomo-client/storage/inmem"
)

// fakeBuild swaps buildGateway for one returning Gateways over client, counting builds.
func fakeBuild(t *testing.T, client *transporttest.KeeperRequester) *int32 {
	t.Helper()
	var builds int32
	orig := buildGateway
	buildGateway = func(core.Storage, ...gateway.Option) (*gateway.Gateway, error) {
		atomic.AddInt32(&builds, 1)
		return gateway.New(client), nil
	}
	t.Cleanup(func() { buildGateway = orig })
	return &builds
}

func TestLayer_uninitialized(t *testing.T) {
	ctx := context.Background()
	l := NewLayer()

	_, err := l.GetUserProfile(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, l.Logout(ctx), ErrNotInitialized)
	assert.ErrorIs(t, l.DeleteTask(ctx, 1), ErrNotInitialized)
	assert.False(t, l.IsAuthenticated(ctx))
	assert.Contains(t, ErrNotInitialized.Error(), "Initialize")

	l.Initialize(nil, nil)
	_, err = l.Gateway()
	assert.ErrorIs(t, err, ErrNotInitialized, "nil storage")
}

func TestLayer_states(t *testing.T) {
	ctx := context.Background()
	client := new(transporttest.KeeperRequester)
	client.On("Get", mock.Anything, "/tasks/", mock.Anything).Return(transporttest.JSON(`[]`), nil)
	builds := fakeBuild(t, client)

	l := NewLayer()
	l.Initialize(inmem.New(), nil)
	assert.Zero(t, atomic.LoadInt32(builds), "built lazily")

	first, err := l.Gateway()
	require.NoError(t, err)
	second, err := l.Gateway()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(builds))

	_, err = l.GetTasks(ctx, task.QueryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(builds))

	tests := []struct {
		name       string
		invalidate func()
	}{
		{name: "reset", invalidate: l.Reset},
		{name: "callback changed", invalidate: func() {
			l.SetAuthErrorCallback(func(context.Context) error { return nil })
		}},
		{name: "re-initialized", invalidate: func() { l.Initialize(inmem.New(), nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := atomic.LoadInt32(builds)
			tt.invalidate()
			gw, err := l.Gateway()
			require.NoError(t, err)
			assert.NotSame(t, first, gw)
			assert.Equal(t, before+1, atomic.LoadInt32(builds))
			first = gw
		})
	}
}

func TestLayer_buildOnce(t *testing.T) {
	client := new(transporttest.KeeperRequester)
	client.On("Get", mock.Anything, "/finances/pricing-plans/", mock.Anything).Return(transporttest.JSON(`[]`), nil)
	builds := fakeBuild(t, client)

	l := NewLayer()
	l.Initialize(inmem.New(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.GetPricingPlans(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(builds))
}

func TestLayer_buildFailure(t *testing.T) {
	orig := buildGateway
	buildGateway = func(core.Storage, ...gateway.Option) (*gateway.Gateway, error) {
		return nil, errors.New("bad base url")
	}
	t.Cleanup(func() { buildGateway = orig })

	l := NewLayer()
	l.Initialize(inmem.New(), nil)
	_, err := l.GetStudentBalance(context.Background())
	assert.ErrorContains(t, err, "bad base url")
	assert.False(t, l.IsAuthenticated(context.Background()))
}

func TestLayer_IsAuthenticated(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
		err   error
		want  bool
	}{
		{name: "valid", token: "abc", want: true},
		{name: "no token", token: ""},
		{name: "rejected", token: "abc", err: transporttest.HTTPError(http.StatusUnauthorized, `{"detail": "Invalid token."}`)},
		{name: "offline", token: "abc", err: transporttest.NetworkError()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(transporttest.KeeperRequester)
			require.NoError(t, client.SaveToken(ctx, tt.token))
			if tt.err != nil {
				client.On("Get", mock.Anything, "/accounts/users/me/", mock.Anything).Return(nil, tt.err)
			} else {
				client.On("Get", mock.Anything, "/accounts/users/me/", mock.Anything).Return(transporttest.JSON(`{"id": 1}`), nil)
			}
			fakeBuild(t, client)

			l := NewLayer()
			l.Initialize(inmem.New(), nil)
			assert.Equal(t, tt.want, l.IsAuthenticated(ctx))
		})
	}
}

// through the real factory: the callback given to Initialize runs on 401
func TestLayer_authErrorCallback(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Invalid token."}`))
	}))
	defer srv.Close()

	store := inmem.New()
	require.NoError(t, store.Set(ctx, core.AuthTokenKey, "stale"))

	var called int32
	l := NewLayer(gateway.WithBaseURL(srv.URL))
	l.Initialize(store, func(context.Context) error {
		atomic.AddInt32(&called, 1)
		return nil
	})

	_, err := l.GetUserProfile(ctx)
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&called))

	token, err := store.Get(ctx, core.AuthTokenKey)
	require.NoError(t, err)
	assert.Empty(t, token)
}
