package tests

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/masomo-client/apps/sandbox/echo"
	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/auth"
	"github.com/trezcool/masomo-client/gateway"
	"github.com/trezcool/masomo-client/storage/inmem"
)

var (
	app *echoapi.Server
	srv *httptest.Server
	seq int32
)

func TestMain(m *testing.M) {
	app = echoapi.NewServer(&echoapi.Options{DisableReqLogs: true})
	srv = httptest.NewServer(app)

	code := m.Run()

	srv.Close()
	os.Exit(code)
}

type client struct {
	*gateway.Gateway
	storage core.Storage
	authErr int32
}

// newClient returns a signed out client of the sandbox with its own storage.
func newClient(t *testing.T) *client {
	t.Helper()
	c := &client{storage: inmem.New()}
	gw, _, err := gateway.Build(c.storage,
		gateway.WithBaseURL(srv.URL+"/api"),
		gateway.WithAuthErrorHandler(func(context.Context) error {
			atomic.AddInt32(&c.authErr, 1)
			return nil
		}),
	)
	require.NoError(t, err)
	c.Gateway = gw
	return c
}

// uniqueEmail keeps tests independent on the shared server.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s.%d@masomo.test", prefix, atomic.AddInt32(&seq, 1))
}

// signup registers a new account and leaves the client signed in.
func signup(t *testing.T, role string) (*client, *auth.Session) {
	t.Helper()
	c := newClient(t)
	s := auth.Signup{Name: "Test " + role, Email: uniqueEmail(role), UserType: role}
	if role == "school_owner" {
		s.SchoolName = "Escola Kiame"
	}
	sess, err := c.Auth.Signup(context.Background(), s)
	require.NoError(t, err)
	return c, sess
}
