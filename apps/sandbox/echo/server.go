// Package echoapi is a sandbox backend serving the Masomo API from memory, for local
// development and end-to-end tests of the client.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/user"
)

type (
	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool
		Logger         core.Logger
		Now            func() time.Time

		// minimum delay between two verification codes for one email; 0 disables it
		CodeRequestInterval time.Duration
	}

	Server struct {
		opts     *Options
		app      *echo.Echo
		store    *Store
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(opts *Options) *Server {
	if opts.Logger == nil {
		opts.Logger = core.NopLogger{}
	}
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		store:    NewStore(opts.Now),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in debug mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(ctx echo.Context, id string) { ctx.Set("request_id", id) },
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	api := &sandboxAPI{store: s.store, opts: s.opts}
	g := s.app.Group("/api")
	authed := tokenAuthMiddleware(s.store)
	students := roleMiddleware(user.RoleStudent)

	// accounts
	g.POST("/accounts/auth/request-code/", api.requestCode)
	g.POST("/accounts/auth/verify-code/", api.verifyCode)
	g.POST("/accounts/users/signup/", api.signup)
	g.POST("/accounts/auth/logout/", api.logout, authed)
	g.GET("/accounts/users/", api.listUsers, authed, roleMiddleware(user.RoleSchoolOwner, user.RoleTeacher))
	g.GET("/accounts/users/me/", api.me, authed)
	g.PATCH("/accounts/users/me/", api.updateMe, authed)
	g.GET("/accounts/users/:id/", api.retrieveUser, authed)

	owners := g.Group("/accounts/schools/:id", authed, roleMiddleware(user.RoleSchoolOwner))
	owners.GET("/metrics/", api.schoolMetrics)
	owners.GET("/activity/", api.schoolActivity)

	// tasks
	tg := g.Group("/tasks", authed)
	tg.GET("/", api.listTasks)
	tg.POST("/", api.createTask)
	tg.GET("/:id/", api.retrieveTask)
	tg.PATCH("/:id/", api.updateTask)
	tg.DELETE("/:id/", api.deleteTask)
	tg.POST("/:id/complete/", api.completeTask)

	// finances
	fg := g.Group("/finances", authed)
	fg.GET("/pricing-plans/", api.pricingPlans)
	fg.GET("/stripe-config/", api.stripeConfig)
	fg.GET("/student-balance/", api.studentBalance, students)
	fg.GET("/student-balance/history/", api.transactionHistory, students)
	fg.GET("/student-balance/purchases/", api.purchaseHistory, students)
	fg.GET("/payment-methods/", api.paymentMethods, students)
	fg.POST("/payment-methods/:id/set-default/", api.setDefaultMethod, students)
	fg.DELETE("/payment-methods/:id/", api.deleteMethod, students)
	fg.POST("/purchase/initiate/", api.initiatePurchase, students)
	fg.POST("/purchase/renew/", api.renewSubscription, students)
	fg.GET("/purchase/status/:id/", api.purchaseStatus, students)

	// receipts
	rg := g.Group("/api/student-balance/receipts", authed, students)
	rg.GET("/", api.listReceipts)
	rg.POST("/generate/", api.generateReceipt)
	rg.GET("/:id/", api.retrieveReceipt)
	rg.GET("/:id/download/", api.downloadReceipt)

	// notifications
	ng := g.Group("/notifications", authed)
	ng.GET("/", api.listNotifications)
	ng.GET("/unread-count/", api.unreadCount)
	ng.POST("/:id/mark-read/", api.markRead)
	ng.POST("/mark-all-read/", api.markAllRead)
}

// Store exposes the data behind the server (seeding, simulated consumption).
func (s *Server) Store() *Store { return s.store }

// PendingCode returns the last verification code sent to email.
func (s *Server) PendingCode(email string) (string, bool) {
	return s.store.PendingCode(email)
}

// Start serves until Shutdown; startup failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Masomo sandbox API!")
}
