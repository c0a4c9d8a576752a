// Package gateway composes every domain service around one transport client.
package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/trezcool/masomo-client/core/analytics"
	"github.com/trezcool/masomo-client/core/auth"
	"github.com/trezcool/masomo-client/core/balance"
	"github.com/trezcool/masomo-client/core/notification"
	"github.com/trezcool/masomo-client/core/payment"
	"github.com/trezcool/masomo-client/core/purchase"
	"github.com/trezcool/masomo-client/core/receipt"
	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/user"
)

// Gateway is the single handle consumers use to reach the backend.
type Gateway struct {
	Auth          *auth.Service
	User          *user.Service
	Tasks         *task.Service
	Balance       *balance.Service
	Payment       *payment.Service
	Purchase      *purchase.Service
	Receipts      *receipt.Service
	Notifications *notification.Service
	Analytics     *analytics.Service

	client transport.Requester
}

// New wires every service to client; nothing is shared with other Gateways.
func New(client transport.Requester) *Gateway {
	return &Gateway{
		Auth:          auth.NewService(client),
		User:          user.NewService(client),
		Tasks:         task.NewService(client),
		Balance:       balance.NewService(client),
		Payment:       payment.NewService(client),
		Purchase:      purchase.NewService(client),
		Receipts:      receipt.NewService(client),
		Notifications: notification.NewService(client),
		Analytics:     analytics.NewService(client),
		client:        client,
	}
}

// Client returns the requester every service was built with.
func (gw *Gateway) Client() transport.Requester { return gw.client }

// Dashboard is what a signed-in home screen needs in one round.
type Dashboard struct {
	Profile      *user.Profile    `json:"profile"`
	Balance      *balance.Balance `json:"balance,omitempty"`
	PendingTasks []task.Task      `json:"pending_tasks"`
	UnreadCount  int              `json:"unread_notifications"`
}

// LoadDashboard fetches the profile, balance, pending tasks and unread count
// concurrently. The first failure cancels the other calls and is returned as is,
// so its message stays presentable.
// The balance is only loaded for students.
func (gw *Gateway) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	var dash Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := gw.User.GetProfile(gctx)
		if err != nil {
			return err
		}
		dash.Profile = p
		if !p.IsStudent() {
			return nil
		}
		b, err := gw.Balance.GetBalance(gctx)
		if err != nil {
			return err
		}
		dash.Balance = b
		return nil
	})
	g.Go(func() error {
		tasks, err := gw.Tasks.ListTasks(gctx, task.QueryFilter{Status: task.StatusPending})
		if err != nil {
			return err
		}
		dash.PendingTasks = tasks
		return nil
	})
	g.Go(func() error {
		n, err := gw.Notifications.GetUnreadCount(gctx)
		if err != nil {
			return err
		}
		dash.UnreadCount = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}
