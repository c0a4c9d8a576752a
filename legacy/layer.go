// Package legacy keeps the old flat API call sites working on top of the Gateway.
package legacy

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/auth"
	"github.com/trezcool/masomo-client/core/balance"
	"github.com/trezcool/masomo-client/core/notification"
	"github.com/trezcool/masomo-client/core/payment"
	"github.com/trezcool/masomo-client/core/purchase"
	"github.com/trezcool/masomo-client/core/receipt"
	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/user"
	"github.com/trezcool/masomo-client/gateway"
)

var ErrNotInitialized = errors.New("legacy API layer not initialized: call Initialize before use")

var buildGateway = func(storage core.Storage, opts ...gateway.Option) (*gateway.Gateway, error) { // mockable
	gw, _, err := gateway.Build(storage, opts...)
	return gw, err
}

// Layer lazily builds one Gateway and exposes it through the old function names.
//
// States: uninitialized, initialized without a Gateway, initialized with a cached
// Gateway. Initialize, SetAuthErrorCallback and Reset drop the cached Gateway.
type Layer struct {
	mu          sync.Mutex
	storage     core.Storage
	onAuthError transport.AuthErrorHandler
	opts        []gateway.Option
	gw          *gateway.Gateway
}

// NewLayer returns an uninitialized Layer; opts are passed to every Gateway it builds.
func NewLayer(opts ...gateway.Option) *Layer {
	return &Layer{opts: opts}
}

func (l *Layer) Initialize(storage core.Storage, onAuthError transport.AuthErrorHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.storage = storage
	l.onAuthError = onAuthError
	l.gw = nil
}

func (l *Layer) SetAuthErrorCallback(onAuthError transport.AuthErrorHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAuthError = onAuthError
	l.gw = nil
}

// Reset drops the cached Gateway; the Layer stays initialized.
func (l *Layer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gw = nil
}

// Gateway returns the cached Gateway, building it on first use.
func (l *Layer) Gateway() (*gateway.Gateway, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.storage == nil {
		return nil, ErrNotInitialized
	}
	if l.gw != nil {
		return l.gw, nil
	}

	opts := make([]gateway.Option, 0, len(l.opts)+1)
	opts = append(opts, l.opts...)
	if l.onAuthError != nil {
		opts = append(opts, gateway.WithAuthErrorHandler(l.onAuthError))
	}
	gw, err := buildGateway(l.storage, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "building gateway")
	}
	l.gw = gw
	return gw, nil
}

func (l *Layer) RequestEmailCode(ctx context.Context, email string) (*auth.CodeRequested, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Auth.RequestEmailCode(ctx, auth.RequestCode{Email: email})
}

func (l *Layer) VerifyEmailCode(ctx context.Context, email, code string) (*auth.Session, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Auth.VerifyEmailCode(ctx, auth.VerifyCode{Email: email, Code: code})
}

// IsAuthenticated reports whether the stored token is accepted; any failure means false.
func (l *Layer) IsAuthenticated(ctx context.Context) bool {
	gw, err := l.Gateway()
	if err != nil {
		return false
	}
	_, err = gw.Auth.ValidateToken(ctx)
	return err == nil
}

func (l *Layer) Logout(ctx context.Context) error {
	gw, err := l.Gateway()
	if err != nil {
		return err
	}
	return gw.Auth.Logout(ctx)
}

func (l *Layer) GetUserProfile(ctx context.Context) (*user.Profile, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.User.GetProfile(ctx)
}

func (l *Layer) UpdateUserProfile(ctx context.Context, up user.UpdateProfile) (*user.Profile, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.User.UpdateProfile(ctx, up)
}

func (l *Layer) GetTasks(ctx context.Context, filter task.QueryFilter) ([]task.Task, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Tasks.ListTasks(ctx, filter)
}

func (l *Layer) CreateTask(ctx context.Context, nt task.NewTask) (*task.Task, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Tasks.CreateTask(ctx, nt)
}

func (l *Layer) UpdateTask(ctx context.Context, id int, ut task.UpdateTask) (*task.Task, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Tasks.UpdateTask(ctx, id, ut)
}

func (l *Layer) DeleteTask(ctx context.Context, id int) error {
	gw, err := l.Gateway()
	if err != nil {
		return err
	}
	return gw.Tasks.DeleteTask(ctx, id)
}

func (l *Layer) CompleteTask(ctx context.Context, id int) (*task.Task, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Tasks.CompleteTask(ctx, id)
}

func (l *Layer) GetStudentBalance(ctx context.Context) (*balance.Balance, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Balance.GetBalance(ctx)
}

func (l *Layer) GetPricingPlans(ctx context.Context) ([]payment.PricingPlan, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Payment.GetPricingPlans(ctx)
}

func (l *Layer) InitiatePurchase(ctx context.Context, in purchase.Initiate) (*purchase.Result, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Purchase.InitiatePurchase(ctx, in)
}

func (l *Layer) RenewSubscription(ctx context.Context, r purchase.Renew) (*purchase.Result, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Purchase.RenewSubscription(ctx, r)
}

func (l *Layer) GetReceipts(ctx context.Context, filter receipt.QueryFilter) ([]receipt.Receipt, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Receipts.ListReceipts(ctx, filter)
}

func (l *Layer) DownloadReceipt(ctx context.Context, id int) (*receipt.Download, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Receipts.DownloadReceipt(ctx, id)
}

func (l *Layer) GetNotifications(ctx context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	gw, err := l.Gateway()
	if err != nil {
		return nil, err
	}
	return gw.Notifications.ListNotifications(ctx, filter)
}

func (l *Layer) MarkNotificationAsRead(ctx context.Context, id int) error {
	gw, err := l.Gateway()
	if err != nil {
		return err
	}
	return gw.Notifications.MarkAsRead(ctx, id)
}
