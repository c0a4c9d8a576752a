package notification

import (
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"
)

// Notification types
const (
	TypeLowBalance        = "low_balance"
	TypeRenewalReminder   = "renewal_reminder"
	TypePurchaseConfirmed = "purchase_confirmation"
	TypeBalanceDepleted   = "balance_depleted"
	TypePackageExpiring   = "package_expiring"
)

type Notification struct {
	ID                   int       `json:"id"`
	NotificationType     string    `json:"notification_type"`
	Title                string    `json:"title"`
	Message              string    `json:"message"`
	IsRead               bool      `json:"is_read"`
	ReadAt               null.Time `json:"read_at"`
	RelatedTransactionID null.Int  `json:"related_transaction_id"`
	CreatedAt            time.Time `json:"created_at"`
}

type QueryFilter struct {
	NotificationType string
	IsRead           *bool
	Page             int `validate:"gte=0"`
	PageSize         int `validate:"gte=0,lte=100"`
}

func (qf QueryFilter) Values() url.Values {
	v := make(url.Values)
	if qf.NotificationType != "" {
		v.Set("notification_type", qf.NotificationType)
	}
	if qf.IsRead != nil {
		v.Set("is_read", strconv.FormatBool(*qf.IsRead))
	}
	if qf.Page > 0 {
		v.Set("page", strconv.Itoa(qf.Page))
	}
	if qf.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(qf.PageSize))
	}
	return v
}
