package balance

import (
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"
)

// Transaction types
const (
	TransactionPurchase    = "purchase"
	TransactionConsumption = "consumption"
	TransactionRefund      = "refund"
	TransactionAdjustment  = "adjustment"
)

type StudentInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Summary struct {
	HoursPurchased float64   `json:"hours_purchased"`
	HoursConsumed  float64   `json:"hours_consumed"`
	RemainingHours float64   `json:"remaining_hours"`
	BalanceAmount  float64   `json:"balance_amount"`
	NextExpiryDate null.Time `json:"next_expiry_date"`
}

// Balance is the student's hour balance snapshot.
type Balance struct {
	Student StudentInfo `json:"student_info"`
	Summary Summary     `json:"balance_summary"`
}

// IsLow reports whether fewer than threshold hours remain.
func (b Balance) IsLow(threshold float64) bool {
	return b.Summary.RemainingHours < threshold
}

type Transaction struct {
	ID              int         `json:"id"`
	TransactionType string      `json:"transaction_type"`
	Hours           float64     `json:"hours"`
	Amount          float64     `json:"amount"`
	Description     string      `json:"description"`
	ClassSessionID  null.Int    `json:"class_session_id"`
	PaymentIntentID null.String `json:"payment_intent_id"`
	CreatedAt       time.Time   `json:"created_at"`
}

type Purchase struct {
	ID              int       `json:"id"`
	PlanName        string    `json:"plan_name"`
	HoursIncluded   float64   `json:"hours_included"`
	HoursConsumed   float64   `json:"hours_consumed"`
	AmountPaid      float64   `json:"amount_paid"`
	PaymentStatus   string    `json:"payment_status"`
	IsActive        bool      `json:"is_active"`
	PurchasedAt     time.Time `json:"purchase_date"`
	ExpiresAt       null.Time `json:"expires_at"`
	PaymentIntentID string    `json:"payment_intent_id"`
}

type QueryFilter struct {
	TransactionType string `validate:"omitempty,oneof=purchase consumption refund adjustment"`
	ActiveOnly      bool
	Page            int `validate:"gte=0"`
	PageSize        int `validate:"gte=0,lte=100"`
}

func (qf QueryFilter) Values() url.Values {
	v := make(url.Values)
	if qf.TransactionType != "" {
		v.Set("transaction_type", qf.TransactionType)
	}
	if qf.ActiveOnly {
		v.Set("active_only", "true")
	}
	if qf.Page > 0 {
		v.Set("page", strconv.Itoa(qf.Page))
	}
	if qf.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(qf.PageSize))
	}
	return v
}
