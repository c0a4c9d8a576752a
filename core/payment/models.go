package payment

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Plan types
const (
	PlanPackage      = "package"
	PlanSubscription = "subscription"
)

// PricingPlan holds the plan fields the client relies on; anything else the backend
// sends is dropped.
type PricingPlan struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PlanType      string   `json:"plan_type"`
	HoursIncluded float64  `json:"hours_included"`
	PriceEUR      float64  `json:"price_eur"`
	ValidityDays  null.Int `json:"validity_days"`
	IsActive      bool     `json:"is_active"`
}

// PricePerHour returns 0 for plans without hours.
func (p PricingPlan) PricePerHour() float64 {
	if p.HoursIncluded <= 0 {
		return 0
	}
	return p.PriceEUR / p.HoursIncluded
}

type StripeConfig struct {
	PublishableKey string `json:"publishable_key"`
}

type Card struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

type Method struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Card      *Card     `json:"card,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the card expired before now.
func (m Method) IsExpired(now time.Time) bool {
	if m.Card == nil || m.Card.ExpYear == 0 {
		return false
	}
	// valid through the last day of the expiry month
	expiry := time.Date(m.Card.ExpYear, time.Month(m.Card.ExpMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.Before(expiry)
}
