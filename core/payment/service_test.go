package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/transport/transporttest"
)

func TestService_GetPricingPlans(t *testing.T) {
	const plansJSON = `[
		{
			"id": 1, "name": "Starter", "description": "10 hours", "plan_type": "package",
			"hours_included": 10, "price_eur": 150, "validity_days": 90, "is_active": true,
			"stripe_price_id": "price_123", "display_order": 1, "created_at": "2024-01-01T00:00:00Z",
			"is_featured": true
		},
		{
			"id": 2, "name": "Monthly", "description": "", "plan_type": "subscription",
			"hours_included": 8, "price_eur": 100, "validity_days": null, "is_active": true,
			"internal_notes": "do not show"
		}
	]`
	allowed := []string{"id", "name", "description", "plan_type", "hours_included", "price_eur", "validity_days", "is_active"}

	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, "/finances/pricing-plans/", mock.Anything).Return(transporttest.JSON(plansJSON), nil)

	plans, err := NewService(client).GetPricingPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)

	for _, p := range plans {
		data, err := json.Marshal(p)
		require.NoError(t, err)
		var fields map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &fields))

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, allowed, keys)
	}
	assert.Equal(t, 15.0, plans[0].PricePerHour())
	assert.Equal(t, 90, plans[0].ValidityDays.Int)
	assert.False(t, plans[1].ValidityDays.Valid)
}

func TestService_GetPricingPlans_errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr string
	}{
		{name: "network", err: transporttest.NetworkError(), wantErr: transport.MsgNetwork},
		{name: "not found", err: transporttest.HTTPError(http.StatusNotFound, ""), wantErr: "Pricing plans not found."},
		{name: "server", err: transporttest.HTTPError(http.StatusInternalServerError, ""), wantErr: transport.MsgServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(transporttest.Requester)
			client.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			_, err := NewService(client).GetPricingPlans(context.Background())
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestService_paymentMethods(t *testing.T) {
	ctx := context.Background()

	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, "/finances/stripe-config/", mock.Anything).
		Return(transporttest.JSON(`{"publishable_key": "pk_test_123", "success": true}`), nil)
	client.On("Get", mock.Anything, "/finances/payment-methods/", mock.Anything).
		Return(transporttest.JSON(`{"payment_methods": [], "results": [{"id": "pm_1", "type": "card", "card": {"brand": "visa", "last4": "4242", "exp_month": 12, "exp_year": 2023}, "is_default": true}]}`), nil)
	client.On("Post", mock.Anything, "/finances/payment-methods/pm_1/set-default/", nil).
		Return(transporttest.JSON(`{"success": true}`), nil)
	client.On("Delete", mock.Anything, "/finances/payment-methods/pm_2/").
		Return(nil, transporttest.HTTPError(http.StatusNotFound, ""))

	svc := NewService(client)

	conf, err := svc.GetStripeConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pk_test_123", conf.PublishableKey)

	methods, err := svc.ListPaymentMethods(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "4242", methods[0].Card.Last4)
	assert.True(t, methods[0].IsExpired(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, methods[0].IsExpired(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))

	assert.NoError(t, svc.SetDefaultPaymentMethod(ctx, "pm_1"))
	assert.EqualError(t, svc.DeletePaymentMethod(ctx, "pm_2"), "Payment method not found.")
	client.AssertExpectations(t)
}

func TestService_configNotFound(t *testing.T) {
	ctx := context.Background()
	notFound := transporttest.HTTPError(http.StatusNotFound, "")
	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, "/finances/stripe-config/", mock.Anything).Return(nil, notFound)
	client.On("Get", mock.Anything, "/finances/payment-methods/", mock.Anything).Return(nil, notFound)
	svc := NewService(client)

	_, err := svc.GetStripeConfig(ctx)
	assert.EqualError(t, err, "Payment configuration not found.")
	_, err = svc.ListPaymentMethods(ctx)
	assert.EqualError(t, err, "Payment methods not found.")
}
