// Package payment exposes pricing plans and the user's saved payment methods.
package payment

import (
	"context"
	"net/url"

	"github.com/trezcool/masomo-client/core/transport"
)

const (
	plansPath   = "/finances/pricing-plans/"
	stripePath  = "/finances/stripe-config/"
	methodsPath = "/finances/payment-methods/"
)

var (
	plansMsgs      = transport.Messages{NotFound: "Pricing plans not found.", Generic: "Failed to load pricing plans. Please try again."}
	stripeMsgs     = transport.Messages{NotFound: "Payment configuration not found.", Generic: "Failed to load payment configuration. Please try again."}
	methodsMsgs    = transport.Messages{NotFound: "Payment methods not found.", Generic: "Failed to load payment methods. Please try again."}
	setDefaultMsgs = transport.Messages{NotFound: "Payment method not found.", Generic: "Failed to update default payment method. Please try again."}
	deleteMsgs     = transport.Messages{NotFound: "Payment method not found.", Generic: "Failed to remove payment method. Please try again."}
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

// GetPricingPlans lists the plans on sale.
func (svc *Service) GetPricingPlans(ctx context.Context) ([]PricingPlan, error) {
	resp, err := svc.client.Get(ctx, plansPath, nil)
	if err != nil {
		return nil, plansMsgs.Translate(err)
	}
	plans := make([]PricingPlan, 0)
	if err := resp.Results(&plans); err != nil {
		return nil, plansMsgs.Translate(err)
	}
	return plans, nil
}

func (svc *Service) GetStripeConfig(ctx context.Context) (*StripeConfig, error) {
	resp, err := svc.client.Get(ctx, stripePath, nil)
	if err != nil {
		return nil, stripeMsgs.Translate(err)
	}
	var conf StripeConfig
	if err := resp.JSON(&conf); err != nil {
		return nil, stripeMsgs.Translate(err)
	}
	return &conf, nil
}

func (svc *Service) ListPaymentMethods(ctx context.Context) ([]Method, error) {
	resp, err := svc.client.Get(ctx, methodsPath, nil)
	if err != nil {
		return nil, methodsMsgs.Translate(err)
	}
	methods := make([]Method, 0)
	if err := resp.Results(&methods); err != nil {
		return nil, methodsMsgs.Translate(err)
	}
	return methods, nil
}

func (svc *Service) SetDefaultPaymentMethod(ctx context.Context, id string) error {
	_, err := svc.client.Post(ctx, methodsPath+url.PathEscape(id)+"/set-default/", nil)
	return setDefaultMsgs.Translate(err)
}

func (svc *Service) DeletePaymentMethod(ctx context.Context, id string) error {
	_, err := svc.client.Delete(ctx, methodsPath+url.PathEscape(id)+"/")
	return deleteMsgs.Translate(err)
}
