// Package purchase starts and tracks plan purchases and renewals.
//
// A 400 answer to InitiatePurchase or RenewSubscription resolves to a failed Result
// instead of an error, so forms can show per field feedback. Every other failure is
// returned as an error.
package purchase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/trezcool/masomo-client/core/transport"
)

const (
	initiatePath = "/finances/purchase/initiate/"
	renewPath    = "/finances/purchase/renew/"
	statusPath   = "/finances/purchase/status/"

	rateLimitedMsg = "Too many purchase attempts. Please try again later."
)

var (
	initiateMsgs = transport.Messages{NotFound: "Pricing plan not found.", RateLimited: rateLimitedMsg, Generic: "Failed to initiate purchase. Please try again."}
	renewMsgs    = transport.Messages{NotFound: "No subscription to renew.", RateLimited: rateLimitedMsg, Generic: "Failed to renew subscription. Please try again."}
	statusMsgs   = transport.Messages{NotFound: "Payment not found.", Generic: "Failed to check payment status. Please try again."}

	newIdempotencyKey = uuid.NewString // mockable
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

func (svc *Service) InitiatePurchase(ctx context.Context, in Initiate) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return svc.submit(ctx, initiatePath, in, in.IdempotencyKey, initiateMsgs)
}

func (svc *Service) RenewSubscription(ctx context.Context, r Renew) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return svc.submit(ctx, renewPath, r, r.IdempotencyKey, renewMsgs)
}

func (svc *Service) GetPurchaseStatus(ctx context.Context, paymentIntentID string) (*Status, error) {
	resp, err := svc.client.Get(ctx, statusPath+url.PathEscape(paymentIntentID)+"/", nil)
	if err != nil {
		return nil, statusMsgs.Translate(err)
	}
	var st Status
	if err := resp.JSON(&st); err != nil {
		return nil, statusMsgs.Translate(err)
	}
	return &st, nil
}

func (svc *Service) submit(ctx context.Context, path string, body interface{}, key string, msgs transport.Messages) (*Result, error) {
	if key == "" {
		key = newIdempotencyKey()
	}
	resp, err := svc.client.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
		Header: http.Header{transport.HeaderIdempotencyKey: {key}},
	})
	if err != nil {
		if tErr, ok := transport.AsError(err); ok && tErr.Kind == transport.KindHTTP && tErr.Status == http.StatusBadRequest {
			return failedResult(tErr), nil
		}
		return nil, msgs.Translate(err)
	}

	res := Result{Success: true}
	if err := resp.JSON(&res); err != nil {
		return nil, msgs.Translate(err)
	}
	return &res, nil
}

// failedResult reads each part of a 400 body on its own, so a field_errors shape we
// do not know cannot hide the error type or message.
func failedResult(tErr *transport.Error) *Result {
	body := gjson.ParseBytes(tErr.Body)
	res := Result{
		Success:         false,
		PaymentIntentID: body.Get("payment_intent_id").String(),
		ErrorType:       body.Get("error_type").String(),
		Message:         body.Get("message").String(),
	}
	if fe := body.Get("field_errors"); fe.Exists() {
		res.FieldErrors = parseFieldErrors(fe)
	}
	if res.ErrorType == "" {
		res.ErrorType = ErrorTypeValidation
	}
	if res.Message == "" {
		res.Message = tErr.Message
	}
	return &res
}
