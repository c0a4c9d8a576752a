package purchase

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/trezcool/masomo-client/core"
)

// key for messages not tied to one field
const nonFieldErrorsKey = "non_field_errors"

// Error types reported in failed Results
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypePayment    = "payment_error"
)

type StudentInfo struct {
	Name  string `json:"name" validate:"required,notblank"`
	Email string `json:"email" validate:"required,email"`
}

// Initiate contains information needed to start a plan purchase.
// IdempotencyKey is generated when empty.
type Initiate struct {
	PlanID         int          `json:"plan_id" validate:"required,gt=0"`
	StudentInfo    *StudentInfo `json:"student_info,omitempty"`
	IdempotencyKey string       `json:"-"`
}

func (in *Initiate) Validate() error {
	if in.StudentInfo != nil {
		in.StudentInfo.Name = core.CleanString(in.StudentInfo.Name)
		in.StudentInfo.Email = core.CleanString(in.StudentInfo.Email, true /* lower */)
	}
	return core.ValidateStruct(in)
}

// Renew contains information needed to renew an expiring plan.
type Renew struct {
	PlanID          int    `json:"plan_id,omitempty" validate:"omitempty,gt=0"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	UseSavedMethod  bool   `json:"use_saved_payment_method"`
	IdempotencyKey  string `json:"-"`
}

func (r *Renew) Validate() error {
	return core.ValidateStruct(r)
}

type PlanDetails struct {
	Name          string  `json:"name"`
	HoursIncluded float64 `json:"hours_included"`
	PriceEUR      float64 `json:"price_eur"`
}

// Result is the outcome of a purchase or renewal.
// A failed Result (Success false) carries the backend's field level feedback.
type Result struct {
	Success         bool         `json:"success"`
	ClientSecret    string       `json:"client_secret,omitempty"`
	PaymentIntentID string       `json:"payment_intent_id,omitempty"`
	TransactionID   int          `json:"transaction_id,omitempty"`
	PlanDetails     *PlanDetails `json:"plan_details,omitempty"`
	ErrorType       string       `json:"error_type,omitempty"`
	Message         string       `json:"message,omitempty"`
	FieldErrors     FieldErrors  `json:"field_errors,omitempty"`
}

// Status of a payment intent.
type Status struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	Status          string  `json:"status"`
	TransactionID   int     `json:"transaction_id,omitempty"`
	HoursAdded      float64 `json:"hours_added,omitempty"`
}

func (s Status) IsSucceeded() bool { return s.Status == "succeeded" || s.Status == "completed" }

// FieldErrors maps a request field to its messages.
// `{"field": "msg"}`, `{"field": ["msg", ...]}` and nested objects decode into it;
// nested fields use dotted keys (`student_info.email`).
type FieldErrors map[string][]string

func (fe *FieldErrors) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("invalid field errors payload")
	}
	*fe = parseFieldErrors(gjson.ParseBytes(data))
	return nil
}

func parseFieldErrors(v gjson.Result) FieldErrors {
	out := make(FieldErrors)
	if v.IsObject() {
		flattenFieldErrors("", v, out)
	} else if v.Exists() && v.Type != gjson.Null {
		flattenFieldErrors(nonFieldErrorsKey, v, out)
	}
	return out
}

func flattenFieldErrors(field string, v gjson.Result, out FieldErrors) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, val gjson.Result) bool {
			flattenFieldErrors(joinField(field, key.String()), val, out)
			return true
		})
	case v.IsArray():
		idx := 0
		v.ForEach(func(_, val gjson.Result) bool {
			if val.IsObject() || val.IsArray() {
				flattenFieldErrors(joinField(field, strconv.Itoa(idx)), val, out)
			} else if val.Type != gjson.Null {
				out[field] = append(out[field], val.String())
			}
			idx++
			return true
		})
	case v.Type == gjson.Null: // skip
	default:
		out[field] = append(out[field], v.String())
	}
}

func joinField(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}

// First returns the first message for field, if any.
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
