package receipt

import (
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"
)

type Receipt struct {
	ID            int         `json:"id"`
	ReceiptNumber string      `json:"receipt_number"`
	Amount        float64     `json:"amount"`
	Currency      string      `json:"currency"`
	PlanName      string      `json:"plan_name"`
	HoursIncluded float64     `json:"hours_included"`
	TransactionID int         `json:"transaction_id"`
	IssuedAt      time.Time   `json:"generated_at"`
	PDFURL        null.String `json:"pdf_url"`
}

// Download is either a link to the receipt (URL set) or the receipt itself.
type Download struct {
	URL         string
	Filename    string
	ContentType string
	Data        []byte
}

func (d Download) IsURL() bool { return d.URL != "" }

type QueryFilter struct {
	Year     int `validate:"omitempty,gte=2000"`
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0,lte=100"`
}

func (qf QueryFilter) Values() url.Values {
	v := make(url.Values)
	if qf.Year > 0 {
		v.Set("year", strconv.Itoa(qf.Year))
	}
	if qf.Page > 0 {
		v.Set("page", strconv.Itoa(qf.Page))
	}
	if qf.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(qf.PageSize))
	}
	return v
}
