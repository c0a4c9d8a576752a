// Package receipt lists, generates and downloads purchase receipts.
package receipt

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
)

const basePath = "/api/student-balance/receipts/"

var (
	listMsgs     = transport.Messages{NotFound: "Receipts not found.", Generic: "Failed to load receipts. Please try again."}
	getMsgs      = transport.Messages{NotFound: "Receipt not found.", Generic: "Failed to load receipt. Please try again."}
	generateMsgs = transport.Messages{NotFound: "Transaction not found.", Generic: "Failed to generate receipt. Please try again."}
	downloadMsgs = transport.Messages{NotFound: "Receipt not found.", Generic: "Failed to download receipt. Please try again."}

	errNoDownloadURL = errors.New("download response has no url")
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

func receiptPath(id int) string {
	return basePath + strconv.Itoa(id) + "/"
}

func (svc *Service) ListReceipts(ctx context.Context, filter QueryFilter) ([]Receipt, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, basePath, filter.Values())
	if err != nil {
		return nil, listMsgs.Translate(err)
	}
	receipts := make([]Receipt, 0)
	if err := resp.Results(&receipts); err != nil {
		return nil, listMsgs.Translate(err)
	}
	return receipts, nil
}

func (svc *Service) GetReceipt(ctx context.Context, id int) (*Receipt, error) {
	resp, err := svc.client.Get(ctx, receiptPath(id), nil)
	if err != nil {
		return nil, getMsgs.Translate(err)
	}
	var r Receipt
	if err := resp.JSON(&r); err != nil {
		return nil, getMsgs.Translate(err)
	}
	return &r, nil
}

// GenerateReceipt issues (or returns the existing) receipt of a purchase transaction.
func (svc *Service) GenerateReceipt(ctx context.Context, transactionID int) (*Receipt, error) {
	resp, err := svc.client.Post(ctx, basePath+"generate/", map[string]int{"transaction_id": transactionID})
	if err != nil {
		return nil, generateMsgs.Translate(err)
	}
	var r Receipt
	// some backends wrap the receipt: {"success": true, "receipt": {...}}
	if wrapped := gjson.GetBytes(resp.Body, "receipt"); wrapped.IsObject() {
		resp = &transport.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: []byte(wrapped.Raw)}
	}
	if err := resp.JSON(&r); err != nil {
		return nil, generateMsgs.Translate(err)
	}
	return &r, nil
}

// DownloadReceipt returns a link when the backend answers with JSON, else the file.
func (svc *Service) DownloadReceipt(ctx context.Context, id int) (*Download, error) {
	resp, err := svc.client.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		Path:   receiptPath(id) + "download/",
		Header: http.Header{"Accept": {"application/pdf, application/json"}},
	})
	if err != nil {
		return nil, downloadMsgs.Translate(err)
	}

	if resp.IsJSON() {
		for _, field := range []string{"url", "download_url"} {
			if u := gjson.GetBytes(resp.Body, field).String(); u != "" {
				return &Download{URL: u}, nil
			}
		}
		return nil, downloadMsgs.Translate(errNoDownloadURL)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/pdf"
	}
	return &Download{
		Filename:    filename(resp.Header.Get("Content-Disposition"), id),
		ContentType: ct,
		Data:        resp.Body,
	}, nil
}

func filename(disposition string, id int) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return "receipt-" + strconv.Itoa(id) + ".pdf"
}
