// Package balance reads a student's hour balance and its history.
package balance

import (
	"context"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
)

const (
	basePath      = "/finances/student-balance/"
	historyPath   = basePath + "history/"
	purchasesPath = basePath + "purchases/"
)

var (
	balanceMsgs   = transport.Messages{NotFound: "Student balance not found.", Generic: "Failed to load balance. Please try again."}
	historyMsgs   = transport.Messages{NotFound: "Transaction history not found.", Generic: "Failed to load transaction history. Please try again."}
	purchasesMsgs = transport.Messages{NotFound: "Purchase history not found.", Generic: "Failed to load purchase history. Please try again."}
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

func (svc *Service) GetBalance(ctx context.Context) (*Balance, error) {
	resp, err := svc.client.Get(ctx, basePath, nil)
	if err != nil {
		return nil, balanceMsgs.Translate(err)
	}
	var b Balance
	if err := resp.JSON(&b); err != nil {
		return nil, balanceMsgs.Translate(err)
	}
	return &b, nil
}

func (svc *Service) GetTransactionHistory(ctx context.Context, filter QueryFilter) ([]Transaction, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, historyPath, filter.Values())
	if err != nil {
		return nil, historyMsgs.Translate(err)
	}
	txs := make([]Transaction, 0)
	if err := resp.Results(&txs); err != nil {
		return nil, historyMsgs.Translate(err)
	}
	return txs, nil
}

func (svc *Service) GetPurchaseHistory(ctx context.Context, filter QueryFilter) ([]Purchase, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, purchasesPath, filter.Values())
	if err != nil {
		return nil, purchasesMsgs.Translate(err)
	}
	purchases := make([]Purchase, 0)
	if err := resp.Results(&purchases); err != nil {
		return nil, purchasesMsgs.Translate(err)
	}
	return purchases, nil
}
