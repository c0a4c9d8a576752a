package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/receipt"
)

type generateRequest struct {
	TransactionID int `json:"transaction_id" validate:"required,gt=0"`
}

func (api *sandboxAPI) listReceipts(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	return paginated(ctx, api.store.receiptsOf(acc.profile.ID, queryInt(ctx, "year", 0)))
}

func (api *sandboxAPI) generateReceipt(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	var data generateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to generateRequest")
	}
	if err := core.ValidateStruct(data); err != nil {
		return err
	}

	r, ok := api.store.generateReceipt(acc.profile.ID, data.TransactionID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Transaction not found.")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "receipt": r})
}

func (api *sandboxAPI) retrieveReceipt(ctx echo.Context) error {
	r, err := api.receipt(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

// downloadReceipt streams a one page PDF.
func (api *sandboxAPI) downloadReceipt(ctx echo.Context) error {
	r, err := api.receipt(ctx)
	if err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", r.ReceiptNumber+".pdf"))
	return ctx.Blob(http.StatusOK, "application/pdf", receiptPDF(r))
}

func (api *sandboxAPI) receipt(ctx echo.Context) (receipt.Receipt, error) {
	acc, err := contextAccount(ctx)
	if err != nil {
		return receipt.Receipt{}, errors.Wrap(err, "getting context account")
	}
	id, err := pathID(ctx)
	if err != nil {
		return receipt.Receipt{}, err
	}
	r, ok := api.store.receipt(acc.profile.ID, id)
	if !ok {
		return receipt.Receipt{}, errNotFound
	}
	return r, nil
}

func receiptPDF(r receipt.Receipt) []byte {
	text := fmt.Sprintf("Receipt %s - %s - %.2f %s", r.ReceiptNumber, r.PlanName, r.Amount, r.Currency)
	return []byte("%PDF-1.4\n% " + text + "\n%%EOF\n")
}
