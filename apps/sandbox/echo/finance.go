package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core/payment"
	"github.com/trezcool/masomo-client/core/purchase"
	"github.com/trezcool/masomo-client/core/transport"
)

const stripeKey = "pk_test_sandbox"

var errNoPlanToRenew = echo.NewHTTPError(http.StatusNotFound, "No previous purchase to renew.")

func (api *sandboxAPI) pricingPlans(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.pricingPlans())
}

func (api *sandboxAPI) stripeConfig(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, payment.StripeConfig{PublishableKey: stripeKey})
}

func (api *sandboxAPI) studentBalance(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	return ctx.JSON(http.StatusOK, api.store.balanceOf(acc.profile.ID))
}

func (api *sandboxAPI) transactionHistory(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	filter := financeFilter{TransactionType: ctx.QueryParam("transaction_type")}
	return paginated(ctx, api.store.transactions(acc.profile.ID, filter))
}

func (api *sandboxAPI) purchaseHistory(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	filter := financeFilter{}
	if active := queryBool(ctx, "active_only"); active != nil {
		filter.ActiveOnly = *active
	}
	return paginated(ctx, api.store.purchasesOf(acc.profile.ID, filter))
}

func (api *sandboxAPI) paymentMethods(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	return ctx.JSON(http.StatusOK, api.store.paymentMethods(acc.profile.ID))
}

func (api *sandboxAPI) setDefaultMethod(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	if !api.store.setDefaultMethod(acc.profile.ID, ctx.Param("id")) {
		return errNotFound
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Default payment method updated."})
}

func (api *sandboxAPI) deleteMethod(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	if !api.store.deleteMethod(acc.profile.ID, ctx.Param("id")) {
		return errNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sandboxAPI) initiatePurchase(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	var data purchase.Initiate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Initiate")
	}
	if err := data.Validate(); err != nil {
		return failedPurchase(ctx, err)
	}
	return api.buy(ctx, acc.profile.ID, data.PlanID)
}

func (api *sandboxAPI) renewSubscription(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	var data purchase.Renew
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Renew")
	}
	if err := data.Validate(); err != nil {
		return failedPurchase(ctx, err)
	}
	if !data.UseSavedMethod && data.PaymentMethodID == "" {
		fail := purchaseFailure{field: "payment_method_id", message: "Select a payment method."}
		return ctx.JSON(http.StatusBadRequest, fail.result())
	}

	planID := data.PlanID
	if planID == 0 {
		if planID = api.store.lastPlanID(acc.profile.ID); planID == 0 {
			return errNoPlanToRenew
		}
	}
	return api.buy(ctx, acc.profile.ID, planID)
}

func (api *sandboxAPI) buy(ctx echo.Context, studentID, planID int) error {
	key := ctx.Request().Header.Get(transport.HeaderIdempotencyKey)
	res, fail, ok := api.store.buy(studentID, planID, key)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Pricing plan not found.")
	}
	if fail != nil {
		return ctx.JSON(http.StatusBadRequest, fail.result())
	}
	return ctx.JSON(http.StatusOK, res)
}

// failedPurchase answers a validation error with a failed Result, like the backend.
func failedPurchase(ctx echo.Context, err error) error {
	res := purchase.Result{ErrorType: purchase.ErrorTypeValidation, Message: "Invalid purchase request."}
	var vErr interface{ FieldMap() map[string]string }
	if errors.As(err, &vErr) {
		res.FieldErrors = make(purchase.FieldErrors)
		for field, msg := range vErr.FieldMap() {
			res.FieldErrors[field] = []string{msg}
		}
	}
	return ctx.JSON(http.StatusBadRequest, res)
}

func (api *sandboxAPI) purchaseStatus(ctx echo.Context) error {
	st, ok := api.store.intent(ctx.Param("id"))
	if !ok {
		return errNotFound
	}
	return ctx.JSON(http.StatusOK, st)
}
