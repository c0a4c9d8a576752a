package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core/auth"
	"github.com/trezcool/masomo-client/core/user"
)

type sandboxAPI struct {
	store *Store
	opts  *Options
}

func (api *sandboxAPI) requestCode(ctx echo.Context) error {
	var data auth.RequestCode
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequestCode")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	code, err := api.store.newCode(data.Email, api.opts.CodeRequestInterval)
	if err != nil {
		return err
	}
	// the sandbox does not send emails
	api.opts.Logger.Info("verification code issued", map[string]interface{}{"email": data.Email, "code": code})

	return ctx.JSON(http.StatusOK, auth.CodeRequested{Message: "Verification code sent to your email."})
}

func (api *sandboxAPI) verifyCode(ctx echo.Context) error {
	var data auth.VerifyCode
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyCode")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if !api.store.consumeCode(data.Email, data.Code) {
		return errInvalidCode
	}
	acc, ok := api.store.accountByEmail(data.Email)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "No account found for this email.")
	}
	return ctx.JSON(http.StatusOK, auth.Session{Token: api.store.newToken(acc.profile.ID), User: acc.profile})
}

func (api *sandboxAPI) signup(ctx echo.Context) error {
	var data auth.Signup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Signup")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if _, taken := api.store.accountByEmail(data.Email); taken {
		return errEmailTaken
	}

	p := api.store.AddUser(data.Name, data.Email, data.UserType, data.PhoneNumber, data.SchoolName)
	return ctx.JSON(http.StatusCreated, auth.Session{Token: api.store.newToken(p.ID), User: p})
}

func (api *sandboxAPI) logout(ctx echo.Context) error {
	if token, ok := ctx.Get(ctxTokenKey).(string); ok {
		api.store.revokeToken(token)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out."})
}

// Users

func (api *sandboxAPI) me(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	p, _ := api.store.profile(acc.profile.ID)
	return ctx.JSON(http.StatusOK, p)
}

func (api *sandboxAPI) updateMe(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.store.updateProfile(acc.profile.ID, data))
}

func (api *sandboxAPI) listUsers(ctx echo.Context) error {
	return paginated(ctx, api.store.users(ctx.QueryParam("role"), ctx.QueryParam("search")))
}

func (api *sandboxAPI) retrieveUser(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	p, ok := api.store.profile(id)
	if !ok {
		return errNotFound
	}
	return ctx.JSON(http.StatusOK, p)
}
