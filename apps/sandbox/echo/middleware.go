package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	ctxAccountKey = "account"
	ctxTokenKey   = "token"
)

var errNoAccountInCtx = errors.New("account not found in echo.Context")

// tokenAuthMiddleware resolves `Authorization: Token <key>` to an account.
func tokenAuthMiddleware(store *Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return errNoCredentials
			}
			token := strings.TrimPrefix(header, "Token ")
			if token == header || token == "" {
				return errInvalidToken
			}
			acc, ok := store.accountByToken(token)
			if !ok || !acc.profile.IsActive {
				return errInvalidToken
			}
			ctx.Set(ctxAccountKey, acc)
			ctx.Set(ctxTokenKey, token)
			return next(ctx)
		}
	}
}

// roleMiddleware lets through accounts holding one of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			acc, err := contextAccount(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context account")
			}
			for _, role := range roles {
				if acc.profile.Is(role) {
					return next(ctx)
				}
			}
			return errForbidden
		}
	}
}

func contextAccount(ctx echo.Context) (account, error) {
	acc, ok := ctx.Get(ctxAccountKey).(account)
	if !ok {
		return account{}, errNoAccountInCtx
	}
	return acc, nil
}
