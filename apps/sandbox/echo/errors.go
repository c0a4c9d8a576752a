package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
)

var (
	errNoCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
	errInvalidToken  = echo.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
	errForbidden     = echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action.")
	errNotFound      = echo.NewHTTPError(http.StatusNotFound, "Not found.")
	errInvalidCode   = echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired verification code.")
	errEmailTaken    = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "a user with this email already exists"})
	errThrottled     = echo.NewHTTPError(http.StatusTooManyRequests, "Request was throttled. Expected available in 60 seconds.")
)

// newAppHTTPErrorHandler writes every error as `{"detail": msg}`, or as a field map
// for validation failures.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := "A server error occurred."
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{"path": ctx.Path()})
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"detail": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				logger.Error("writing error response", err)
			}
		}
	}
}
