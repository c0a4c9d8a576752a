package transport

import (
	"net/http"

	"github.com/trezcool/masomo-client/core"
)

// user facing messages shared by every domain service
const (
	MsgNetwork      = "Network connection error. Please check your internet connection and try again."
	MsgForbidden    = "Access denied. You do not have permission to perform this action."
	MsgServer       = "Server error occurred. Please try again later."
	MsgUnauthorized = "Your session has expired. Please log in again."
	MsgRateLimited  = "Too many requests. Please try again later."
)

// Messages describes how one operation's failures read to the user.
// Empty fields fall back to the shared defaults; Generic should always be set.
type Messages struct {
	NotFound    string // e.g. "Task not found."
	Forbidden   string
	RateLimited string
	Generic     string // e.g. "Failed to load tasks. Please try again."
}

// Translate replaces err by a *core.ServiceError with a presentable message.
// Validation errors raised before the request was sent are returned untouched.
func (m Messages) Translate(err error) error {
	if err == nil {
		return nil
	}
	if core.IsValidationError(err) {
		return err
	}
	return core.NewServiceError(m.message(err))
}

func (m Messages) message(err error) string {
	tErr, ok := AsError(err)
	if !ok {
		return m.generic()
	}

	switch tErr.Kind {
	case KindNetwork:
		return MsgNetwork
	case KindHTTP:
	default:
		return m.generic()
	}

	switch status := tErr.Status; {
	case status == http.StatusNotFound:
		return pick(m.NotFound, m.generic())
	case status == http.StatusForbidden:
		return pick(m.Forbidden, MsgForbidden)
	case status == http.StatusTooManyRequests:
		return pick(m.RateLimited, MsgRateLimited)
	case status == http.StatusUnauthorized:
		return MsgUnauthorized
	case status >= http.StatusInternalServerError:
		return MsgServer
	case status == http.StatusBadRequest && tErr.Message != fallbackMessage:
		return tErr.Message
	default:
		return m.generic()
	}
}

func (m Messages) generic() string {
	return pick(m.Generic, "Something went wrong. Please try again.")
}

func pick(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
