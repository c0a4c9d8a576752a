package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Kind is the closed set of transport failure kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindHTTP
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

const fallbackMessage = "An unexpected error occurred."

// Error is returned by the Client for every failed request.
type Error struct {
	Kind    Kind
	Status  int    // set for KindHTTP only
	Message string // normalized, see errorMessage
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	default:
		if e.Err != nil {
			return e.Kind.String() + " error: " + e.Err.Error()
		}
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a transport *Error from err, following both pkg/errors causes and %w chains.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	if tErr, ok := errors.Cause(err).(*Error); ok {
		return tErr, true
	}
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if tErr, ok := AsError(err); ok && tErr.Kind == KindHTTP {
		return tErr.Status
	}
	return 0
}

// NewHTTPError builds the error the Client returns for a non-2xx resp.
func NewHTTPError(resp *Response) *Error {
	return &Error{
		Kind:    KindHTTP,
		Status:  resp.StatusCode,
		Message: errorMessage(resp.Body),
		Body:    resp.Body,
	}
}

// NewRequestError builds the error the Client returns when no response was received.
func NewRequestError(err error) *Error {
	kind := KindNetwork
	if errors.Is(err, context.Canceled) {
		kind = KindUnknown
	}
	return &Error{Kind: kind, Message: fallbackMessage, Err: err}
}

// errorMessage picks the human readable message out of an error body:
// `detail` first, then `error`, else a generic fallback.
func errorMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return fallbackMessage
	}
	for _, field := range []string{"detail", "error"} {
		res := gjson.GetBytes(body, field)
		if !res.Exists() {
			continue
		}
		if msg := strings.TrimSpace(res.String()); msg != "" && res.Type == gjson.String {
			return msg
		}
		// {"detail": ["msg"]} style payloads
		if res.IsArray() {
			if first := res.Array(); len(first) > 0 && first[0].String() != "" {
				return first[0].String()
			}
		}
	}
	return fallbackMessage
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
