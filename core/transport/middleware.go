package transport

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
)

const (
	HeaderAuthorization  = "Authorization"
	HeaderRequestID      = "X-Request-ID"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderIdempotencyKey = "Idempotency-Key"

	tokenScheme = "Token "
)

type (
	// Doer executes a single HTTP round trip. *http.Client is a Doer.
	Doer interface {
		Do(req *http.Request) (*http.Response, error)
	}

	DoerFunc func(req *http.Request) (*http.Response, error)

	// Middleware decorates a Doer with one cross-cutting concern.
	Middleware func(next Doer) Doer

	retriedKey struct{}
)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Chain wraps d with mws; the first middleware is the outermost.
func Chain(d Doer, mws ...Middleware) Doer {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// MarkRetried flags requests made with ctx as retries of an unauthorized request.
func MarkRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func IsRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}

// WithAuthToken sets `Authorization: Token <value>` from the stored auth token.
// A storage failure is logged and the request proceeds unauthenticated.
func WithAuthToken(store core.Storage, logger core.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			token, err := store.Get(req.Context(), core.AuthTokenKey)
			if err != nil {
				logger.Warn("reading auth token failed; sending request without it", errors.Wrap(err, "getting auth token"))
			} else if token != "" {
				req.Header.Set(HeaderAuthorization, tokenScheme+token)
			}
			return next.Do(req)
		})
	}
}

// WithLanguage forwards the stored language preference as Accept-Language.
func WithLanguage(store core.Storage, logger core.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderAcceptLanguage) == "" {
				lang, err := store.Get(req.Context(), core.LanguageKey)
				if err != nil {
					logger.Debug("reading language preference failed", err)
				} else if lang != "" {
					req.Header.Set(HeaderAcceptLanguage, lang)
				}
			}
			return next.Do(req)
		})
	}
}

// WithUnauthorizedHandler clears the stored token and calls onAuthError on the first 401
// of a request. Requests made with a MarkRetried context are left alone.
// Handler failures are logged, never returned.
func WithUnauthorizedHandler(store core.Storage, onAuthError AuthErrorHandler, logger core.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			ctx := req.Context()
			if IsRetried(ctx) {
				return resp, nil
			}
			if rmErr := store.Remove(ctx, core.AuthTokenKey); rmErr != nil {
				logger.Error("clearing auth token after 401 failed", errors.Wrap(rmErr, "removing auth token"))
			}
			if onAuthError != nil {
				callAuthErrorHandler(ctx, onAuthError, logger)
			}
			return resp, nil
		})
	}
}

func callAuthErrorHandler(ctx context.Context, handler AuthErrorHandler, logger core.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("auth error handler panicked", fmt.Errorf("%v", r))
		}
	}()
	if err := handler(ctx); err != nil {
		logger.Error("auth error handler failed", errors.Wrap(err, "handling auth error"))
	}
}

// WithRequestID tags every request with a unique X-Request-ID unless one is set.
func WithRequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) == "" {
				req.Header.Set(HeaderRequestID, uuid.NewString())
			}
			return next.Do(req)
		})
	}
}

// WithHeaders sets static headers on every request.
func WithHeaders(h http.Header) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			for k, vals := range h {
				if len(vals) > 0 && req.Header.Get(k) == "" {
					req.Header.Set(k, vals[0])
				}
			}
			return next.Do(req)
		})
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.requests.WithLabelValues(req.Method, code).Inc()
			m.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
			return resp, err
		})
	}
}
