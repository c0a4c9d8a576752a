package gateway

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
)

var errNoStorage = errors.New("gateway: a storage is required")

type (
	// Option overrides one factory default.
	Option func(*options)

	options struct {
		baseURL     string
		timeout     time.Duration
		headers     map[string]string
		onAuthError transport.AuthErrorHandler
		logger      core.Logger
		metrics     *transport.Metrics
		httpClient  *http.Client
		middlewares []transport.Middleware
	}
)

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHeaders adds static headers to every request; later calls add to earlier ones.
func WithHeaders(h map[string]string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			o.headers[k] = v
		}
	}
}

// WithAuthErrorHandler sets the callback run after a 401 cleared the stored token.
func WithAuthErrorHandler(h transport.AuthErrorHandler) Option {
	return func(o *options) { o.onAuthError = h }
}

func WithLogger(l core.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *transport.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithMiddlewares(mws ...transport.Middleware) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mws...) }
}

// Build binds storage to a new transport client and wraps it in a Gateway.
// Defaults: core.DefaultBaseURL and core.DefaultTimeout.
func Build(storage core.Storage, opts ...Option) (*Gateway, *transport.Client, error) {
	if storage == nil {
		return nil, nil, errNoStorage
	}
	o := options{
		baseURL: core.DefaultBaseURL,
		timeout: core.DefaultTimeout,
		logger:  core.NopLogger{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	client, err := transport.New(transport.Options{
		BaseURL:     o.baseURL,
		Timeout:     o.timeout,
		Headers:     o.headers,
		Storage:     storage,
		OnAuthError: o.onAuthError,
		Logger:      o.logger,
		HTTPClient:  o.httpClient,
		Metrics:     o.metrics,
		Middlewares: o.middlewares,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "building transport client")
	}
	return New(client), client, nil
}

// BuildFromConfig is Build with the API section of conf applied before opts.
func BuildFromConfig(conf *core.Config, storage core.Storage, opts ...Option) (*Gateway, *transport.Client, error) {
	base := make([]Option, 0, len(opts)+3)
	if conf != nil {
		if conf.API.BaseURL != "" {
			base = append(base, WithBaseURL(conf.API.BaseURL))
		}
		if conf.API.Timeout > 0 {
			base = append(base, WithTimeout(conf.API.Timeout))
		}
		if conf.AppName != "" {
			base = append(base, WithHeaders(map[string]string{"X-Client-Name": conf.AppName}))
		}
	}
	return Build(storage, append(base, opts...)...)
}
