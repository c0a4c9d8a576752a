// Package transport is the single point of outbound HTTP calls to the Masomo API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/trezcool/masomo-client/core"
)

type (
	// Requester is what domain services need from a transport client.
	Requester interface {
		Do(ctx context.Context, req *Request) (*Response, error)
		Get(ctx context.Context, path string, query url.Values) (*Response, error)
		Post(ctx context.Context, path string, body interface{}) (*Response, error)
		Put(ctx context.Context, path string, body interface{}) (*Response, error)
		Patch(ctx context.Context, path string, body interface{}) (*Response, error)
		Delete(ctx context.Context, path string) (*Response, error)
	}

	// TokenKeeper is implemented by requesters that own the auth token storage.
	TokenKeeper interface {
		Token(ctx context.Context) (string, error)
		SaveToken(ctx context.Context, token string) error
		ClearToken(ctx context.Context) error
	}

	// AuthErrorHandler is called once per unauthorized response.
	AuthErrorHandler func(ctx context.Context) error

	Options struct {
		BaseURL     string
		Timeout     time.Duration // default: 30s
		Headers     map[string]string
		Storage     core.Storage
		OnAuthError AuthErrorHandler
		Logger      core.Logger
		HTTPClient  *http.Client
		Metrics     *Metrics
		Middlewares []Middleware // wrapped inside the built-in ones
	}

	Client struct {
		baseURL string
		storage core.Storage
		doer    Doer
	}

	Request struct {
		Method string
		Path   string
		Query  url.Values
		Body   interface{} // JSON encoded when not nil
		Header http.Header
	}

	Response struct {
		StatusCode int
		Header     http.Header
		Body       []byte
	}
)

var (
	_ Requester   = (*Client)(nil)
	_ TokenKeeper = (*Client)(nil)

	errNoBaseURL = errors.New("transport: base URL is required")
	errNoStorage = errors.New("transport: no storage configured")
)

// New returns an independent Client; it holds no package level state.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errNoBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "parsing base URL")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = core.DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger{}
	}

	mws := []Middleware{WithRequestID()}
	if len(opts.Headers) > 0 {
		hdr := make(http.Header, len(opts.Headers))
		for k, v := range opts.Headers {
			hdr.Set(k, v)
		}
		mws = append(mws, WithHeaders(hdr))
	}
	if opts.Storage != nil {
		mws = append(mws,
			WithAuthToken(opts.Storage, logger),
			WithLanguage(opts.Storage, logger),
			WithUnauthorizedHandler(opts.Storage, opts.OnAuthError, logger),
		)
	}
	if opts.Metrics != nil {
		mws = append(mws, WithMetrics(opts.Metrics))
	}
	mws = append(mws, opts.Middlewares...)

	return &Client{
		baseURL: baseURL,
		storage: opts.Storage,
		doer:    Chain(httpClient, mws...),
	}, nil
}

// BaseURL returns the URL every request path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends req and returns the response; any non-2xx status is returned as a *Error
// alongside the response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, NewRequestError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewRequestError(errors.Wrap(err, "reading response"))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}
	if !isSuccess(resp.StatusCode) {
		return resp, NewHTTPError(resp)
	}
	return resp, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) Token(ctx context.Context) (string, error) {
	if c.storage == nil {
		return "", errNoStorage
	}
	return c.storage.Get(ctx, core.AuthTokenKey)
}

func (c *Client) SaveToken(ctx context.Context, token string) error {
	if c.storage == nil {
		return errNoStorage
	}
	return errors.Wrap(c.storage.Set(ctx, core.AuthTokenKey, token), "saving auth token")
}

func (c *Client) ClearToken(ctx context.Context) error {
	if c.storage == nil {
		return errNoStorage
	}
	return errors.Wrap(c.storage.Remove(ctx, core.AuthTokenKey), "clearing auth token")
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "marshalling request body")
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// JSON decodes the response body into v.
func (r *Response) JSON(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(r.Body, v), "decoding response")
}

// Results decodes a list payload into v. Both bare arrays and paginated
// `{"count": n, "results": [...]}` envelopes are accepted.
func (r *Response) Results(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	if res := gjson.GetBytes(r.Body, "results"); res.IsArray() {
		return errors.Wrap(json.Unmarshal([]byte(res.Raw), v), "decoding results")
	}
	return r.JSON(v)
}

// Count returns the total advertised by a paginated payload, or -1.
func (r *Response) Count() int {
	if res := gjson.GetBytes(r.Body, "count"); res.Exists() {
		return int(res.Int())
	}
	return -1
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "json")
}
