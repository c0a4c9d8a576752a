// Package transporttest provides a testify based transport.Requester double.
package transporttest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"

	"github.com/trezcool/masomo-client/core/transport"
)

// Requester records every call; program it with On(...).Return(resp, err).
type Requester struct {
	mock.Mock
}

var _ transport.Requester = (*Requester)(nil)

func (m *Requester) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	args := m.Called(ctx, req)
	return response(args)
}

func (m *Requester) Get(ctx context.Context, path string, query url.Values) (*transport.Response, error) {
	args := m.Called(ctx, path, query)
	return response(args)
}

func (m *Requester) Post(ctx context.Context, path string, body interface{}) (*transport.Response, error) {
	args := m.Called(ctx, path, body)
	return response(args)
}

func (m *Requester) Put(ctx context.Context, path string, body interface{}) (*transport.Response, error) {
	args := m.Called(ctx, path, body)
	return response(args)
}

func (m *Requester) Patch(ctx context.Context, path string, body interface{}) (*transport.Response, error) {
	args := m.Called(ctx, path, body)
	return response(args)
}

func (m *Requester) Delete(ctx context.Context, path string) (*transport.Response, error) {
	args := m.Called(ctx, path)
	return response(args)
}

func response(args mock.Arguments) (*transport.Response, error) {
	var resp *transport.Response
	if r := args.Get(0); r != nil {
		resp = r.(*transport.Response)
	}
	return resp, args.Error(1)
}

// KeeperRequester is a Requester that also keeps an in-memory auth token.
type KeeperRequester struct {
	Requester
	token string
}

var _ transport.TokenKeeper = (*KeeperRequester)(nil)

func (m *KeeperRequester) Token(context.Context) (string, error) { return m.token, nil }

func (m *KeeperRequester) SaveToken(_ context.Context, token string) error {
	m.token = token
	return nil
}

func (m *KeeperRequester) ClearToken(context.Context) error {
	m.token = ""
	return nil
}

// JSON returns a 200 response carrying body.
func JSON(body string) *transport.Response {
	return &transport.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(body),
	}
}

// HTTPError returns the error the real client produces for status and body.
func HTTPError(status int, body string) error {
	return transport.NewHTTPError(&transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(body),
	})
}

// NetworkError returns the error the real client produces when the server is unreachable.
func NetworkError() error {
	return transport.NewRequestError(errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"))
}
