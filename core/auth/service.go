// Package auth implements the passwordless email-code authentication flow.
package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/user"
)

const (
	requestCodePath = "/accounts/auth/request-code/"
	verifyCodePath  = "/accounts/auth/verify-code/"
	logoutPath      = "/accounts/auth/logout/"
	signupPath      = "/accounts/users/signup/"
	mePath          = "/accounts/users/me/"

	rateLimitedMsg     = "Too many attempts. Please wait a moment before requesting a new code."
	accountNotFoundMsg = "No account found for this email."
)

var (
	ErrNoToken = errors.New("no authentication token")

	requestCodeMsgs = transport.Messages{NotFound: accountNotFoundMsg, RateLimited: rateLimitedMsg, Generic: "Failed to send verification code. Please try again."}
	verifyCodeMsgs  = transport.Messages{NotFound: accountNotFoundMsg, RateLimited: rateLimitedMsg, Generic: "Failed to verify code. Please try again."}
	signupMsgs      = transport.Messages{NotFound: "Signup is not available.", RateLimited: rateLimitedMsg, Generic: "Failed to create account. Please try again."}
	validateMsgs    = transport.Messages{NotFound: "User profile not found.", Generic: "Failed to validate session. Please try again."}
	logoutMsgs      = transport.Messages{NotFound: "Session not found.", Generic: "Failed to log out. Please try again."}
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

// RequestEmailCode asks the backend to email a one-time verification code.
func (svc *Service) RequestEmailCode(ctx context.Context, rc RequestCode) (*CodeRequested, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	resp, err := svc.client.Post(ctx, requestCodePath, rc)
	if err != nil {
		return nil, requestCodeMsgs.Translate(err)
	}
	var ack CodeRequested
	if err := resp.JSON(&ack); err != nil {
		return nil, requestCodeMsgs.Translate(err)
	}
	return &ack, nil
}

// VerifyEmailCode exchanges a code for a session. The token is persisted when the
// client keeps tokens.
func (svc *Service) VerifyEmailCode(ctx context.Context, vc VerifyCode) (*Session, error) {
	if err := vc.Validate(); err != nil {
		return nil, err
	}
	return svc.startSession(ctx, verifyCodePath, vc, verifyCodeMsgs)
}

// Signup registers a new user. Backends that log the user in right away return a
// session, which is persisted like VerifyEmailCode's.
func (svc *Service) Signup(ctx context.Context, s Signup) (*Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return svc.startSession(ctx, signupPath, s, signupMsgs)
}

// ValidateToken returns the profile behind the stored token.
// A missing token is reported as a validation error without calling the backend.
func (svc *Service) ValidateToken(ctx context.Context) (*user.Profile, error) {
	keeper, ok := svc.client.(transport.TokenKeeper)
	if !ok {
		return nil, core.NewValidationError(ErrNoToken)
	}
	token, err := keeper.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading auth token")
	}
	if token == "" {
		return nil, core.NewValidationError(ErrNoToken)
	}

	resp, err := svc.client.Get(ctx, mePath, nil)
	if err != nil {
		return nil, validateMsgs.Translate(err)
	}
	var p user.Profile
	if err := resp.JSON(&p); err != nil {
		return nil, validateMsgs.Translate(err)
	}
	return &p, nil
}

// Logout invalidates the token server side then forgets it locally.
// The local token is cleared even when the backend call fails.
func (svc *Service) Logout(ctx context.Context) error {
	_, callErr := svc.client.Post(ctx, logoutPath, nil)

	if keeper, ok := svc.client.(transport.TokenKeeper); ok {
		if err := keeper.ClearToken(ctx); err != nil {
			return err
		}
	}
	// an expired or revoked token is as good as logged out
	if callErr == nil || transport.StatusOf(callErr) != 0 {
		return nil
	}
	return logoutMsgs.Translate(callErr)
}

func (svc *Service) startSession(ctx context.Context, path string, body interface{}, msgs transport.Messages) (*Session, error) {
	resp, err := svc.client.Post(ctx, path, body)
	if err != nil {
		return nil, msgs.Translate(err)
	}
	var sess Session
	if err := resp.JSON(&sess); err != nil {
		return nil, msgs.Translate(err)
	}

	if keeper, ok := svc.client.(transport.TokenKeeper); ok && sess.Token != "" {
		if err := keeper.SaveToken(ctx, sess.Token); err != nil {
			return nil, err
		}
	}
	return &sess, nil
}
