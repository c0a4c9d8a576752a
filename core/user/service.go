package user

import (
	"context"
	"strconv"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
)

const (
	basePath = "/accounts/users/"
	mePath   = basePath + "me/"
)

var (
	profileMsgs = transport.Messages{NotFound: "User profile not found.", Generic: "Failed to load user profile. Please try again."}
	updateMsgs  = transport.Messages{NotFound: "User profile not found.", Generic: "Failed to update user profile. Please try again."}
	listMsgs    = transport.Messages{NotFound: "Users not found.", Generic: "Failed to load users. Please try again."}
	getMsgs     = transport.Messages{NotFound: "User not found.", Generic: "Failed to load user. Please try again."}
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

// GetProfile fetches the authenticated user.
func (svc *Service) GetProfile(ctx context.Context) (*Profile, error) {
	return svc.getProfile(ctx, mePath, profileMsgs)
}

func (svc *Service) UpdateProfile(ctx context.Context, up UpdateProfile) (*Profile, error) {
	if err := up.Validate(); err != nil {
		return nil, err
	}
	resp, err := svc.client.Patch(ctx, mePath, up)
	if err != nil {
		return nil, updateMsgs.Translate(err)
	}
	var p Profile
	if err := resp.JSON(&p); err != nil {
		return nil, updateMsgs.Translate(err)
	}
	return &p, nil
}

// ListUsers is restricted by the backend to school owners and teachers.
func (svc *Service) ListUsers(ctx context.Context, filter QueryFilter) ([]Profile, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, basePath, filter.Values())
	if err != nil {
		return nil, listMsgs.Translate(err)
	}
	users := make([]Profile, 0)
	if err := resp.Results(&users); err != nil {
		return nil, listMsgs.Translate(err)
	}
	return users, nil
}

func (svc *Service) GetUser(ctx context.Context, id int) (*Profile, error) {
	return svc.getProfile(ctx, basePath+strconv.Itoa(id)+"/", getMsgs)
}

func (svc *Service) getProfile(ctx context.Context, path string, msgs transport.Messages) (*Profile, error) {
	resp, err := svc.client.Get(ctx, path, nil)
	if err != nil {
		return nil, msgs.Translate(err)
	}
	var p Profile
	if err := resp.JSON(&p); err != nil {
		return nil, msgs.Translate(err)
	}
	return &p, nil
}
