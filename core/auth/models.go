package auth

import (
	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/user"
)

type RequestCode struct {
	Email string `json:"email" validate:"required,email"`
}

func (rc *RequestCode) Validate() error {
	rc.Email = core.CleanString(rc.Email, true /* lower */)
	return core.ValidateStruct(rc)
}

type VerifyCode struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otpcode"`
}

func (vc *VerifyCode) Validate() error {
	vc.Email = core.CleanString(vc.Email, true /* lower */)
	vc.Code = core.CleanString(vc.Code)
	return core.ValidateStruct(vc)
}

// Signup contains information needed to register a new user.
type Signup struct {
	Name        string `json:"name" validate:"required,notblank"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	UserType    string `json:"user_type" validate:"required,userrole"`
	SchoolName  string `json:"school_name,omitempty" validate:"required_if=UserType school_owner"`
}

func (s *Signup) Validate() error {
	s.Name = core.CleanString(s.Name)
	s.Email = core.CleanString(s.Email, true /* lower */)
	s.PhoneNumber = core.CleanString(s.PhoneNumber)
	s.SchoolName = core.CleanString(s.SchoolName)
	return core.ValidateStruct(s)
}

// Session is what the backend returns once a code has been verified.
type Session struct {
	Token string       `json:"token"`
	User  user.Profile `json:"user"`
}

// CodeRequested acknowledges a verification code request.
type CodeRequested struct {
	Message string `json:"message"`
}
