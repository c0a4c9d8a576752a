package user

import (
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-client/core"
)

// Roles
const (
	RoleSchoolOwner = "school_owner"
	RoleTeacher     = "teacher"
	RoleStudent     = "student"
	RoleParent      = "parent"
)

var (
	AllRoles = []string{RoleSchoolOwner, RoleTeacher, RoleStudent, RoleParent}

	Roles = []Role{
		{Name: "School Owner", Value: RoleSchoolOwner},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Student", Value: RoleStudent},
		{Name: "Parent", Value: RoleParent},
	}

	// supported UI languages
	Languages = []string{"en", "pt"}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Profile is the client side view of a backend user; unknown fields are dropped.
type Profile struct {
	ID          int         `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	PhoneNumber null.String `json:"phone_number"`
	UserType    string      `json:"user_type"`
	IsActive    bool        `json:"is_active"`
	Language    string      `json:"language,omitempty"`
	DateJoined  time.Time   `json:"date_joined"`
	LastLogin   null.Time   `json:"last_login"`
}

func (p Profile) Is(role string) bool { return p.UserType == role }

func (p Profile) IsSchoolOwner() bool { return p.Is(RoleSchoolOwner) }
func (p Profile) IsTeacher() bool     { return p.Is(RoleTeacher) }
func (p Profile) IsStudent() bool     { return p.Is(RoleStudent) }
func (p Profile) IsParent() bool      { return p.Is(RoleParent) }

// UpdateProfile defines what information may be provided to modify the current user.
// Nil fields are left untouched.
type UpdateProfile struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	Language    *string `json:"language,omitempty" validate:"omitempty,language"`
}

func (up *UpdateProfile) Validate() error {
	if up.Name != nil {
		name := core.CleanString(*up.Name)
		up.Name = &name
	}
	if up.PhoneNumber != nil {
		phone := core.CleanString(*up.PhoneNumber)
		up.PhoneNumber = &phone
	}
	return core.ValidateStruct(up)
}

type QueryFilter struct {
	Role   string `validate:"omitempty,userrole"`
	Search string
	Page   int `validate:"gte=0"`
}

func (qf QueryFilter) Values() url.Values {
	v := make(url.Values)
	if qf.Role != "" {
		v.Set("role", qf.Role)
	}
	if s := core.CleanString(qf.Search); s != "" {
		v.Set("search", s)
	}
	if qf.Page > 0 {
		v.Set("page", strconv.Itoa(qf.Page))
	}
	return v
}
