package user

import (
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-client/core"
)

var (
	userRoleTag  = "userrole"
	userRoleText = "invalid user type"

	languageTag  = "language"
	languageText = "unsupported language"

	phoneTag   = "phone"
	phoneText  = "enter a valid phone number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ]{7,20}$`)

	sortedRoles = sortedCopy(AllRoles)
)

func init() {
	_ = core.Validate.RegisterValidation(userRoleTag, userRoleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, userRoleTag, userRoleText)

	_ = core.Validate.RegisterValidation(languageTag, languageValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, languageTag, languageText)

	_ = core.Validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, phoneTag, phoneText)
}

// IsRole reports whether role is one of AllRoles.
func IsRole(role string) bool {
	idx := sort.SearchStrings(sortedRoles, role)
	return idx < len(sortedRoles) && sortedRoles[idx] == role
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

// Custom Validators

func userRoleValidation(fl validator.FieldLevel) bool {
	return IsRole(fl.Field().String())
}

func languageValidation(fl validator.FieldLevel) bool {
	lang := fl.Field().String()
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}
