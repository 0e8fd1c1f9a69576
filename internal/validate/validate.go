// Package validate holds the input patterns shared by the request
// handlers, plus the struct validator used for JSON bodies.
package validate

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// uuid is the session and secret key format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}(?:-[0-9a-fA-F]{4}){3}-[0-9a-fA-F]{12}$`)
	// any23 is a legacy server password
	any23Regex = regexp.MustCompile(`^[^\s][^\t\r\n]{2,21}[^\s]$`)
	// any30 is an evol server password
	any30Regex = regexp.MustCompile(`^[^\s][^\t\r\n]{6,28}[^\s]$`)
	// alnum23 is a game account username
	alnum23Regex = regexp.MustCompile(`^\w{4,23}$`)
	// gid is a tmwa/hercules account id
	gidRegex = regexp.MustCompile(`^[23][0-9]{6}$`)
	// email requires a TLD on top of the usual address shape
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.$&+=_~-]{1,255}@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?){1,9}$`)
)

func UUID(s string) bool { return uuidRegex.MatchString(s) }

func LegacyPassword(s string) bool { return any23Regex.MatchString(s) }

func EvolPassword(s string) bool { return any30Regex.MatchString(s) }

func Username(s string) bool { return alnum23Regex.MatchString(s) }

func GameID(s string) bool { return gidRegex.MatchString(s) }

// Email checks the address shape and the hard 320-char ceiling of the
// identity table.
func Email(s string) bool {
	return len(s) < 320 && emailRegex.MatchString(s)
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// New builds the struct validator with the custom tags used by request
// DTOs.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("vaultemail", func(fl validator.FieldLevel) bool {
		return Email(fl.Field().String())
	})
	_ = v.RegisterValidation("uuidkey", func(fl validator.FieldLevel) bool {
		return UUID(fl.Field().String())
	})
	_ = v.RegisterValidation("gameuser", func(fl validator.FieldLevel) bool {
		return Username(fl.Field().String())
	})
	return v
}
