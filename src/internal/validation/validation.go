package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

// Limits holds the numeric and length bounds applied to recipe writes.
// They come from configuration and are passed into the services explicitly
// instead of being read from package globals.
type Limits struct {
	CookingTimeMin int
	CookingTimeMax int
	AmountMin      int
	AmountMax      int
	NameMax        int
}

// LimitsFromConfig reads validation limits from configuration
func LimitsFromConfig(cfg *viper.Viper) Limits {
	l := Limits{
		CookingTimeMin: cfg.GetInt("limits.cooking_time_min"),
		CookingTimeMax: cfg.GetInt("limits.cooking_time_max"),
		AmountMin:      cfg.GetInt("limits.amount_min"),
		AmountMax:      cfg.GetInt("limits.amount_max"),
		NameMax:        cfg.GetInt("limits.name_max"),
	}
	if l.CookingTimeMin <= 0 {
		l.CookingTimeMin = 1
	}
	if l.CookingTimeMax <= 0 {
		l.CookingTimeMax = 500
	}
	if l.AmountMin <= 0 {
		l.AmountMin = 1
	}
	if l.AmountMax <= 0 {
		l.AmountMax = 1000
	}
	if l.NameMax <= 0 {
		l.NameMax = 200
	}
	return l
}

var (
	hexDigits   = "0123456789abcdefABCDEF"
	nameRe      = regexp.MustCompile(`^[\p{L}0-9_ ]+$`)
	usernameRe  = regexp.MustCompile(`^[\p{L}0-9_@+.-]+$`)
	personRe    = regexp.MustCompile(`^[\p{L} ]+$`)
	slugRe      = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// NormalizeHexColor validates a 3- or 6-digit hex color, with or without a
// leading '#', and returns the canonical "#RRGGBB" uppercase form.
func NormalizeHexColor(color string) (string, error) {
	c := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(c) != 3 && len(c) != 6 {
		return "", apperrors.NewValidationError("color",
			fmt.Sprintf("color %q has invalid length %d", color, len(c)))
	}
	for _, r := range c {
		if !strings.ContainsRune(hexDigits, r) {
			return "", apperrors.NewValidationError("color",
				fmt.Sprintf("color %q is not hexadecimal", color))
		}
	}
	if len(c) == 3 {
		c = fmt.Sprintf("%c%c%c%c%c%c", c[0], c[0], c[1], c[1], c[2], c[2])
	}
	return "#" + strings.ToUpper(c), nil
}

// ValidateName checks catalog names (tags, ingredients, recipes): letters,
// digits, underscore and space only.
func ValidateName(field, value string) error {
	if value == "" {
		return apperrors.NewValidationError(field, "must not be empty")
	}
	if !nameRe.MatchString(value) {
		return apperrors.NewValidationError(field,
			"only letters, digits, underscore and space are allowed")
	}
	return nil
}

// ValidateUsername checks the allowed username character set
func ValidateUsername(value string) error {
	if value == "" {
		return apperrors.NewValidationError("username", "must not be empty")
	}
	if !usernameRe.MatchString(value) {
		return apperrors.NewValidationError("username",
			"only letters, digits and _, -, @, +, . are allowed")
	}
	return nil
}

// ValidatePersonName checks first/last names: letters and spaces only
func ValidatePersonName(field, value string) error {
	if value == "" {
		return apperrors.NewValidationError(field, "must not be empty")
	}
	if !personRe.MatchString(value) {
		return apperrors.NewValidationError(field, "only letters and space are allowed")
	}
	return nil
}

// ValidateSlug checks tag slugs
func ValidateSlug(value string) error {
	if value == "" {
		return apperrors.NewValidationError("slug", "must not be empty")
	}
	if !slugRe.MatchString(value) {
		return apperrors.NewValidationError("slug",
			"only lowercase letters, digits and dashes are allowed")
	}
	return nil
}
