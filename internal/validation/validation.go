// Package validation provides pure input checks and sanitization for the
// public submission form. All functions are side-effect free and never error.
package validation

import (
	"html"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator instances cache compiled rules.
var validate = validator.New()

// phonePattern allows digits, a leading +, spaces, parens and hyphens,
// with a minimum total length of 6.
var phonePattern = regexp.MustCompile(`^[+0-9 ()-]{6,}$`)

// Sanitize trims surrounding whitespace and HTML-escapes the value so it is
// safe to embed in markup. Stored values are escaped once at intake;
// renderers must not escape them again.
func Sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// IsRequired reports whether the value is non-empty after trimming.
func IsRequired(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidEmail reports whether the value matches standard mailbox grammar.
func IsValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// IsValidPhone reports whether the value looks like a phone number.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}
