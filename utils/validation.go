package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Violation is one failed constraint on a request field
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations collects every failed constraint of a request. A nil or empty
// Violations means the request is valid.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, violation := range v {
		parts = append(parts, violation.Field+": "+violation.Message)
	}
	return strings.Join(parts, "; ")
}

// Add records a violation
func (v *Violations) Add(field, format string, args ...interface{}) {
	*v = append(*v, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns the violations as an error, or nil when there are none
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Has reports whether the given field has a violation
func (v Violations) Has(field string) bool {
	for _, violation := range v {
		if violation.Field == field {
			return true
		}
	}
	return false
}

// RequireText checks that a string field is not blank
func (v *Violations) RequireText(value, field string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

// RequirePositive checks that an amount is greater than zero
func (v *Violations) RequirePositive(value decimal.Decimal, field string) {
	if !value.IsPositive() {
		v.Add(field, "must be greater than zero")
	}
}

// RequireNonZero checks that an amount is not zero
func (v *Violations) RequireNonZero(value decimal.Decimal, field string) {
	if value.IsZero() {
		v.Add(field, "must not be zero")
	}
}

// RequirePennies checks that an amount has at most two decimal places
func (v *Violations) RequirePennies(value decimal.Decimal, field string) {
	if !value.Equal(RoundMoney(value)) {
		v.Add(field, "must not have more than two decimal places")
	}
}

// RequireNonNegative checks that a count is not negative
func (v *Violations) RequireNonNegative(value int, field string) {
	if value < 0 {
		v.Add(field, "cannot be negative")
	}
}
