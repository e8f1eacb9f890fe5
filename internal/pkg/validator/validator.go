// Package validator wraps go-playground/validator with a process-wide instance,
// wallet-domain tags and uniform error formatting.
//
// Besides the library's built-in tags (including eth_addr), it registers:
//
//	tx_hash  0x-prefixed 32-byte hex string
//	wei      non-negative base-10 integer string
package validator

import (
	"errors"
	"fmt"
	"regexp"

	gvalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidationFailed is returned as the first error in a multi-error chain when validation fails.
var ErrValidationFailed = errors.New("struct validation failed")

var validator *gvalidator.Validate

// errStringFormat defines the template used to describe individual validation errors.
//
// Example: "'Hash': value '0x' does not meet the requirements for the 'tx_hash' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

var txHashPattern = regexp.MustCompile(`^0[xX][0-9a-fA-F]{64}$`)

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())

	_ = validator.RegisterValidation("tx_hash", func(fl gvalidator.FieldLevel) bool {
		return txHashPattern.MatchString(fl.Field().String())
	})

	_ = validator.RegisterValidation("wei", func(fl gvalidator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return !d.IsNegative() && d.Equal(d.Truncate(0))
	})
}

// formatError turns validator errors into ErrValidationFailed joined with one
// message per failing field. Other errors pass through unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		field := validationErr.Field()
		if field == "" {
			field = "value"
		}

		errs = append(errs, fmt.Errorf(errStringFormat, field, validationErr.Value(), validationErr.Tag()))
	}

	return errors.Join(errs...)
}

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}

// Var checks a single value against tag, e.g. Var(addr, "required,eth_addr").
func Var(v any, tag string) error {
	if err := validator.Var(v, tag); err != nil {
		return formatError(err)
	}

	return nil
}
