package userdelivery

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidBalance validates that a balance is a non-negative decimal with at
// most two fraction digits. Unlike transfer amounts, balances have no upper
// bound beyond the column width.
var ValidBalance validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}

		return !d.IsNegative() && d.Exponent() >= -2
	}

	return false
}
