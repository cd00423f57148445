package transferdelivery

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
)

// ValidAmount validates that a transfer amount is a positive decimal with at
// most two fraction digits, no larger than the per-transfer maximum.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}

		return d.IsPositive() && d.Exponent() >= -2 && !d.GreaterThan(domain.MaxTransferAmount)
	}

	return false
}
