package domain

import "github.com/shopspring/decimal"

// Cash and volume columns are decimal(20,8).
const (
	AmountScale         = 8
	AmountIntegerDigits = 12
)

var amountLimit = decimal.New(1, AmountIntegerDigits)

// CheckAmount rejects a value the ledger columns cannot hold exactly.
func CheckAmount(field string, d decimal.Decimal) error {
	if !d.Truncate(AmountScale).Equal(d) {
		return InvalidArgument("%s must have at most %d decimal places.", field, AmountScale)
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return InvalidArgument("%s must be less than %s.", field, amountLimit.String())
	}
	return nil
}

// CashValue is the cash moved by trading volume units at price, rounded to the
// ledger scale. Balances and transaction totals both use it.
func CashValue(volume, price decimal.Decimal) decimal.Decimal {
	return volume.Mul(price).Round(AmountScale)
}
