package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of fractional digits every stored amount and balance carries.
const AmountScale int32 = 6

// AmountLimit is the exclusive upper bound for amounts and balances: NUMERIC(20,6)
// leaves 14 integer digits.
var AmountLimit = decimal.New(1, 14)

// WithinLimit reports whether d fits the stored amount columns.
func WithinLimit(d decimal.Decimal) bool {
	return d.LessThan(AmountLimit)
}

// MaxReferenceLength bounds caller-supplied idempotency references.
const MaxReferenceLength = 80

// FormatAmount renders an amount at the ledger scale, e.g. "600.000000".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}

// HasValidScale reports whether d can be stored without losing precision.
func HasValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}
