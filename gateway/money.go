package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/kevin07696/gateway-kit/pkg/currency"
)

// Money is an amount in integer minor units (cents) with its currency code.
// Adapters convert to each vendor's decimal convention at build time; money
// never passes through floats.
type Money struct {
	Amount   int64
	Currency string
}

// NewMoney creates a Money value
func NewMoney(minorUnits int64, currencyCode string) Money {
	return Money{Amount: minorUnits, Currency: currencyCode}
}

// Format renders the amount as the decimal string for the given currency
// (the Options currency override, when set, wins over m.Currency)
func (m Money) Format(currencyCode string) string {
	return currency.Format(m.Amount, currencyCode)
}

// MinorUnits renders the amount as integer minor units in the currency's
// own exponent
func (m Money) MinorUnits(currencyCode string) string {
	return currency.MinorUnits(m.Amount, currencyCode)
}

// Decimal returns the amount as an exact decimal in major units
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}
