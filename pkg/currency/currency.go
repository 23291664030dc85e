// Package currency formats integer minor-unit amounts according to each
// currency's decimal exponent. Amounts enter the library as hundredths
// (cents) regardless of currency; formatters convert to the shape each
// gateway sends on the wire.
package currency

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// nonFractional lists 0-decimal currencies. Amounts are divided by 100
// and sent as whole units.
var nonFractional = map[string]bool{
	"BIF": true,
	"BYR": true,
	"CLP": true,
	"CVE": true,
	"DJF": true,
	"GNF": true,
	"ISK": true,
	"JPY": true,
	"KMF": true,
	"KRW": true,
	"PYG": true,
	"RWF": true,
	"UGX": true,
	"VND": true,
	"VUV": true,
	"XAF": true,
	"XOF": true,
	"XPF": true,
}

// threeDecimal lists 3-decimal currencies. Amounts pass through unchanged:
// the caller-supplied minor units already carry the extra precision.
var threeDecimal = map[string]bool{
	"BHD": true,
	"IQD": true,
	"JOD": true,
	"KWD": true,
	"LYD": true,
	"OMR": true,
	"TND": true,
}

// Exponent returns the number of decimal digits for a currency code.
// Unknown currencies default to 2.
func Exponent(code string) int {
	switch {
	case nonFractional[code]:
		return 0
	case threeDecimal[code]:
		return 3
	default:
		return 2
	}
}

// Format renders a minor-unit amount as the decimal string a form- or
// XML-based gateway expects:
//
//	Format(100, "USD") == "1.00"
//	Format(100, "JPY") == "1"
//	Format(100, "OMR") == "100"
func Format(minorUnits int64, code string) string {
	switch Exponent(code) {
	case 0:
		return strconv.FormatInt(minorUnits/100, 10)
	case 3:
		return strconv.FormatInt(minorUnits, 10)
	default:
		return decimal.New(minorUnits, -2).StringFixed(2)
	}
}

// MinorUnits renders a minor-unit amount as the integer string expected by
// gateways that take amounts in the currency's own smallest unit (no
// decimal point on the wire):
//
//	MinorUnits(100, "USD") == "100"
//	MinorUnits(100, "JPY") == "1"
//	MinorUnits(100, "OMR") == "100"
func MinorUnits(minorUnits int64, code string) string {
	return strconv.FormatInt(MinorUnitsInt(minorUnits, code), 10)
}

// MinorUnitsInt is MinorUnits for gateways that serialize the amount as a
// JSON number rather than a string
func MinorUnitsInt(minorUnits int64, code string) int64 {
	if Exponent(code) == 0 {
		return minorUnits / 100
	}
	return minorUnits
}
