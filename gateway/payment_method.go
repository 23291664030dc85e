package gateway

import (
	"fmt"
	"strings"

	pkgerrors "github.com/kevin07696/gateway-kit/pkg/errors"
)

// PaymentMethod is the tagged union of instrument types a gateway call can
// carry. Exactly one variant is active per call.
type PaymentMethod interface {
	paymentMethod()
}

// CreditCard is a raw card: number, expiry, security code, holder name.
// Brand detection and LUHN validation are the caller's concern; adapters
// only check the fields they are about to send.
type CreditCard struct {
	Number            string
	Month             int
	Year              int
	VerificationValue string
	FirstName         string
	LastName          string
	Brand             string
}

func (CreditCard) paymentMethod() {}

// Name returns the holder name as a single string
func (c CreditCard) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ExpiryMonth returns the zero-padded two-digit month
func (c CreditCard) ExpiryMonth() string {
	return fmt.Sprintf("%02d", c.Month)
}

// ExpiryYearTwo returns the last two digits of the year
func (c CreditCard) ExpiryYearTwo() string {
	return fmt.Sprintf("%02d", c.Year%100)
}

// ExpiryYearFour returns the four-digit year
func (c CreditCard) ExpiryYearFour() string {
	year := c.Year
	if year < 100 {
		year += 2000
	}
	return fmt.Sprintf("%04d", year)
}

// Validate checks the fields every vendor requires for a raw-card call
func (c CreditCard) Validate() error {
	if c.Number == "" {
		return pkgerrors.NewValidationError("number", "card number is required")
	}
	if c.Month < 1 || c.Month > 12 {
		return pkgerrors.NewValidationError("month", "expiry month must be 1-12")
	}
	if c.Year == 0 {
		return pkgerrors.NewValidationError("year", "expiry year is required")
	}
	return nil
}

// Token references a previously stored payment method at the vendor
type Token struct {
	Value string
}

func (Token) paymentMethod() {}

// BankAccount is a check/ACH instrument
type BankAccount struct {
	Name          string
	RoutingNumber string
	AccountNumber string
	AccountType   string // "checking" or "savings"
}

func (BankAccount) paymentMethod() {}

// Validate checks the fields required to debit or credit an account
func (b BankAccount) Validate() error {
	if b.RoutingNumber == "" {
		return pkgerrors.NewValidationError("routing_number", "routing number is required")
	}
	if b.AccountNumber == "" {
		return pkgerrors.NewValidationError("account_number", "account number is required")
	}
	return nil
}

// NetworkToken is a network-tokenized card: token PAN plus the cryptogram
// issued for this transaction
type NetworkToken struct {
	Number     string
	Month      int
	Year       int
	Brand      string
	Cryptogram string
	ECI        string
}

func (NetworkToken) paymentMethod() {}
