package gateway

import "strings"

// NotProvided is the placeholder some vendors require for an absent but
// mandatory address field. Preserved vendor behavior: sending the literal
// string keeps otherwise-valid transactions from being rejected.
const NotProvided = "Not Provided"

// Address carries billing or shipping address fields. Callers may populate
// either the combined Address1 form or the split Street/HouseNumber form;
// accessors reconcile the two.
type Address struct {
	Name        string
	Company     string
	Address1    string
	Address2    string
	Street      string
	HouseNumber string
	City        string
	State       string
	Zip         string
	Country     string
	Phone       string
}

// Line1 returns the first address line, preferring the explicit split
// Street/HouseNumber fields over Address1
func (a *Address) Line1() string {
	if a == nil {
		return ""
	}
	if a.Street != "" {
		return strings.TrimSpace(a.Street + " " + a.HouseNumber)
	}
	return a.Address1
}

// StreetOrDefault returns the street line, or the NotProvided placeholder
// when no street was supplied
func (a *Address) StreetOrDefault() string {
	if line := a.Line1(); line != "" {
		return line
	}
	return NotProvided
}

// Field returns a named field nil-safely; used by adapters that flatten
// addresses into vendor payloads
func (a *Address) Field(get func(Address) string) string {
	if a == nil {
		return ""
	}
	return get(*a)
}

// Stored-credential initiators and reasons, per card-network mandates.
const (
	InitiatorCardholder = "cardholder"
	InitiatorMerchant   = "merchant"

	ReasonRecurring   = "recurring"
	ReasonInstallment = "installment"
	ReasonUnscheduled = "unscheduled"
)

// StoredCredential describes whether a call uses a stored payment method
// and why. Each adapter translates this into its vendor's own enumerated
// vocabulary via an explicit lookup, never by inference.
type StoredCredential struct {
	// Initial marks the first transaction in a stored-credential series
	Initial bool
	// Initiator is who triggered the transaction: cardholder or merchant
	Initiator string
	// Reason is the series type: recurring, installment, or unscheduled
	Reason string
	// NetworkTransactionID links merchant-initiated follow-ups to the
	// network reference returned on the initial transaction
	NetworkTransactionID string
}

// ThreeDSecure carries externally obtained 3-D Secure authentication data,
// passed through to the vendor opaquely
type ThreeDSecure struct {
	Cavv            string
	Xid             string
	Eci             string
	Version         string
	DSTransactionID string
}

// Options is the per-call bag of recognized optional fields plus an opaque
// passthrough map. Unknown Extras keys are forwarded to vendors that accept
// them and otherwise ignored, never an error.
type Options struct {
	OrderID          string
	Description      string
	Email            string
	IP               string
	Currency         string // overrides the Money currency when set
	BillingAddress   *Address
	ShippingAddress  *Address
	StoredCredential *StoredCredential
	ThreeDSecure     *ThreeDSecure
	IdempotencyKey   string
	Extras           map[string]string
}

// CurrencyFor resolves the wire currency for an amount: the per-call
// override when present, else the money's own currency
func (o Options) CurrencyFor(m Money) string {
	if o.Currency != "" {
		return o.Currency
	}
	return m.Currency
}

// Extra returns a passthrough value, or "" when absent
func (o Options) Extra(key string) string {
	return o.Extras[key]
}
