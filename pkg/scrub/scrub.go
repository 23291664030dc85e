// Package scrub redacts sensitive values from wire transcripts before they
// are logged. Scrubbing is purely pattern-based: card numbers, security
// codes, and credentials appearing as labeled fields are replaced with
// [FILTERED]; every other byte of the transcript is preserved.
package scrub

import (
	"regexp"
)

// Filtered is the placeholder substituted for redacted values
const Filtered = "[FILTERED]"

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Ordered so that header credentials are handled before generic labeled
// fields. Each pattern keeps the label and surrounding structure intact
// and replaces only the value span.
var rules = []rule{
	// HTTP auth headers: keep the scheme, replace the credential
	{regexp.MustCompile(`(Authorization: Basic )[A-Za-z0-9+/=]+`), "${1}" + Filtered},
	{regexp.MustCompile(`(Authorization: Bearer )[A-Za-z0-9\-._~+/]+=*`), "${1}" + Filtered},
	{regexp.MustCompile(`(?i)(x-api-key: )\S+`), "${1}" + Filtered},

	// primary account numbers in form, query-string, and JSON fields
	{regexp.MustCompile(`(?i)((?:cardno|card_?number|account_?n(?:br|umber)|pan|number)"?\s*[:=]\s*"?)\d{12,19}`), "${1}" + Filtered},
	// primary account numbers in XML elements
	{regexp.MustCompile(`(?i)(<(?:accountNumber|cardNumber|cardNo|number)>)\d{12,19}(<)`), "${1}" + Filtered + "${2}"},

	// card security codes
	{regexp.MustCompile(`(?i)((?:cvv2?|cvc2?|cv_?number|verification_?value|security_?code)"?\s*[:=]\s*"?)\d{3,4}`), "${1}" + Filtered},
	{regexp.MustCompile(`(?i)(<(?:cvNumber|cvv2?|cvc2?)>)\d{3,4}(<)`), "${1}" + Filtered + "${2}"},

	// shared secrets, passwords, API keys
	{regexp.MustCompile(`(?i)((?:pswd|password|passphrase|transaction_?key|api_?key|secret_?key|epi_?key)"?\s*[:=]\s*"?)[^&"<\s]+`), "${1}" + Filtered},
	{regexp.MustCompile(`(?i)(<((?:\w+:)?password)[^>]*>)[^<]+(<)`), "${1}" + Filtered + "${3}"},
}

// Transcript replaces every labeled card number, CVV, and credential in the
// transcript with [FILTERED]. The transformation is idempotent:
// Transcript(Transcript(s)) == Transcript(s).
func Transcript(s string) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}
