package ogone

import (
	"net/url"
	"sort"
	"strings"

	"github.com/kevin07696/gateway-kit/pkg/signing"
)

// signatureFor computes the SHASIGN over a request: every non-empty field
// except SHASIGN itself, sorted by uppercased name, concatenated as
// "FIELD=value" with the shared secret appended after each pair, hashed,
// and uppercased.
func signatureFor(values url.Values, secret string, algo signing.Algorithm) (string, error) {
	keys := make([]string, 0, len(values))
	for k, vs := range values {
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		if strings.EqualFold(k, "SHASIGN") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToUpper(keys[i]) < strings.ToUpper(keys[j])
	})

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strings.ToUpper(k))
		b.WriteByte('=')
		b.WriteString(values.Get(k))
		b.WriteString(secret)
	}
	digest, err := signing.Digest(algo, []byte(b.String()))
	if err != nil {
		return "", err
	}
	return strings.ToUpper(digest), nil
}

// validateSignature checks the SHASIGN on an inbound payload (server
// callbacks use the same scheme with the SHA-out secret)
func validateSignature(values url.Values, secret string, algo signing.Algorithm) bool {
	want := values.Get("SHASIGN")
	if want == "" {
		return false
	}
	got, err := signatureFor(values, secret, algo)
	if err != nil {
		return false
	}
	return got == strings.ToUpper(want)
}
