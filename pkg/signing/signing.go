// Package signing computes the request signatures gateways require:
// keyed HMAC digests and plain SHA digests over an exact field-order
// concatenation. The concatenation itself is part of each vendor's wire
// contract and is assembled by the calling adapter.
package signing

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
)

// Algorithm selects the SHA family member used for signing
type Algorithm string

const (
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

func newHash(alg Algorithm) (func() hash.Hash, error) {
	switch alg {
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", alg)
	}
}

// Digest returns the hex-encoded SHA digest of message
func Digest(alg Algorithm, message []byte) (string, error) {
	newFn, err := newHash(alg)
	if err != nil {
		return "", err
	}
	h := newFn()
	h.Write(message)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HMAC returns the hex-encoded keyed HMAC of message
func HMAC(alg Algorithm, key string, message []byte) (string, error) {
	newFn, err := newHash(alg)
	if err != nil {
		return "", err
	}
	h := hmac.New(newFn, []byte(key))
	h.Write(message)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ValidateHMAC verifies a hex-encoded HMAC signature in constant time
// (used for webhook callbacks)
func ValidateHMAC(alg Algorithm, key string, message []byte, signature string) bool {
	expected, err := HMAC(alg, key, message)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}
