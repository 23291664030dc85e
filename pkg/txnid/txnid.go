// Package txnid derives vendor-safe transaction references from UUIDs.
package txnid

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// Numeric converts a UUID to a numeric transaction reference for gateways
// that cap references at 10 numeric digits. FNV-1a 32-bit keeps the mapping
// deterministic, so the same UUID always produces the same reference and
// retried submissions stay idempotent vendor-side.
func Numeric(id uuid.UUID) string {
	h := fnv.New32a()
	h.Write(id[:])
	return fmt.Sprintf("%d", h.Sum32())
}

// NewNumeric generates a fresh random UUID and returns its numeric reference
func NewNumeric() string {
	return Numeric(uuid.New())
}
