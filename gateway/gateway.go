// Package gateway defines the normalized payment-operation contract that
// every vendor adapter in this module implements: one interface covering
// purchase, authorize, capture, refund, void, credit, store, and verify,
// with vendor responses mapped into a shared Result shape.
//
// Declined payments are not errors. Adapters return Result{Success: false}
// with the vendor's message and a shared error code; the error return is
// reserved for invalid arguments (ValidationError) and transport faults the
// adapter could not interpret as a vendor error payload.
package gateway

import (
	"context"
)

// Gateway is the cross-vendor operation set. Each implementation is an
// immutable credential set plus pure request/response mapping, so a single
// instance is safe for concurrent use. Operations are synchronous; no
// adapter retries on its own, and cancellation of an issued call is
// expressed by the caller as a compensating Void, never an in-flight abort.
type Gateway interface {
	// Purchase authorizes and captures in one step
	Purchase(ctx context.Context, amount Money, method PaymentMethod, opts Options) (*Result, error)

	// Authorize places a hold; funds move on a later Capture
	Authorize(ctx context.Context, amount Money, method PaymentMethod, opts Options) (*Result, error)

	// Capture settles a prior authorization, referenced by its
	// Result.Authorization token
	Capture(ctx context.Context, amount Money, authorization string, opts Options) (*Result, error)

	// Refund returns funds from a prior settled transaction
	Refund(ctx context.Context, amount Money, authorization string, opts Options) (*Result, error)

	// Void cancels a prior authorization or unsettled transaction
	Void(ctx context.Context, authorization string, opts Options) (*Result, error)

	// Credit pushes funds to a payment method with no prior transaction
	Credit(ctx context.Context, amount Money, method PaymentMethod, opts Options) (*Result, error)

	// Store tokenizes a payment method for later use; the returned
	// Authorization is the vendor's token reference
	Store(ctx context.Context, method PaymentMethod, opts Options) (*Result, error)

	// Verify checks a payment method without moving funds. Where the vendor
	// supports zero-amount authorization that is a single call; otherwise it
	// is an explicit authorize-then-void sequence in which the void's
	// failure does not fail the verify (the result carries
	// params["void_succeeded"] so callers can detect a dangling
	// authorization).
	Verify(ctx context.Context, method PaymentMethod, opts Options) (*Result, error)
}

// Operation names used in logs and metrics.
const (
	OpPurchase  = "purchase"
	OpAuthorize = "authorize"
	OpCapture   = "capture"
	OpRefund    = "refund"
	OpVoid      = "void"
	OpCredit    = "credit"
	OpStore     = "store"
	OpVerify    = "verify"
)
