// Package store persists the outcome of gateway operations so follow-up
// calls (capture, refund, void) and reconciliation can look up earlier
// authorizations without re-asking the vendor.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kevin07696/gateway-kit/gateway"
)

// Record is one persisted gateway operation outcome
type Record struct {
	ID            uuid.UUID
	Gateway       string
	Operation     string
	OrderID       string
	Authorization string
	Success       bool
	Message       string
	ErrorCode     string
	Amount        int64
	Currency      string
	Params        map[string]string
	CreatedAt     time.Time
}

// RecordStore persists and retrieves operation records
type RecordStore interface {
	// Save inserts a record; the record's ID is assigned when zero
	Save(ctx context.Context, rec *Record) error

	// FindByAuthorization returns the most recent record for an
	// authorization token under a gateway
	FindByAuthorization(ctx context.Context, gatewayName, authorization string) (*Record, error)

	// ListByOrder returns all records for an order under a gateway,
	// oldest first
	ListByOrder(ctx context.Context, gatewayName, orderID string) ([]*Record, error)
}

// FromResult builds a Record from a normalized operation outcome
func FromResult(gatewayName, operation string, amount gateway.Money, orderID string, res *gateway.Result) *Record {
	return &Record{
		ID:            uuid.New(),
		Gateway:       gatewayName,
		Operation:     operation,
		OrderID:       orderID,
		Authorization: res.Authorization,
		Success:       res.Success,
		Message:       res.Message,
		ErrorCode:     string(res.ErrorCode),
		Amount:        amount.Amount,
		Currency:      amount.Currency,
		Params:        res.Params,
	}
}
