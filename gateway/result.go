package gateway

import (
	pkgerrors "github.com/kevin07696/gateway-kit/pkg/errors"
)

// ErrorCode is the shared cross-vendor decline/error taxonomy. Vendor codes
// with no mapping keep their raw value in Result.Params and leave ErrorCode
// at the vendor table's documented fallback.
type ErrorCode string

const (
	ErrIncorrectNumber    ErrorCode = "incorrect_number"
	ErrInvalidNumber      ErrorCode = "invalid_number"
	ErrInvalidExpiryDate  ErrorCode = "invalid_expiry_date"
	ErrInvalidCVC         ErrorCode = "invalid_cvc"
	ErrExpiredCard        ErrorCode = "expired_card"
	ErrIncorrectCVC       ErrorCode = "incorrect_cvc"
	ErrIncorrectZip       ErrorCode = "incorrect_zip"
	ErrIncorrectAddress   ErrorCode = "incorrect_address"
	ErrCardDeclined       ErrorCode = "card_declined"
	ErrProcessingError    ErrorCode = "processing_error"
	ErrCallIssuer         ErrorCode = "call_issuer"
	ErrPickupCard         ErrorCode = "pickup_card"
	ErrConfigError        ErrorCode = "config_error"
	ErrUnsupportedFeature ErrorCode = "unsupported_feature"
)

// Result is the normalized outcome of one gateway operation. Authorization
// is the only value callers persist: it is the token later Capture, Refund,
// and Void calls accept for the same vendor, composite where the vendor
// needs more than one reference (a single documented delimiter per vendor).
type Result struct {
	Success       bool
	Message       string
	Params        map[string]string
	Authorization string
	ErrorCode     ErrorCode
	TestMode      bool
	AVSResult     string
	CVVResult     string
}

// Param returns a raw vendor response field, or "" when absent
func (r *Result) Param(key string) string {
	if r == nil || r.Params == nil {
		return ""
	}
	return r.Params[key]
}

var categories = map[ErrorCode]pkgerrors.ErrorCategory{
	ErrIncorrectNumber:    pkgerrors.CategoryCard,
	ErrInvalidNumber:      pkgerrors.CategoryCard,
	ErrInvalidExpiryDate:  pkgerrors.CategoryCard,
	ErrInvalidCVC:         pkgerrors.CategoryCard,
	ErrExpiredCard:        pkgerrors.CategoryCard,
	ErrIncorrectCVC:       pkgerrors.CategoryCard,
	ErrIncorrectZip:       pkgerrors.CategoryCard,
	ErrIncorrectAddress:   pkgerrors.CategoryCard,
	ErrCardDeclined:       pkgerrors.CategoryDeclined,
	ErrCallIssuer:         pkgerrors.CategoryFraud,
	ErrPickupCard:         pkgerrors.CategoryFraud,
	ErrProcessingError:    pkgerrors.CategoryProcessing,
	ErrConfigError:        pkgerrors.CategoryConfig,
	ErrUnsupportedFeature: pkgerrors.CategoryConfig,
}

// Category reports how a caller should handle the code. Unmapped codes
// (including the empty vendor-fallback code) classify as processing.
func (c ErrorCode) Category() pkgerrors.ErrorCategory {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return pkgerrors.CategoryProcessing
}

// Err promotes a declined result to a *errors.PaymentError, so callers at
// an error-shaped boundary can write `if err := res.Err(); err != nil`.
// Approved results (and nil results) yield nil.
func (r *Result) Err() error {
	if r == nil || r.Success {
		return nil
	}
	return pkgerrors.NewPaymentError(
		string(r.ErrorCode),
		r.Message,
		r.ErrorCode.Category(),
		r.ErrorCode == ErrProcessingError,
	)
}
