package adyen

import "github.com/kevin07696/gateway-kit/gateway"

// refusalReasons maps Adyen refusal text to shared error codes. Unknown
// reasons fall through to card_declined when the vendor refused, or to
// processing_error for transport-level failures.
var refusalReasons = map[string]gateway.ErrorCode{
	"Refused":                        gateway.ErrCardDeclined,
	"Not enough balance":             gateway.ErrCardDeclined,
	"Transaction Not Permitted":      gateway.ErrCardDeclined,
	"Restricted Card":                gateway.ErrCardDeclined,
	"Referral":                       gateway.ErrCallIssuer,
	"Issuer Suspected Fraud":         gateway.ErrCardDeclined,
	"Blocked Card":                   gateway.ErrPickupCard,
	"Expired Card":                   gateway.ErrExpiredCard,
	"Invalid Card Number":            gateway.ErrInvalidNumber,
	"CVC Declined":                   gateway.ErrInvalidCVC,
	"Invalid Pin":                    gateway.ErrIncorrectCVC,
	"Pin tries exceeded":             gateway.ErrCardDeclined,
	"Acquirer Error":                 gateway.ErrProcessingError,
	"Acquirer Fraud":                 gateway.ErrCardDeclined,
	"Declined Non Generic":           gateway.ErrCardDeclined,
	"Invalid Amount":                 gateway.ErrProcessingError,
	"Issuer Unavailable":             gateway.ErrProcessingError,
	"Withdrawal amount exceeded":     gateway.ErrCardDeclined,
	"Withdrawal count exceeded":      gateway.ErrCardDeclined,
	"AVS Declined":                   gateway.ErrIncorrectAddress,
	"FRAUD":                          gateway.ErrCardDeclined,
	"FRAUD-CANCELLED":                gateway.ErrCardDeclined,
	"3d-secure: Authentication failed": gateway.ErrCardDeclined,
}

// errorTypes classifies Adyen API error envelopes (non-payment failures)
var errorTypes = map[string]gateway.ErrorCode{
	"validation":     gateway.ErrProcessingError,
	"security":       gateway.ErrConfigError,
	"configuration":  gateway.ErrConfigError,
	"internal":       gateway.ErrProcessingError,
	"not_allowed":    gateway.ErrConfigError,
	"unauthorised":   gateway.ErrConfigError,
	"unauthorized":   gateway.ErrConfigError,
}

func mapRefusal(params map[string]string) gateway.ErrorCode {
	if code, ok := refusalReasons[params["refusalReason"]]; ok {
		return code
	}
	if code, ok := errorTypes[params["errorType"]]; ok {
		return code
	}
	if params["refusalReason"] != "" || params["resultCode"] == "Refused" {
		return gateway.ErrCardDeclined
	}
	return gateway.ErrProcessingError
}
