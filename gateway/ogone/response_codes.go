package ogone

import (
	"strings"

	"github.com/kevin07696/gateway-kit/gateway"
)

// ncErrors maps documented NCERROR codes to shared error codes. The table
// covers the codes seen in practice; unmapped codes fall back by family:
// 3xxxxxxx are acquirer declines, everything else is a processing error.
var ncErrors = map[string]gateway.ErrorCode{
	"30051001": gateway.ErrCardDeclined,    // authorization refused
	"30141001": gateway.ErrInvalidNumber,   // invalid card number format
	"30171001": gateway.ErrExpiredCard,     // expiry date error
	"30171002": gateway.ErrInvalidExpiryDate,
	"30221001": gateway.ErrCallIssuer,      // refer to issuer
	"30331001": gateway.ErrInvalidCVC,
	"40001134": gateway.ErrCardDeclined,    // 3-D Secure authentication failed
	"50001054": gateway.ErrIncorrectNumber, // card number incorrect
	"50001111": gateway.ErrProcessingError, // data validation error
	"50001113": gateway.ErrProcessingError, // payment already processed
	"50001184": gateway.ErrConfigError,     // authentication failure
}

func mapNCError(code string) gateway.ErrorCode {
	if mapped, ok := ncErrors[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "3") {
		return gateway.ErrCardDeclined
	}
	return gateway.ErrProcessingError
}
