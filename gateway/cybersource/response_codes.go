package cybersource

import "github.com/kevin07696/gateway-kit/gateway"

// reasonMessages carries the vendor's documented meaning per reasonCode;
// the wire reply itself never includes human-readable text
var reasonMessages = map[string]string{
	"100": "Successful transaction",
	"101": "The request is missing one or more required fields",
	"102": "One or more fields in the request contains invalid data",
	"110": "Only a partial amount was approved",
	"150": "General system failure",
	"151": "The request was received but there was a server timeout",
	"152": "The request was received, but a service did not finish running in time",
	"200": "The authorization request was approved by the issuing bank but declined by CyberSource because it did not pass the AVS check",
	"201": "The issuing bank has questions about the request",
	"202": "Expired card",
	"203": "General decline of the card",
	"204": "Insufficient funds in the account",
	"205": "Stolen or lost card",
	"207": "Issuing bank unavailable",
	"208": "Inactive card or card not authorized for card-not-present transactions",
	"209": "American Express Card Identification Digits (CID) did not match",
	"210": "The card has reached the credit limit",
	"211": "Invalid card verification number",
	"221": "The customer matched an entry on the processor's negative file",
	"230": "The authorization request was approved by the issuing bank but declined by CyberSource because it did not pass the card verification number check",
	"231": "Invalid account number",
	"232": "The card type is not accepted by the payment processor",
	"233": "General decline by the processor",
	"234": "There is a problem with your CyberSource merchant configuration",
	"236": "Processor failure",
	"240": "The card type sent is invalid or does not correlate with the card number",
}

var reasonCodes = map[string]gateway.ErrorCode{
	"101": gateway.ErrProcessingError,
	"102": gateway.ErrProcessingError,
	"150": gateway.ErrProcessingError,
	"151": gateway.ErrProcessingError,
	"152": gateway.ErrProcessingError,
	"200": gateway.ErrIncorrectAddress,
	"201": gateway.ErrCallIssuer,
	"202": gateway.ErrExpiredCard,
	"203": gateway.ErrCardDeclined,
	"204": gateway.ErrCardDeclined,
	"205": gateway.ErrPickupCard,
	"207": gateway.ErrProcessingError,
	"208": gateway.ErrCardDeclined,
	"209": gateway.ErrIncorrectCVC,
	"210": gateway.ErrCardDeclined,
	"211": gateway.ErrInvalidCVC,
	"221": gateway.ErrCardDeclined,
	"230": gateway.ErrIncorrectCVC,
	"231": gateway.ErrInvalidNumber,
	"232": gateway.ErrConfigError,
	"233": gateway.ErrProcessingError,
	"234": gateway.ErrConfigError,
	"236": gateway.ErrProcessingError,
	"240": gateway.ErrInvalidNumber,
}

func reasonMessage(reasonCode, faultstring string) string {
	if m, ok := reasonMessages[reasonCode]; ok {
		return m
	}
	if faultstring != "" {
		return faultstring
	}
	return reasonCode
}

func mapReasonCode(code string) gateway.ErrorCode {
	if mapped, ok := reasonCodes[code]; ok {
		return mapped
	}
	return gateway.ErrProcessingError
}
