package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kevin07696/gateway-kit/pkg/errors"
)

func TestCreditCardHelpers(t *testing.T) {
	card := CreditCard{
		Number:            "4111111111111111",
		Month:             3,
		Year:              2030,
		VerificationValue: "737",
		FirstName:         "Longbob",
		LastName:          "Longsen",
	}

	assert.Equal(t, "Longbob Longsen", card.Name())
	assert.Equal(t, "03", card.ExpiryMonth())
	assert.Equal(t, "30", card.ExpiryYearTwo())
	assert.Equal(t, "2030", card.ExpiryYearFour())
}

func TestCreditCardTwoDigitYear(t *testing.T) {
	card := CreditCard{Number: "4111111111111111", Month: 12, Year: 27}

	assert.Equal(t, "27", card.ExpiryYearTwo())
	assert.Equal(t, "2027", card.ExpiryYearFour())
}

func TestCreditCardValidate(t *testing.T) {
	tests := []struct {
		name      string
		card      CreditCard
		wantField string
	}{
		{"missing number", CreditCard{Month: 1, Year: 2030}, "number"},
		{"month out of range", CreditCard{Number: "4111111111111111", Month: 13, Year: 2030}, "month"},
		{"zero month", CreditCard{Number: "4111111111111111", Year: 2030}, "month"},
		{"missing year", CreditCard{Number: "4111111111111111", Month: 6}, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			require.Error(t, err)

			var vErr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}

	valid := CreditCard{Number: "4111111111111111", Month: 6, Year: 2030}
	assert.NoError(t, valid.Validate())
}

func TestAddressLine1(t *testing.T) {
	tests := []struct {
		name string
		addr *Address
		want string
	}{
		{"nil address", nil, ""},
		{"address1 form", &Address{Address1: "456 My Street"}, "456 My Street"},
		{"split form wins", &Address{Address1: "ignored", Street: "My Street", HouseNumber: "456"}, "My Street 456"},
		{"street without house number", &Address{Street: "My Street"}, "My Street"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.Line1())
		})
	}
}

func TestAddressStreetOrDefault(t *testing.T) {
	var missing *Address
	assert.Equal(t, NotProvided, missing.StreetOrDefault())
	assert.Equal(t, NotProvided, (&Address{City: "Ottawa"}).StreetOrDefault())
	assert.Equal(t, "456 My Street", (&Address{Address1: "456 My Street"}).StreetOrDefault())
}

func TestOptionsCurrencyFor(t *testing.T) {
	m := NewMoney(100, "USD")

	assert.Equal(t, "USD", Options{}.CurrencyFor(m))
	assert.Equal(t, "EUR", Options{Currency: "EUR"}.CurrencyFor(m))
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "1.00", NewMoney(100, "USD").Format("USD"))
	assert.Equal(t, "1", NewMoney(100, "JPY").Format("JPY"))
	assert.Equal(t, "100", NewMoney(100, "OMR").Format("OMR"))
	assert.Equal(t, "100", NewMoney(100, "USD").MinorUnits("USD"))
	assert.Equal(t, "1.25", NewMoney(125, "USD").Decimal().String())
}

func TestResultParamNilSafe(t *testing.T) {
	var r *Result
	assert.Equal(t, "", r.Param("anything"))

	r = &Result{Params: map[string]string{"AUTH_CODE": "OK123"}}
	assert.Equal(t, "OK123", r.Param("AUTH_CODE"))
	assert.Equal(t, "", r.Param("missing"))
}

func TestErrorCodeCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want pkgerrors.ErrorCategory
	}{
		{ErrInvalidNumber, pkgerrors.CategoryCard},
		{ErrExpiredCard, pkgerrors.CategoryCard},
		{ErrIncorrectCVC, pkgerrors.CategoryCard},
		{ErrCardDeclined, pkgerrors.CategoryDeclined},
		{ErrPickupCard, pkgerrors.CategoryFraud},
		{ErrCallIssuer, pkgerrors.CategoryFraud},
		{ErrProcessingError, pkgerrors.CategoryProcessing},
		{ErrConfigError, pkgerrors.CategoryConfig},
		{ErrUnsupportedFeature, pkgerrors.CategoryConfig},
		{ErrorCode(""), pkgerrors.CategoryProcessing},
		{ErrorCode("some.vendor.code"), pkgerrors.CategoryProcessing},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.Category(), string(tt.code))
	}
}

func TestResultErr(t *testing.T) {
	var nilResult *Result
	assert.NoError(t, nilResult.Err())
	assert.NoError(t, (&Result{Success: true}).Err())

	declined := &Result{
		Success:   false,
		Message:   "Refused",
		ErrorCode: ErrCardDeclined,
	}
	err := declined.Err()
	require.Error(t, err)

	var pe *pkgerrors.PaymentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "card_declined", pe.Code)
	assert.Equal(t, "Refused", pe.Message)
	assert.Equal(t, pkgerrors.CategoryDeclined, pe.Category)
	assert.False(t, pe.Retriable)
	assert.Equal(t, "card_declined: Refused", pe.Error())

	flaky := &Result{Success: false, ErrorCode: ErrProcessingError}
	require.ErrorAs(t, flaky.Err(), &pe)
	assert.True(t, pe.Retriable)
	assert.Equal(t, "processing_error", pe.Error())
}
