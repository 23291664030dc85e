package adyen

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/gateway-kit/gateway"
	"github.com/kevin07696/gateway-kit/gateway/transport"
	pkgerrors "github.com/kevin07696/gateway-kit/pkg/errors"
)

type fakeClient struct {
	lastURL     string
	lastBody    []byte
	lastHeaders map[string]string

	response *transport.Response
	err      error
}

func (f *fakeClient) Post(_ context.Context, url string, body []byte, headers map[string]string) (*transport.Response, error) {
	f.lastURL = url
	f.lastBody = body
	f.lastHeaders = headers
	return f.response, f.err
}

func (f *fakeClient) Get(_ context.Context, url string, headers map[string]string) (*transport.Response, error) {
	f.lastURL = url
	f.lastHeaders = headers
	return f.response, f.err
}

func newTestGateway(client transport.Client) *Gateway {
	cfg := DefaultConfig("test")
	cfg.Username = "ws@Company.Test"
	cfg.Password = "secret"
	cfg.MerchantAccount = "TestMerchant"
	return New(cfg, client, zap.NewNop())
}

func testCard() gateway.CreditCard {
	return gateway.CreditCard{
		Number:            "4111111111111111",
		Month:             6,
		Year:              2027,
		VerificationValue: "737",
		FirstName:         "John",
		LastName:          "Smith",
	}
}

func okResponse(body string) *transport.Response {
	return &transport.Response{StatusCode: 200, Body: []byte(body)}
}

func TestAuthorizeSuccess(t *testing.T) {
	client := &fakeClient{response: okResponse(
		`{"pspReference":"7914775043909934","resultCode":"Authorised","authCode":"50055","additionalData":{"avsResult":"1 Matches","cvcResult":"1 Matches"}}`)}
	g := newTestGateway(client)

	result, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), testCard(), gateway.Options{OrderID: "order-1"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "7914775043909934", result.Authorization)
	assert.Equal(t, "1", result.AVSResult)
	assert.Equal(t, "1", result.CVVResult)
	assert.True(t, result.TestMode)
	assert.Equal(t, "https://pal-test.adyen.com/pal/servlet/Payment/v68/authorise", client.lastURL)

	var req paymentRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	assert.Equal(t, "TestMerchant", req.MerchantAccount)
	assert.Equal(t, "order-1", req.Reference)
	require.NotNil(t, req.Amount)
	assert.Equal(t, int64(1000), req.Amount.Value)
	assert.Equal(t, "USD", req.Amount.Currency)
	require.NotNil(t, req.Card)
	assert.Equal(t, "06", req.Card.ExpiryMonth)
	assert.Equal(t, "2027", req.Card.ExpiryYear)
	assert.Equal(t, "John Smith", req.Card.HolderName)
}

func TestAuthorizeSendsBasicAuth(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"resultCode":"Authorised","pspReference":"1"}`)}
	g := newTestGateway(client)

	_, err := g.Authorize(context.Background(), gateway.NewMoney(100, "USD"), testCard(), gateway.Options{})

	require.NoError(t, err)
	assert.Equal(t, "Basic d3NAQ29tcGFueS5UZXN0OnNlY3JldA==", client.lastHeaders["Authorization"])
	assert.Equal(t, "application/json", client.lastHeaders["Content-Type"])
	assert.Empty(t, client.lastHeaders["X-API-Key"])
}

func TestAuthorizeZeroDecimalCurrency(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"resultCode":"Authorised","pspReference":"1"}`)}
	g := newTestGateway(client)

	// input amounts are always hundredths; JPY goes out as whole yen
	_, err := g.Authorize(context.Background(), gateway.NewMoney(100, "JPY"), testCard(), gateway.Options{})

	require.NoError(t, err)
	var req paymentRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	assert.Equal(t, int64(1), req.Amount.Value)
	assert.Equal(t, "JPY", req.Amount.Currency)
}

func TestAuthorizeRefused(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode gateway.ErrorCode
		wantMsg  string
	}{
		{
			name:     "generic refusal",
			body:     `{"pspReference":"123","resultCode":"Refused","refusalReason":"Refused"}`,
			wantCode: gateway.ErrCardDeclined,
			wantMsg:  "Refused",
		},
		{
			name:     "expired card",
			body:     `{"pspReference":"123","resultCode":"Refused","refusalReason":"Expired Card"}`,
			wantCode: gateway.ErrExpiredCard,
			wantMsg:  "Expired Card",
		},
		{
			name:     "cvc declined",
			body:     `{"pspReference":"123","resultCode":"Refused","refusalReason":"CVC Declined"}`,
			wantCode: gateway.ErrInvalidCVC,
			wantMsg:  "CVC Declined",
		},
		{
			name:     "blocked card",
			body:     `{"pspReference":"123","resultCode":"Refused","refusalReason":"Blocked Card"}`,
			wantCode: gateway.ErrPickupCard,
			wantMsg:  "Blocked Card",
		},
		{
			name:     "unknown refusal maps to decline",
			body:     `{"pspReference":"123","resultCode":"Refused","refusalReason":"Some new reason"}`,
			wantCode: gateway.ErrCardDeclined,
			wantMsg:  "Some new reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: okResponse(tt.body)}
			g := newTestGateway(client)

			result, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), testCard(), gateway.Options{})

			require.NoError(t, err, "declines are results, not errors")
			assert.False(t, result.Success)
			assert.Equal(t, tt.wantCode, result.ErrorCode)
			assert.Equal(t, tt.wantMsg, result.Message)
			assert.Empty(t, result.Authorization)
		})
	}
}

func TestAuthorizeVendorErrorOnNon2xx(t *testing.T) {
	client := &fakeClient{err: pkgerrors.NewTransportError(422,
		[]byte(`{"status":422,"errorCode":"101","message":"Invalid card number","errorType":"validation"}`))}
	g := newTestGateway(client)

	result, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), testCard(), gateway.Options{})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid card number", result.Message)
	assert.Equal(t, gateway.ErrProcessingError, result.ErrorCode)
}

func TestAuthorizeValidation(t *testing.T) {
	g := newTestGateway(&fakeClient{})

	card := testCard()
	card.Number = ""
	_, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), card, gateway.Options{})

	var vErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "number", vErr.Field)
}

func TestAuthorizeStoredCredential(t *testing.T) {
	tests := []struct {
		name            string
		sc              *gateway.StoredCredential
		wantInteraction string
		wantModel       string
	}{
		{
			name:            "initial cardholder recurring",
			sc:              &gateway.StoredCredential{Initial: true, Initiator: gateway.InitiatorCardholder, Reason: gateway.ReasonRecurring},
			wantInteraction: "Ecommerce",
			wantModel:       "Subscription",
		},
		{
			name:            "merchant initiated unscheduled",
			sc:              &gateway.StoredCredential{Initiator: gateway.InitiatorMerchant, Reason: gateway.ReasonUnscheduled, NetworkTransactionID: "858435661128555"},
			wantInteraction: "ContAuth",
			wantModel:       "UnscheduledCardOnFile",
		},
		{
			name:            "no reason defaults to card on file",
			sc:              &gateway.StoredCredential{Initiator: gateway.InitiatorMerchant},
			wantInteraction: "ContAuth",
			wantModel:       "CardOnFile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: okResponse(`{"resultCode":"Authorised","pspReference":"1"}`)}
			g := newTestGateway(client)

			_, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), testCard(), gateway.Options{StoredCredential: tt.sc})

			require.NoError(t, err)
			var req paymentRequest
			require.NoError(t, json.Unmarshal(client.lastBody, &req))
			assert.Equal(t, tt.wantInteraction, req.ShopperInteraction)
			assert.Equal(t, tt.wantModel, req.RecurringProcessingModel)
			if tt.sc.NetworkTransactionID != "" {
				assert.Equal(t, tt.sc.NetworkTransactionID, req.AdditionalData["networkTxReference"])
			}
		})
	}
}

func TestAuthorizeThreeDSecure(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"resultCode":"Authorised","pspReference":"1"}`)}
	g := newTestGateway(client)

	opts := gateway.Options{ThreeDSecure: &gateway.ThreeDSecure{
		Cavv:    "AAABCSIIAAAAAAACcwgAEMCoNh+=",
		Eci:     "05",
		Version: "2.1.0",
	}}
	_, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), testCard(), opts)

	require.NoError(t, err)
	var req paymentRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	require.NotNil(t, req.MpiData)
	assert.Equal(t, "05", req.MpiData.Eci)
	assert.Equal(t, "2.1.0", req.MpiData.ThreeDSVersion)
}

func TestPurchaseSetsManualCaptureFalse(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"resultCode":"Authorised","pspReference":"1"}`)}
	g := newTestGateway(client)

	_, err := g.Purchase(context.Background(), gateway.NewMoney(1000, "USD"), testCard(), gateway.Options{})

	require.NoError(t, err)
	var req paymentRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	assert.Equal(t, "false", req.AdditionalData["manualCapture"])
}

func TestCaptureCompositeAuthorization(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"pspReference":"8412534564722331","response":"[capture-received]"}`)}
	g := newTestGateway(client)

	result, err := g.Capture(context.Background(), gateway.NewMoney(1000, "USD"), "7914775043909934", gateway.Options{Currency: "USD"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "7914775043909934#8412534564722331", result.Authorization)
	assert.Equal(t, "https://pal-test.adyen.com/pal/servlet/Payment/v68/capture", client.lastURL)

	var req modificationRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	assert.Equal(t, "7914775043909934", req.OriginalReference)
	assert.Equal(t, int64(1000), req.ModificationAmount.Value)
}

func TestRefundUsesFirstAuthorizationComponent(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"pspReference":"8512534564722444","response":"[refund-received]"}`)}
	g := newTestGateway(client)

	result, err := g.Refund(context.Background(), gateway.NewMoney(500, "USD"), "7914775043909934#8412534564722331", gateway.Options{Currency: "USD"})

	require.NoError(t, err)
	assert.True(t, result.Success)

	var req modificationRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	assert.Equal(t, "7914775043909934", req.OriginalReference)
}

func TestRefundRequiresAmount(t *testing.T) {
	g := newTestGateway(&fakeClient{})

	_, err := g.Refund(context.Background(), gateway.NewMoney(0, "USD"), "7914775043909934", gateway.Options{})

	var vErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestVoid(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"pspReference":"8612534564722555","response":"[cancel-received]"}`)}
	g := newTestGateway(client)

	result, err := g.Void(context.Background(), "7914775043909934", gateway.Options{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://pal-test.adyen.com/pal/servlet/Payment/v68/cancel", client.lastURL)
}

func TestVoidRequiresAuthorization(t *testing.T) {
	g := newTestGateway(&fakeClient{})

	_, err := g.Void(context.Background(), "", gateway.Options{})

	var vErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "authorization", vErr.Field)
}

func TestCredit(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"pspReference":"8712534564722666","resultCode":"Received"}`)}
	g := newTestGateway(client)

	result, err := g.Credit(context.Background(), gateway.NewMoney(2500, "USD"), testCard(), gateway.Options{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://pal-test.adyen.com/pal/servlet/Payment/v68/refundWithData", client.lastURL)
}

func TestStore(t *testing.T) {
	client := &fakeClient{response: okResponse(
		`{"pspReference":"8812534564722777","resultCode":"Authorised","additionalData":{"recurring.recurringDetailReference":"8315202663743702"}}`)}
	g := newTestGateway(client)

	opts := gateway.Options{Extras: map[string]string{"shopper_reference": "cust-42"}}
	result, err := g.Store(context.Background(), testCard(), opts)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "8315202663743702", result.Authorization, "stored-card token wins over pspReference")

	var req paymentRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	require.NotNil(t, req.Recurring)
	assert.Equal(t, "RECURRING", req.Recurring.Contract)
	assert.Equal(t, "cust-42", req.ShopperReference)
	assert.Equal(t, int64(0), req.Amount.Value)
}

func TestStoreRequiresShopperReference(t *testing.T) {
	g := newTestGateway(&fakeClient{})

	_, err := g.Store(context.Background(), testCard(), gateway.Options{})

	var vErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestAuthorizeWithToken(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"resultCode":"Authorised","pspReference":"1"}`)}
	g := newTestGateway(client)

	opts := gateway.Options{Extras: map[string]string{"shopper_reference": "cust-42"}}
	_, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), gateway.Token{Value: "8315202663743702"}, opts)

	require.NoError(t, err)
	var req paymentRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	assert.Equal(t, "8315202663743702", req.SelectedRecurringDetailReference)
	assert.Equal(t, "ContAuth", req.ShopperInteraction)
	assert.Nil(t, req.Card)
}

func TestAuthorizeKeepsPspReferenceOverRecurringDetail(t *testing.T) {
	// a token-funded authorization can echo the recurring detail back in
	// additionalData; the capture token must still be the psp reference
	client := &fakeClient{response: okResponse(
		`{"pspReference":"7914775043909934","resultCode":"Authorised","additionalData":{"recurring.recurringDetailReference":"8315202663743702"}}`)}
	g := newTestGateway(client)

	opts := gateway.Options{Extras: map[string]string{"shopper_reference": "cust-42"}}
	result, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), gateway.Token{Value: "8315202663743702"}, opts)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "7914775043909934", result.Authorization)
}

func TestVerifyZeroAmount(t *testing.T) {
	client := &fakeClient{response: okResponse(`{"resultCode":"Authorised","pspReference":"1"}`)}
	g := newTestGateway(client)

	result, err := g.Verify(context.Background(), testCard(), gateway.Options{Currency: "EUR"})

	require.NoError(t, err)
	assert.True(t, result.Success)

	var req paymentRequest
	require.NoError(t, json.Unmarshal(client.lastBody, &req))
	assert.Equal(t, int64(0), req.Amount.Value)
	assert.Equal(t, "EUR", req.Amount.Currency)
}

func TestEmptyResponseBody(t *testing.T) {
	client := &fakeClient{response: okResponse("")}
	g := newTestGateway(client)

	result, err := g.Authorize(context.Background(), gateway.NewMoney(1000, "USD"), testCard(), gateway.Options{})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, gateway.ErrProcessingError, result.ErrorCode)
}

func TestScrubTranscript(t *testing.T) {
	g := newTestGateway(&fakeClient{})

	in := "Authorization: Basic d3M6c2VjcmV0\n" +
		`{"card":{"number":"4111111111111111","cvc":"737"}}`
	out := g.Scrub(in)

	assert.NotContains(t, out, "4111111111111111")
	assert.NotContains(t, out, "737\"")
	assert.NotContains(t, out, "d3M6c2VjcmV0")
}
