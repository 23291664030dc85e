// Package cybersource implements the normalized gateway contract against
// the CyberSource Simple Order API: SOAP requests authenticated with a
// WS-Security UsernameToken, answered by a SOAP envelope whose replyMessage
// carries decision, reasonCode, and per-service reply blocks.
//
// Authorization tokens are composite: "requestID;requestToken" joined with
// ";". Follow-up calls send only the requestID component.
package cybersource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/gateway-kit/gateway"
	"github.com/kevin07696/gateway-kit/gateway/transport"
	"github.com/kevin07696/gateway-kit/pkg/codec"
	"github.com/kevin07696/gateway-kit/pkg/currency"
	pkgerrors "github.com/kevin07696/gateway-kit/pkg/errors"
	"github.com/kevin07696/gateway-kit/pkg/observability"
	"github.com/kevin07696/gateway-kit/pkg/scrub"
)

const (
	name = "cybersource"

	// authorization components join on ";"
	authDelimiter = ";"

	schemaVersion = "1.153"
)

// Config contains Simple Order API credentials and the endpoint
type Config struct {
	MerchantID     string
	TransactionKey string

	URL      string
	TestMode bool
}

// DefaultConfig returns the endpoint for the given environment
func DefaultConfig(environment string) Config {
	if environment == "test" {
		return Config{
			URL:      "https://ics2wstesta.ic3.com/commerce/1.x/transactionProcessor",
			TestMode: true,
		}
	}
	return Config{
		URL: "https://ics2wsa.ic3.com/commerce/1.x/transactionProcessor",
	}
}

// Gateway is an immutable CyberSource adapter instance
type Gateway struct {
	config Config
	client transport.Client
	logger *zap.Logger
}

// New creates a CyberSource gateway
func New(config Config, client transport.Client, logger *zap.Logger) *Gateway {
	return &Gateway{
		config: config,
		client: client,
		logger: logger,
	}
}

// Scrub redacts Simple Order API wire transcripts
func (g *Gateway) Scrub(transcript string) string {
	return scrub.Transcript(transcript)
}

// Purchase authorizes and captures in one request
func (g *Gateway) Purchase(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpPurchase, time.Now(), &res, &err)

	body, err := g.paymentBody(amount, method, opts, func(x *xmlBuilder) {
		x.open(`ccAuthService run="true"`)
		writeAuthServiceFields(x, opts)
		x.close(`ccAuthService run="true"`)
		x.open(`ccCaptureService run="true"`).close(`ccCaptureService run="true"`)
	})
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, body)
}

// Authorize places a hold to be captured later
func (g *Gateway) Authorize(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpAuthorize, time.Now(), &res, &err)

	body, err := g.paymentBody(amount, method, opts, func(x *xmlBuilder) {
		x.open(`ccAuthService run="true"`)
		writeAuthServiceFields(x, opts)
		x.close(`ccAuthService run="true"`)
	})
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, body)
}

// Capture settles a prior authorization
func (g *Gateway) Capture(ctx context.Context, amount gateway.Money, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpCapture, time.Now(), &res, &err)

	requestID, err := requestIDFrom(authorization)
	if err != nil {
		return nil, err
	}

	cur := opts.CurrencyFor(amount)
	x := g.newRequestMessage(opts)
	x.open("purchaseTotals").
		element("currency", cur).
		element("grandTotalAmount", currency.Format(amount.Amount, cur)).
		close("purchaseTotals")
	x.open(`ccCaptureService run="true"`).
		element("authRequestID", requestID).
		close(`ccCaptureService run="true"`)

	return g.commit(ctx, g.envelope(x))
}

// Refund credits funds back against a captured transaction
func (g *Gateway) Refund(ctx context.Context, amount gateway.Money, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpRefund, time.Now(), &res, &err)

	if amount.Amount <= 0 {
		return nil, pkgerrors.NewValidationError("amount", "refund amount is required")
	}
	requestID, err := requestIDFrom(authorization)
	if err != nil {
		return nil, err
	}

	cur := opts.CurrencyFor(amount)
	x := g.newRequestMessage(opts)
	x.open("purchaseTotals").
		element("currency", cur).
		element("grandTotalAmount", currency.Format(amount.Amount, cur)).
		close("purchaseTotals")
	x.open(`ccCreditService run="true"`).
		element("captureRequestID", requestID).
		close(`ccCreditService run="true"`)

	return g.commit(ctx, g.envelope(x))
}

// Void cancels a prior authorization or unsettled capture
func (g *Gateway) Void(ctx context.Context, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpVoid, time.Now(), &res, &err)

	requestID, err := requestIDFrom(authorization)
	if err != nil {
		return nil, err
	}

	x := g.newRequestMessage(opts)
	x.open(`voidService run="true"`).
		element("voidRequestID", requestID).
		close(`voidService run="true"`)

	return g.commit(ctx, g.envelope(x))
}

// Credit pushes funds to a card with no prior transaction
func (g *Gateway) Credit(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpCredit, time.Now(), &res, &err)

	body, err := g.paymentBody(amount, method, opts, func(x *xmlBuilder) {
		x.open(`ccCreditService run="true"`).close(`ccCreditService run="true"`)
	})
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, body)
}

// Store creates an on-demand subscription profile holding the card. The
// returned Authorization is the subscription ID.
func (g *Gateway) Store(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpStore, time.Now(), &res, &err)

	card, ok := method.(gateway.CreditCard)
	if !ok {
		return nil, pkgerrors.NewValidationError("payment_method", "storing requires a raw card")
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	x := g.newRequestMessage(opts)
	writeBillTo(x, card, opts)
	x.open("purchaseTotals").
		element("currency", defaultCurrency(opts)).
		close("purchaseTotals")
	writeCard(x, card)
	x.open("recurringSubscriptionInfo").
		element("frequency", "on-demand").
		close("recurringSubscriptionInfo")
	x.open(`paySubscriptionCreateService run="true"`).
		close(`paySubscriptionCreateService run="true"`)

	result, err := g.commit(ctx, g.envelope(x))
	if err != nil {
		return nil, err
	}
	if result.Success {
		if id := field(result.Params, "subscriptionID"); id != "" {
			result.Authorization = id
		}
	}
	return result, nil
}

// Verify checks a card with a zero-amount authorization; no void is needed
func (g *Gateway) Verify(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpVerify, time.Now(), &res, &err)

	zero := gateway.NewMoney(0, defaultCurrency(opts))
	body, err := g.paymentBody(zero, method, opts, func(x *xmlBuilder) {
		x.open(`ccAuthService run="true"`)
		writeAuthServiceFields(x, opts)
		x.close(`ccAuthService run="true"`)
	})
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, body)
}

func defaultCurrency(opts gateway.Options) string {
	if opts.Currency != "" {
		return opts.Currency
	}
	return "USD"
}

// paymentBody assembles a card- or subscription-funded request: billTo,
// purchaseTotals, funding source, then the service block
func (g *Gateway) paymentBody(amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options, services func(*xmlBuilder)) ([]byte, error) {
	x := g.newRequestMessage(opts)

	switch m := method.(type) {
	case gateway.CreditCard:
		if err := m.Validate(); err != nil {
			return nil, err
		}
		writeBillTo(x, m, opts)
		writeShipTo(x, opts)
		writeTotals(x, amount, opts)
		writeCard(x, m)
	case gateway.Token:
		if m.Value == "" {
			return nil, pkgerrors.NewValidationError("token", "subscription id is required")
		}
		writeShipTo(x, opts)
		writeTotals(x, amount, opts)
		x.open("recurringSubscriptionInfo").
			element("subscriptionID", m.Value).
			close("recurringSubscriptionInfo")
	default:
		return nil, pkgerrors.NewValidationError("payment_method", "unsupported payment method for cybersource")
	}

	services(x)
	return g.envelope(x), nil
}

func (g *Gateway) newRequestMessage(opts gateway.Options) *xmlBuilder {
	x := &xmlBuilder{}
	x.element("merchantID", g.config.MerchantID)
	reference := opts.OrderID
	if reference == "" {
		reference = opts.IdempotencyKey
	}
	x.element("merchantReferenceCode", reference)
	return x
}

func writeTotals(x *xmlBuilder, amount gateway.Money, opts gateway.Options) {
	cur := opts.CurrencyFor(amount)
	x.open("purchaseTotals").
		element("currency", cur).
		element("grandTotalAmount", currency.Format(amount.Amount, cur)).
		close("purchaseTotals")
}

// writeBillTo emits the billTo block. street1 is mandatory in the schema,
// so an absent street goes out as the placeholder rather than failing the
// whole transaction.
func writeBillTo(x *xmlBuilder, card gateway.CreditCard, opts gateway.Options) {
	addr := opts.BillingAddress
	x.open("billTo").
		element("firstName", card.FirstName).
		element("lastName", card.LastName).
		element("street1", addr.StreetOrDefault()).
		element("city", addr.Field(func(a gateway.Address) string { return a.City })).
		element("state", addr.Field(func(a gateway.Address) string { return a.State })).
		element("postalCode", addr.Field(func(a gateway.Address) string { return a.Zip })).
		element("country", addr.Field(func(a gateway.Address) string { return a.Country })).
		element("email", opts.Email).
		element("ipAddress", opts.IP).
		close("billTo")
}

// writeShipTo emits the shipTo block; the schema places it between billTo
// and purchaseTotals. Absent shipping addresses emit nothing.
func writeShipTo(x *xmlBuilder, opts gateway.Options) {
	addr := opts.ShippingAddress
	if addr == nil {
		return
	}
	x.open("shipTo").
		element("street1", addr.Line1()).
		element("city", addr.City).
		element("state", addr.State).
		element("postalCode", addr.Zip).
		element("country", addr.Country).
		close("shipTo")
}

var cardTypeCodes = map[string]string{
	"visa":             "001",
	"master":           "002",
	"mastercard":       "002",
	"american_express": "003",
	"discover":         "004",
	"diners_club":      "005",
	"jcb":              "007",
}

func writeCard(x *xmlBuilder, card gateway.CreditCard) {
	x.open("card").
		element("accountNumber", card.Number).
		element("expirationMonth", card.ExpiryMonth()).
		element("expirationYear", card.ExpiryYearFour()).
		element("cvNumber", card.VerificationValue).
		element("cardType", cardTypeCodes[strings.ToLower(card.Brand)]).
		close("card")
}

// writeAuthServiceFields emits the 3-D Secure and stored-credential fields
// that ride inside ccAuthService
func writeAuthServiceFields(x *xmlBuilder, opts gateway.Options) {
	if tds := opts.ThreeDSecure; tds != nil {
		x.element("cavv", tds.Cavv)
		x.element("xid", tds.Xid)
		x.element("eciRaw", tds.Eci)
		x.element("paSpecificationVersion", tds.Version)
		x.element("directoryServerTransactionID", tds.DSTransactionID)
	}
	if sc := opts.StoredCredential; sc != nil {
		x.element("commerceIndicator", commerceIndicator(sc))
		if !sc.Initial && sc.NetworkTransactionID != "" {
			x.element("subsequentAuthTransactionID", sc.NetworkTransactionID)
		}
		if sc.Initial {
			x.element("subsequentAuthFirst", "true")
		} else {
			x.element("subsequentAuth", "true")
			x.element("subsequentAuthStoredCredential", "true")
		}
	}
}

// commerceIndicator maps the abstract stored-credential shape onto the
// vendor's commerceIndicator vocabulary via an explicit table
func commerceIndicator(sc *gateway.StoredCredential) string {
	switch sc.Reason {
	case gateway.ReasonRecurring:
		return "recurring"
	case gateway.ReasonInstallment:
		return "install"
	default:
		return "internet"
	}
}

// requestIDFrom extracts the requestID a follow-up call must send: the
// first ";"-delimited component of the authorization token
func requestIDFrom(authorization string) (string, error) {
	if authorization == "" {
		return "", pkgerrors.NewValidationError("authorization", "authorization is required")
	}
	return strings.SplitN(authorization, authDelimiter, 2)[0], nil
}

const (
	envelopeOpen = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<s:Header>` +
		`<wsse:Security s:mustUnderstand="1" xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd">` +
		`<wsse:UsernameToken>`
	passwordType = `http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText`
)

// envelope wraps the assembled requestMessage in the SOAP envelope with a
// WS-Security UsernameToken header
func (g *Gateway) envelope(body *xmlBuilder) []byte {
	x := &xmlBuilder{}
	x.raw(envelopeOpen)
	x.element("wsse:Username", g.config.MerchantID)
	x.raw(`<wsse:Password Type="` + passwordType + `">`).
		raw(codec.EscapeXML(g.config.TransactionKey)).
		raw(`</wsse:Password>`)
	x.raw(`</wsse:UsernameToken></wsse:Security></s:Header><s:Body>`)
	x.raw(`<requestMessage xmlns="urn:schemas-cybersource-com:transaction-data-` + schemaVersion + `">`)
	x.raw(body.String())
	x.raw(`</requestMessage></s:Body></s:Envelope>`)
	return []byte(x.String())
}

func (g *Gateway) commit(ctx context.Context, body []byte) (*gateway.Result, error) {
	g.logger.Info("sending cybersource request",
		zap.Int("body_length", len(body)),
	)

	headers := map[string]string{"Content-Type": "text/xml"}
	resp, err := g.client.Post(ctx, g.config.URL, body, headers)
	if err != nil {
		var tErr *pkgerrors.TransportError
		if errors.As(err, &tErr) {
			// SOAP faults and declines both arrive on HTTP 500
			return g.resultFrom(tErr.Body)
		}
		return nil, err
	}
	return g.resultFrom(resp.Body)
}

// resultFrom classifies a SOAP reply. The flattened document keys are
// envelope-relative (Body.replyMessage.*); field() resolves the leaf names
// the classification needs.
func (g *Gateway) resultFrom(body []byte) (*gateway.Result, error) {
	params, err := codec.Parse(body, codec.HintXML)
	if err != nil {
		if errors.Is(err, codec.ErrEmptyResponse) {
			return &gateway.Result{
				Success:   false,
				Message:   "Unable to read error message",
				Params:    map[string]string{},
				ErrorCode: gateway.ErrProcessingError,
				TestMode:  g.config.TestMode,
			}, nil
		}
		return nil, fmt.Errorf("parse cybersource response: %w", err)
	}

	decision := field(params, "decision")
	reasonCode := params["Body.replyMessage.reasonCode"]
	if reasonCode == "" {
		reasonCode = field(params, "reasonCode")
	}

	success := decision == "ACCEPT"
	result := &gateway.Result{
		Success:   success,
		Message:   reasonMessage(reasonCode, field(params, "faultstring")),
		Params:    params,
		TestMode:  g.config.TestMode,
		AVSResult: field(params, "avsCode"),
		CVVResult: field(params, "cvCode"),
	}

	if success {
		requestID := field(params, "requestID")
		requestToken := field(params, "requestToken")
		if requestID != "" {
			result.Authorization = requestID + authDelimiter + requestToken
		}
	} else {
		result.ErrorCode = mapReasonCode(reasonCode)
	}

	g.logger.Info("cybersource response classified",
		zap.Bool("success", success),
		zap.String("decision", decision),
		zap.String("reason_code", reasonCode),
	)

	return result, nil
}

func field(params map[string]string, key string) string {
	return codec.Find(params, key)
}

func track(op string, start time.Time, res **gateway.Result, err *error) {
	success := *err == nil && *res != nil && (*res).Success
	observability.RecordOperation(name, op, observability.Outcome(success, *err), time.Since(start))
}
