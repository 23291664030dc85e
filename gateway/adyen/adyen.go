// Package adyen implements the normalized gateway contract against the
// Adyen classic Payment API (JSON over HTTPS, basic auth).
//
// Authorization tokens are composite: a maintenance result carries
// "originalPspReference#modificationPspReference" joined with "#". Capture,
// refund, and void send only the first component as originalReference.
package adyen

import (
	"context"
	"encoding/base64"
	"encoding/json"
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
	name = "adyen"

	// authorization components join on "#"
	authDelimiter = "#"
)

// Config contains Adyen credentials and endpoints
type Config struct {
	// Web service user credentials for basic auth
	Username string
	Password string

	// Optional API key, sent as X-API-Key when set
	APIKey string

	MerchantAccount string

	// Payment API base, e.g. https://pal-test.adyen.com/pal/servlet/Payment/v68
	PaymentURL string

	TestMode bool
}

// DefaultConfig returns endpoints for the given environment
func DefaultConfig(environment string) Config {
	if environment == "test" {
		return Config{
			PaymentURL: "https://pal-test.adyen.com/pal/servlet/Payment/v68",
			TestMode:   true,
		}
	}
	return Config{
		PaymentURL: "https://pal-live.adyen.com/pal/servlet/Payment/v68",
	}
}

// Gateway is an immutable Adyen adapter instance
type Gateway struct {
	config Config
	client transport.Client
	logger *zap.Logger
}

// New creates an Adyen gateway
func New(config Config, client transport.Client, logger *zap.Logger) *Gateway {
	return &Gateway{
		config: config,
		client: client,
		logger: logger,
	}
}

// Scrub redacts Adyen wire transcripts
func (g *Gateway) Scrub(transcript string) string {
	return scrub.Transcript(transcript)
}

type amountBlock struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

type cardBlock struct {
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CVC         string `json:"cvc,omitempty"`
	HolderName  string `json:"holderName"`
}

type addressBlock struct {
	Street            string `json:"street"`
	HouseNumberOrName string `json:"houseNumberOrName"`
	City              string `json:"city,omitempty"`
	PostalCode        string `json:"postalCode,omitempty"`
	StateOrProvince   string `json:"stateOrProvince,omitempty"`
	Country           string `json:"country,omitempty"`
}

type recurringBlock struct {
	Contract string `json:"contract"`
}

type mpiDataBlock struct {
	Cavv           string `json:"cavv,omitempty"`
	Xid            string `json:"xid,omitempty"`
	Eci            string `json:"eci,omitempty"`
	DSTransID      string `json:"dsTransID,omitempty"`
	ThreeDSVersion string `json:"threeDSVersion,omitempty"`
}

type paymentRequest struct {
	MerchantAccount                  string            `json:"merchantAccount"`
	Reference                        string            `json:"reference,omitempty"`
	Amount                           *amountBlock      `json:"amount,omitempty"`
	Card                             *cardBlock        `json:"card,omitempty"`
	SelectedRecurringDetailReference string            `json:"selectedRecurringDetailReference,omitempty"`
	ShopperReference                 string            `json:"shopperReference,omitempty"`
	ShopperEmail                     string            `json:"shopperEmail,omitempty"`
	ShopperIP                        string            `json:"shopperIP,omitempty"`
	BillingAddress                   *addressBlock     `json:"billingAddress,omitempty"`
	DeliveryAddress                  *addressBlock     `json:"deliveryAddress,omitempty"`
	Recurring                        *recurringBlock   `json:"recurring,omitempty"`
	ShopperInteraction               string            `json:"shopperInteraction,omitempty"`
	RecurringProcessingModel         string            `json:"recurringProcessingModel,omitempty"`
	MpiData                          *mpiDataBlock     `json:"mpiData,omitempty"`
	AdditionalData                   map[string]string `json:"additionalData,omitempty"`
}

type modificationRequest struct {
	MerchantAccount    string       `json:"merchantAccount"`
	OriginalReference  string       `json:"originalReference"`
	ModificationAmount *amountBlock `json:"modificationAmount,omitempty"`
	Reference          string       `json:"reference,omitempty"`
}

// Purchase authorizes with immediate capture scheduled vendor-side
func (g *Gateway) Purchase(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpPurchase, time.Now(), &res, &err)

	req, err := g.paymentRequestFor(amount, method, opts)
	if err != nil {
		return nil, err
	}
	if req.AdditionalData == nil {
		req.AdditionalData = map[string]string{}
	}
	req.AdditionalData["manualCapture"] = "false"

	return g.commit(ctx, "authorise", req)
}

// Authorize places a hold to be captured later
func (g *Gateway) Authorize(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpAuthorize, time.Now(), &res, &err)

	req, err := g.paymentRequestFor(amount, method, opts)
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, "authorise", req)
}

// Capture settles a prior authorization
func (g *Gateway) Capture(ctx context.Context, amount gateway.Money, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpCapture, time.Now(), &res, &err)

	original, err := originalReference(authorization)
	if err != nil {
		return nil, err
	}

	cur := opts.CurrencyFor(amount)
	req := &modificationRequest{
		MerchantAccount:   g.config.MerchantAccount,
		OriginalReference: original,
		ModificationAmount: &amountBlock{
			Currency: cur,
			Value:    currency.MinorUnitsInt(amount.Amount, cur),
		},
		Reference: opts.OrderID,
	}
	return g.commitModification(ctx, "capture", original, req)
}

// Refund returns funds from a settled transaction
func (g *Gateway) Refund(ctx context.Context, amount gateway.Money, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpRefund, time.Now(), &res, &err)

	if amount.Amount <= 0 {
		return nil, pkgerrors.NewValidationError("amount", "refund amount is required")
	}
	original, err := originalReference(authorization)
	if err != nil {
		return nil, err
	}

	cur := opts.CurrencyFor(amount)
	req := &modificationRequest{
		MerchantAccount:   g.config.MerchantAccount,
		OriginalReference: original,
		ModificationAmount: &amountBlock{
			Currency: cur,
			Value:    currency.MinorUnitsInt(amount.Amount, cur),
		},
		Reference: opts.OrderID,
	}
	return g.commitModification(ctx, "refund", original, req)
}

// Void cancels a prior authorization
func (g *Gateway) Void(ctx context.Context, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpVoid, time.Now(), &res, &err)

	original, err := originalReference(authorization)
	if err != nil {
		return nil, err
	}

	req := &modificationRequest{
		MerchantAccount:   g.config.MerchantAccount,
		OriginalReference: original,
		Reference:         opts.OrderID,
	}
	return g.commitModification(ctx, "cancel", original, req)
}

// Credit pushes funds to a card with no prior transaction
func (g *Gateway) Credit(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpCredit, time.Now(), &res, &err)

	req, err := g.paymentRequestFor(amount, method, opts)
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, "refundWithData", req)
}

// Store tokenizes a card via a zero-amount authorization with a recurring
// contract. The returned Authorization is the recurring detail reference
// when the vendor includes one.
func (g *Gateway) Store(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpStore, time.Now(), &res, &err)

	if opts.Extras["shopper_reference"] == "" && opts.Email == "" {
		return nil, pkgerrors.NewValidationError("shopper_reference", "a shopper reference or email is required to store a card")
	}

	zero := gateway.NewMoney(0, defaultCurrency(opts))
	req, err := g.paymentRequestFor(zero, method, opts)
	if err != nil {
		return nil, err
	}
	req.Recurring = &recurringBlock{Contract: "RECURRING"}
	if req.AdditionalData == nil {
		req.AdditionalData = map[string]string{}
	}
	req.AdditionalData["recurring.recurringDetailName"] = opts.Description

	result, err := g.commit(ctx, "authorise", req)
	if err != nil {
		return nil, err
	}
	// only Store hands back the stored-card token; payment operations keep
	// the psp reference even when the response echoes a recurring detail
	if result.Success {
		if ref := result.Param("additionalData.recurring.recurringDetailReference"); ref != "" {
			result.Authorization = ref
		}
	}
	return result, nil
}

// Verify checks a card with a zero-amount authorization; no void is needed
func (g *Gateway) Verify(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpVerify, time.Now(), &res, &err)

	zero := gateway.NewMoney(0, defaultCurrency(opts))
	req, err := g.paymentRequestFor(zero, method, opts)
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, "authorise", req)
}

func defaultCurrency(opts gateway.Options) string {
	if opts.Currency != "" {
		return opts.Currency
	}
	return "USD"
}

func (g *Gateway) paymentRequestFor(amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (*paymentRequest, error) {
	cur := opts.CurrencyFor(amount)
	req := &paymentRequest{
		MerchantAccount: g.config.MerchantAccount,
		Reference:       opts.OrderID,
		Amount: &amountBlock{
			Currency: cur,
			Value:    currency.MinorUnitsInt(amount.Amount, cur),
		},
		ShopperReference: opts.Extras["shopper_reference"],
		ShopperEmail:     opts.Email,
		ShopperIP:        opts.IP,
	}

	switch m := method.(type) {
	case gateway.CreditCard:
		if err := m.Validate(); err != nil {
			return nil, err
		}
		req.Card = &cardBlock{
			Number:      m.Number,
			ExpiryMonth: m.ExpiryMonth(),
			ExpiryYear:  m.ExpiryYearFour(),
			CVC:         m.VerificationValue,
			HolderName:  m.Name(),
		}
	case gateway.Token:
		if m.Value == "" {
			return nil, pkgerrors.NewValidationError("token", "recurring detail reference is required")
		}
		req.SelectedRecurringDetailReference = m.Value
		req.Recurring = &recurringBlock{Contract: "RECURRING"}
		req.ShopperInteraction = "ContAuth"
	case gateway.NetworkToken:
		req.Card = &cardBlock{
			Number:      m.Number,
			ExpiryMonth: fmt.Sprintf("%02d", m.Month),
			ExpiryYear:  fmt.Sprintf("%04d", m.Year),
			HolderName:  "Not Applicable",
		}
		req.MpiData = &mpiDataBlock{Cavv: m.Cryptogram, Eci: m.ECI}
	default:
		return nil, pkgerrors.NewValidationError("payment_method", "unsupported payment method for adyen")
	}

	if addr := opts.BillingAddress; addr != nil {
		req.BillingAddress = &addressBlock{
			Street:            addr.StreetOrDefault(),
			HouseNumberOrName: houseNumberOrDefault(addr),
			City:              addr.City,
			PostalCode:        addr.Zip,
			StateOrProvince:   addr.State,
			Country:           addr.Country,
		}
	}
	if addr := opts.ShippingAddress; addr != nil {
		req.DeliveryAddress = &addressBlock{
			Street:            addr.StreetOrDefault(),
			HouseNumberOrName: houseNumberOrDefault(addr),
			City:              addr.City,
			PostalCode:        addr.Zip,
			StateOrProvince:   addr.State,
			Country:           addr.Country,
		}
	}

	if sc := opts.StoredCredential; sc != nil {
		req.ShopperInteraction, req.RecurringProcessingModel = storedCredentialFields(sc)
		if sc.NetworkTransactionID != "" {
			if req.AdditionalData == nil {
				req.AdditionalData = map[string]string{}
			}
			req.AdditionalData["networkTxReference"] = sc.NetworkTransactionID
		}
	}

	if tds := opts.ThreeDSecure; tds != nil {
		req.MpiData = &mpiDataBlock{
			Cavv:           tds.Cavv,
			Xid:            tds.Xid,
			Eci:            tds.Eci,
			DSTransID:      tds.DSTransactionID,
			ThreeDSVersion: tds.Version,
		}
	}

	return req, nil
}

// storedCredentialFields maps the abstract stored-credential shape onto
// Adyen's shopperInteraction / recurringProcessingModel vocabulary. The
// table is explicit: new reason values need a new row, not an inference.
func storedCredentialFields(sc *gateway.StoredCredential) (interaction, model string) {
	if sc.Initial && sc.Initiator == gateway.InitiatorCardholder {
		interaction = "Ecommerce"
	} else {
		interaction = "ContAuth"
	}

	switch sc.Reason {
	case gateway.ReasonRecurring, gateway.ReasonInstallment:
		model = "Subscription"
	case gateway.ReasonUnscheduled:
		model = "UnscheduledCardOnFile"
	default:
		model = "CardOnFile"
	}
	return interaction, model
}

func houseNumberOrDefault(addr *gateway.Address) string {
	if addr.HouseNumber != "" {
		return addr.HouseNumber
	}
	if addr.Address2 != "" {
		return addr.Address2
	}
	return gateway.NotProvided
}

// originalReference extracts the vendor reference a maintenance call must
// send: the first "#"-delimited component of the authorization token. The
// remaining components never appear in outgoing payloads.
func originalReference(authorization string) (string, error) {
	if authorization == "" {
		return "", pkgerrors.NewValidationError("authorization", "authorization is required")
	}
	return strings.SplitN(authorization, authDelimiter, 2)[0], nil
}

func (g *Gateway) commit(ctx context.Context, action string, req *paymentRequest) (*gateway.Result, error) {
	return g.post(ctx, action, req, "")
}

func (g *Gateway) commitModification(ctx context.Context, action, original string, req *modificationRequest) (*gateway.Result, error) {
	return g.post(ctx, action, req, original)
}

func (g *Gateway) post(ctx context.Context, action string, payload interface{}, original string) (*gateway.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", action, err)
	}

	g.logger.Info("sending adyen request",
		zap.String("action", action),
		zap.Int("body_length", len(body)),
	)

	resp, err := g.client.Post(ctx, g.config.PaymentURL+"/"+action, body, g.headers())
	if err != nil {
		var tErr *pkgerrors.TransportError
		if errors.As(err, &tErr) {
			// vendor error details often arrive on non-2xx bodies
			return g.resultFrom(tErr.Body, original)
		}
		return nil, err
	}

	return g.resultFrom(resp.Body, original)
}

func (g *Gateway) headers() map[string]string {
	h := map[string]string{
		"Content-Type": "application/json",
		"Authorization": "Basic " + base64.StdEncoding.EncodeToString(
			[]byte(g.config.Username+":"+g.config.Password)),
	}
	if g.config.APIKey != "" {
		h["X-API-Key"] = g.config.APIKey
	}
	return h
}

// resultFrom classifies a vendor response body into a normalized Result.
// original, when non-empty, is the reference the call modified; the new
// authorization becomes "original#modificationPspReference".
func (g *Gateway) resultFrom(body []byte, original string) (*gateway.Result, error) {
	params, err := codec.Parse(body, codec.HintJSON)
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
		return nil, fmt.Errorf("parse adyen response: %w", err)
	}

	success := isSuccess(params)
	result := &gateway.Result{
		Success:   success,
		Message:   messageFrom(params),
		Params:    params,
		TestMode:  g.config.TestMode,
		AVSResult: codeToken(params["additionalData.avsResult"]),
		CVVResult: codeToken(params["additionalData.cvcResult"]),
	}

	if success {
		result.Authorization = authorizationFrom(params, original)
	} else {
		result.ErrorCode = mapRefusal(params)
	}

	g.logger.Info("adyen response classified",
		zap.Bool("success", success),
		zap.String("result_code", params["resultCode"]),
		zap.String("psp_reference", params["pspReference"]),
	)

	return result, nil
}

func isSuccess(params map[string]string) bool {
	switch params["resultCode"] {
	case "Authorised", "Received", "RedirectShopper":
		return true
	}
	// modification calls answer with "[capture-received]" style acks
	return strings.HasSuffix(params["response"], "-received]")
}

func messageFrom(params map[string]string) string {
	if m := params["refusalReason"]; m != "" {
		return m
	}
	if m := params["message"]; m != "" {
		return m
	}
	if m := params["resultCode"]; m != "" {
		return m
	}
	return params["response"]
}

func authorizationFrom(params map[string]string, original string) string {
	psp := params["pspReference"]
	if original != "" && psp != "" {
		return original + authDelimiter + psp
	}
	return psp
}

// codeToken extracts the leading code from Adyen's "N Description" match
// strings, e.g. "1 Matches" -> "1".
func codeToken(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.SplitN(raw, " ", 2)[0]
}

func track(op string, start time.Time, res **gateway.Result, err *error) {
	success := *err == nil && *res != nil && (*res).Success
	observability.RecordOperation(name, op, observability.Outcome(success, *err), time.Since(start))
}
