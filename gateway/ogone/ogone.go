// Package ogone implements the normalized gateway contract against the
// Ogone (Ingenico) DirectLink API: form-encoded requests signed with a
// SHASIGN digest, answered by a single self-closing <ncresponse/> element
// whose attributes carry the whole reply.
//
// Authorization tokens are composite: "PAYID;OPERATION" joined with ";".
// Maintenance calls send only the PAYID component.
package ogone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"

	"github.com/kevin07696/gateway-kit/gateway"
	"github.com/kevin07696/gateway-kit/gateway/transport"
	"github.com/kevin07696/gateway-kit/pkg/codec"
	"github.com/kevin07696/gateway-kit/pkg/currency"
	pkgerrors "github.com/kevin07696/gateway-kit/pkg/errors"
	"github.com/kevin07696/gateway-kit/pkg/observability"
	"github.com/kevin07696/gateway-kit/pkg/scrub"
	"github.com/kevin07696/gateway-kit/pkg/signing"
)

const (
	name = "ogone"

	// authorization components join on ";"
	authDelimiter = ";"

	// DirectLink operation codes
	opSale      = "SAL"
	opAuthorize = "RES"
	opRefund    = "RFD"
	opVoid      = "DES"
)

// Config contains DirectLink credentials and endpoints
type Config struct {
	PSPID    string
	UserID   string
	Password string

	// SHAIn is the shared secret mixed into the SHASIGN digest
	SHAIn string

	// Algorithm selects the SHASIGN hash; defaults to SHA-1 when unset,
	// matching the account default
	Algorithm signing.Algorithm

	// OrderURL receives new orders, MaintenanceURL receives operations on
	// existing payments
	OrderURL       string
	MaintenanceURL string

	TestMode bool
}

// DefaultConfig returns endpoints for the given environment
func DefaultConfig(environment string) Config {
	if environment == "test" {
		return Config{
			OrderURL:       "https://secure.ogone.com/ncol/test/orderdirect.asp",
			MaintenanceURL: "https://secure.ogone.com/ncol/test/maintenancedirect.asp",
			Algorithm:      signing.SHA1,
			TestMode:       true,
		}
	}
	return Config{
		OrderURL:       "https://secure.ogone.com/ncol/prod/orderdirect.asp",
		MaintenanceURL: "https://secure.ogone.com/ncol/prod/maintenancedirect.asp",
		Algorithm:      signing.SHA1,
	}
}

// Gateway is an immutable Ogone adapter instance
type Gateway struct {
	config Config
	client transport.Client
	logger *zap.Logger
}

// New creates an Ogone gateway
func New(config Config, client transport.Client, logger *zap.Logger) *Gateway {
	if config.Algorithm == "" {
		config.Algorithm = signing.SHA1
	}
	return &Gateway{
		config: config,
		client: client,
		logger: logger,
	}
}

// Scrub redacts DirectLink wire transcripts
func (g *Gateway) Scrub(transcript string) string {
	return scrub.Transcript(transcript)
}

// directLinkRequest is the flat DirectLink field set; struct tags drive
// go-querystring encoding and empty fields stay off the wire.
type directLinkRequest struct {
	PSPID          string `url:"PSPID"`
	UserID         string `url:"USERID"`
	Password       string `url:"PSWD"`
	OrderID        string `url:"ORDERID,omitempty"`
	PayID          string `url:"PAYID,omitempty"`
	Operation      string `url:"OPERATION"`
	Amount         string `url:"AMOUNT,omitempty"`
	Currency       string `url:"CURRENCY,omitempty"`
	CardNumber     string `url:"CARDNO,omitempty"`
	Expiry         string `url:"ED,omitempty"`
	CVC            string `url:"CVC,omitempty"`
	CardholderName string `url:"CN,omitempty"`
	Alias          string `url:"ALIAS,omitempty"`
	Description    string `url:"COM,omitempty"`
	Email          string `url:"EMAIL,omitempty"`
	RemoteAddr     string `url:"REMOTE_ADDR,omitempty"`
	OwnerAddress   string `url:"OWNERADDRESS,omitempty"`
	OwnerZip       string `url:"OWNERZIP,omitempty"`
	OwnerTown      string `url:"OWNERTOWN,omitempty"`
	OwnerCountry   string `url:"OWNERCTY,omitempty"`
	ECI            string `url:"ECI,omitempty"`
}

// Purchase authorizes and captures in one call
func (g *Gateway) Purchase(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpPurchase, time.Now(), &res, &err)
	return g.order(ctx, opSale, amount, method, opts)
}

// Authorize places a hold to be captured later
func (g *Gateway) Authorize(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpAuthorize, time.Now(), &res, &err)
	return g.order(ctx, opAuthorize, amount, method, opts)
}

// Capture settles a prior authorization
func (g *Gateway) Capture(ctx context.Context, amount gateway.Money, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpCapture, time.Now(), &res, &err)
	return g.maintenance(ctx, opSale, amount, authorization, opts)
}

// Refund returns funds from a settled payment
func (g *Gateway) Refund(ctx context.Context, amount gateway.Money, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpRefund, time.Now(), &res, &err)

	if amount.Amount <= 0 {
		return nil, pkgerrors.NewValidationError("amount", "refund amount is required")
	}
	return g.maintenance(ctx, opRefund, amount, authorization, opts)
}

// Void deletes a prior authorization
func (g *Gateway) Void(ctx context.Context, authorization string, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpVoid, time.Now(), &res, &err)
	return g.maintenance(ctx, opVoid, gateway.Money{}, authorization, opts)
}

// Credit pushes funds to a card with no prior payment
func (g *Gateway) Credit(ctx context.Context, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpCredit, time.Now(), &res, &err)
	return g.order(ctx, opRefund, amount, method, opts)
}

// Store registers a card under an alias via a zero-amount authorization.
// The alias comes from opts.Extras["alias"], or the order ID when absent,
// and becomes the Result's Authorization.
func (g *Gateway) Store(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpStore, time.Now(), &res, &err)

	alias := opts.Extras["alias"]
	if alias == "" {
		alias = opts.OrderID
	}
	if alias == "" {
		return nil, pkgerrors.NewValidationError("alias", "an alias or order id is required to store a card")
	}

	zero := gateway.NewMoney(0, defaultCurrency(opts))
	req, err := g.orderRequestFor(opAuthorize, zero, method, opts)
	if err != nil {
		return nil, err
	}
	req.Alias = alias

	result, err := g.commit(ctx, g.config.OrderURL, opAuthorize, req)
	if err != nil {
		return nil, err
	}
	if result.Success {
		if stored := result.Params["ALIAS"]; stored != "" {
			result.Authorization = stored
		} else {
			result.Authorization = alias
		}
	}
	return result, nil
}

// verifyAmount is the nominal authorization amount Verify places and then
// voids. DirectLink rejects zero-amount RES requests, so the check holds
// one currency unit.
const verifyAmount = 100

// Verify checks a card by authorizing a nominal amount and then voiding
// the authorization. A failed void never fails the verify; the result's
// params["void_succeeded"] records the outcome.
func (g *Gateway) Verify(ctx context.Context, method gateway.PaymentMethod, opts gateway.Options) (res *gateway.Result, err error) {
	defer track(gateway.OpVerify, time.Now(), &res, &err)

	nominal := gateway.NewMoney(verifyAmount, defaultCurrency(opts))
	result, err := g.order(ctx, opAuthorize, nominal, method, opts)
	if err != nil || !result.Success {
		return result, err
	}

	voidRes, voidErr := g.maintenance(ctx, opVoid, gateway.Money{}, result.Authorization, opts)
	if voidErr != nil || !voidRes.Success {
		result.Params["void_succeeded"] = "false"
		g.logger.Warn("verify cleanup void failed",
			zap.String("authorization", result.Authorization),
			zap.Error(voidErr),
		)
	} else {
		result.Params["void_succeeded"] = "true"
	}
	return result, nil
}

func defaultCurrency(opts gateway.Options) string {
	if opts.Currency != "" {
		return opts.Currency
	}
	return "EUR"
}

func (g *Gateway) order(ctx context.Context, operation string, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (*gateway.Result, error) {
	req, err := g.orderRequestFor(operation, amount, method, opts)
	if err != nil {
		return nil, err
	}
	return g.commit(ctx, g.config.OrderURL, operation, req)
}

func (g *Gateway) orderRequestFor(operation string, amount gateway.Money, method gateway.PaymentMethod, opts gateway.Options) (*directLinkRequest, error) {
	cur := opts.CurrencyFor(amount)
	req := &directLinkRequest{
		PSPID:       g.config.PSPID,
		UserID:      g.config.UserID,
		Password:    g.config.Password,
		OrderID:     opts.OrderID,
		Operation:   operation,
		Amount:      currency.MinorUnits(amount.Amount, cur),
		Currency:    cur,
		Email:       opts.Email,
		RemoteAddr:  opts.IP,
		Description: opts.Description,
	}

	switch m := method.(type) {
	case gateway.CreditCard:
		if err := m.Validate(); err != nil {
			return nil, err
		}
		req.CardNumber = m.Number
		req.Expiry = m.ExpiryMonth() + m.ExpiryYearTwo()
		req.CVC = m.VerificationValue
		req.CardholderName = m.Name()
	case gateway.Token:
		if m.Value == "" {
			return nil, pkgerrors.NewValidationError("token", "alias is required")
		}
		req.Alias = m.Value
		req.ECI = "9" // recurring, no CVC available
	default:
		return nil, pkgerrors.NewValidationError("payment_method", "unsupported payment method for ogone")
	}

	if tds := opts.ThreeDSecure; tds != nil && tds.Eci != "" {
		req.ECI = tds.Eci
	}

	if addr := opts.BillingAddress; addr != nil {
		req.OwnerAddress = addr.Line1()
		req.OwnerZip = addr.Zip
		req.OwnerTown = addr.City
		req.OwnerCountry = addr.Country
	}

	return req, nil
}

func (g *Gateway) maintenance(ctx context.Context, operation string, amount gateway.Money, authorization string, opts gateway.Options) (*gateway.Result, error) {
	payID, err := payIDFrom(authorization)
	if err != nil {
		return nil, err
	}

	req := &directLinkRequest{
		PSPID:     g.config.PSPID,
		UserID:    g.config.UserID,
		Password:  g.config.Password,
		PayID:     payID,
		Operation: operation,
	}
	if amount.Amount > 0 {
		cur := opts.CurrencyFor(amount)
		req.Amount = currency.MinorUnits(amount.Amount, cur)
		req.Currency = cur
	}
	return g.commit(ctx, g.config.MaintenanceURL, operation, req)
}

// payIDFrom extracts the PAYID a maintenance call must send: the first
// ";"-delimited component of the authorization token
func payIDFrom(authorization string) (string, error) {
	if authorization == "" {
		return "", pkgerrors.NewValidationError("authorization", "authorization is required")
	}
	return strings.SplitN(authorization, authDelimiter, 2)[0], nil
}

func (g *Gateway) commit(ctx context.Context, endpoint, operation string, req *directLinkRequest) (*gateway.Result, error) {
	values, err := query.Values(req)
	if err != nil {
		return nil, fmt.Errorf("encode directlink request: %w", err)
	}
	shasign, err := signatureFor(values, g.config.SHAIn, g.config.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("sign directlink request: %w", err)
	}
	values.Set("SHASIGN", shasign)

	g.logger.Info("sending ogone request",
		zap.String("operation", operation),
		zap.String("order_id", values.Get("ORDERID")),
	)

	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	resp, err := g.client.Post(ctx, endpoint, []byte(values.Encode()), headers)
	if err != nil {
		var tErr *pkgerrors.TransportError
		if errors.As(err, &tErr) {
			return g.resultFrom(tErr.Body, operation)
		}
		return nil, err
	}
	return g.resultFrom(resp.Body, operation)
}

// resultFrom classifies an <ncresponse/> reply. All reply data rides on the
// root element's attributes, which the parser surfaces as bare keys.
func (g *Gateway) resultFrom(body []byte, operation string) (*gateway.Result, error) {
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
		return nil, fmt.Errorf("parse ogone response: %w", err)
	}

	success := params["NCSTATUS"] == "0"
	result := &gateway.Result{
		Success:   success,
		Message:   messageFrom(params),
		Params:    params,
		TestMode:  g.config.TestMode,
		AVSResult: params["AAVCheck"],
		CVVResult: params["CVCCheck"],
	}

	if success {
		if payID := params["PAYID"]; payID != "" {
			result.Authorization = payID + authDelimiter + operation
		}
	} else {
		result.ErrorCode = mapNCError(params["NCERROR"])
	}

	g.logger.Info("ogone response classified",
		zap.Bool("success", success),
		zap.String("ncstatus", params["NCSTATUS"]),
		zap.String("ncerror", params["NCERROR"]),
		zap.String("payid", params["PAYID"]),
	)

	return result, nil
}

func messageFrom(params map[string]string) string {
	if m := params["NCERRORPLUS"]; m != "" && m != "!" {
		return m
	}
	if m := params["NCERROR"]; m != "" && m != "0" {
		return m
	}
	return "Succeeded"
}

func track(op string, start time.Time, res **gateway.Result, err *error) {
	success := *err == nil && *res != nil && (*res).Success
	observability.RecordOperation(name, op, observability.Outcome(success, *err), time.Since(start))
}
