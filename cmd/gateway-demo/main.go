// Command gateway-demo exercises a configured gateway end to end: it loads
// configuration from the environment, resolves secret references, runs a
// purchase against the selected vendor, and records the outcome.
//
// Usage:
//
//	GATEWAY_ENV=test ADYEN_USERNAME=... ADYEN_PASSWORD=... \
//	ADYEN_MERCHANT_ACCOUNT=... gateway-demo -gateway adyen -amount 1000 -currency USD
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/gateway-kit/config"
	"github.com/kevin07696/gateway-kit/gateway"
	"github.com/kevin07696/gateway-kit/gateway/adyen"
	"github.com/kevin07696/gateway-kit/gateway/cybersource"
	"github.com/kevin07696/gateway-kit/gateway/ogone"
	"github.com/kevin07696/gateway-kit/gateway/transport"
	"github.com/kevin07696/gateway-kit/pkg/scrub"
	"github.com/kevin07696/gateway-kit/pkg/signing"
	"github.com/kevin07696/gateway-kit/pkg/txnid"
	"github.com/kevin07696/gateway-kit/store"
	"github.com/kevin07696/gateway-kit/store/postgres"
)

func main() {
	var (
		gatewayName = flag.String("gateway", "adyen", "gateway to exercise: adyen, ogone, or cybersource")
		amount      = flag.Int64("amount", 100, "amount in hundredths of the major unit")
		currencyArg = flag.String("currency", "USD", "ISO 4217 currency code")
		cardNumber  = flag.String("card", "4111111111111111", "test card number")
	)
	flag.Parse()

	if err := run(*gatewayName, *amount, *currencyArg, *cardNumber); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(gatewayName string, amount int64, currencyCode, cardNumber string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := cfg.Logger.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	manager, err := cfg.Secrets.NewManager(ctx, logger)
	if err != nil {
		return err
	}
	if err := cfg.ResolveSecrets(ctx, manager); err != nil {
		return err
	}

	client := transport.New(transport.GatewayClientConfig(), cfg.HTTPTimeout, logger,
		transport.WithScrubber(scrub.Transcript))

	g, err := buildGateway(gatewayName, cfg, client, logger)
	if err != nil {
		return err
	}

	card := gateway.CreditCard{
		Number:            cardNumber,
		Month:             6,
		Year:              time.Now().Year() + 2,
		VerificationValue: "737",
		FirstName:         "Demo",
		LastName:          "Cardholder",
	}
	opts := gateway.Options{
		OrderID:  txnid.NewNumeric(),
		Currency: currencyCode,
	}

	money := gateway.NewMoney(amount, currencyCode)
	result, err := g.Purchase(ctx, money, card, opts)
	if err != nil {
		return fmt.Errorf("purchase: %w", err)
	}

	logger.Info("purchase finished",
		zap.String("gateway", gatewayName),
		zap.Bool("success", result.Success),
		zap.String("message", result.Message),
		zap.String("authorization", result.Authorization),
		zap.String("error_code", string(result.ErrorCode)),
	)
	if declineErr := result.Err(); declineErr != nil {
		logger.Warn("purchase declined",
			zap.String("category", string(result.ErrorCode.Category())),
			zap.Error(declineErr),
		)
	}

	if cfg.Database.URL != "" {
		dbCfg := postgres.DefaultConfig(cfg.Database.URL)
		dbCfg.MaxConns = cfg.Database.MaxConns
		dbCfg.MinConns = cfg.Database.MinConns

		records, closeStore, err := postgres.Connect(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect record store: %w", err)
		}
		defer closeStore()

		rec := store.FromResult(gatewayName, gateway.OpPurchase, money, opts.OrderID, result)
		if err := records.Save(ctx, rec); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
	}

	fmt.Printf("success=%v message=%q authorization=%q\n",
		result.Success, result.Message, result.Authorization)
	return nil
}

func buildGateway(name string, cfg *config.Config, client transport.Client, logger *zap.Logger) (gateway.Gateway, error) {
	switch name {
	case "adyen":
		ac := adyen.DefaultConfig(cfg.Environment)
		ac.Username = cfg.Adyen.Username
		ac.Password = cfg.Adyen.Password
		ac.APIKey = cfg.Adyen.APIKey
		ac.MerchantAccount = cfg.Adyen.MerchantAccount
		if cfg.Adyen.PaymentURL != "" {
			ac.PaymentURL = cfg.Adyen.PaymentURL
		}
		return adyen.New(ac, client, logger), nil

	case "ogone":
		oc := ogone.DefaultConfig(cfg.Environment)
		oc.PSPID = cfg.Ogone.PSPID
		oc.UserID = cfg.Ogone.UserID
		oc.Password = cfg.Ogone.Password
		oc.SHAIn = cfg.Ogone.SHAIn
		oc.Algorithm = signing.Algorithm(cfg.Ogone.Algorithm)
		return ogone.New(oc, client, logger), nil

	case "cybersource":
		cc := cybersource.DefaultConfig(cfg.Environment)
		cc.MerchantID = cfg.CyberSource.MerchantID
		cc.TransactionKey = cfg.CyberSource.TransactionKey
		return cybersource.New(cc, client, logger), nil

	default:
		return nil, fmt.Errorf("unknown gateway: %s", name)
	}
}
