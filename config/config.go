// Package config loads library-wide configuration from environment
// variables. Credential fields may hold a "secret://" reference instead of
// a literal value; ResolveSecrets swaps references for the values a
// secrets.Manager returns before the configuration is handed to adapters.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/kevin07696/gateway-kit/secrets"
)

// Config holds configuration for every adapter the library ships
type Config struct {
	// Environment selects vendor endpoints: "test" or "production"
	Environment string `env:"GATEWAY_ENV" envDefault:"test"`

	HTTPTimeout time.Duration `env:"GATEWAY_HTTP_TIMEOUT" envDefault:"30s"`

	Adyen       AdyenConfig       `envPrefix:"ADYEN_"`
	Ogone       OgoneConfig       `envPrefix:"OGONE_"`
	CyberSource CyberSourceConfig `envPrefix:"CYBERSOURCE_"`
	Database    DatabaseConfig    `envPrefix:"DB_"`
	Secrets     SecretsConfig     `envPrefix:"SECRETS_"`
	Logger      LoggerConfig      `envPrefix:"LOG_"`
}

// AdyenConfig holds Adyen credentials; Password and APIKey accept
// secret:// references
type AdyenConfig struct {
	Username        string `env:"USERNAME"`
	Password        string `env:"PASSWORD"`
	APIKey          string `env:"API_KEY"`
	MerchantAccount string `env:"MERCHANT_ACCOUNT"`
	PaymentURL      string `env:"PAYMENT_URL"`
}

// OgoneConfig holds DirectLink credentials; Password and SHAIn accept
// secret:// references
type OgoneConfig struct {
	PSPID     string `env:"PSPID"`
	UserID    string `env:"USERID"`
	Password  string `env:"PSWD"`
	SHAIn     string `env:"SHA_IN"`
	Algorithm string `env:"SHA_ALGORITHM" envDefault:"sha1"`
}

// CyberSourceConfig holds Simple Order API credentials; TransactionKey
// accepts a secret:// reference
type CyberSourceConfig struct {
	MerchantID     string `env:"MERCHANT_ID"`
	TransactionKey string `env:"TRANSACTION_KEY"`
}

// DatabaseConfig holds record-store settings; URL accepts a secret://
// reference
type DatabaseConfig struct {
	URL      string `env:"URL"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"MIN_CONNS" envDefault:"5"`
}

// SecretsConfig selects and configures the secret backend
type SecretsConfig struct {
	// Backend: "vault", "aws", "local", or "" for no backend
	Backend string `env:"BACKEND"`

	VaultAddress string `env:"VAULT_ADDRESS"`
	VaultToken   string `env:"VAULT_TOKEN"`
	AWSRegion    string `env:"AWS_REGION"`
	LocalPath    string `env:"LOCAL_PATH"`

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string `env:"LEVEL" envDefault:"info"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Environment != "test" && cfg.Environment != "production" {
		return nil, fmt.Errorf("GATEWAY_ENV must be \"test\" or \"production\", got %q", cfg.Environment)
	}
	return cfg, nil
}

// NewManager builds the configured secret backend; a blank Backend yields
// a nil manager, which is fine as long as no config value is a secret://
// reference
func (s SecretsConfig) NewManager(ctx context.Context, logger *zap.Logger) (secrets.Manager, error) {
	switch s.Backend {
	case "vault":
		cfg := secrets.DefaultVaultConfig(s.VaultAddress)
		cfg.Token = s.VaultToken
		cfg.CacheTTL = s.CacheTTL
		return secrets.NewVaultManager(ctx, cfg, logger)
	case "aws":
		cfg := secrets.DefaultAWSConfig(s.AWSRegion)
		cfg.CacheTTL = s.CacheTTL
		return secrets.NewAWSManager(ctx, cfg, logger)
	case "local":
		return secrets.NewLocalManager(s.LocalPath, logger), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", s.Backend)
	}
}

// NewLogger builds a zap logger per the configured level
func (l LoggerConfig) NewLogger() (*zap.Logger, error) {
	var cfg zap.Config
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg.Level = level
	return cfg.Build()
}

const secretScheme = "secret://"

// IsSecretRef reports whether a config value is a secret reference rather
// than a literal
func IsSecretRef(value string) bool {
	return strings.HasPrefix(value, secretScheme)
}

// Resolve returns the literal value, fetching it from the manager when the
// value is a secret:// reference
func Resolve(ctx context.Context, m secrets.Manager, value string) (string, error) {
	if !IsSecretRef(value) {
		return value, nil
	}
	path := strings.TrimPrefix(value, secretScheme)
	secret, err := m.GetSecret(ctx, path)
	if err != nil {
		return "", fmt.Errorf("resolve secret %s: %w", path, err)
	}
	return secret.Value, nil
}

// ResolveSecrets replaces every secret:// reference in credential fields
// with the value the manager returns. A nil manager with references
// present is an error.
func (c *Config) ResolveSecrets(ctx context.Context, m secrets.Manager) error {
	refs := []*string{
		&c.Adyen.Password,
		&c.Adyen.APIKey,
		&c.Ogone.Password,
		&c.Ogone.SHAIn,
		&c.CyberSource.TransactionKey,
		&c.Database.URL,
	}
	for _, ref := range refs {
		if !IsSecretRef(*ref) {
			continue
		}
		if m == nil {
			return fmt.Errorf("config references secrets but no secret backend is configured")
		}
		resolved, err := Resolve(ctx, m, *ref)
		if err != nil {
			return err
		}
		*ref = resolved
	}
	return nil
}
