package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// VaultConfig contains configuration for the HashiCorp Vault backend
type VaultConfig struct {
	// Vault server address, e.g. "https://vault.example.com:8200"
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string

	// Token for token authentication
	Token string

	// AppRole credentials
	RoleID   string
	SecretID string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// KV version: "v1" or "v2" (default: "v2")
	KVVersion string

	CacheTTL    time.Duration
	EnableCache bool

	TLSSkipVerify bool
}

// DefaultVaultConfig returns default configuration for the Vault backend
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		AuthMethod:  "token",
		MountPath:   "secret",
		KVVersion:   "v2",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

type vaultManager struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *cache
}

// NewVaultManager creates a Vault-backed secret manager
func NewVaultManager(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (Manager, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		if err := vaultConfig.ConfigureTLS(&vault.TLSConfig{Insecure: true}); err != nil {
			return nil, fmt.Errorf("configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(client, cfg); err != nil {
		return nil, fmt.Errorf("authenticate with vault: %w", err)
	}

	logger.Info("vault secret manager initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &vaultManager{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

func authenticateVault(client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		data := map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		}
		resp, err := client.Logical().Write("auth/approle/login", data)
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret reads a credential, e.g. "gateways/cybersource/transaction-key"
func (m *vaultManager) GetSecret(ctx context.Context, path string) (*Secret, error) {
	if cached := m.cache.get(path); cached != nil {
		m.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	fullPath := m.dataPath(path)

	startTime := time.Now()
	secret, err := m.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		m.logger.Error("failed to read secret from vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("read secret from vault: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	m.logger.Info("secret retrieved",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	var secretData map[string]interface{}
	var version, createdTime string

	if m.config.KVVersion == "v2" {
		data, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format from vault")
		}
		secretData = data
		if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
			if v, ok := metadata["version"].(json.Number); ok {
				version = v.String()
			}
			if ct, ok := metadata["created_time"].(string); ok {
				createdTime = ct
			}
		}
	} else {
		secretData = secret.Data
		version = "1"
	}

	// the credential itself lives under "value"; any other string fields
	// ride along as metadata
	value, _ := secretData["value"].(string)
	if value == "" {
		for _, v := range secretData {
			if str, ok := v.(string); ok {
				value = str
				break
			}
		}
	}
	if value == "" {
		return nil, fmt.Errorf("secret value is empty: %s", path)
	}

	result := &Secret{
		Value:     value,
		Version:   version,
		CreatedAt: createdTime,
		Metadata:  make(map[string]string),
	}
	for k, v := range secretData {
		if str, ok := v.(string); ok && k != "value" {
			result.Metadata[k] = str
		}
	}

	m.cache.set(path, result)
	return result, nil
}

// PutSecret creates or updates a credential
func (m *vaultManager) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	m.logger.Info("writing secret to vault", zap.String("path", path))

	secretData := map[string]interface{}{"value": value}
	for k, v := range metadata {
		secretData[k] = v
	}

	var writeData map[string]interface{}
	if m.config.KVVersion == "v2" {
		writeData = map[string]interface{}{"data": secretData}
	} else {
		writeData = secretData
	}

	resp, err := m.client.Logical().WriteWithContext(ctx, m.dataPath(path), writeData)
	if err != nil {
		m.logger.Error("failed to write secret to vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", fmt.Errorf("write secret: %w", err)
	}

	version := "1"
	if m.config.KVVersion == "v2" && resp != nil && resp.Data != nil {
		if v, ok := resp.Data["version"].(json.Number); ok {
			version = v.String()
		}
	}

	m.cache.invalidate(path)
	return version, nil
}

// DeleteSecret permanently deletes a credential
func (m *vaultManager) DeleteSecret(ctx context.Context, path string) error {
	m.logger.Warn("deleting secret from vault", zap.String("path", path))

	var fullPath string
	if m.config.KVVersion == "v2" {
		// KV v2: deleting metadata removes every version
		fullPath = fmt.Sprintf("%s/metadata/%s", m.config.MountPath, path)
	} else {
		fullPath = fmt.Sprintf("%s/%s", m.config.MountPath, path)
	}

	if _, err := m.client.Logical().DeleteWithContext(ctx, fullPath); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}

	m.cache.invalidate(path)
	return nil
}

func (m *vaultManager) dataPath(path string) string {
	if m.config.KVVersion == "v2" {
		return fmt.Sprintf("%s/data/%s", m.config.MountPath, path)
	}
	return fmt.Sprintf("%s/%s", m.config.MountPath, path)
}
