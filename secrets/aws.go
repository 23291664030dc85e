package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"go.uber.org/zap"
)

// AWSConfig contains configuration for the AWS Secrets Manager backend
type AWSConfig struct {
	// AWS region, e.g. "us-east-1"
	Region string

	// Optional profile name for local development
	Profile string

	// Optional custom endpoint for LocalStack testing
	Endpoint string

	CacheTTL    time.Duration
	EnableCache bool
}

// DefaultAWSConfig returns default configuration for the AWS backend
func DefaultAWSConfig(region string) *AWSConfig {
	return &AWSConfig{
		Region:      region,
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

type awsManager struct {
	client *secretsmanager.Client
	logger *zap.Logger
	cache  *cache
}

// NewAWSManager creates an AWS Secrets Manager-backed secret manager
func NewAWSManager(ctx context.Context, cfg *AWSConfig, logger *zap.Logger) (Manager, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	client := secretsmanager.NewFromConfig(awsConfig, clientOptions...)

	logger.Info("AWS secrets manager initialized",
		zap.String("region", cfg.Region),
		zap.Bool("cache_enabled", cfg.EnableCache),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	return &awsManager{
		client: client,
		logger: logger,
		cache:  newCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// GetSecret reads a credential by name or full ARN
func (m *awsManager) GetSecret(ctx context.Context, path string) (*Secret, error) {
	if cached := m.cache.get(path); cached != nil {
		m.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	startTime := time.Now()
	result, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		m.logger.Error("failed to retrieve secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get secret %s: %w", path, err)
	}

	m.logger.Info("secret retrieved",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	secret := &Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: make(map[string]string),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.Format(time.RFC3339)
	}
	if result.ARN != nil {
		secret.Metadata["arn"] = *result.ARN
	}
	if result.Name != nil {
		secret.Metadata["name"] = *result.Name
	}

	m.cache.set(path, secret)
	return secret, nil
}

// PutSecret updates a credential, creating it when absent
func (m *awsManager) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	m.logger.Info("writing secret to AWS secrets manager", zap.String("path", path))

	result, err := m.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(path),
		SecretString: aws.String(value),
	})
	if err == nil {
		m.cache.invalidate(path)
		return aws.ToString(result.VersionId), nil
	}

	createInput := &secretsmanager.CreateSecretInput{
		Name:         aws.String(path),
		SecretString: aws.String(value),
		Description:  aws.String("Gateway credential"),
	}
	if len(metadata) > 0 {
		tags := make([]secretsmanagertypes.Tag, 0, len(metadata))
		for key, val := range metadata {
			tags = append(tags, secretsmanagertypes.Tag{
				Key:   aws.String(key),
				Value: aws.String(val),
			})
		}
		createInput.Tags = tags
	}

	createResult, createErr := m.client.CreateSecret(ctx, createInput)
	if createErr != nil {
		m.logger.Error("failed to create secret",
			zap.String("path", path),
			zap.Error(createErr),
		)
		return "", fmt.Errorf("create secret: %w", createErr)
	}

	m.cache.invalidate(path)
	return aws.ToString(createResult.VersionId), nil
}

// DeleteSecret schedules a credential for deletion with the default
// 30-day recovery window
func (m *awsManager) DeleteSecret(ctx context.Context, path string) error {
	m.logger.Warn("deleting secret", zap.String("path", path))

	_, err := m.client.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:             aws.String(path),
		RecoveryWindowInDays: aws.Int64(30),
	})
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}

	m.cache.invalidate(path)
	return nil
}
