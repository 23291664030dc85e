package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// localManager stores credentials on the local filesystem.
// Development only; production uses Vault or AWS Secrets Manager.
type localManager struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalManager creates a filesystem-backed secret manager rooted at
// basePath
func NewLocalManager(basePath string, logger *zap.Logger) Manager {
	return &localManager{
		basePath: basePath,
		logger:   logger,
	}
}

func (m *localManager) GetSecret(ctx context.Context, path string) (*Secret, error) {
	filePath := filepath.Join(m.basePath, path)

	m.logger.Debug("reading secret from filesystem", zap.String("path", path))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", path)
		}
		return nil, fmt.Errorf("read secret: %w", err)
	}

	// files may be JSON with metadata or plain text
	var secretData struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
		return &Secret{
			Value:     secretData.Value,
			Version:   "v1",
			Metadata:  secretData.Tags,
			CreatedAt: secretData.CreatedAt,
		}, nil
	}

	return &Secret{
		Value:   string(data),
		Version: "v1",
	}, nil
}

func (m *localManager) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	filePath := filepath.Join(m.basePath, path)

	m.logger.Info("storing secret to filesystem", zap.String("path", path))

	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	data, err := json.MarshalIndent(map[string]interface{}{
		"value":      value,
		"tags":       metadata,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal secret: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return "", fmt.Errorf("write secret: %w", err)
	}
	return "v1", nil
}

func (m *localManager) DeleteSecret(ctx context.Context, path string) error {
	filePath := filepath.Join(m.basePath, path)

	m.logger.Info("deleting secret from filesystem", zap.String("path", path))

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("secret not found: %s", path)
		}
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}
