// Package transport performs the HTTPS round trips for gateway adapters.
// It owns connection pooling and timeouts; it does not retry — payment
// calls are not safely repeatable, so retry policy belongs to callers with
// vendor idempotency keys.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	pkgerrors "github.com/kevin07696/gateway-kit/pkg/errors"
)

// Response is a completed HTTP exchange
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Client is the transport port adapters depend on. Non-2xx responses come
// back as a *errors.TransportError carrying the raw body, so adapters can
// still mine vendor error payloads out of failed HTTP calls.
type Client interface {
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error)
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Doer matches *http.Client, kept narrow for test doubles
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type httpTransport struct {
	client   Doer
	logger   *zap.Logger
	scrubber func(string) string
}

// Option configures the transport
type Option func(*httpTransport)

// WithScrubber installs the redaction applied to wire transcripts before
// they are logged. Without one, request and response bodies are not logged
// at all.
func WithScrubber(fn func(string) string) Option {
	return func(t *httpTransport) {
		t.scrubber = fn
	}
}

// WithDoer swaps the underlying HTTP client (tests)
func WithDoer(d Doer) Option {
	return func(t *httpTransport) {
		t.client = d
	}
}

// New creates a transport backed by a pooled HTTP client
func New(cfg *HTTPClientConfig, timeout time.Duration, logger *zap.Logger, opts ...Option) Client {
	t := &httpTransport{
		client: NewHTTPClient(cfg, timeout),
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *httpTransport) Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPost, url, body, headers)
}

func (t *httpTransport) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodGet, url, nil, headers)
}

func (t *httpTransport) do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if t.scrubber != nil {
		t.logger.Debug("gateway request",
			zap.String("method", method),
			zap.String("url", url),
			zap.String("body", t.scrubber(string(body))),
		)
	}

	start := time.Now()
	httpResp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("gateway request failed",
			zap.String("url", url),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	fields := []zap.Field{
		zap.String("url", url),
		zap.Int("status_code", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("body_length", len(respBody)),
	}
	if t.scrubber != nil {
		fields = append(fields, zap.String("body", t.scrubber(string(respBody))))
	}
	t.logger.Debug("gateway response", fields...)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, pkgerrors.NewTransportError(httpResp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}
