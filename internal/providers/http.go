package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

const defaultMaxResponseBytes = 16 << 20

var ErrResponseTooLarge = errors.New("response too large")

type HTTPConfig struct {
	Name    string
	URL     string
	APIKey  string
	Timeout time.Duration
	// MaxResponseBytes caps the body size; zero means 16 MiB.
	MaxResponseBytes int64
}

type HTTPProvider struct {
	name     string
	url      string
	apiKey   string
	maxBytes int64
	client   *http.Client
}

func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	if cfg.URL == "" {
		return nil, errors.New("provider url is required")
	}
	if cfg.Name == "" {
		cfg.Name = "search-provider"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}
	return &HTTPProvider{
		name:     cfg.Name,
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		maxBytes: cfg.MaxResponseBytes,
		client:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (p *HTTPProvider) Name() string {
	return p.name
}

// Search posts the search parameters and returns the raw body. There is
// no retry; a failure is returned to the caller as is.
func (p *HTTPProvider) Search(ctx context.Context, params models.SearchParams) ([]byte, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, NewUpstreamError(p.name, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewUpstreamError(p.name, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, NewUpstreamError(p.name, resp.StatusCode, err)
	}
	if int64(len(body)) > p.maxBytes {
		return nil, NewUpstreamError(p.name, resp.StatusCode, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, p.maxBytes))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewUpstreamError(p.name, resp.StatusCode, fmt.Errorf("unexpected response: %s", bytes.TrimSpace(truncate(body, 256))))
	}
	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
