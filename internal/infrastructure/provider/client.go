package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/neighbourhood/backend/internal/domain/provider"
	"github.com/neighbourhood/backend/internal/infrastructure/config"
)

// maxResponseSize caps the provider response body at 10MB
const maxResponseSize = 10 * 1024 * 1024

// ErrProviderUnavailable indicates the upstream feed could not be reached
var ErrProviderUnavailable = errors.New("provider: upstream unavailable")

// StatusClient implements provider.StatusProvider against the bank's
// HTTP status feed
type StatusClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewStatusClient creates a status feed client from configuration
func NewStatusClient(cfg config.ProviderConfig) *StatusClient {
	return &StatusClient{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// FetchSnapshot retrieves the full fleet snapshot from the provider feed
func (c *StatusClient) FetchSnapshot(ctx context.Context) ([]provider.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "atm-backend/1.0")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var records []provider.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("provider: failed to decode snapshot: %w", err)
	}
	return records, nil
}
