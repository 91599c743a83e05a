package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Discovery lists the regions available to a tenant.
type Discovery interface {
	ListRegions(ctx context.Context, tenantID string) ([]Region, error)
}

// DiscoveryClient queries the az-scout core discovery endpoint.
type DiscoveryClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewDiscoveryClient returns a DiscoveryClient for the core server at baseURL.
func NewDiscoveryClient(baseURL string, logger zerolog.Logger) *DiscoveryClient {
	return &DiscoveryClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// ListRegions fetches the available regions, optionally scoped to a tenant.
// Errors propagate to the caller; discovery failure is the one collaborator
// failure that is allowed to empty a summary result.
func (c *DiscoveryClient) ListRegions(ctx context.Context, tenantID string) ([]Region, error) {
	endpoint := c.baseURL + "/api/regions"
	if tenantID != "" {
		endpoint += "?tenantId=" + url.QueryEscape(tenantID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build discovery request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Error().Err(cerr).Msg("Failed to close discovery response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read discovery response: %w", err)
	}

	var regions []Region
	if err := json.Unmarshal(body, &regions); err != nil {
		return nil, fmt.Errorf("parse discovery response: %w", err)
	}
	return regions, nil
}
