package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	statusPath = "/plugins/bdd-sku/status"
	queryPath  = "/plugins/bdd-sku/retail/query"

	// bulkCacheTimeout bounds each call to the bulk cache plugin. The cache
	// is an optimisation; a slow cache must not stall the request.
	bulkCacheTimeout = 5 * time.Second
)

// BulkCache is the read side of the bdd-sku price cache.
type BulkCache interface {
	Available(ctx context.Context) bool
	Provider
}

// CacheProvider queries the bdd-sku plugin over internal HTTP. Every
// failure mode (timeout, connection refused, bad status, malformed body)
// is swallowed and reported as "no data"; the selector then falls back to
// live fetches.
type CacheProvider struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

type bulkStatusResponse struct {
	DBConnected       bool `json:"db_connected"`
	RetailPricesCount int  `json:"retail_prices_count"`
}

type bulkQueryRequest struct {
	Currency  string   `json:"currency"`
	Regions   []string `json:"regions"`
	SKUs      []string `json:"skus"`
	FreshOnly bool     `json:"fresh_only"`
}

type bulkQueryResponse struct {
	Rows []bulkRow `json:"rows"`
}

type bulkRow struct {
	Region       string   `json:"region"`
	SKU          string   `json:"sku"`
	PriceHourly  *float64 `json:"price_hourly"`
	ExpiresAtUTC string   `json:"expires_at_utc"`
}

// NewCacheProvider returns a CacheProvider for the bdd-sku plugin at baseURL.
func NewCacheProvider(baseURL string, logger zerolog.Logger) *CacheProvider {
	return &CacheProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: bulkCacheTimeout},
		logger:  logger,
	}
}

// Available reports whether the bulk cache is worth querying: it must be
// reachable, connected to its database, and hold at least one price record.
func (p *CacheProvider) Available(ctx context.Context) bool {
	var status bulkStatusResponse
	if err := p.getJSON(ctx, statusPath, &status); err != nil {
		p.logger.Debug().Err(err).Msg("Bulk cache not available")
		return false
	}
	return status.DBConnected && status.RetailPricesCount > 0
}

// PricesBulk issues one bulk query for the full region and SKU lists,
// requesting only fresh entries. Any failure yields an empty map.
func (p *CacheProvider) PricesBulk(ctx context.Context, regions, skus []string, currency, tenantID string) map[Pair]float64 {
	result := make(map[Pair]float64)

	body := bulkQueryRequest{
		Currency:  currency,
		Regions:   regions,
		SKUs:      skus,
		FreshOnly: true,
	}
	var parsed bulkQueryResponse
	if err := p.postJSON(ctx, queryPath, body, &parsed); err != nil {
		p.logger.Warn().Err(err).Msg("Bulk price query failed")
		return result
	}

	for _, row := range parsed.Rows {
		if row.Region == "" || row.SKU == "" || row.PriceHourly == nil {
			continue
		}
		result[Pair{Region: row.Region, SKU: row.SKU}] = *row.PriceHourly
	}
	return result
}

func (p *CacheProvider) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return p.doJSON(req, out)
}

func (p *CacheProvider) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.doJSON(req, out)
}

func (p *CacheProvider) doJSON(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("bulk cache request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.logger.Error().Err(cerr).Msg("Failed to close bulk cache response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bulk cache returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read bulk cache response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse bulk cache response: %w", err)
	}
	return nil
}
