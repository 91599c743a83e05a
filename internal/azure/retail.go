package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	// DefaultRetailEndpoint is the public Azure Retail Prices API.
	DefaultRetailEndpoint = "https://prices.azure.com/api/retail/prices"

	// retailCacheTTL bounds how long a fetched region catalog is reused.
	retailCacheTTL = time.Hour
)

// Pricing fetches the full VM SKU catalog with prices for one region.
type Pricing interface {
	GetRetailPrices(ctx context.Context, region, currency string) (map[string]PriceEntry, error)
}

type retailCacheEntry struct {
	fetched time.Time
	prices  map[string]PriceEntry
}

// RetailClient fetches Linux VM retail prices from the Azure Retail Prices
// API, following NextPageLink pagination. Catalogs are memoised per
// (region, currency) for an hour since the upstream data changes slowly.
type RetailClient struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger

	mu    sync.Mutex
	cache map[string]retailCacheEntry
}

// NewRetailClient returns a RetailClient against the given endpoint.
// Pass DefaultRetailEndpoint outside of tests.
func NewRetailClient(endpoint string, logger zerolog.Logger) *RetailClient {
	return &RetailClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
		cache:  make(map[string]retailCacheEntry),
	}
}

// GetRetailPrices returns {armSkuName: PriceEntry} for every VM SKU priced
// in the region. PayGo is the Consumption (pay-as-you-go) Linux rate, Spot
// the spot rate; either may be nil when the API exposes no such meter.
func (c *RetailClient) GetRetailPrices(ctx context.Context, region, currency string) (map[string]PriceEntry, error) {
	key := region + ":" + currency

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && time.Since(entry.fetched) < retailCacheTTL {
		c.mu.Unlock()
		return entry.prices, nil
	}
	c.mu.Unlock()

	prices, err := c.fetchAll(ctx, region, currency)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = retailCacheEntry{fetched: time.Now(), prices: prices}
	c.mu.Unlock()

	return prices, nil
}

func (c *RetailClient) fetchAll(ctx context.Context, region, currency string) (map[string]PriceEntry, error) {
	filter := fmt.Sprintf(
		"serviceName eq 'Virtual Machines' and priceType eq 'Consumption' and armRegionName eq '%s'",
		region,
	)
	next := c.endpoint + "?currencyCode=" + url.QueryEscape(currency) +
		"&$filter=" + url.QueryEscape(filter)

	prices := make(map[string]PriceEntry)
	for next != "" {
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			mergeRetailItem(prices, item)
		}
		next = ""
		if page.NextPageLink != nil {
			next = *page.NextPageLink
		}
	}
	return prices, nil
}

func (c *RetailClient) fetchPage(ctx context.Context, pageURL string) (*retailResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build retail request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retail request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Error().Err(cerr).Msg("Failed to close retail response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retail API returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read retail response: %w", err)
	}

	var page retailResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parse retail response: %w", err)
	}
	return &page, nil
}

// mergeRetailItem folds one meter row into the per-SKU map. Windows meters
// and low-priority meters are skipped; spot meters fill Spot, everything
// else fills PayGo.
func mergeRetailItem(prices map[string]PriceEntry, item retailItem) {
	sku := item.ArmSkuName
	if sku == "" {
		return
	}
	if strings.Contains(item.ProductName, "Windows") {
		return
	}
	if strings.Contains(item.MeterName, "Low Priority") {
		return
	}

	entry := prices[sku]
	entry.Currency = item.CurrencyCode

	rate := item.RetailPrice
	if strings.Contains(item.MeterName, "Spot") {
		if entry.Spot == nil {
			entry.Spot = &rate
		}
	} else if entry.PayGo == nil {
		entry.PayGo = &rate
	}
	prices[sku] = entry
}
