package source

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/azscout/regions-cheapest/internal/azure"
)

// maxConcurrency caps the number of regions fetched in parallel.
const maxConcurrency = 8

// LiveProvider fetches prices region by region from the Retail Prices API.
// Regions are fetched concurrently with a bounded worker pool; a single
// region's failure is logged and that region contributes no pairs.
type LiveProvider struct {
	pricing azure.Pricing
	logger  zerolog.Logger
}

// NewLiveProvider returns a LiveProvider backed by the given pricing client.
func NewLiveProvider(pricing azure.Pricing, logger zerolog.Logger) *LiveProvider {
	return &LiveProvider{pricing: pricing, logger: logger}
}

// PricesBulk fetches the full catalog for each region and keeps the pairs
// matching the requested SKU set (case-insensitive). An empty SKU list keeps
// every SKU. Only SKUs with a pay-as-you-go price contribute pairs.
func (p *LiveProvider) PricesBulk(ctx context.Context, regions, skus []string, currency, tenantID string) map[Pair]float64 {
	result := make(map[Pair]float64)
	if len(regions) == 0 {
		return result
	}

	skuSet := lowerSet(skus)

	workers := len(regions)
	if workers > maxConcurrency {
		workers = maxConcurrency
	}
	sem := make(chan struct{}, workers)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, region := range regions {
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			prices, err := p.pricing.GetRetailPrices(ctx, region, currency)
			if err != nil {
				p.logger.Warn().Err(err).Str("region", region).Msg("Live price fetch failed")
				return
			}

			partial := make(map[Pair]float64)
			for sku, entry := range prices {
				if len(skuSet) > 0 {
					if _, ok := skuSet[strings.ToLower(sku)]; !ok {
						continue
					}
				}
				if entry.PayGo != nil {
					partial[Pair{Region: region, SKU: sku}] = *entry.PayGo
				}
			}

			mu.Lock()
			for pair, price := range partial {
				result[pair] = price
			}
			mu.Unlock()
		}(region)
	}
	wg.Wait()

	return result
}
