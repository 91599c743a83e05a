package source

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/azscout/regions-cheapest/internal/azure"
)

// coverageThreshold is the fraction of the (region × SKU) space the bulk
// cache must cover before its answer is trusted without live top-up.
const coverageThreshold = 0.70

// Selection is the outcome of source selection for one request.
type Selection struct {
	Prices      RegionPriceMap
	DataSource  string
	CoveragePct float64
}

// Selector produces a RegionPriceMap for a request, preferring the bulk
// cache when it covers enough of the requested space and topping up (or
// fully falling back to) live fetches otherwise. Correctness wins over
// economy: a region is never silently under-reported because the cache
// happened to miss it.
type Selector struct {
	cache   BulkCache
	live    Provider
	pricing azure.Pricing
	logger  zerolog.Logger
}

// NewSelector wires a Selector from its three collaborators.
func NewSelector(cache BulkCache, live Provider, pricing azure.Pricing, logger zerolog.Logger) *Selector {
	return &Selector{cache: cache, live: live, pricing: pricing, logger: logger}
}

// Select obtains prices for every region. skuSample, when non-empty,
// restricts the SKU universe; otherwise the universe is learned from the
// first region's live catalog, which is fetched once and reused.
func (s *Selector) Select(ctx context.Context, regions []string, currency, tenantID string, skuSample []string) Selection {
	prices := make(RegionPriceMap, len(regions))
	for _, r := range regions {
		prices[r] = make(map[string]*float64)
	}
	if len(regions) == 0 {
		return Selection{Prices: prices, DataSource: SourceLive, CoveragePct: 100}
	}

	sampleRegion := regions[0]
	sampleCatalog, sampleOK := s.fetchSampleCatalog(ctx, sampleRegion, currency, skuSample)

	universe := skuSample
	if len(universe) == 0 {
		universe = make([]string, 0, len(sampleCatalog))
		for sku := range sampleCatalog {
			universe = append(universe, sku)
		}
		sort.Strings(universe)
	}

	if !s.cache.Available(ctx) {
		return s.selectLive(ctx, regions, universe, currency, tenantID, sampleRegion, sampleCatalog, sampleOK, prices)
	}

	pairs := s.cache.PricesBulk(ctx, regions, universe, currency, tenantID)
	space := len(regions) * len(universe)
	if len(pairs) == 0 || space == 0 {
		return s.selectLive(ctx, regions, universe, currency, tenantID, sampleRegion, sampleCatalog, sampleOK, prices)
	}

	for pair, price := range pairs {
		if inner, ok := prices[pair.Region]; ok {
			v := price
			inner[pair.SKU] = &v
		}
	}

	coverage := float64(len(pairs)) / float64(space)
	if coverage >= coverageThreshold {
		return Selection{Prices: prices, DataSource: SourceDB, CoveragePct: roundPct(coverage * 100)}
	}

	// Hybrid: every region missing at least one requested SKU is re-fetched
	// wholesale; the sample region reuses its already-fetched catalog.
	var refetch []string
	for _, region := range regions {
		inner := prices[region]
		for _, sku := range universe {
			if _, ok := inner[sku]; ok {
				continue
			}
			if region == sampleRegion && sampleOK {
				mergeCatalog(inner, sampleCatalog)
			} else {
				refetch = append(refetch, region)
			}
			break
		}
	}

	if len(refetch) > 0 {
		livePairs := s.live.PricesBulk(ctx, refetch, universe, currency, tenantID)
		for pair, price := range livePairs {
			inner := prices[pair.Region]
			if _, ok := inner[pair.SKU]; !ok {
				v := price
				inner[pair.SKU] = &v
			}
		}
	}

	priced := 0
	for _, inner := range prices {
		for _, v := range inner {
			if v != nil {
				priced++
			}
		}
	}
	coverage = float64(priced) / float64(space)
	if coverage > 1 {
		coverage = 1
	}
	return Selection{Prices: prices, DataSource: SourceHybrid, CoveragePct: roundPct(coverage * 100)}
}

// fetchSampleCatalog fetches the first region's catalog live, filtered to
// the SKU sample when one was supplied. Pay-as-you-go prices are copied
// with nils preserved so a catalog-listed but unpriced SKU stays visible.
func (s *Selector) fetchSampleCatalog(ctx context.Context, region, currency string, skuSample []string) (map[string]*float64, bool) {
	catalog, err := s.pricing.GetRetailPrices(ctx, region, currency)
	if err != nil {
		s.logger.Warn().Err(err).Str("region", region).Msg("Sample catalog fetch failed")
		return nil, false
	}

	skuSet := lowerSet(skuSample)
	result := make(map[string]*float64, len(catalog))
	for sku, entry := range catalog {
		if len(skuSet) > 0 {
			if _, ok := skuSet[strings.ToLower(sku)]; !ok {
				continue
			}
		}
		if entry.PayGo != nil {
			v := *entry.PayGo
			result[sku] = &v
		} else {
			result[sku] = nil
		}
	}
	return result, true
}

// selectLive fetches every region live. The sample region's catalog is
// reused instead of being fetched a second time.
func (s *Selector) selectLive(ctx context.Context, regions, universe []string, currency, tenantID, sampleRegion string, sampleCatalog map[string]*float64, sampleOK bool, prices RegionPriceMap) Selection {
	fetch := regions
	if sampleOK {
		fetch = make([]string, 0, len(regions)-1)
		for _, r := range regions {
			if r != sampleRegion {
				fetch = append(fetch, r)
			}
		}
		mergeCatalog(prices[sampleRegion], sampleCatalog)
	}

	pairs := s.live.PricesBulk(ctx, fetch, universe, currency, tenantID)
	for pair, price := range pairs {
		if inner, ok := prices[pair.Region]; ok {
			v := price
			inner[pair.SKU] = &v
		}
	}
	return Selection{Prices: prices, DataSource: SourceLive, CoveragePct: 100}
}

// mergeCatalog copies catalog entries into inner without overwriting
// anything already present.
func mergeCatalog(inner map[string]*float64, catalog map[string]*float64) {
	for sku, price := range catalog {
		if _, ok := inner[sku]; ok {
			continue
		}
		if price != nil {
			v := *price
			inner[sku] = &v
		} else {
			inner[sku] = nil
		}
	}
}

func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
