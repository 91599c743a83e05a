// Package source selects and queries pricing data sources. Two providers
// implement the same bulk-fetch contract: a live one backed by the Retail
// Prices API and a cached one backed by the bdd-sku bulk cache. The
// Selector decides per request which of them (or both) supplies the data.
package source

import (
	"context"
	"strings"
)

// Data source labels reported to callers.
const (
	SourceDB     = "db"
	SourceHybrid = "hybrid"
	SourceLive   = "live"
)

// Pair identifies one (region, SKU) price point.
type Pair struct {
	Region string
	SKU    string
}

// Provider fetches hourly prices for a set of (region, SKU) pairs.
// Pairs with no known price are absent from the result, never present with
// a zero value.
type Provider interface {
	PricesBulk(ctx context.Context, regions, skus []string, currency, tenantID string) map[Pair]float64
}

// RegionPriceMap maps region name to {SKU: hourly price}. Every requested
// region is present as a key even when no data was obtained for it. A nil
// price and a missing SKU entry both mean "not priced", but a nil price
// records that the SKU exists in the region's catalog.
type RegionPriceMap map[string]map[string]*float64

// lowerSet builds a case-insensitive membership set from SKU names.
// An empty input yields an empty set, which callers treat as "no filter".
func lowerSet(skus []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skus))
	for _, s := range skus {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}
