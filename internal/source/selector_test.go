package source

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azscout/regions-cheapest/internal/azure"
)

type fakeBulk struct {
	available  bool
	pairs      map[Pair]float64
	gotRegions []string
	gotSKUs    []string
	queries    int
}

func (f *fakeBulk) Available(_ context.Context) bool { return f.available }

func (f *fakeBulk) PricesBulk(_ context.Context, regions, skus []string, _, _ string) map[Pair]float64 {
	f.queries++
	f.gotRegions = regions
	f.gotSKUs = skus
	out := make(map[Pair]float64, len(f.pairs))
	for pair, price := range f.pairs {
		out[pair] = price
	}
	return out
}

var fixtureRegionNames = []string{"eastus", "westeurope", "japaneast"}

func newFixtureSelector(bulk *fakeBulk, pricing *fakePricing) *Selector {
	live := NewLiveProvider(pricing, zerolog.Nop())
	return NewSelector(bulk, live, pricing, zerolog.Nop())
}

func TestSelector_CacheUnavailableGoesLive(t *testing.T) {
	pricing := newFakePricing(fixtureCatalogs())
	selector := newFixtureSelector(&fakeBulk{available: false}, pricing)

	sel := selector.Select(context.Background(), fixtureRegionNames, "USD", "", nil)

	assert.Equal(t, SourceLive, sel.DataSource)
	assert.Equal(t, 100.0, sel.CoveragePct)

	require.Len(t, sel.Prices, 3)
	assert.Len(t, sel.Prices["eastus"], 3)
	assert.Len(t, sel.Prices["westeurope"], 3)
	// japaneast's catalog only carries two of the universe SKUs.
	assert.Len(t, sel.Prices["japaneast"], 2)

	// The sample region is fetched once and reused, not fetched again.
	assert.Equal(t, 1, pricing.callCount("eastus"))
}

func TestSelector_EmptyBulkResultGoesLive(t *testing.T) {
	pricing := newFakePricing(fixtureCatalogs())
	bulk := &fakeBulk{available: true, pairs: map[Pair]float64{}}
	selector := newFixtureSelector(bulk, pricing)

	sel := selector.Select(context.Background(), fixtureRegionNames, "USD", "", nil)

	assert.Equal(t, SourceLive, sel.DataSource)
	assert.Equal(t, 100.0, sel.CoveragePct)
	assert.Equal(t, 1, bulk.queries)
}

func TestSelector_HighCoverageUsesDB(t *testing.T) {
	pricing := newFakePricing(fixtureCatalogs())
	bulk := &fakeBulk{available: true, pairs: map[Pair]float64{
		{Region: "eastus", SKU: "Standard_B2s"}:        0.04,
		{Region: "eastus", SKU: "Standard_D2s_v5"}:     0.09,
		{Region: "eastus", SKU: "Standard_F2s_v2"}:     0.08,
		{Region: "westeurope", SKU: "Standard_B2s"}:    0.05,
		{Region: "westeurope", SKU: "Standard_D2s_v5"}: 0.11,
		{Region: "westeurope", SKU: "Standard_F2s_v2"}: 0.10,
		{Region: "japaneast", SKU: "Standard_B2s"}:     0.056,
	}}
	selector := newFixtureSelector(bulk, pricing)

	sel := selector.Select(context.Background(), fixtureRegionNames, "USD", "", nil)

	// 7 of 9 pairs covered: 77.78% >= 70% threshold.
	assert.Equal(t, SourceDB, sel.DataSource)
	assert.Equal(t, 77.78, sel.CoveragePct)

	// The DB answer is used as-is; no live top-up happens.
	assert.Len(t, sel.Prices["japaneast"], 1)
	assert.Equal(t, 1, pricing.callCount("eastus")) // sample only
	assert.Equal(t, 0, pricing.callCount("westeurope"))
	assert.Equal(t, 0, pricing.callCount("japaneast"))
}

func TestSelector_PartialCoverageGoesHybrid(t *testing.T) {
	pricing := newFakePricing(fixtureCatalogs())
	bulk := &fakeBulk{available: true, pairs: map[Pair]float64{
		{Region: "eastus", SKU: "Standard_B2s"}:     0.04,
		{Region: "eastus", SKU: "Standard_D2s_v5"}:  0.09,
		{Region: "eastus", SKU: "Standard_F2s_v2"}:  0.08,
		{Region: "westeurope", SKU: "Standard_B2s"}: 0.05,
	}}
	selector := newFixtureSelector(bulk, pricing)

	sel := selector.Select(context.Background(), fixtureRegionNames, "USD", "", nil)

	// 4 of 9 pairs covered: below threshold, gaps filled live.
	assert.Equal(t, SourceHybrid, sel.DataSource)

	// The cached westeurope price is kept; live fills only the gaps.
	require.NotNil(t, sel.Prices["westeurope"]["Standard_B2s"])
	assert.Equal(t, 0.05, *sel.Prices["westeurope"]["Standard_B2s"])
	require.NotNil(t, sel.Prices["westeurope"]["Standard_D2s_v5"])
	assert.Equal(t, 0.113, *sel.Prices["westeurope"]["Standard_D2s_v5"])

	// All regions end up fully priced from their catalogs.
	assert.Len(t, sel.Prices["eastus"], 3)
	assert.Len(t, sel.Prices["westeurope"], 3)
	assert.Len(t, sel.Prices["japaneast"], 2)

	// 8 of 9 pairs priced after the merge.
	assert.Equal(t, 88.89, sel.CoveragePct)

	// eastus was fully covered by the cache: never fetched beyond the sample.
	assert.Equal(t, 1, pricing.callCount("eastus"))
	assert.Equal(t, 1, pricing.callCount("westeurope"))
	assert.Equal(t, 1, pricing.callCount("japaneast"))
}

func TestSelector_HybridReusesSampleCatalog(t *testing.T) {
	pricing := newFakePricing(fixtureCatalogs())
	bulk := &fakeBulk{available: true, pairs: map[Pair]float64{
		{Region: "eastus", SKU: "Standard_B2s"}:        0.04,
		{Region: "eastus", SKU: "Standard_D2s_v5"}:     0.09,
		{Region: "westeurope", SKU: "Standard_B2s"}:    0.05,
		{Region: "westeurope", SKU: "Standard_D2s_v5"}: 0.11,
		{Region: "westeurope", SKU: "Standard_F2s_v2"}: 0.10,
		{Region: "japaneast", SKU: "Standard_B2s"}:     0.056,
	}}
	selector := newFixtureSelector(bulk, pricing)

	sel := selector.Select(context.Background(), fixtureRegionNames, "USD", "", nil)
	assert.Equal(t, SourceHybrid, sel.DataSource)

	// eastus misses a SKU in the cache answer but is the sample region:
	// its already-fetched catalog fills the gap without a second fetch.
	require.NotNil(t, sel.Prices["eastus"]["Standard_F2s_v2"])
	assert.Equal(t, 0.085, *sel.Prices["eastus"]["Standard_F2s_v2"])
	assert.Equal(t, 1, pricing.callCount("eastus"))

	// The cached eastus values are kept over the catalog ones.
	assert.Equal(t, 0.04, *sel.Prices["eastus"]["Standard_B2s"])
}

func TestSelector_LivePreservesUnpricedCatalogSKUs(t *testing.T) {
	catalogs := fixtureCatalogs()
	catalogs["eastus"]["Standard_M128ms"] = azure.PriceEntry{PayGo: nil, Currency: "USD"}
	pricing := newFakePricing(catalogs)
	selector := newFixtureSelector(&fakeBulk{available: false}, pricing)

	sel := selector.Select(context.Background(), fixtureRegionNames, "USD", "", nil)

	inner := sel.Prices["eastus"]
	require.Contains(t, inner, "Standard_M128ms")
	assert.Nil(t, inner["Standard_M128ms"])
	assert.Len(t, inner, 4)
}

func TestSelector_SKUSampleOverridesUniverse(t *testing.T) {
	pricing := newFakePricing(fixtureCatalogs())
	bulk := &fakeBulk{available: true, pairs: map[Pair]float64{
		{Region: "eastus", SKU: "Standard_B2s"}:     0.04,
		{Region: "westeurope", SKU: "Standard_B2s"}: 0.05,
		{Region: "japaneast", SKU: "Standard_B2s"}:  0.056,
	}}
	selector := newFixtureSelector(bulk, pricing)

	sel := selector.Select(context.Background(), fixtureRegionNames, "USD", "", []string{"Standard_B2s"})

	// 3 of 3 pairs covered with the one-SKU universe.
	assert.Equal(t, SourceDB, sel.DataSource)
	assert.Equal(t, 100.0, sel.CoveragePct)
	assert.Equal(t, []string{"Standard_B2s"}, bulk.gotSKUs)
}

func TestSelector_NoRegions(t *testing.T) {
	pricing := newFakePricing(nil)
	selector := newFixtureSelector(&fakeBulk{available: true}, pricing)

	sel := selector.Select(context.Background(), nil, "USD", "", nil)
	assert.Equal(t, SourceLive, sel.DataSource)
	assert.Empty(t, sel.Prices)
}
