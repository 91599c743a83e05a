package summary

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/azscout/regions-cheapest/internal/azure"
	"github.com/azscout/regions-cheapest/internal/geo"
	"github.com/azscout/regions-cheapest/internal/source"
)

// DefaultTopN is the ranking length when the caller does not ask for one.
const DefaultTopN = 10

// Params are the request parameters shared by Summary and Cheapest.
type Params struct {
	TenantID  string
	Currency  string // defaults to "USD"
	GroupBy   string // "region" (default) or "geography"
	SKUSample []string
	TopN      int // Cheapest only, defaults to DefaultTopN
}

// Selector chooses the data source and produces the per-region price map.
type Selector interface {
	Select(ctx context.Context, regions []string, currency, tenantID string, skuSample []string) source.Selection
}

// Service computes region pricing summaries and rankings. It owns the
// result cache and the geography lookups; a fresh Service has independent
// caches, which is what tests rely on for isolation.
type Service struct {
	discovery azure.Discovery
	selector  Selector
	lookup    *geo.Lookup
	logger    zerolog.Logger
	cache     *resultCache
}

// NewService wires a Service from its collaborators.
func NewService(discovery azure.Discovery, selector Selector, lookup *geo.Lookup, logger zerolog.Logger) *Service {
	return &Service{
		discovery: discovery,
		selector:  selector,
		lookup:    lookup,
		logger:    logger,
		cache:     newResultCache(),
	}
}

// Summary computes (or serves from cache) the per-region average pricing
// summary. A discovery failure yields an empty result that is not cached,
// so the next call retries; every other failure class degrades the data
// source instead of shrinking the row set.
func (s *Service) Summary(ctx context.Context, p Params) SummaryResult {
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}

	key := cacheKey(p.TenantID, currency, p.SKUSample)
	if result, ok := s.cache.get(key); ok {
		cacheHits.Inc()
		return result
	}
	cacheMisses.Inc()

	timestamp := time.Now().UTC().Format(time.RFC3339)

	regions, err := s.discovery.ListRegions(ctx, p.TenantID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to discover regions")
		return SummaryResult{
			Rows:         []RegionStatsRow{},
			TimestampUTC: timestamp,
			Currency:     currency,
		}
	}

	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}

	selection := s.selector.Select(ctx, names, currency, p.TenantID, p.SKUSample)

	rows := buildRows(regions, selection.Prices, s.lookup, timestamp)
	sortRows(rows)

	result := SummaryResult{
		Rows:         rows,
		TimestampUTC: timestamp,
		Currency:     currency,
		DataSource:   selection.DataSource,
		CoveragePct:  selection.CoveragePct,
	}

	computations.WithLabelValues(selection.DataSource).Inc()
	lastCoverage.Set(selection.CoveragePct)

	s.cache.put(key, result)
	return result
}

// Cheapest returns the top N cheapest regions by average VM price along
// with the data source label of the underlying summary.
func (s *Service) Cheapest(ctx context.Context, p Params) ([]RankedRow, string) {
	topN := p.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	result := s.Summary(ctx, p)
	return rankRows(result.Rows, topN), result.DataSource
}
