package summary

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regions_cheapest_result_cache_hits_total",
		Help: "Summary requests served from the result cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regions_cheapest_result_cache_misses_total",
		Help: "Summary requests that required recomputation.",
	})
	lastCoverage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "regions_cheapest_coverage_pct",
		Help: "Coverage percentage of the most recent summary computation.",
	})
	computations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "regions_cheapest_computations_total",
		Help: "Summary computations by data source.",
	}, []string{"source"})
)
