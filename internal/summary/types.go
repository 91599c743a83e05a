// Package summary computes ranked per-region average VM pricing. The
// Service object owns the result cache and geography lookups; construct one
// per process and share it between handlers.
package summary

// RegionStatsRow is one region's aggregated pricing statistics.
// AvgPrice is nil when no SKU in the region had a price.
type RegionStatsRow struct {
	Geography       string   `json:"geography"`
	RegionName      string   `json:"regionName"`
	RegionID        string   `json:"regionId"`
	AvgPrice        *float64 `json:"avgPrice"`
	AvailabilityPct float64  `json:"availabilityPct"`
	SKUCount        int      `json:"skuCount"`
	PricedCount     int      `json:"pricedCount"`
	TimestampUTC    string   `json:"timestampUtc"`
	CountryCode     string   `json:"countryCode"`
	Lat             *float64 `json:"lat"`
	Lon             *float64 `json:"lon"`
}

// RankedRow is a RegionStatsRow placed in the cheapest-first ranking.
// Only regions with a non-nil average are eligible, so AvgPrice is plain.
type RankedRow struct {
	Rank            int     `json:"rank"`
	Geography       string  `json:"geography"`
	RegionName      string  `json:"regionName"`
	RegionID        string  `json:"regionId"`
	AvgPrice        float64 `json:"avgPrice"`
	DeltaVsCheapest float64 `json:"deltaVsCheapest"`
	AvailabilityPct float64 `json:"availabilityPct"`
	SKUCount        int     `json:"skuCount"`
	PricedCount     int     `json:"pricedCount"`
	TimestampUTC    string  `json:"timestampUtc"`
}

// SummaryResult is the full outcome of one summary computation. Rows are
// sorted ascending by average price with nil averages last.
type SummaryResult struct {
	Rows         []RegionStatsRow `json:"rows"`
	TimestampUTC string           `json:"timestampUtc"`
	Currency     string           `json:"currency"`
	DataSource   string           `json:"dataSource"`
	CoveragePct  float64          `json:"coveragePct"`
}
