package summary

import (
	"math"
	"sort"

	"github.com/azscout/regions-cheapest/internal/azure"
	"github.com/azscout/regions-cheapest/internal/geo"
	"github.com/azscout/regions-cheapest/internal/source"
)

// buildRows produces one RegionStatsRow per discovered region, in discovery
// order. A region with no price data still gets a row: nil average,
// availability 0.
func buildRows(regions []azure.Region, prices source.RegionPriceMap, lookup *geo.Lookup, timestamp string) []RegionStatsRow {
	rows := make([]RegionStatsRow, 0, len(regions))
	for _, region := range regions {
		inner := prices[region.Name]

		var sum float64
		priced := 0
		for _, price := range inner {
			if price != nil {
				sum += *price
				priced++
			}
		}

		var avg *float64
		if priced > 0 {
			v := round6(sum / float64(priced))
			avg = &v
		}

		availability := 0.0
		if len(inner) > 0 {
			availability = round2(100 * float64(priced) / float64(len(inner)))
		}

		displayName := region.DisplayName
		if displayName == "" {
			displayName = region.Name
		}

		loc := lookup.Location(region.Name)
		rows = append(rows, RegionStatsRow{
			Geography:       lookup.Geography(region.Name),
			RegionName:      displayName,
			RegionID:        region.Name,
			AvgPrice:        avg,
			AvailabilityPct: availability,
			SKUCount:        len(inner),
			PricedCount:     priced,
			TimestampUTC:    timestamp,
			CountryCode:     loc.CountryCode,
			Lat:             loc.Lat,
			Lon:             loc.Lon,
		})
	}
	return rows
}

// sortRows orders rows ascending by average price, nil averages last.
func sortRows(rows []RegionStatsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].AvgPrice, rows[j].AvgPrice
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// rankRows builds the cheapest-first ranking from summary rows. Rows
// without an average are skipped; rank starts at 1 and the cheapest row's
// delta is 0 by construction.
func rankRows(rows []RegionStatsRow, topN int) []RankedRow {
	priced := make([]RegionStatsRow, 0, len(rows))
	for _, row := range rows {
		if row.AvgPrice != nil {
			priced = append(priced, row)
		}
	}
	sort.SliceStable(priced, func(i, j int) bool {
		return *priced[i].AvgPrice < *priced[j].AvgPrice
	})

	if len(priced) == 0 {
		return []RankedRow{}
	}
	if topN < len(priced) {
		priced = priced[:topN]
	}

	cheapest := *priced[0].AvgPrice
	ranked := make([]RankedRow, 0, len(priced))
	for i, row := range priced {
		ranked = append(ranked, RankedRow{
			Rank:            i + 1,
			Geography:       row.Geography,
			RegionName:      row.RegionName,
			RegionID:        row.RegionID,
			AvgPrice:        *row.AvgPrice,
			DeltaVsCheapest: *row.AvgPrice - cheapest,
			AvailabilityPct: row.AvailabilityPct,
			SKUCount:        row.SKUCount,
			PricedCount:     row.PricedCount,
			TimestampUTC:    row.TimestampUTC,
		})
	}
	return ranked
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
