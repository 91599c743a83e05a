// Package geo provides static region geography and location lookups loaded
// from local JSON data files.
package geo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	geographyFile = "region_geography.json"
	locationsFile = "region_locations.json"
)

// Location holds the map coordinates and country for one region.
// Lat and Lon are nil when the data file has no coordinates for the region.
type Location struct {
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	CountryCode string   `json:"countryCode"`
}

// Lookup answers region→geography and region→location queries from data
// files loaded once on first use. A missing data file is not an error; the
// corresponding map is simply empty.
type Lookup struct {
	dataDir string
	logger  zerolog.Logger

	once      sync.Once
	geography map[string]string
	locations map[string]Location
}

// NewLookup returns a Lookup reading from dataDir. Nothing is loaded until
// the first query.
func NewLookup(dataDir string, logger zerolog.Logger) *Lookup {
	return &Lookup{dataDir: dataDir, logger: logger}
}

// init loads both data files exactly once.
func (l *Lookup) init() {
	l.once.Do(func() {
		l.geography = make(map[string]string)
		l.locations = make(map[string]Location)

		if err := loadJSONFile(filepath.Join(l.dataDir, geographyFile), &l.geography); err != nil {
			l.logger.Warn().Err(err).Str("file", geographyFile).Msg("Failed to load geography map")
		}
		if err := loadJSONFile(filepath.Join(l.dataDir, locationsFile), &l.locations); err != nil {
			l.logger.Warn().Err(err).Str("file", locationsFile).Msg("Failed to load location map")
		}
	})
}

// Geography returns the geography label for a region, or "Unknown" when the
// region is not in the data file.
func (l *Lookup) Geography(region string) string {
	l.init()
	if g, ok := l.geography[region]; ok {
		return g
	}
	return "Unknown"
}

// Location returns the location record for a region. The zero Location is
// returned for unknown regions.
func (l *Lookup) Location(region string) Location {
	l.init()
	return l.locations[region]
}

// loadJSONFile decodes path into out. A missing file leaves out untouched
// and returns nil.
func loadJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}
