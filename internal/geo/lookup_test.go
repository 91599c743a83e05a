package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLookup_Geography(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, geographyFile, `{"eastus": "Americas", "westeurope": "Europe"}`)

	lookup := NewLookup(dir, zerolog.Nop())
	assert.Equal(t, "Americas", lookup.Geography("eastus"))
	assert.Equal(t, "Europe", lookup.Geography("westeurope"))
	assert.Equal(t, "Unknown", lookup.Geography("atlantis"))
}

func TestLookup_Location(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, locationsFile,
		`{"eastus": {"lat": 37.3719, "lon": -79.8164, "countryCode": "US"}}`)

	lookup := NewLookup(dir, zerolog.Nop())

	loc := lookup.Location("eastus")
	require.NotNil(t, loc.Lat)
	require.NotNil(t, loc.Lon)
	assert.Equal(t, 37.3719, *loc.Lat)
	assert.Equal(t, -79.8164, *loc.Lon)
	assert.Equal(t, "US", loc.CountryCode)

	missing := lookup.Location("atlantis")
	assert.Nil(t, missing.Lat)
	assert.Nil(t, missing.Lon)
	assert.Equal(t, "", missing.CountryCode)
}

func TestLookup_MissingFilesAreNotFatal(t *testing.T) {
	lookup := NewLookup(t.TempDir(), zerolog.Nop())
	assert.Equal(t, "Unknown", lookup.Geography("eastus"))
	assert.Equal(t, Location{}, lookup.Location("eastus"))
}

func TestLookup_MalformedFileYieldsEmptyMap(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, geographyFile, `{broken`)

	lookup := NewLookup(dir, zerolog.Nop())
	assert.Equal(t, "Unknown", lookup.Geography("eastus"))
}

func TestLookup_ShippedDataFiles(t *testing.T) {
	lookup := NewLookup(filepath.Join("..", "..", "static", "data"), zerolog.Nop())

	assert.Equal(t, "Americas", lookup.Geography("eastus"))
	assert.Equal(t, "Asia Pacific", lookup.Geography("japaneast"))

	loc := lookup.Location("westeurope")
	require.NotNil(t, loc.Lat)
	assert.Equal(t, "NL", loc.CountryCode)
}
