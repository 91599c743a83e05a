package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azscout/regions-cheapest/internal/azure"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", config.ListenAddr)
	assert.Equal(t, "http://127.0.0.1:5001", config.CoreBaseURL)
	assert.Equal(t, azure.DefaultRetailEndpoint, config.RetailEndpoint)
	assert.Equal(t, "static/data", config.DataDir)
	assert.Equal(t, "info", config.LogLevel)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regionscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen_addr: \":9999\"\nlog_level: debug\nbulk_cache_base_url: http://cache:5001\n"), 0o644))

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", config.ListenAddr)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "http://cache:5001", config.BulkCacheBaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "http://127.0.0.1:5001", config.CoreBaseURL)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regionscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [unclosed"), 0o644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
