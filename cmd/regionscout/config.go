package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/azscout/regions-cheapest/internal/azure"
)

// Config holds the runtime settings for the regionscout binary.
type Config struct {
	ListenAddr       string `yaml:"listen_addr"`
	CoreBaseURL      string `yaml:"core_base_url"`
	BulkCacheBaseURL string `yaml:"bulk_cache_base_url"`
	RetailEndpoint   string `yaml:"retail_endpoint"`
	DataDir          string `yaml:"data_dir"`
	LogLevel         string `yaml:"log_level"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr:       ":8080",
		CoreBaseURL:      "http://127.0.0.1:5001",
		BulkCacheBaseURL: "http://127.0.0.1:5001",
		RetailEndpoint:   azure.DefaultRetailEndpoint,
		DataDir:          "static/data",
		LogLevel:         "info",
	}
}

// loadConfig reads a YAML config file over the defaults. A missing file is
// fine; flags and env vars then apply on top of the defaults.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}
