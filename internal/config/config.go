package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/layerist/proxy-checker/internal/model"
)

// Default returns the built-in configuration. Flags and an optional
// YAML config file layer on top of these values.
func Default() model.Config {
	return model.Config{
		ProxyType:      "http",
		TargetURL:      "http://httpbin.org/ip",
		TimeoutSeconds: 5,
		Concurrency:    20,
		Retries:        1,
		ResultsFormat:  "json",
	}
}

// Load reads a YAML config file and layers it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (model.Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, Validate(cfg)
}

// Validate rejects configurations the pool cannot honor. Bad settings
// are fatal setup errors, never silently clamped at run time.
func Validate(cfg model.Config) error {
	if cfg.ProxyType != "http" && cfg.ProxyType != "socks5" {
		return fmt.Errorf("unknown proxy type %q (want http or socks5)", cfg.ProxyType)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %g", cfg.TimeoutSeconds)
	}
	if cfg.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", cfg.Retries)
	}
	if cfg.ResultsFormat != "json" && cfg.ResultsFormat != "csv" {
		return fmt.Errorf("unsupported results format %q", cfg.ResultsFormat)
	}
	return nil
}
