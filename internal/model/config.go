package model

import "time"

type GeoInfo struct {
	Country string
	City    string
	ISP     string
}

type IPResolver interface {
	Lookup(ip string) (GeoInfo, error)
}

// Config drives one validation run. Zero values are filled in by
// config.Default; YAML tags match the optional config file.
type Config struct {
	ProxyType      string  `yaml:"proxy_type"` // http or socks5
	TargetURL      string  `yaml:"target_url"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
	Concurrency    int     `yaml:"concurrency"`
	Retries        int     `yaml:"retries"`    // attempts per proxy, min 1
	RateLimit      float64 `yaml:"rate_limit"` // probe dispatches per second, 0 = unlimited
	GeoIPPath      string  `yaml:"geoip_db"`
	ResultsFile    string  `yaml:"results_file"`   // optional full-results export
	ResultsFormat  string  `yaml:"results_format"` // json or csv
	Verbose        bool    `yaml:"verbose"`
	NoProgress     bool    `yaml:"no_progress"`
}

// Timeout returns the per-probe budget as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}
