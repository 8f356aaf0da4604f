package config

import "time"

// File represents the structure of the configuration file.
// Every field is optional; zero values leave the current setting alone.
type File struct {
	// Catalog overrides the catalog endpoints.
	Catalog CatalogFile `yaml:"catalog,omitempty"`

	// Timeout bounds each HTTP request (e.g. "30s").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is a SOCKS5 proxy in "[user:password@]host:port" form.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent is the User-Agent header sent to the catalog.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Batch is the number of KBs resolved concurrently.
	Batch int `yaml:"batch,omitempty"`

	// Rate caps catalog requests per second.
	Rate float64 `yaml:"rate,omitempty"`

	// MaxBodySize limits the bytes read per catalog page.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// DBDir is the directory holding the history database.
	DBDir string `yaml:"dbDir,omitempty"`
}

// CatalogFile holds the catalog endpoint overrides.
type CatalogFile struct {
	// SearchURL is the search page prefix; the KB identifier is appended.
	SearchURL string `yaml:"searchURL,omitempty"`

	// DetailURL is the detail page prefix; the redirect identifier is appended.
	DetailURL string `yaml:"detailURL,omitempty"`
}

// Apply copies every set field of the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Catalog.SearchURL != "" {
		cfg.SearchURL = f.Catalog.SearchURL
	}
	if f.Catalog.DetailURL != "" {
		cfg.DetailURL = f.Catalog.DetailURL
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Batch != 0 {
		cfg.BatchSize = f.Batch
	}
	if f.Rate != 0 {
		cfg.RateLimit = f.Rate
	}
	if f.MaxBodySize != 0 {
		cfg.MaxBodySize = f.MaxBodySize
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
}
