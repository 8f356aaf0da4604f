package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/kbreplace/internal/catalog"
)

// Default configuration values.
const (
	// DefaultSearchURL is the catalog search endpoint; the KB is appended.
	DefaultSearchURL = catalog.DefaultSearchURL

	// DefaultDetailURL is the catalog detail endpoint; the redirect id is appended.
	DefaultDetailURL = catalog.DefaultDetailURL

	// DefaultTimeout bounds each catalog request. The catalog occasionally
	// takes tens of seconds to render a search page.
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize is the number of KBs resolved concurrently when
	// several are given.
	DefaultBatchSize = 4

	// DefaultRateLimit is the maximum catalog requests per second.
	// Zero means unlimited.
	DefaultRateLimit = 0

	// DefaultUserAgent identifies kbreplace in HTTP requests.
	DefaultUserAgent = "kbreplace/1.0 (+https://github.com/nao1215/kbreplace)"

	// DefaultMaxBodySize limits the catalog page size read into memory.
	DefaultMaxBodySize = catalog.DefaultMaxBodySize

	// AppName is the application name used for XDG directory paths.
	AppName = "kbreplace"
)

// Config holds all configuration options for kbreplace.
// It is populated from defaults, the configuration file and CLI flags, and
// passed explicitly to the components that need it.
type Config struct {
	// SearchURL is the prefix of the catalog search page URL.
	SearchURL string

	// DetailURL is the prefix of the catalog detail page URL.
	DetailURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "[user:password@]host:port" form.
	ProxyAddress string

	// UserAgent is the User-Agent header sent to the catalog.
	UserAgent string

	// BatchSize is the number of KBs resolved concurrently.
	BatchSize int

	// RateLimit caps catalog requests per second across all lookups.
	// Zero disables the cap.
	RateLimit float64

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables debug log output.
	Verbose bool

	// ConfigFilePath is the configuration file given with --config.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// SaveToDB records completed lookups in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	DBDir string

	// Targets is the list of KB identifiers to resolve.
	Targets []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		SearchURL:   DefaultSearchURL,
		DetailURL:   DefaultDetailURL,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		BatchSize:   DefaultBatchSize,
		RateLimit:   DefaultRateLimit,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for kbreplace.
// On Linux: ~/.local/share/kbreplace
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for kbreplace.
// On Linux: ~/.config/kbreplace
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.SearchURL == "" || c.DetailURL == "" {
		return ErrInvalidCatalogURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
