// Package config provides configuration structures and utilities for kbreplace.
// It defines the catalog endpoints, HTTP client behaviour, batch settings and
// report preferences, and loads overrides from a YAML configuration file.
//
// Precedence, lowest first: NewConfig defaults, the configuration file,
// command line flags.
package config
