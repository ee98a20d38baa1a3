package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	LogLevel  string
	LogFormat string

	// Order is the worklist discipline, "lifo" or "fifo".
	Order             string
	MaxFiringsPerNode int

	// UnitsDir is the base directory for relative unit sources.
	UnitsDir      string
	InvokeTimeout time.Duration
	// CacheSize is the number of unit binaries kept in memory. Zero disables
	// caching.
	CacheSize  int
	EnableWasi bool

	S3 S3

	// EventsURL enables the socket.io event sink when set.
	EventsURL       string
	EventsNamespace string

	// HealthcheckPort enables the /health endpoint when positive.
	HealthcheckPort int
}

// S3 configures the object store used for "s3://" unit sources.
type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Order:             "lifo",
		MaxFiringsPerNode: 100,
		InvokeTimeout:     30 * time.Second,
		CacheSize:         64,
		EnableWasi:        true,
		S3:                S3{Region: "us-east-1"},
		EventsNamespace:   "/",
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level '%s': must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}
	switch strings.ToLower(c.Order) {
	case "lifo", "fifo":
	default:
		errs = append(errs, fmt.Errorf("invalid scheduler order '%s': must be 'lifo' or 'fifo'", c.Order))
	}
	if c.MaxFiringsPerNode < 1 {
		errs = append(errs, fmt.Errorf("max firings per node must be at least 1, got %d", c.MaxFiringsPerNode))
	}
	if c.InvokeTimeout < 0 {
		errs = append(errs, fmt.Errorf("invoke timeout must not be negative, got %s", c.InvokeTimeout))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("unit cache size must not be negative, got %d", c.CacheSize))
	}
	if c.HealthcheckPort < 0 || c.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck port %d", c.HealthcheckPort))
	}

	return errors.Join(errs...)
}
