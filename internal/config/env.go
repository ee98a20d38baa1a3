package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// ReadDotEnv reads the given .env files. Missing files are skipped; when a key
// appears in several files the first one wins.
func ReadDotEnv(paths ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range paths {
		vals, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for k, v := range vals {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

// Lookup reads the process environment and falls back to dotenv values, so a
// real environment variable always beats the .env file.
func Lookup(dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overrides cfg with any FLOWGRID_* variables lookup resolves.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("FLOWGRID_LOG_LEVEL", &cfg.LogLevel)
	str("FLOWGRID_LOG_FORMAT", &cfg.LogFormat)
	str("FLOWGRID_ORDER", &cfg.Order)
	num("FLOWGRID_MAX_FIRINGS", &cfg.MaxFiringsPerNode)
	str("FLOWGRID_UNITS_DIR", &cfg.UnitsDir)
	if v, ok := lookup("FLOWGRID_INVOKE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FLOWGRID_INVOKE_TIMEOUT: %w", err))
		} else {
			cfg.InvokeTimeout = d
		}
	}
	num("FLOWGRID_CACHE_SIZE", &cfg.CacheSize)
	str("FLOWGRID_S3_ENDPOINT", &cfg.S3.Endpoint)
	str("FLOWGRID_S3_ACCESS_KEY", &cfg.S3.AccessKey)
	str("FLOWGRID_S3_SECRET_KEY", &cfg.S3.SecretKey)
	str("FLOWGRID_S3_REGION", &cfg.S3.Region)
	flag("FLOWGRID_S3_USE_SSL", &cfg.S3.UseSSL)
	str("FLOWGRID_EVENTS_URL", &cfg.EventsURL)
	num("FLOWGRID_HEALTHCHECK_PORT", &cfg.HealthcheckPort)

	return errors.Join(errs...)
}

// Load assembles a Config from defaults, the optional HCL file at path, the
// given .env files and the process environment. The result is not validated;
// callers apply flags first and then call Validate.
func Load(path string, dotenvPaths ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	dotenv, err := ReadDotEnv(dotenvPaths...)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, Lookup(dotenv)); err != nil {
		return nil, err
	}
	return cfg, nil
}
