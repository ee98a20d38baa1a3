package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// fileConfig mirrors the HCL file. Pointer fields distinguish "absent" from
// a zero value so only what the file sets overrides the defaults.
type fileConfig struct {
	LogLevel        *string         `hcl:"log_level,optional"`
	LogFormat       *string         `hcl:"log_format,optional"`
	HealthcheckPort *int            `hcl:"healthcheck_port,optional"`
	Scheduler       *schedulerBlock `hcl:"scheduler,block"`
	Units           *unitsBlock     `hcl:"units,block"`
	S3              *s3Block        `hcl:"s3,block"`
	Events          *eventsBlock    `hcl:"events,block"`
}

type schedulerBlock struct {
	Order             *string `hcl:"order,optional"`
	MaxFiringsPerNode *int    `hcl:"max_firings_per_node,optional"`
}

type unitsBlock struct {
	Dir           *string `hcl:"dir,optional"`
	InvokeTimeout *string `hcl:"invoke_timeout,optional"`
	CacheSize     *int    `hcl:"cache_size,optional"`
	EnableWasi    *bool   `hcl:"enable_wasi,optional"`
}

type s3Block struct {
	Endpoint  *string `hcl:"endpoint,optional"`
	AccessKey *string `hcl:"access_key,optional"`
	SecretKey *string `hcl:"secret_key,optional"`
	Region    *string `hcl:"region,optional"`
	UseSSL    *bool   `hcl:"use_ssl,optional"`
}

type eventsBlock struct {
	SocketIOURL *string `hcl:"socketio_url,optional"`
	Namespace   *string `hcl:"namespace,optional"`
}

// LoadFile decodes the HCL file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", path, diags)
	}
	return decode(file.Body, path, cfg)
}

// LoadBytes decodes HCL source onto cfg. filename is used in diagnostics.
func LoadBytes(src []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	return decode(file.Body, filename, cfg)
}

func decode(body hcl.Body, filename string, cfg *Config) error {
	var f fileConfig
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	return f.apply(cfg)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func (f *fileConfig) apply(cfg *Config) error {
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.LogFormat, f.LogFormat)
	setInt(&cfg.HealthcheckPort, f.HealthcheckPort)

	if s := f.Scheduler; s != nil {
		setString(&cfg.Order, s.Order)
		setInt(&cfg.MaxFiringsPerNode, s.MaxFiringsPerNode)
	}
	if u := f.Units; u != nil {
		setString(&cfg.UnitsDir, u.Dir)
		setInt(&cfg.CacheSize, u.CacheSize)
		setBool(&cfg.EnableWasi, u.EnableWasi)
		if u.InvokeTimeout != nil {
			d, err := time.ParseDuration(*u.InvokeTimeout)
			if err != nil {
				return fmt.Errorf("units.invoke_timeout: %w", err)
			}
			cfg.InvokeTimeout = d
		}
	}
	if s := f.S3; s != nil {
		setString(&cfg.S3.Endpoint, s.Endpoint)
		setString(&cfg.S3.AccessKey, s.AccessKey)
		setString(&cfg.S3.SecretKey, s.SecretKey)
		setString(&cfg.S3.Region, s.Region)
		setBool(&cfg.S3.UseSSL, s.UseSSL)
	}
	if e := f.Events; e != nil {
		setString(&cfg.EventsURL, e.SocketIOURL)
		setString(&cfg.EventsNamespace, e.Namespace)
	}
	return nil
}
