package app

import (
	"errors"

	"github.com/vk/flowgrid/internal/config"
)

// Config holds everything an App needs for one invocation.
type Config struct {
	// StatePath is the state document to read. "-" reads stdin.
	StatePath string
	// OutPath receives the resulting state. Empty or "-" means the App's
	// output writer.
	OutPath string
	// Trigger is the node a run starts from.
	Trigger string

	// DescribeNode, when set, prints that node's unit descriptor instead of
	// running.
	DescribeNode string
	// Validate checks the state instead of running it. CheckUnits extends
	// the check to unit descriptors.
	Validate   bool
	CheckUnits bool

	Engine *config.Config
}

// NewConfig checks that cfg describes exactly one operation.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.StatePath == "" {
		return nil, errors.New("a state file is required")
	}
	if cfg.Engine == nil {
		cfg.Engine = config.Default()
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	ops := 0
	if cfg.Trigger != "" {
		ops++
	}
	if cfg.DescribeNode != "" {
		ops++
	}
	if cfg.Validate {
		ops++
	}
	switch {
	case ops == 0:
		return nil, errors.New("nothing to do: pass -trigger, -describe or -validate")
	case ops > 1:
		return nil, errors.New("-trigger, -describe and -validate are mutually exclusive")
	}
	if cfg.CheckUnits && !cfg.Validate {
		return nil, errors.New("-check-units requires -validate")
	}

	return &cfg, nil
}
