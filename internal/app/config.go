package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// GridPath points at a .hcl grid file or a directory of them.
	GridPath string

	LogFormat    string
	LogLevel     string
	Workers      int
	Architecture string
}

// NewConfig validates and returns the configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("Workers must be at least 1")
	}
	return &cfg, nil
}
