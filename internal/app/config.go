package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // econ analysis config file

	LogFormat    string
	LogLevel     string
	Workers      int
	ValidateOnly bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
