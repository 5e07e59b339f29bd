package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/atlanticdynamic/hostbridge/internal/interpolation"
)

// NewConfig loads configuration from a TOML file
func NewConfig(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: config file does not exist: %s", ErrFailedToLoadConfig, filePath)
	}

	if ext := filepath.Ext(filePath); ext != ".toml" {
		return nil, fmt.Errorf("%w: unsupported config format: %s, only .toml is supported", ErrFailedToLoadConfig, ext)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	cfg, err := NewConfigFromBytes(data)
	if err != nil {
		return nil, err
	}

	// A relative allow-list path is relative to the config file.
	if cfg.AllowList != "" && !filepath.IsAbs(cfg.AllowList) {
		cfg.AllowList = filepath.Join(filepath.Dir(filePath), cfg.AllowList)
	}
	return cfg, nil
}

// NewConfigFromReader loads configuration from an io.Reader providing TOML data
func NewConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config data: %w", ErrFailedToLoadConfig, err)
	}
	return NewConfigFromBytes(data)
}

// NewConfigFromBytes parses TOML, expands environment references and validates the result.
func NewConfigFromBytes(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse TOML config: %w", ErrFailedToLoadConfig, err)
	}

	if err := interpolation.InterpolateStruct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}
