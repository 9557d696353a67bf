/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package diagserver

import (
	"fmt"

	"github.com/acronis/go-admission/config"
)

const cfgDefaultKeyPrefix = "diagserver"

const (
	cfgKeyEnabled = "enabled"
	cfgKeyAddress = "address"
)

// Default values.
const (
	DefaultEnabled = false
	DefaultAddress = "127.0.0.1:8081"
)

// Config represents a set of configuration parameters for the diagnostics server.
type Config struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Address string `mapstructure:"address" yaml:"address" json:"address"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// ConfigOption is a type for functional options for the Config.
type ConfigOption func(*configOptions)

type configOptions struct {
	keyPrefix string
}

// WithKeyPrefix returns a ConfigOption that sets a key prefix for parsing configuration parameters.
func WithKeyPrefix(keyPrefix string) ConfigOption {
	return func(o *configOptions) {
		o.keyPrefix = keyPrefix
	}
}

// NewConfig creates a new instance of the Config.
func NewConfig(options ...ConfigOption) *Config {
	opts := configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{keyPrefix: opts.keyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig(options ...ConfigOption) *Config {
	cfg := NewConfig(options...)
	cfg.Enabled = DefaultEnabled
	cfg.Address = DefaultAddress
	return cfg
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the diagnostics server in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyEnabled, DefaultEnabled)
	dp.SetDefault(cfgKeyAddress, DefaultAddress)
}

// Set sets diagnostics server configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.Enabled, err = dp.GetBool(cfgKeyEnabled); err != nil {
		return err
	}
	if c.Address, err = dp.GetString(cfgKeyAddress); err != nil {
		return err
	}
	if c.Enabled && c.Address == "" {
		return dp.WrapKeyErr(cfgKeyAddress, fmt.Errorf("cannot be empty when the server is enabled"))
	}
	return nil
}
