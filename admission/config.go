/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import (
	"fmt"
	"time"

	"github.com/acronis/go-admission/config"
)

const cfgDefaultKeyPrefix = "admission"

const (
	cfgKeyGlobalRequestCapacity = "globalRequestCapacity"
	cfgKeyGlobalActorCapacity   = "globalActorCapacity"
	cfgKeyPerActorCapacity      = "perActorCapacity"
	cfgKeyAcquireTimeout        = "acquireTimeout"
	cfgKeySimulatedWork         = "simulatedWork"
)

// Default values.
const (
	DefaultGlobalRequestCapacity = 8
	DefaultGlobalActorCapacity   = 2
	DefaultPerActorCapacity      = 1
	DefaultAcquireTimeout        = time.Second
	DefaultSimulatedWork         = 2 * time.Second
)

// Config represents a set of configuration parameters for the admission controller.
// All values are fixed once the controller is constructed.
type Config struct {
	// GlobalRequestCapacity is the maximum number of admitted requests in flight across all actors.
	GlobalRequestCapacity int `mapstructure:"globalRequestCapacity" yaml:"globalRequestCapacity" json:"globalRequestCapacity"`

	// GlobalActorCapacity is the maximum number of distinct actors holding at least one admission at the same time.
	GlobalActorCapacity int `mapstructure:"globalActorCapacity" yaml:"globalActorCapacity" json:"globalActorCapacity"`

	// PerActorCapacity is the maximum number of concurrent admissions of a single actor.
	PerActorCapacity int `mapstructure:"perActorCapacity" yaml:"perActorCapacity" json:"perActorCapacity"`

	// AcquireTimeout bounds the wait at every tier.
	// Zero means that a tier is checked once without waiting.
	AcquireTimeout config.TimeDuration `mapstructure:"acquireTimeout" yaml:"acquireTimeout" json:"acquireTimeout"`

	// SimulatedWork is the duration of the simulated unit of work performed by an admitted request.
	SimulatedWork config.TimeDuration `mapstructure:"simulatedWork" yaml:"simulatedWork" json:"simulatedWork"`

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
// This prefix will be used by config.Loader.
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
	cfg.GlobalRequestCapacity = DefaultGlobalRequestCapacity
	cfg.GlobalActorCapacity = DefaultGlobalActorCapacity
	cfg.PerActorCapacity = DefaultPerActorCapacity
	cfg.AcquireTimeout = config.TimeDuration(DefaultAcquireTimeout)
	cfg.SimulatedWork = config.TimeDuration(DefaultSimulatedWork)
	return cfg
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
// Implements config.KeyPrefixProvider interface.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the admission controller in config.DataProvider.
// Implements config.Config interface.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyGlobalRequestCapacity, DefaultGlobalRequestCapacity)
	dp.SetDefault(cfgKeyGlobalActorCapacity, DefaultGlobalActorCapacity)
	dp.SetDefault(cfgKeyPerActorCapacity, DefaultPerActorCapacity)
	dp.SetDefault(cfgKeyAcquireTimeout, DefaultAcquireTimeout)
	dp.SetDefault(cfgKeySimulatedWork, DefaultSimulatedWork)
}

// Set sets admission controller configuration values from config.DataProvider.
// Implements config.Config interface.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	capacities := []struct {
		key string
		dst *int
	}{
		{cfgKeyGlobalRequestCapacity, &c.GlobalRequestCapacity},
		{cfgKeyGlobalActorCapacity, &c.GlobalActorCapacity},
		{cfgKeyPerActorCapacity, &c.PerActorCapacity},
	}
	for _, capCfg := range capacities {
		if *capCfg.dst, err = dp.GetInt(capCfg.key); err != nil {
			return err
		}
		if *capCfg.dst <= 0 {
			return dp.WrapKeyErr(capCfg.key, fmt.Errorf("should be > 0"))
		}
	}

	var acquireTimeout time.Duration
	if acquireTimeout, err = dp.GetDuration(cfgKeyAcquireTimeout); err != nil {
		return err
	}
	if acquireTimeout < 0 {
		return dp.WrapKeyErr(cfgKeyAcquireTimeout, fmt.Errorf("should be >= 0"))
	}
	c.AcquireTimeout = config.TimeDuration(acquireTimeout)

	var simulatedWork time.Duration
	if simulatedWork, err = dp.GetDuration(cfgKeySimulatedWork); err != nil {
		return err
	}
	if simulatedWork < 0 {
		return dp.WrapKeyErr(cfgKeySimulatedWork, fmt.Errorf("should be >= 0"))
	}
	c.SimulatedWork = config.TimeDuration(simulatedWork)

	return nil
}

// Validate checks that the configuration may be used for constructing a Controller.
func (c *Config) Validate() error {
	if c.GlobalRequestCapacity <= 0 {
		return config.WrapKeyErr(cfgKeyGlobalRequestCapacity, fmt.Errorf("should be > 0, got %d", c.GlobalRequestCapacity))
	}
	if c.GlobalActorCapacity <= 0 {
		return config.WrapKeyErr(cfgKeyGlobalActorCapacity, fmt.Errorf("should be > 0, got %d", c.GlobalActorCapacity))
	}
	if c.PerActorCapacity <= 0 {
		return config.WrapKeyErr(cfgKeyPerActorCapacity, fmt.Errorf("should be > 0, got %d", c.PerActorCapacity))
	}
	if c.AcquireTimeout < 0 {
		return config.WrapKeyErr(cfgKeyAcquireTimeout, fmt.Errorf("should be >= 0, got %s", c.AcquireTimeout))
	}
	if c.SimulatedWork < 0 {
		return config.WrapKeyErr(cfgKeySimulatedWork, fmt.Errorf("should be >= 0, got %s", c.SimulatedWork))
	}
	return nil
}
