/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package simulation

import (
	"fmt"
	"time"

	"github.com/acronis/go-admission/config"
)

const cfgDefaultKeyPrefix = "simulation"

const (
	cfgKeyActors        = "actors"
	cfgKeyRequests      = "requests"
	cfgKeyMinDelay      = "minDelay"
	cfgKeyMaxDelay      = "maxDelay"
	cfgKeyRatePerSecond = "ratePerSecond"
	cfgKeyMaxRetries    = "maxRetries"
	cfgKeyRetryInterval = "retryInterval"
	cfgKeyRounds        = "rounds"
	cfgKeyInterval      = "interval"
)

// Default values.
const (
	DefaultRequests      = 3
	DefaultMinDelay      = 10 * time.Millisecond
	DefaultMaxDelay      = 2 * time.Second
	DefaultRatePerSecond = 0
	DefaultMaxRetries    = 0
	DefaultRetryInterval = 100 * time.Millisecond
	DefaultRounds        = 1
	DefaultInterval      = time.Second
)

// DefaultActors is the list of actors attempts are made for by default.
var DefaultActors = []string{"Jan", "Dionizy", "Roman", "Janusz", "Kot"}

// Config represents a set of configuration parameters for the simulation.
type Config struct {
	// Actors are the ids attempts are made for. Each attempt picks one at random.
	Actors []string `mapstructure:"actors" yaml:"actors" json:"actors"`

	// Requests is the number of attempts fired concurrently in a round.
	Requests int `mapstructure:"requests" yaml:"requests" json:"requests"`

	// Every attempt is fired after a random delay in [MinDelay, MaxDelay).
	MinDelay config.TimeDuration `mapstructure:"minDelay" yaml:"minDelay" json:"minDelay"`
	MaxDelay config.TimeDuration `mapstructure:"maxDelay" yaml:"maxDelay" json:"maxDelay"`

	// RatePerSecond limits how fast attempts are fired. Zero means no limit.
	RatePerSecond float64 `mapstructure:"ratePerSecond" yaml:"ratePerSecond" json:"ratePerSecond"`

	// MaxRetries is how many times a denied attempt is repeated, waiting RetryInterval in between.
	MaxRetries    int                 `mapstructure:"maxRetries" yaml:"maxRetries" json:"maxRetries"`
	RetryInterval config.TimeDuration `mapstructure:"retryInterval" yaml:"retryInterval" json:"retryInterval"`

	// Rounds is how many rounds are run, Interval apart. Zero means until stopped.
	Rounds   int                 `mapstructure:"rounds" yaml:"rounds" json:"rounds"`
	Interval config.TimeDuration `mapstructure:"interval" yaml:"interval" json:"interval"`

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
	cfg.Actors = append([]string(nil), DefaultActors...)
	cfg.Requests = DefaultRequests
	cfg.MinDelay = config.TimeDuration(DefaultMinDelay)
	cfg.MaxDelay = config.TimeDuration(DefaultMaxDelay)
	cfg.RatePerSecond = DefaultRatePerSecond
	cfg.MaxRetries = DefaultMaxRetries
	cfg.RetryInterval = config.TimeDuration(DefaultRetryInterval)
	cfg.Rounds = DefaultRounds
	cfg.Interval = config.TimeDuration(DefaultInterval)
	return cfg
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the simulation in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyActors, DefaultActors)
	dp.SetDefault(cfgKeyRequests, DefaultRequests)
	dp.SetDefault(cfgKeyMinDelay, DefaultMinDelay)
	dp.SetDefault(cfgKeyMaxDelay, DefaultMaxDelay)
	dp.SetDefault(cfgKeyRatePerSecond, DefaultRatePerSecond)
	dp.SetDefault(cfgKeyMaxRetries, DefaultMaxRetries)
	dp.SetDefault(cfgKeyRetryInterval, DefaultRetryInterval)
	dp.SetDefault(cfgKeyRounds, DefaultRounds)
	dp.SetDefault(cfgKeyInterval, DefaultInterval)
}

// Set sets simulation configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.Actors, err = dp.GetStringSlice(cfgKeyActors); err != nil {
		return err
	}
	if c.Requests, err = dp.GetInt(cfgKeyRequests); err != nil {
		return err
	}
	if c.RatePerSecond, err = dp.GetFloat64(cfgKeyRatePerSecond); err != nil {
		return err
	}
	if c.MaxRetries, err = dp.GetInt(cfgKeyMaxRetries); err != nil {
		return err
	}
	if c.Rounds, err = dp.GetInt(cfgKeyRounds); err != nil {
		return err
	}

	durations := []struct {
		key string
		dst *config.TimeDuration
	}{
		{cfgKeyMinDelay, &c.MinDelay},
		{cfgKeyMaxDelay, &c.MaxDelay},
		{cfgKeyRetryInterval, &c.RetryInterval},
		{cfgKeyInterval, &c.Interval},
	}
	for _, d := range durations {
		var val time.Duration
		if val, err = dp.GetDuration(d.key); err != nil {
			return err
		}
		*d.dst = config.TimeDuration(val)
	}

	if key, vErr := c.validate(); vErr != nil {
		return dp.WrapKeyErr(key, vErr)
	}
	return nil
}

// Validate checks that the configuration may be used for running a simulation.
// Errors are prefixed with the name of the invalid key.
func (c *Config) Validate() error {
	if key, err := c.validate(); err != nil {
		return config.WrapKeyErr(key, err)
	}
	return nil
}

func (c *Config) validate() (key string, err error) {
	if len(c.Actors) == 0 {
		return cfgKeyActors, fmt.Errorf("cannot be empty")
	}
	for i, actor := range c.Actors {
		if actor == "" {
			return cfgKeyActors, fmt.Errorf("actor #%d has empty id", i)
		}
	}
	if c.Requests <= 0 {
		return cfgKeyRequests, fmt.Errorf("should be > 0")
	}
	if c.MinDelay < 0 {
		return cfgKeyMinDelay, fmt.Errorf("should be >= 0")
	}
	if c.MaxDelay < c.MinDelay {
		return cfgKeyMaxDelay, fmt.Errorf("should be >= %s", cfgKeyMinDelay)
	}
	if c.RatePerSecond < 0 {
		return cfgKeyRatePerSecond, fmt.Errorf("should be >= 0")
	}
	if c.MaxRetries < 0 {
		return cfgKeyMaxRetries, fmt.Errorf("should be >= 0")
	}
	if c.RetryInterval < 0 {
		return cfgKeyRetryInterval, fmt.Errorf("should be >= 0")
	}
	if c.Rounds < 0 {
		return cfgKeyRounds, fmt.Errorf("should be >= 0")
	}
	if c.Interval < 0 {
		return cfgKeyInterval, fmt.Errorf("should be >= 0")
	}
	return "", nil
}
