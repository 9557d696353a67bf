/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package simulation

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/acronis/go-admission/config"
)

func TestConfig(t *testing.T) {
	cfgData := `
simulation:
  actors: [Jan, Kot]
  requests: 12
  minDelay: 5ms
  maxDelay: 50ms
  ratePerSecond: 2.5
  maxRetries: 3
  retryInterval: 20ms
  rounds: 0
  interval: 10s
`
	expectedCfg := NewDefaultConfig()
	expectedCfg.Actors = []string{"Jan", "Kot"}
	expectedCfg.Requests = 12
	expectedCfg.MinDelay = config.TimeDuration(5 * time.Millisecond)
	expectedCfg.MaxDelay = config.TimeDuration(50 * time.Millisecond)
	expectedCfg.RatePerSecond = 2.5
	expectedCfg.MaxRetries = 3
	expectedCfg.RetryInterval = config.TimeDuration(20 * time.Millisecond)
	expectedCfg.Rounds = 0
	expectedCfg.Interval = config.TimeDuration(10 * time.Second)

	cfg := NewConfig()
	err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer([]byte(cfgData)), config.DataTypeYAML, cfg)
	require.NoError(t, err)
	require.Equal(t, expectedCfg, cfg)

	var appCfg struct {
		Simulation *Config `yaml:"simulation"`
	}
	appCfg.Simulation = NewDefaultConfig()
	require.NoError(t, yaml.Unmarshal([]byte(cfgData), &appCfg))
	require.Equal(t, expectedCfg, appCfg.Simulation)
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer(nil), config.DataTypeYAML, cfg))
	require.Equal(t, NewDefaultConfig(), cfg)
	require.Equal(t, []string{"Jan", "Dionizy", "Roman", "Janusz", "Kot"}, cfg.Actors)
	require.Equal(t, 3, cfg.Requests)
	require.Equal(t, config.TimeDuration(10*time.Millisecond), cfg.MinDelay)
	require.Equal(t, config.TimeDuration(2*time.Second), cfg.MaxDelay)
	require.Equal(t, 1, cfg.Rounds)
}

func TestWithKeyPrefix(t *testing.T) {
	cfg := NewConfig(WithKeyPrefix("sim"))
	err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer([]byte("sim:\n  requests: 7\n")), config.DataTypeYAML, cfg)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Requests)
	require.Equal(t, "sim", cfg.KeyPrefix())
}

func TestConfigWithInvalidValues(t *testing.T) {
	tests := []struct {
		name           string
		cfgData        string
		expectedErrMsg string
	}{
		{
			name:           "empty actors",
			cfgData:        "simulation:\n  actors: []\n",
			expectedErrMsg: `simulation.actors: cannot be empty`,
		},
		{
			name:           "empty actor id",
			cfgData:        "simulation:\n  actors: [Jan, \"\"]\n",
			expectedErrMsg: `simulation.actors: actor #1 has empty id`,
		},
		{
			name:           "zero requests",
			cfgData:        "simulation:\n  requests: 0\n",
			expectedErrMsg: `simulation.requests: should be > 0`,
		},
		{
			name:           "max delay less than min delay",
			cfgData:        "simulation:\n  minDelay: 1s\n  maxDelay: 10ms\n",
			expectedErrMsg: `simulation.maxDelay: should be >= minDelay`,
		},
		{
			name:           "negative rate",
			cfgData:        "simulation:\n  ratePerSecond: -1\n",
			expectedErrMsg: `simulation.ratePerSecond: should be >= 0`,
		},
		{
			name:           "negative retries",
			cfgData:        "simulation:\n  maxRetries: -2\n",
			expectedErrMsg: `simulation.maxRetries: should be >= 0`,
		},
		{
			name:           "negative rounds",
			cfgData:        "simulation:\n  rounds: -1\n",
			expectedErrMsg: `simulation.rounds: should be >= 0`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer([]byte(tt.cfgData)), config.DataTypeYAML, cfg)
			require.EqualError(t, err, tt.expectedErrMsg)
		})
	}
}
