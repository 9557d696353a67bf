/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/acronis/go-admission/config"
)

type AppConfig struct {
	Admission *Config `mapstructure:"admission" json:"admission" yaml:"admission"`
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfgDataType config.DataType
		cfgData     string
		expectedCfg func() *Config
	}{
		{
			name:        "yaml config",
			cfgDataType: config.DataTypeYAML,
			cfgData: `
admission:
  globalRequestCapacity: 16
  globalActorCapacity: 4
  perActorCapacity: 2
  acquireTimeout: 500ms
  simulatedWork: 1m
`,
			expectedCfg: func() *Config {
				cfg := NewDefaultConfig()
				cfg.GlobalRequestCapacity = 16
				cfg.GlobalActorCapacity = 4
				cfg.PerActorCapacity = 2
				cfg.AcquireTimeout = config.TimeDuration(500 * time.Millisecond)
				cfg.SimulatedWork = config.TimeDuration(time.Minute)
				return cfg
			},
		},
		{
			name:        "json config",
			cfgDataType: config.DataTypeJSON,
			cfgData: `
{
	"admission": {
		"globalRequestCapacity": 16,
		"globalActorCapacity": 4,
		"perActorCapacity": 2,
		"acquireTimeout": "500ms",
		"simulatedWork": "1m"
	}
}`,
			expectedCfg: func() *Config {
				cfg := NewDefaultConfig()
				cfg.GlobalRequestCapacity = 16
				cfg.GlobalActorCapacity = 4
				cfg.PerActorCapacity = 2
				cfg.AcquireTimeout = config.TimeDuration(500 * time.Millisecond)
				cfg.SimulatedWork = config.TimeDuration(time.Minute)
				return cfg
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Load config using config.Loader.
			appCfg := AppConfig{Admission: NewDefaultConfig()}
			expectedAppCfg := AppConfig{Admission: tt.expectedCfg()}
			cfgLoader := config.NewLoader(config.NewViperAdapter())
			err := cfgLoader.LoadFromReader(bytes.NewBuffer([]byte(tt.cfgData)), tt.cfgDataType, appCfg.Admission)
			require.NoError(t, err)
			require.Equal(t, expectedAppCfg, appCfg)

			// Load config using yaml/json unmarshal.
			appCfg = AppConfig{Admission: NewDefaultConfig()}
			switch tt.cfgDataType {
			case config.DataTypeYAML:
				require.NoError(t, yaml.Unmarshal([]byte(tt.cfgData), &appCfg))
				require.Equal(t, expectedAppCfg, appCfg)
			case config.DataTypeJSON:
				require.NoError(t, json.Unmarshal([]byte(tt.cfgData), &appCfg))
				require.Equal(t, expectedAppCfg, appCfg)
			default:
				t.Fatalf("unsupported config data type: %s", tt.cfgDataType)
			}
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	// Empty config, all defaults for the data provider should be used
	cfg := NewConfig()
	require.NoError(t, config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer(nil), config.DataTypeYAML, cfg))
	require.Equal(t, NewDefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 8, cfg.GlobalRequestCapacity)
	require.Equal(t, 2, cfg.GlobalActorCapacity)
	require.Equal(t, 1, cfg.PerActorCapacity)
	require.Equal(t, config.TimeDuration(time.Second), cfg.AcquireTimeout)
	require.Equal(t, config.TimeDuration(2*time.Second), cfg.SimulatedWork)
}

func TestWithKeyPrefix(t *testing.T) {
	cfgData := `
limits:
  globalActorCapacity: 7
`
	expectedCfg := NewDefaultConfig(WithKeyPrefix("limits"))
	expectedCfg.GlobalActorCapacity = 7

	cfg := NewConfig(WithKeyPrefix("limits"))
	err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer([]byte(cfgData)), config.DataTypeYAML, cfg)
	require.NoError(t, err)
	require.Equal(t, expectedCfg, cfg)
	require.Equal(t, "limits", cfg.KeyPrefix())
}

func TestConfigWithInvalidValues(t *testing.T) {
	tests := []struct {
		name           string
		cfgData        string
		expectedErrMsg string
	}{
		{
			name: "zero global request capacity",
			cfgData: `
admission:
  globalRequestCapacity: 0
`,
			expectedErrMsg: `admission.globalRequestCapacity: should be > 0`,
		},
		{
			name: "negative global actor capacity",
			cfgData: `
admission:
  globalActorCapacity: -1
`,
			expectedErrMsg: `admission.globalActorCapacity: should be > 0`,
		},
		{
			name: "zero per-actor capacity",
			cfgData: `
admission:
  perActorCapacity: 0
`,
			expectedErrMsg: `admission.perActorCapacity: should be > 0`,
		},
		{
			name: "negative acquire timeout",
			cfgData: `
admission:
  acquireTimeout: -1s
`,
			expectedErrMsg: `admission.acquireTimeout: should be >= 0`,
		},
		{
			name: "invalid simulated work",
			cfgData: `
admission:
  simulatedWork: soon
`,
			expectedErrMsg: `admission.simulatedWork: time: invalid duration "soon"`,
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
