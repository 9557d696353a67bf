/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/acronis/go-admission/config"
)

type AppConfig struct {
	Log *Config `mapstructure:"log" json:"log" yaml:"log"`
}

func TestConfig(t *testing.T) {
	expectedCfg := func(level Level) func() *Config {
		return func() *Config {
			cfg := NewDefaultConfig()
			cfg.Level = level
			cfg.Format = FormatText
			cfg.Output = OutputFile
			cfg.File.Path = "admission-sim.log"
			cfg.File.Rotation.MaxSize = 100 * 1024 * 1024
			cfg.File.Rotation.MaxBackups = 42
			cfg.File.Rotation.Compress = true
			cfg.AddCaller = true
			cfg.Error.NoVerbose = true
			cfg.Error.VerboseSuffix = "test-suffix"
			return cfg
		}
	}
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
log:
  level: warn
  format: text
  output: file
  file:
    path: admission-sim.log
    rotation:
      compress: true
      maxSize: 100M
      maxBackups: 42
  addCaller: true
  error:
    noVerbose: true
    verboseSuffix: test-suffix
`,
			expectedCfg: expectedCfg(LevelWarn),
		},
		{
			name:        "json config",
			cfgDataType: config.DataTypeJSON,
			cfgData: `
{
	"log": {
		"level": "error",
		"format": "text",
		"output": "file",
		"file": {
			"path": "admission-sim.log",
			"rotation": {
				"compress": true,
				"maxSize": "100M",
				"maxBackups": 42
			}
		},
		"addCaller": true,
		"error": {
			"noVerbose": true,
			"verboseSuffix": "test-suffix"
		}
	}
}`,
			expectedCfg: expectedCfg(LevelError),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Load config using config.Loader.
			appCfg := AppConfig{Log: NewDefaultConfig()}
			expectedAppCfg := AppConfig{Log: tt.expectedCfg()}
			cfgLoader := config.NewLoader(config.NewViperAdapter())
			err := cfgLoader.LoadFromReader(bytes.NewBuffer([]byte(tt.cfgData)), tt.cfgDataType, appCfg.Log)
			require.NoError(t, err)
			require.Equal(t, expectedAppCfg, appCfg)

			// Load config using viper unmarshal.
			appCfg = AppConfig{Log: NewDefaultConfig()}
			vpr := viper.New()
			vpr.SetConfigType(string(tt.cfgDataType))
			require.NoError(t, vpr.ReadConfig(bytes.NewBuffer([]byte(tt.cfgData))))
			require.NoError(t, vpr.Unmarshal(&appCfg, func(c *mapstructure.DecoderConfig) {
				c.DecodeHook = mapstructure.TextUnmarshallerHookFunc()
			}))
			require.Equal(t, expectedAppCfg, appCfg)

			// Load config using yaml/json unmarshal.
			appCfg = AppConfig{Log: NewDefaultConfig()}
			switch tt.cfgDataType {
			case config.DataTypeYAML:
				require.NoError(t, yaml.Unmarshal([]byte(tt.cfgData), &appCfg))
			case config.DataTypeJSON:
				require.NoError(t, json.Unmarshal([]byte(tt.cfgData), &appCfg))
			default:
				t.Fatalf("unsupported config data type: %s", tt.cfgDataType)
			}
			require.Equal(t, expectedAppCfg, appCfg)
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	// Empty config, all defaults for the data provider should be used
	cfg := NewConfig()
	require.NoError(t, config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer(nil), config.DataTypeYAML, cfg))
	require.Equal(t, NewDefaultConfig(), cfg)

	cfg = NewDefaultConfig()
	require.NoError(t, yaml.Unmarshal([]byte(""), &cfg))
	require.Equal(t, NewDefaultConfig(), cfg)

	cfg = NewDefaultConfig()
	require.NoError(t, json.Unmarshal([]byte("{}"), &cfg))
	require.Equal(t, NewDefaultConfig(), cfg)
}

func TestConfigWithKeyPrefix(t *testing.T) {
	cfgData := `
simLog:
  level: debug
  format: text
`
	expectedCfg := NewDefaultConfig(WithKeyPrefix("simLog"))
	expectedCfg.Level = LevelDebug
	expectedCfg.Format = FormatText

	cfg := NewConfig(WithKeyPrefix("simLog"))
	err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer([]byte(cfgData)), config.DataTypeYAML, cfg)
	require.NoError(t, err)
	require.Equal(t, expectedCfg, cfg)
}

func TestConfigValidationErrors(t *testing.T) {
	tests := []struct {
		name           string
		yamlData       string
		expectedErrMsg string
	}{
		{
			name: "error, unknown log level",
			yamlData: `
log:
  level: invalid-level
`,
			expectedErrMsg: `log.level: unknown value "invalid-level", should be one of [error warn info debug]`,
		},
		{
			name: "error, unknown log output",
			yamlData: `
log:
  output: invalid-output
`,
			expectedErrMsg: `log.output: unknown value "invalid-output", should be one of [stdout stderr file]`,
		},
		{
			name: "error, file output without path",
			yamlData: `
log:
  output: file
`,
			expectedErrMsg: `log.file.path: cannot be empty when "file" output is used`,
		},
		{
			name: "error, too small rotation size",
			yamlData: `
log:
  file:
    rotation:
      maxSize: 1K
`,
			expectedErrMsg: `log.file.rotation.maxSize: should be >= 1M`,
		},
		{
			name: "error, negative max age",
			yamlData: `
log:
  file:
    rotation:
      maxAgeDays: -1
`,
			expectedErrMsg: `log.file.rotation.maxAgeDays: should be >= 0`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBuffer([]byte(tt.yamlData)), config.DataTypeYAML, cfg)
			require.EqualError(t, err, tt.expectedErrMsg)
		})
	}
}
