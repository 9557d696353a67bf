/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const testLimitsConfigYAML = `
limits:
  owner: Jan
  requests: 8
  timeout: 1s
  actors: [Jan, Kot]
  pool:
    size: 2
    ratio: 0.5
`

const testLimitsConfigJSON = `{"limits": {"owner":"Jan","requests":8,"timeout":"1s","actors":["Jan","Kot"],"pool":{"size":2,"ratio":0.5}}}`

type testPoolConfig struct {
	Size  int
	Ratio float64

	keyPrefix string
}

func (c *testPoolConfig) KeyPrefix() string {
	return c.keyPrefix
}

func (c *testPoolConfig) SetProviderDefaults(dp DataProvider) {
	dp.SetDefault("size", 1)
	dp.SetDefault("ratio", 1.0)
}

func (c *testPoolConfig) Set(dp DataProvider) (err error) {
	if c.Size, err = dp.GetInt("size"); err != nil {
		return err
	}
	if c.Size <= 0 {
		return dp.WrapKeyErr("size", fmt.Errorf("should be > 0"))
	}
	if c.Ratio, err = dp.GetFloat64("ratio"); err != nil {
		return err
	}
	return nil
}

type testTiersConfig struct {
	Requests *testPoolConfig
	Actors   *testPoolConfig
	PerActor *testPoolConfig
	Unused   *testPoolConfig
	NilCfg   Config
	Enabled  bool
}

func (c *testTiersConfig) SetProviderDefaults(dp DataProvider) {
	CallSetProviderDefaultsForFields(c, dp)
	dp.SetDefault("enabled", false)
}

func (c *testTiersConfig) Set(dp DataProvider) (err error) {
	if err = CallSetForFields(c, dp); err != nil {
		return err
	}
	if c.Enabled, err = dp.GetBool("enabled"); err != nil {
		return err
	}
	return nil
}

func TestCallHelpers(t *testing.T) {
	cfgData := `
enabled: true
size: 16
tiers:
  actors:
    size: 4
    ratio: 0.25
`
	cfg := &testTiersConfig{
		Requests: &testPoolConfig{},
		Actors:   &testPoolConfig{keyPrefix: "tiers.actors"},
		PerActor: &testPoolConfig{keyPrefix: "tiers.perActor"},
	}
	err := NewDefaultLoader("").LoadFromReader(bytes.NewReader([]byte(cfgData)), DataTypeYAML, cfg)
	require.NoError(t, err)
	require.True(t, cfg.Enabled)
	require.Nil(t, cfg.Unused)
	require.Nil(t, cfg.NilCfg)
	require.Equal(t, 16, cfg.Requests.Size)
	require.Equal(t, 1.0, cfg.Requests.Ratio)
	require.Equal(t, 4, cfg.Actors.Size)
	require.Equal(t, 0.25, cfg.Actors.Ratio)
	require.Equal(t, 1, cfg.PerActor.Size)
}

func TestCallSetForFields_StopsOnFirstError(t *testing.T) {
	cfgData := `
tiers:
  actors:
    size: 0
  perActor:
    size: -1
`
	cfg := &testTiersConfig{
		Actors:   &testPoolConfig{keyPrefix: "tiers.actors"},
		PerActor: &testPoolConfig{keyPrefix: "tiers.perActor"},
	}
	err := NewDefaultLoader("").LoadFromReader(bytes.NewReader([]byte(cfgData)), DataTypeYAML, cfg)
	require.EqualError(t, err, "tiers.actors.size: should be > 0")
}
