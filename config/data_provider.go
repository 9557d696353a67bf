/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"fmt"
	"io"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DataType is a type of data format in which configuration may be described.
type DataType string

// Supported data formats.
const (
	DataTypeYAML DataType = "yaml"
	DataTypeJSON DataType = "json"
)

// DataProvider is an interface for providing configuration data
// from different sources (files, reader, environment variables).
type DataProvider interface {
	UseEnvVars(prefix string)

	Set(key string, value interface{})
	SetDefault(key string, value interface{})

	SetFromFile(path string, dataType DataType) error
	SetFromReader(reader io.Reader, dataType DataType) error

	IsSet(key string) bool

	Get(key string) interface{}
	GetBool(key string) (bool, error)
	GetInt(key string) (int, error)
	GetFloat64(key string) (float64, error)
	GetString(key string) (string, error)
	GetStringFromSet(key string, set []string, ignoreCase bool) (string, error)
	GetStringSlice(key string) ([]string, error)
	GetDuration(key string) (time.Duration, error)
	GetBytesCount(key string) (BytesCount, error)

	UnmarshalKey(key string, rawVal interface{}, opts ...DecoderConfigOption) error

	WrapKeyErr(key string, err error) error
}

// A DecoderConfigOption can be passed to UnmarshalKey to configure
// mapstructure.DecoderConfig options
type DecoderConfigOption func(*mapstructure.DecoderConfig)

// WithTextUnmarshalling makes UnmarshalKey decode strings into fields implementing encoding.TextUnmarshaler
// (e.g. TimeDuration and BytesCount).
func WithTextUnmarshalling() DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// WrapKeyErrIfNeeded wraps error adding information about a key where this error occurs.
// If error is nil, it does nothing.
func WrapKeyErrIfNeeded(key string, err error) error {
	if err == nil {
		return nil
	}
	return WrapKeyErr(key, err)
}

// WrapKeyErr wraps error adding information about a key where this error occurs.
func WrapKeyErr(key string, err error) error {
	return fmt.Errorf("%s: %w", key, err)
}
