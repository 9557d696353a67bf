/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ViperAdapter is DataProvider implementation that uses viper library under the hood.
type ViperAdapter struct {
	viper *viper.Viper
}

var _ DataProvider = (*ViperAdapter)(nil)

// NewViperAdapter creates a new ViperAdapter.
func NewViperAdapter() *ViperAdapter {
	return &ViperAdapter{viper.New()}
}

// UseEnvVars enables the ability to use environment variables for configuration parameters.
// Prefix defines what environment variables will be looked.
// E.g., if the prefix is "admsim", the value for the "admission.perActorCapacity" key
// is looked up in the ADMSIM_ADMISSION_PERACTORCAPACITY variable.
func (va *ViperAdapter) UseEnvVars(prefix string) {
	va.viper.AutomaticEnv()
	va.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	va.viper.SetEnvPrefix(prefix)
}

// Set sets the value for the key in the override register.
func (va *ViperAdapter) Set(key string, value interface{}) {
	va.viper.Set(key, value)
}

// SetDefault sets the default value for this key.
// Default only used when no value is provided by the user via config or ENV.
func (va *ViperAdapter) SetDefault(key string, value interface{}) {
	va.viper.SetDefault(key, value)
}

// IsSet checks to see if the key has been set in any of the data locations.
// IsSet is case-insensitive for a key.
func (va *ViperAdapter) IsSet(key string) bool {
	return va.viper.IsSet(key)
}

// Get retrieves any value given the key to use.
func (va *ViperAdapter) Get(key string) interface{} {
	return va.viper.Get(key)
}

// SetFromFile specifies that discovering and loading configuration data will be performed from file.
func (va *ViperAdapter) SetFromFile(path string, dataType DataType) error {
	va.viper.SetConfigType(string(dataType))
	va.viper.SetConfigFile(path)
	return va.viper.ReadInConfig()
}

// SetFromReader specifies that discovering and loading configuration data will be performed from reader.
func (va *ViperAdapter) SetFromReader(reader io.Reader, dataType DataType) error {
	va.viper.SetConfigType(string(dataType))
	return va.viper.ReadConfig(reader)
}

// GetInt tries to retrieve the value associated with the key as an integer.
func (va *ViperAdapter) GetInt(key string) (res int, err error) {
	res, err = cast.ToIntE(va.Get(key))
	err = WrapKeyErrIfNeeded(key, err)
	return
}

// GetFloat64 tries to retrieve the value associated with the key as an float64.
func (va *ViperAdapter) GetFloat64(key string) (res float64, err error) {
	res, err = cast.ToFloat64E(va.Get(key))
	err = WrapKeyErrIfNeeded(key, err)
	return
}

// GetString tries to retrieve the value associated with the key as a string.
func (va *ViperAdapter) GetString(key string) (res string, err error) {
	res, err = cast.ToStringE(va.Get(key))
	err = WrapKeyErrIfNeeded(key, err)
	return
}

// GetBool tries to retrieve the value associated with the key as a bool.
func (va *ViperAdapter) GetBool(key string) (res bool, err error) {
	res, err = cast.ToBoolE(va.Get(key))
	err = WrapKeyErrIfNeeded(key, err)
	return
}

// GetStringSlice tries to retrieve the value associated with the key as an slice of strings.
// A comma-separated string (e.g. coming from an environment variable) is split.
func (va *ViperAdapter) GetStringSlice(key string) (res []string, err error) {
	val := va.Get(key)
	if val == nil {
		return
	}
	if s, ok := val.(string); ok {
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				res = append(res, item)
			}
		}
		return
	}
	res, err = cast.ToStringSliceE(val)
	err = WrapKeyErrIfNeeded(key, err)
	return
}

// GetStringFromSet tries to retrieve the value associated with the key as a string from the specified set.
func (va *ViperAdapter) GetStringFromSet(key string, set []string, ignoreCase bool) (string, error) {
	str, err := va.GetString(key)
	if err != nil {
		return "", WrapKeyErrIfNeeded(key, err)
	}
	for _, s := range set {
		if (ignoreCase && strings.EqualFold(str, s)) || str == s {
			return str, nil
		}
	}
	return "", WrapKeyErrIfNeeded(key, fmt.Errorf("unknown value %q, should be one of %v", str, set))
}

// GetDuration tries to retrieve the value associated with the key as a duration.
func (va *ViperAdapter) GetDuration(key string) (res time.Duration, err error) {
	val := va.Get(key)
	if val == nil {
		return
	}
	res, err = cast.ToDurationE(val)
	err = WrapKeyErrIfNeeded(key, err)
	return
}

// GetBytesCount tries to retrieve the value associated with the key as a size in bytes.
// Both integers and human-readable strings (e.g. "100M", "1Gi") are accepted.
func (va *ViperAdapter) GetBytesCount(key string) (BytesCount, error) {
	val := va.Get(key)
	if val == nil {
		return 0, nil
	}
	res, err := castToBytesCount(val)
	return res, WrapKeyErrIfNeeded(key, err)
}

func castToBytesCount(val interface{}) (BytesCount, error) {
	switch v := val.(type) {
	case BytesCount:
		return v, nil
	case string:
		return parseBytesCount(v)
	case int, int8, int16, int32, int64:
		num := cast.ToInt64(val)
		if num < 0 {
			return 0, fmt.Errorf("negative value is not allowed: %d", num)
		}
		return BytesCount(num), nil
	case uint, uint8, uint16, uint32, uint64:
		return BytesCount(cast.ToUint64(val)), nil
	case float32, float64:
		num := cast.ToFloat64(val)
		if num < 0 {
			return 0, fmt.Errorf("negative value is not allowed: %v", num)
		}
		return BytesCount(uint64(num)), nil
	default:
		return 0, fmt.Errorf("unsupported type for bytes count: %T", val)
	}
}

// UnmarshalKey takes a single key and unmarshals it into a Struct.
func (va *ViperAdapter) UnmarshalKey(key string, rawVal interface{}, opts ...DecoderConfigOption) error {
	options := make([]viper.DecoderConfigOption, len(opts))
	for i, opt := range opts {
		options[i] = viper.DecoderConfigOption(opt)
	}
	return WrapKeyErrIfNeeded(key, va.viper.UnmarshalKey(key, rawVal, options...))
}

// WrapKeyErr wraps error adding information about a key where this error occurs.
func (va *ViperAdapter) WrapKeyErr(key string, err error) error {
	return WrapKeyErr(key, err)
}
