/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"
)

// BytesCount represents a size in bytes that can be parsed from JSON and YAML.
// Both integers and human-readable strings (e.g. "100M", "1Gi") are accepted.
type BytesCount uint64

// UnmarshalJSON implements json.Unmarshaler interface.
func (b *BytesCount) UnmarshalJSON(data []byte) error {
	return b.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (b *BytesCount) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid bytes count format: %v", value.Value)
	}
	return b.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler interface, which is used by mapstructure.TextUnmarshallerHookFunc.
func (b *BytesCount) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if num, err := strconv.ParseInt(s, 10, 64); err == nil {
		if num < 0 {
			return fmt.Errorf("negative value is not allowed: %d", num)
		}
		*b = BytesCount(num)
		return nil
	}
	bc, err := parseBytesCount(s)
	if err != nil {
		return err
	}
	*b = bc
	return nil
}

// String returns the human-readable string representation.
func (b BytesCount) String() string {
	return bytefmt.ByteSize(uint64(b))
}

// MarshalJSON implements json.Marshaler interface.
func (b BytesCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// MarshalYAML implements yaml.Marshaler interface.
func (b BytesCount) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// MarshalText implements encoding.TextMarshaler interface.
func (b BytesCount) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func parseBytesCount(s string) (BytesCount, error) {
	v := strings.TrimSpace(s)
	// k8s power-of-two suffixes ("Mi", "Gi", ...) mean the same as bytefmt's "M", "G", ...
	if len(v) > 2 && v[len(v)-1] == 'i' && strings.ContainsRune("KMGTPE", rune(v[len(v)-2])) {
		v = v[:len(v)-1]
	}
	num, err := bytefmt.ToBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid bytes count format (%s): %w", s, err)
	}
	return BytesCount(num), nil
}

// TimeDuration represents a time duration that can be parsed from JSON and YAML.
// Both integers (nanoseconds) and human-readable strings (e.g. "1h30m") are accepted.
type TimeDuration time.Duration

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *TimeDuration) UnmarshalJSON(data []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid time duration format: %v", value.Value)
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler interface, which is used by mapstructure.TextUnmarshallerHookFunc.
func (d *TimeDuration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if num, err := strconv.ParseInt(s, 10, 64); err == nil {
		if num < 0 {
			return fmt.Errorf("negative value is not allowed: %d", num)
		}
		*d = TimeDuration(num)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid time duration format (%s): %w", s, err)
	}
	*d = TimeDuration(dur)
	return nil
}

// String returns the human-readable string representation.
func (d TimeDuration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON implements json.Marshaler interface.
func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML implements yaml.Marshaler interface.
func (d TimeDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// MarshalText implements encoding.TextMarshaler interface.
func (d TimeDuration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
