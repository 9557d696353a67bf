/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package config loads configuration objects from YAML/JSON data and environment variables.
// Every object declares its own defaults and reads its values from a DataProvider,
// optionally scoped by a key prefix (see KeyPrefixProvider).
package config

import "reflect"

// Config is a common interface for configuration objects that may be used by Loader.
type Config interface {
	SetProviderDefaults(dp DataProvider)
	Set(dp DataProvider) error
}

// KeyPrefixProvider is an interface for providing key prefix that will be used for configuration parameters.
type KeyPrefixProvider interface {
	KeyPrefix() string
}

// CallSetProviderDefaultsForFields finds all initialized (non-nil) fields of the passed object
// that implement Config interface and calls SetProviderDefaults() method for each of them.
func CallSetProviderDefaultsForFields(obj interface{}, dp DataProvider) {
	_ = forEachConfigField(obj, dp, func(c Config, cDp DataProvider) error {
		c.SetProviderDefaults(cDp)
		return nil
	})
}

// CallSetForFields finds all initialized (non-nil) fields of the passed object
// that implement Config interface and calls Set() method for each of them.
// The first error stops the iteration.
func CallSetForFields(obj interface{}, dp DataProvider) error {
	return forEachConfigField(obj, dp, func(c Config, cDp DataProvider) error {
		return c.Set(cDp)
	})
}

func forEachConfigField(obj interface{}, dp DataProvider, fn func(c Config, cDp DataProvider) error) error {
	el := reflect.ValueOf(obj).Elem()
	for i := 0; i < el.NumField(); i++ {
		if !el.Type().Field(i).IsExported() {
			continue
		}
		field := el.Field(i)
		if (field.Kind() == reflect.Ptr || field.Kind() == reflect.Interface) && field.IsNil() {
			continue
		}
		c, ok := field.Interface().(Config)
		if !ok {
			continue
		}
		if err := fn(c, dataProviderFor(c, dp)); err != nil {
			return err
		}
	}
	return nil
}

func dataProviderFor(cfg Config, dp DataProvider) DataProvider {
	if kpHolder, ok := cfg.(KeyPrefixProvider); ok && kpHolder.KeyPrefix() != "" {
		return NewKeyPrefixedDataProvider(dp, kpHolder.KeyPrefix())
	}
	return dp
}
