package core

import (
	"math"
	"sort"
)

// #region config
// Config is an immutable set of named numeric parameters consumed by the
// injected realignment, threshold, rupture and collapse roles.
// The zero value is an empty config.
type Config struct {
	values map[string]float64
}

// NewConfig copies values into a new Config.
func NewConfig(values map[string]float64) Config {
	c := Config{values: make(map[string]float64, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// Get returns the value for key and whether it is present.
func (c Config) Get(key string) (float64, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Float returns the value for key, or 0 when absent.
// Callers that need presence guarantees check RequiredKeys at construction.
func (c Config) Float(key string) float64 {
	return c.values[key]
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// With returns a copy of c with key set to v. c is not modified.
func (c Config) With(key string, v float64) Config {
	out := NewConfig(c.values)
	out.values[key] = v
	return out
}

// Merge returns a copy of c overlaid with other. Keys in other win.
func (c Config) Merge(other Config) Config {
	out := NewConfig(c.values)
	for k, v := range other.values {
		out.values[k] = v
	}
	return out
}

// Keys returns the sorted parameter names.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of parameters.
func (c Config) Len() int {
	return len(c.values)
}

// Map returns a copy of the underlying parameters.
func (c Config) Map() map[string]float64 {
	out := make(map[string]float64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Require checks that every key is present and finite.
// variant names the consumer for the error message.
func (c Config) Require(variant string, keys ...string) error {
	for _, k := range keys {
		v, ok := c.values[k]
		if !ok {
			return &ConfigError{Variant: variant, Key: k, Reason: "missing required key"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Variant: variant, Key: k, Reason: "value is not finite"}
		}
	}
	return nil
}

// #endregion config

// #region variant
// Variant is implemented by built-in role implementations so that their
// configuration can be checked when a state is constructed rather than
// mid-simulation.
type Variant interface {
	Name() string
	RequiredKeys() []string
}

// CheckVariant verifies cfg against v when v implements Variant.
// Custom functions that do not implement it are accepted as-is.
func CheckVariant(v any, cfg Config) error {
	cv, ok := v.(Variant)
	if !ok {
		return nil
	}
	return cfg.Require(cv.Name(), cv.RequiredKeys()...)
}

// #endregion variant
