// Package config provides environment-based configuration loading with
// validate-and-fallback semantics: invalid values never fail startup, they
// fall back to defaults and surface as warnings and Prometheus metrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult holds a loaded configuration value together with any
// warnings generated while loading it. FallbackApplied is true when the
// default replaced an invalid environment value.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString reads envKey, returning defaultValue when unset. No
// validation is applied.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback reads envKey and validates it with validator (nil
// skips validation). An unset variable yields the default silently; a value
// failing validation yields the default with a warning.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value: defaultValue,
				Warnings: []string{
					fmt.Sprintf("%s=%q failed validation (%v), using default %q", envKey, value, err, defaultValue),
				},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration reads envKey as a time.Duration with the same fallback
// semantics as LoadEnvWithFallback. Parse failures count as validation
// failures.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{
				fmt.Sprintf("%s=%q is not a valid duration (%v), using default %v", envKey, raw, err, defaultValue),
			},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return ConfigLoadResult{
				Value: defaultValue,
				Warnings: []string{
					fmt.Sprintf("%s=%v failed validation (%v), using default %v", envKey, parsed, err, defaultValue),
				},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvInt reads envKey as an int with the same fallback semantics as
// LoadEnvWithFallback.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{
				fmt.Sprintf("%s=%q is not a valid integer (%v), using default %d", envKey, raw, err, defaultValue),
			},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return ConfigLoadResult{
				Value: defaultValue,
				Warnings: []string{
					fmt.Sprintf("%s=%d failed validation (%v), using default %d", envKey, parsed, err, defaultValue),
				},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvBool reads envKey as a boolean. Unparsable values fall back to the
// default with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{
				fmt.Sprintf("%s=%q is not a valid boolean (%v), using default %t", envKey, raw, err, defaultValue),
			},
			FallbackApplied: true,
		}
	}

	return ConfigLoadResult{Value: parsed}
}
