// FILE: lixenwraith/cfgtree/type.go
package cfgtree

import (
	"fmt"
	"strconv"
	"time"
)

// GetString retrieves a string value using the dotted path.
// Attempts conversion from scalar kinds if the stored value isn't already a string.
func GetString(c Config, path string) (string, error) {
	v, found := c.Get(ParsePath(path))
	if !found {
		return "", fmt.Errorf("path not found: %s", path)
	}
	switch v.Kind() {
	case KindString:
		return v.s, nil
	case KindNull:
		return "", nil // Treat null as empty string for convenience
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	}
	return "", fmt.Errorf("cannot convert %s to string for path %s", v.Kind(), path)
}

// GetInt64 retrieves an int64 value using the dotted path.
// Attempts conversion from floats (truncated), parsable strings, and booleans.
func GetInt64(c Config, path string) (int64, error) {
	v, found := c.Get(ParsePath(path))
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}
	switch v.Kind() {
	case KindInt:
		return v.i, nil
	case KindFloat:
		return int64(v.f), nil
	case KindString:
		// Base 0 for auto-detection (e.g., "0xFF")
		i, err := strconv.ParseInt(v.s, 0, 64)
		if err == nil {
			return i, nil
		}
		if f, ferr := strconv.ParseFloat(v.s, 64); ferr == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", v.s, path, err)
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %s to int64 for path %s", v.Kind(), path)
}

// GetBool retrieves a boolean value using the dotted path.
// Numbers convert as 0=false, non-zero=true; strings must parse.
func GetBool(c Config, path string) (bool, error) {
	v, found := c.Get(ParsePath(path))
	if !found {
		return false, fmt.Errorf("path not found: %s", path)
	}
	switch v.Kind() {
	case KindBool:
		return v.b, nil
	case KindString:
		b, err := strconv.ParseBool(v.s)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", v.s, path, err)
		}
		return b, nil
	case KindInt:
		return v.i != 0, nil
	case KindFloat:
		return v.f != 0, nil
	}
	return false, fmt.Errorf("cannot convert %s to bool for path %s", v.Kind(), path)
}

// GetFloat64 retrieves a float64 value using the dotted path.
func GetFloat64(c Config, path string) (float64, error) {
	v, found := c.Get(ParsePath(path))
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}
	switch v.Kind() {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", v.s, path, err)
		}
		return f, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %s to float64 for path %s", v.Kind(), path)
}

// GetDuration parses a duration string, or takes an int as nanoseconds.
func GetDuration(c Config, path string) (time.Duration, error) {
	v, found := c.Get(ParsePath(path))
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}
	switch v.Kind() {
	case KindString:
		d, err := time.ParseDuration(v.s)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to duration for path %s: %w", v.s, path, err)
		}
		return d, nil
	case KindInt:
		return time.Duration(v.i), nil
	}
	return 0, fmt.Errorf("cannot convert %s to duration for path %s", v.Kind(), path)
}

// GetOr returns the value at path converted by get, or fallback when the path
// is absent or the conversion fails.
func GetOr[T any](c Config, path string, get func(Config, string) (T, error), fallback T) T {
	v, err := get(c, path)
	if err != nil {
		return fallback
	}
	return v
}
