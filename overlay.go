// FILE: lixenwraith/cfgtree/overlay.go
package cfgtree

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvTransformFunc maps a dotted config path to an environment variable name.
type EnvTransformFunc func(path string) string

// DefaultEnvTransform upper-cases the path, replaces dots with underscores
// and prepends prefix: "server.port" with "APP_" becomes "APP_SERVER_PORT".
func DefaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		env := strings.ReplaceAll(path, ".", "_")
		env = strings.ToUpper(env)
		if prefix != "" {
			env = prefix + env
		}
		return env
	}
}

// ApplyEnv overrides every existing leaf of c for which the transformed
// environment variable is set. It returns the paths it changed.
func ApplyEnv(c Config, transform EnvTransformFunc) ([]string, error) {
	return applyEnv(c, transform, os.LookupEnv)
}

func applyEnv(c Config, transform EnvTransformFunc, lookup func(string) (string, bool)) ([]string, error) {
	var changed []string
	var errs []error
	for _, p := range LeafPaths(c) {
		dotted := p.String()
		raw, ok := lookup(transform(dotted))
		if !ok {
			continue
		}
		if _, err := c.Set(p, ParseValue(raw)); err != nil {
			errs = append(errs, fmt.Errorf("failed to apply env to %q: %w", dotted, err))
			continue
		}
		changed = append(changed, dotted)
	}
	return changed, errors.Join(errs...)
}

// LeafPaths lists the paths of every non-config value, depth first in entry order.
func LeafPaths(c Config) []Path {
	var out []Path
	var walk func(Config, Path)
	walk = func(c Config, prefix Path) {
		for key, v := range All(c) {
			p := prefix.Child(key)
			if sub, ok := v.AsConfig(); ok {
				walk(sub, p)
				continue
			}
			out = append(out, p)
		}
	}
	walk(c, nil)
	return out
}

// ApplyArgs puts command-line overrides into c according to mode. It accepts
// "--key=value", "--key value" and "--flag" (true); non-flag arguments and a
// bare "--" are skipped. Keys are dotted paths of bare key segments.
func ApplyArgs(c Config, args []string, mode ParsingMode) error {
	overrides, err := parseArgs(args)
	if err != nil {
		return err
	}
	var errs []error
	for _, o := range overrides {
		if _, err := mode.Put(c, o.path, ParseValue(o.raw)); err != nil {
			errs = append(errs, fmt.Errorf("failed to apply argument %q: %w", o.path.String(), err))
		}
	}
	return errors.Join(errs...)
}

type override struct {
	path Path
	raw  string
}

// parseArgs processes command-line arguments into ordered overrides.
func parseArgs(args []string) ([]override, error) {
	var result []override
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var keyPath string
		var valueStr string

		if strings.Contains(argContent, "=") {
			parts := strings.SplitN(argContent, "=", 2)
			keyPath = parts[0]
			valueStr = parts[1]
			i++
		} else {
			keyPath = argContent
			// Boolean flag when the next arg is another flag or there is none
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if keyPath == "" {
			// Skip invalid flags like --=value
			continue
		}

		segments := strings.Split(keyPath, ".")
		for _, segment := range segments {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		result = append(result, override{path: Path(segments), raw: valueStr})
	}
	return result, nil
}

// isValidKeySegment checks if a single path segment is a bare key:
// ASCII letters, digits, underscores and dashes.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

// ParseValue infers a value from override text: true/false, integers,
// floats, double-quoted strings (quotes removed), anything else as a string.
func ParseValue(s string) Value {
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return String(s[1 : len(s)-1])
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.ContainsAny(s, ".eE") {
		return Float(f)
	}
	return String(s)
}
