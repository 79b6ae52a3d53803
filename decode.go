// FILE: lixenwraith/cfgtree/decode.go
package cfgtree

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DefaultTagName is the struct tag Scan reads field names from.
const DefaultTagName = "toml"

// ScanOptions tunes Scan.
type ScanOptions struct {
	TagName string
	// ErrorUnused fails the scan when the subtree has keys without a target field.
	ErrorUnused bool
	// Hook runs after the built-in conversions.
	Hook mapstructure.DecodeHookFunc
}

// Scan decodes the subtree at basePath (the whole config when empty) into
// target, which must be a non-nil pointer.
func Scan(c Config, basePath string, target any) error {
	return ScanWithOptions(c, basePath, target, ScanOptions{})
}

// ScanWithOptions is Scan with explicit options.
func ScanWithOptions(c Config, basePath string, target any, opts ScanOptions) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}
	if opts.TagName == "" {
		opts.TagName = DefaultTagName
	}

	section := map[string]any{}
	if basePath != "" {
		v, ok := c.Get(ParsePath(basePath))
		if ok {
			sub, isConfig := v.AsConfig()
			if !isConfig {
				return fmt.Errorf("path %q refers to non-config value (kind %s)", basePath, v.Kind())
			}
			section = ToMap(sub)
		}
	} else {
		section = ToMap(c)
	}

	hooks := []mapstructure.DecodeHookFunc{
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	}
	if opts.Hook != nil {
		hooks = append(hooks, opts.Hook)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          opts.TagName,
		WeaklyTypedInput: true,
		ErrorUnused:      opts.ErrorUnused,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}
	return nil
}

// ToMap converts c to nested Go maps. Comments are dropped.
func ToMap(c Config) map[string]any {
	out := make(map[string]any, c.Size())
	for key, v := range All(c) {
		out[key] = v.Interface()
	}
	return out
}

// FromMap puts the entries of m into dst according to mode. Nested maps
// become sub-configs created by dst. Map iteration order is not stable, so the
// entry order of dst is unspecified.
func FromMap(m map[string]any, dst Config, mode ParsingMode) error {
	mode.Prepare(dst)
	for key, raw := range m {
		v, err := valueFor(dst, raw)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		if _, err := mode.Put(dst, Path{key}, v); err != nil {
			return err
		}
	}
	return nil
}

// valueFor converts raw, building nested maps with dst.CreateSubConfig.
func valueFor(dst Config, raw any) (Value, error) {
	switch x := raw.(type) {
	case map[string]any:
		sub := dst.CreateSubConfig()
		if err := FromMap(x, sub, ModeReplace); err != nil {
			return Value{}, err
		}
		return Sub(sub), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			v, err := valueFor(dst, item)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items[i] = v
		}
		return List(items...), nil
	}
	return ValueOf(raw)
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}
		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}
		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet and *net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}
		_, ipnet, err := net.ParseCIDR(data.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL and *url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}
		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}

// StructToMap flattens the exported fields of a struct, or pointer to one,
// into nested maps keyed by tagName. Map key order is not preserved.
func StructToMap(v any, tagName string) (map[string]any, error) {
	if tagName == "" {
		tagName = DefaultTagName
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct or struct pointer, got %T", v)
	}
	out := make(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: tagName,
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(v); err != nil {
		return nil, fmt.Errorf("failed to convert %T: %w", v, err)
	}
	return out, nil
}
