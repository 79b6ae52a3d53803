// FILE: lixenwraith/cfgtree/value.go
package cfgtree

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota // absent
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindConfig
)

var kindNames = [...]string{"invalid", "null", "bool", "int", "float", "string", "list", "config"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// KindSet is a bit set of kinds.
type KindSet uint16

// KindsOf builds a set from kinds.
func KindsOf(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// AllKinds contains every valid kind.
var AllKinds = KindsOf(KindNull, KindBool, KindInt, KindFloat, KindString, KindList, KindConfig)

func (s KindSet) Has(k Kind) bool { return s&(1<<k) != 0 }

// Value is a tagged union of the types a config entry can hold.
// The zero Value is absent and is what lookups return for a missing path.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	cfg  Config
}

func Null() Value             { return Value{kind: KindNull} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Int(i int64) Value       { return Value{kind: KindInt, i: i} }
func Float(f float64) Value   { return Value{kind: KindFloat, f: f} }
func String(s string) Value   { return Value{kind: KindString, s: s} }
func Sub(c Config) Value {
	if c == nil {
		return Null()
	}
	return Value{kind: KindConfig, cfg: c}
}

// List builds a list value. The list owns its elements.
func List(items ...Value) Value {
	owned := make([]Value, len(items))
	copy(owned, items)
	return Value{kind: KindList, list: owned}
}

// ValueOf converts a Go value. Maps become sub-configs of the plain Tree kind.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case Config:
		return Sub(v), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
		}
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
		}
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: invalid number %q", ErrUnsupportedValue, v)
		}
		return Float(f), nil
	case time.Time:
		return String(v.Format(time.RFC3339Nano)), nil
	case time.Duration:
		return String(v.String()), nil
	case []Value:
		return List(v...), nil
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			iv, err := ValueOf(item)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items[i] = iv
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		t := NewTree()
		if err := FromMap(v, t, ModeReplace); err != nil {
			return Value{}, err
		}
		return Sub(t), nil
	}

	// Typed slices and maps through reflection
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			iv, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items[i] = iv
		}
		return Value{kind: KindList, list: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return ValueOf(m)
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
}

// MustValueOf is ValueOf that panics on unsupported input.
func MustValueOf(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsValid() bool  { return v.kind != KindInvalid }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsConfig() bool { return v.kind == KindConfig }

func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsConfig() (Config, bool) { return v.cfg, v.kind == KindConfig }

// AsFloat also accepts integers.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsList returns a copy of the list elements.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out, true
}

// Len returns the number of list elements, or 0 for other kinds.
func (v Value) Len() int { return len(v.list) }

// Index returns the i-th list element.
func (v Value) Index(i int) Value { return v.list[i] }

// Interface converts to plain Go values. Sub-configs become map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindConfig:
		return ToMap(v.cfg)
	}
	return nil
}

// Equal compares deeply. Sub-configs compare with the package level Equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindConfig:
		return Equal(v.cfg, o.cfg)
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<absent>"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindConfig:
		return fmt.Sprintf("%v", ToMap(v.cfg))
	}
	return v.kind.String()
}

// mapConfigs rebuilds v with every nested config passed through fn.
// Values without configs are returned unchanged.
func (v Value) mapConfigs(fn func(Config) Config) Value {
	switch v.kind {
	case KindConfig:
		return Sub(fn(v.cfg))
	case KindList:
		if !v.hasConfigs() {
			return v
		}
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.mapConfigs(fn)
		}
		return Value{kind: KindList, list: items}
	}
	return v
}

func (v Value) hasConfigs() bool {
	switch v.kind {
	case KindConfig:
		return true
	case KindList:
		for _, item := range v.list {
			if item.hasConfigs() {
				return true
			}
		}
	}
	return false
}
