// FILE: lixenwraith/cfgtree/format/cbor/cbor.go

// Package cbor stores configs as CBOR. A config is encoded as tag ConfigTag
// around an array of [key, value] or [key, value, comment] arrays, so key
// order and comments survive. Plain CBOR maps are accepted on decoding; their
// keys are sorted.
package cbor

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/lixenwraith/cfgtree"
)

// ConfigTag marks an encoded config.
const ConfigTag uint64 = 25446

// Info describes the CBOR encoding.
var Info = cfgtree.Format{Name: "cbor", Comments: true, Kinds: cfgtree.AllKinds}

// ErrInvalidDocument reports CBOR data that does not encode a config.
var ErrInvalidDocument = errors.New("invalid config document")

// encMode uses Core Deterministic Encoding: shortest integers and floats,
// no indefinite lengths. Entry order lives in arrays, not maps.
var encMode cbor.EncMode

// decMode decodes untyped maps with string keys.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cbor: encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes c with its comments.
func Marshal(c cfgtree.Config) ([]byte, error) {
	tag, err := encodeConfig(c)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(tag)
}

// Unmarshal decodes data into dst, combining entries according to mode.
// dst is left as it was when data does not decode.
func Unmarshal(data []byte, dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	side := cfgtree.NewTreeWithFormat(Info)
	if err := unmarshal(data, side, mode); err != nil {
		return err
	}
	return cfgtree.Transfer(side, dst, mode)
}

func unmarshal(data []byte, dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	var raw any
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode CBOR: %w", err)
	}

	switch x := raw.(type) {
	case cbor.Tag:
		if x.Number != ConfigTag {
			return fmt.Errorf("%w: root has tag %d, expected %d", ErrInvalidDocument, x.Number, ConfigTag)
		}
		mode.Prepare(dst)
		return decodeEntries(dst, x.Content, mode)
	case map[string]any:
		mode.Prepare(dst)
		return decodeMap(dst, x, mode)
	}
	return fmt.Errorf("%w: root is %T, expected a config", ErrInvalidDocument, raw)
}

// Parse decodes data into a new tree.
func Parse(data []byte) (*cfgtree.Tree, error) {
	t := cfgtree.NewTreeWithFormat(Info)
	if err := unmarshal(data, t, cfgtree.ModeMerge); err != nil {
		return nil, err
	}
	return t, nil
}

// Diagnose renders data in CBOR diagnostic notation (RFC 8949 section 8).
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

func encodeConfig(c cfgtree.Config) (cbor.Tag, error) {
	entries := cfgtree.Entries(c)
	content := make([]any, 0, len(entries))
	for _, e := range entries {
		v, err := encodeValue(e.Value)
		if err != nil {
			return cbor.Tag{}, fmt.Errorf("key %q: %w", e.Key, err)
		}
		item := []any{e.Key, v}
		if e.HasComment {
			item = append(item, e.Comment)
		}
		content = append(content, item)
	}
	return cbor.Tag{Number: ConfigTag, Content: content}, nil
}

func encodeValue(v cfgtree.Value) (any, error) {
	switch v.Kind() {
	case cfgtree.KindNull:
		return nil, nil
	case cfgtree.KindBool:
		b, _ := v.AsBool()
		return b, nil
	case cfgtree.KindInt:
		i, _ := v.AsInt()
		return i, nil
	case cfgtree.KindFloat:
		f, _ := v.AsFloat()
		return f, nil
	case cfgtree.KindString:
		s, _ := v.AsString()
		return s, nil
	case cfgtree.KindList:
		items := make([]any, v.Len())
		for i := range items {
			item, err := encodeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	case cfgtree.KindConfig:
		sub, _ := v.AsConfig()
		return encodeConfig(sub)
	}
	return nil, fmt.Errorf("%w: %s", cfgtree.ErrUnsupportedKind, v.Kind())
}

func decodeEntries(dst cfgtree.Config, content any, mode cfgtree.ParsingMode) error {
	items, ok := content.([]any)
	if !ok {
		return fmt.Errorf("%w: config content is %T, expected an array", ErrInvalidDocument, content)
	}
	for i, raw := range items {
		entry, ok := raw.([]any)
		if !ok || len(entry) < 2 || len(entry) > 3 {
			return fmt.Errorf("%w: entry %d is not a [key, value, comment?] array", ErrInvalidDocument, i)
		}
		key, ok := entry[0].(string)
		if !ok {
			return fmt.Errorf("%w: entry %d has a %T key", ErrInvalidDocument, i, entry[0])
		}
		v, err := decodeValue(dst, entry[1])
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		p := cfgtree.Path{key}
		put, err := mode.Put(dst, p, v)
		if err != nil {
			return fmt.Errorf("failed to store key %q: %w", key, err)
		}
		if len(entry) == 3 && put {
			comment, ok := entry[2].(string)
			if !ok {
				return fmt.Errorf("%w: entry %q has a %T comment", ErrInvalidDocument, key, entry[2])
			}
			if _, err := dst.SetComment(p, comment); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeMap(dst cfgtree.Config, m map[string]any, mode cfgtree.ParsingMode) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v, err := decodeValue(dst, m[k])
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		if _, err := mode.Put(dst, cfgtree.Path{k}, v); err != nil {
			return fmt.Errorf("failed to store key %q: %w", k, err)
		}
	}
	return nil
}

// decodeValue converts a decoded item. Sub-configs are created by owner.
func decodeValue(owner cfgtree.Config, raw any) (cfgtree.Value, error) {
	switch x := raw.(type) {
	case nil:
		return cfgtree.Null(), nil
	case uint64:
		if x > math.MaxInt64 {
			return cfgtree.Float(float64(x)), nil
		}
		return cfgtree.Int(int64(x)), nil
	case []byte:
		return cfgtree.String(string(x)), nil
	case time.Time:
		return cfgtree.String(x.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]cfgtree.Value, len(x))
		for i, item := range x {
			v, err := decodeValue(owner, item)
			if err != nil {
				return cfgtree.Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items[i] = v
		}
		return cfgtree.List(items...), nil
	case map[string]any:
		sub := owner.CreateSubConfig()
		if err := decodeMap(sub, x, cfgtree.ModeMerge); err != nil {
			return cfgtree.Value{}, err
		}
		return cfgtree.Sub(sub), nil
	case cbor.Tag:
		if x.Number != ConfigTag {
			return cfgtree.Value{}, fmt.Errorf("%w: unsupported tag %d", ErrInvalidDocument, x.Number)
		}
		sub := owner.CreateSubConfig()
		if err := decodeEntries(sub, x.Content, cfgtree.ModeMerge); err != nil {
			return cfgtree.Value{}, err
		}
		return cfgtree.Sub(sub), nil
	}
	return cfgtree.ValueOf(raw)
}
