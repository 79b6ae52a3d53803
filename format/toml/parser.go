// FILE: lixenwraith/cfgtree/format/toml/parser.go
package toml

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/textio"
)

// Parser reads TOML. Tables become sub-configs created by the destination,
// arrays of tables become lists of sub-configs. Date and time values are
// kept as strings in their TOML notation.
type Parser struct{}

var _ cfgtree.Parser = (*Parser)(nil)

func (p *Parser) Parse(in textio.Input) (cfgtree.Config, error) {
	c := cfgtree.NewTreeWithFormat(Info)
	if err := p.parse(in, c, cfgtree.ModeMerge); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseInto decodes the document and puts its top-level keys into dst according to mode.
// dst is left as it was when the document does not convert.
func (p *Parser) ParseInto(in textio.Input, dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	side := cfgtree.NewTreeWithFormat(Info)
	if err := p.parse(in, side, mode); err != nil {
		return err
	}
	return cfgtree.Transfer(side, dst, mode)
}

func (p *Parser) parse(in textio.Input, dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	src := textio.ReadAll(in)
	if err := in.Err(); err != nil {
		return fmt.Errorf("failed to read TOML input: %w", err)
	}

	var raw map[string]any
	md, err := toml.Decode(src, &raw)
	if err != nil {
		return convertError(src, err)
	}

	ord := newKeyOrder(md)
	mode.Prepare(dst)
	for _, key := range ord.children(nil, raw) {
		v, err := ord.value(dst, []string{key}, raw[key])
		if err != nil {
			return err
		}
		if _, err := mode.Put(dst, cfgtree.Path{key}, v); err != nil {
			return fmt.Errorf("failed to store key %q: %w", key, err)
		}
	}
	return nil
}

// keyOrder records, per table path, the order in which child keys first
// appear in the document.
type keyOrder map[string][]string

func newKeyOrder(md toml.MetaData) keyOrder {
	ord := make(keyOrder)
	seen := make(map[string]bool)
	for _, k := range md.Keys() {
		for i := range k {
			full := orderKey(k[:i+1])
			if seen[full] {
				continue
			}
			seen[full] = true
			parent := orderKey(k[:i])
			ord[parent] = append(ord[parent], k[i])
		}
	}
	return ord
}

func orderKey(path []string) string {
	return strings.Join(path, "\x00")
}

// children lists the keys of m at path: document order first, then any key
// the metadata did not report, sorted.
func (o keyOrder) children(path []string, m map[string]any) []string {
	out := make([]string, 0, len(m))
	used := make(map[string]bool, len(m))
	for _, k := range o[orderKey(path)] {
		if _, ok := m[k]; ok && !used[k] {
			out = append(out, k)
			used[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func (o keyOrder) value(owner cfgtree.Config, path []string, raw any) (cfgtree.Value, error) {
	switch x := raw.(type) {
	case map[string]any:
		return o.table(owner, path, x)
	case []map[string]any:
		items := make([]cfgtree.Value, len(x))
		for i, m := range x {
			v, err := o.table(owner, path, m)
			if err != nil {
				return cfgtree.Value{}, err
			}
			items[i] = v
		}
		return cfgtree.List(items...), nil
	case []any:
		items := make([]cfgtree.Value, len(x))
		for i, item := range x {
			v, err := o.value(owner, path, item)
			if err != nil {
				return cfgtree.Value{}, err
			}
			items[i] = v
		}
		return cfgtree.List(items...), nil
	case time.Time:
		return cfgtree.String(formatTime(x)), nil
	}
	v, err := cfgtree.ValueOf(raw)
	if err != nil {
		return cfgtree.Value{}, fmt.Errorf("key %q: %w", strings.Join(path, "."), err)
	}
	return v, nil
}

func (o keyOrder) table(owner cfgtree.Config, path []string, m map[string]any) (cfgtree.Value, error) {
	sub := owner.CreateSubConfig()
	for _, k := range o.children(path, m) {
		v, err := o.value(sub, append(slices.Clip(path), k), m[k])
		if err != nil {
			return cfgtree.Value{}, err
		}
		if _, err := sub.Set(cfgtree.Path{k}, v); err != nil {
			return cfgtree.Value{}, err
		}
	}
	return cfgtree.Sub(sub), nil
}

// formatTime renders decoded dates and times back in TOML notation. Local
// values carry marker locations set by the decoder.
func formatTime(t time.Time) string {
	switch t.Location().String() {
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	case "date-local":
		return t.Format("2006-01-02")
	case "time-local":
		return t.Format("15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}

// convertError maps decoder errors to positioned parse errors.
func convertError(src string, err error) error {
	var perr toml.ParseError
	if !errors.As(err, &perr) {
		return fmt.Errorf("failed to decode TOML: %w", err)
	}
	return &textio.ParseError{
		Line:    perr.Position.Line,
		Column:  column(src, perr.Position.Start),
		Message: perr.Message,
		Err:     err,
	}
}

// column converts a byte offset into a 0-based rune column.
func column(src string, offset int) int {
	if offset <= 0 || offset > len(src) {
		return 0
	}
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	return utf8.RuneCountInString(src[lineStart:offset])
}
