// FILE: lixenwraith/cfgtree/format/json/writer.go
package json

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/textio"
)

const hexDigits = "0123456789abcdef"

// FancyWriter writes indented JSON. Objects and arrays put each element on
// its own line unless their predicate says otherwise; a nil predicate always
// indents. The document ends with Newline.
type FancyWriter struct {
	Indent       string
	Newline      string
	IndentObject func(c cfgtree.Config) bool
	IndentArray  func(items []cfgtree.Value) bool

	level int
}

var _ cfgtree.Writer = (*FancyWriter)(nil)

// HasNested is an IndentArray predicate that keeps arrays of scalars on one line.
func HasNested(items []cfgtree.Value) bool {
	for _, item := range items {
		if k := item.Kind(); k == cfgtree.KindList || k == cfgtree.KindConfig {
			return true
		}
	}
	return false
}

func (w *FancyWriter) Write(c cfgtree.Config, out textio.Output) error {
	w.level = 0
	if err := w.object(c, out); err != nil {
		return err
	}
	out.WriteString(w.Newline)
	return out.Err()
}

func (w *FancyWriter) object(c cfgtree.Config, out textio.Output) error {
	entries := cfgtree.Entries(c)
	if len(entries) == 0 {
		out.WriteString("{}")
		return nil
	}
	indent := w.IndentObject == nil || w.IndentObject(c)
	out.WriteRune('{')
	if indent {
		w.level++
		out.WriteString(w.Newline)
	}
	for i, e := range entries {
		if indent {
			w.writeIndent(out)
		}
		writeString(e.Key, out)
		out.WriteString(": ")
		if err := w.value(e.Value, out); err != nil {
			return err
		}
		if i < len(entries)-1 {
			out.WriteRune(',')
			if !indent {
				out.WriteRune(' ')
			}
		}
		if indent {
			out.WriteString(w.Newline)
		}
	}
	if indent {
		w.level--
		w.writeIndent(out)
	}
	out.WriteRune('}')
	return nil
}

func (w *FancyWriter) array(items []cfgtree.Value, out textio.Output) error {
	if len(items) == 0 {
		out.WriteString("[]")
		return nil
	}
	indent := w.IndentArray == nil || w.IndentArray(items)
	out.WriteRune('[')
	if indent {
		w.level++
		out.WriteString(w.Newline)
	}
	for i, item := range items {
		if indent {
			w.writeIndent(out)
		}
		if err := w.value(item, out); err != nil {
			return err
		}
		if i < len(items)-1 {
			out.WriteRune(',')
			if !indent {
				out.WriteRune(' ')
			}
		}
		if indent {
			out.WriteString(w.Newline)
		}
	}
	if indent {
		w.level--
		w.writeIndent(out)
	}
	out.WriteRune(']')
	return nil
}

func (w *FancyWriter) value(v cfgtree.Value, out textio.Output) error {
	switch v.Kind() {
	case cfgtree.KindConfig:
		sub, _ := v.AsConfig()
		return w.object(sub, out)
	case cfgtree.KindList:
		items, _ := v.AsList()
		return w.array(items, out)
	}
	return writeScalar(v, out)
}

func (w *FancyWriter) writeIndent(out textio.Output) {
	for i := 0; i < w.level; i++ {
		out.WriteString(w.Indent)
	}
}

// MinimalWriter writes JSON without any whitespace.
type MinimalWriter struct{}

var _ cfgtree.Writer = (*MinimalWriter)(nil)

func (w *MinimalWriter) Write(c cfgtree.Config, out textio.Output) error {
	if err := w.object(c, out); err != nil {
		return err
	}
	return out.Err()
}

func (w *MinimalWriter) object(c cfgtree.Config, out textio.Output) error {
	out.WriteRune('{')
	for i, e := range cfgtree.Entries(c) {
		if i > 0 {
			out.WriteRune(',')
		}
		writeString(e.Key, out)
		out.WriteRune(':')
		if err := w.value(e.Value, out); err != nil {
			return err
		}
	}
	out.WriteRune('}')
	return nil
}

func (w *MinimalWriter) value(v cfgtree.Value, out textio.Output) error {
	switch v.Kind() {
	case cfgtree.KindConfig:
		sub, _ := v.AsConfig()
		return w.object(sub, out)
	case cfgtree.KindList:
		out.WriteRune('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				out.WriteRune(',')
			}
			if err := w.value(v.Index(i), out); err != nil {
				return err
			}
		}
		out.WriteRune(']')
		return nil
	}
	return writeScalar(v, out)
}

func writeScalar(v cfgtree.Value, out textio.Output) error {
	switch v.Kind() {
	case cfgtree.KindNull:
		out.WriteString("null")
	case cfgtree.KindBool:
		b, _ := v.AsBool()
		out.WriteString(strconv.FormatBool(b))
	case cfgtree.KindInt:
		i, _ := v.AsInt()
		out.WriteString(strconv.FormatInt(i, 10))
	case cfgtree.KindFloat:
		f, _ := v.AsFloat()
		s, err := formatFloat(f)
		if err != nil {
			return err
		}
		out.WriteString(s)
	case cfgtree.KindString:
		s, _ := v.AsString()
		writeString(s, out)
	default:
		return fmt.Errorf("%w: %s", cfgtree.ErrUnsupportedKind, v.Kind())
	}
	return nil
}

// formatFloat keeps a fraction or exponent so the number reads back as a float.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v has no JSON representation", cfgtree.ErrUnsupportedValue, f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

func writeString(s string, out textio.Output) {
	out.WriteRune('"')
	for _, r := range s {
		switch r {
		case '"':
			out.WriteString(`\"`)
		case '\\':
			out.WriteString(`\\`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		default:
			if r < 0x20 {
				out.WriteString(`\u00`)
				out.WriteRune(rune(hexDigits[r>>4]))
				out.WriteRune(rune(hexDigits[r&0xF]))
				continue
			}
			out.WriteRune(r)
		}
	}
	out.WriteRune('"')
}
