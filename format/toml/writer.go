// FILE: lixenwraith/cfgtree/format/toml/writer.go
package toml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/textio"
)

// Writer writes TOML in the entry order of the config, except that plain
// values of a table always precede its sub-tables as TOML requires.
// Sub-configs become [tables], non-empty lists holding only sub-configs
// become [[arrays of tables]], sub-configs inside other lists become inline
// tables. A table holding only sub-tables gets no header of its own unless it
// carries a comment.
type Writer struct {
	started bool
}

var _ cfgtree.Writer = (*Writer)(nil)

func (w *Writer) Write(c cfgtree.Config, out textio.Output) error {
	if err := cfgtree.CheckKinds(Info, c); err != nil {
		return err
	}
	w.started = false
	if err := w.table(c, nil, out); err != nil {
		return err
	}
	return out.Err()
}

func (w *Writer) table(c cfgtree.Config, path cfgtree.Path, out textio.Output) error {
	entries := cfgtree.Entries(c)
	for _, e := range entries {
		if isTable(e.Value) || isTableArray(e.Value) {
			continue
		}
		w.comment(e, out)
		writeKey(e.Key, out)
		out.WriteString(" = ")
		if err := writeValue(e.Value, out); err != nil {
			return err
		}
		out.WriteRune('\n')
		w.started = true
	}

	for _, e := range entries {
		p := path.Child(e.Key)
		switch {
		case isTable(e.Value):
			sub, _ := e.Value.AsConfig()
			if needsHeader(sub, e) {
				w.header(e, p, "[", "]", out)
			}
			if err := w.table(sub, p, out); err != nil {
				return err
			}
		case isTableArray(e.Value):
			items, _ := e.Value.AsList()
			for i, item := range items {
				if i > 0 {
					e.HasComment = false
				}
				w.header(e, p, "[[", "]]", out)
				sub, _ := item.AsConfig()
				if err := w.table(sub, p, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func needsHeader(sub cfgtree.Config, e cfgtree.Entry) bool {
	if e.HasComment || sub.IsEmpty() {
		return true
	}
	for _, child := range cfgtree.Entries(sub) {
		if !isTable(child.Value) && !isTableArray(child.Value) {
			return true
		}
	}
	return false
}

func (w *Writer) header(e cfgtree.Entry, p cfgtree.Path, open, close string, out textio.Output) {
	if w.started {
		out.WriteRune('\n')
	}
	w.comment(e, out)
	out.WriteString(open)
	for i, key := range p {
		if i > 0 {
			out.WriteRune('.')
		}
		writeKey(key, out)
	}
	out.WriteString(close)
	out.WriteRune('\n')
	w.started = true
}

func (w *Writer) comment(e cfgtree.Entry, out textio.Output) {
	if !e.HasComment {
		return
	}
	for _, line := range strings.Split(e.Comment, "\n") {
		if line == "" {
			out.WriteString("#\n")
			continue
		}
		out.WriteString("# ")
		out.WriteString(line)
		out.WriteRune('\n')
	}
}

func isTable(v cfgtree.Value) bool {
	return v.Kind() == cfgtree.KindConfig
}

func isTableArray(v cfgtree.Value) bool {
	if v.Kind() != cfgtree.KindList || v.Len() == 0 {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if v.Index(i).Kind() != cfgtree.KindConfig {
			return false
		}
	}
	return true
}

func writeValue(v cfgtree.Value, out textio.Output) error {
	switch v.Kind() {
	case cfgtree.KindBool:
		b, _ := v.AsBool()
		out.WriteString(strconv.FormatBool(b))
	case cfgtree.KindInt:
		i, _ := v.AsInt()
		out.WriteString(strconv.FormatInt(i, 10))
	case cfgtree.KindFloat:
		f, _ := v.AsFloat()
		out.WriteString(formatFloat(f))
	case cfgtree.KindString:
		s, _ := v.AsString()
		writeString(s, out)
	case cfgtree.KindList:
		out.WriteRune('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				out.WriteString(", ")
			}
			if err := writeValue(v.Index(i), out); err != nil {
				return err
			}
		}
		out.WriteRune(']')
	case cfgtree.KindConfig:
		sub, _ := v.AsConfig()
		entries := cfgtree.Entries(sub)
		if len(entries) == 0 {
			out.WriteString("{}")
			return nil
		}
		out.WriteString("{ ")
		for i, e := range entries {
			if i > 0 {
				out.WriteString(", ")
			}
			writeKey(e.Key, out)
			out.WriteString(" = ")
			if err := writeValue(e.Value, out); err != nil {
				return err
			}
		}
		out.WriteString(" }")
	default:
		return fmt.Errorf("%w: toml cannot hold %s", cfgtree.ErrUnsupportedKind, v.Kind())
	}
	return nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func writeKey(key string, out textio.Output) {
	if isBareKey(key) {
		out.WriteString(key)
		return
	}
	writeString(key, out)
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
		case '\b':
			out.WriteString(`\b`)
		case '\f':
			out.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				out.WriteString(fmt.Sprintf(`\u%04X`, r))
				continue
			}
			out.WriteRune(r)
		}
	}
	out.WriteRune('"')
}
