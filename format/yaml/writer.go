// FILE: lixenwraith/cfgtree/format/yaml/writer.go
package yaml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/textio"
)

// Writer writes a config as a YAML mapping in entry order. Comments become
// head comments of their keys. Strings that would read back as another
// type are quoted.
type Writer struct {
	Indent int
}

var _ cfgtree.Writer = (*Writer)(nil)

func (w *Writer) Write(c cfgtree.Config, out textio.Output) error {
	root, err := mappingNode(c)
	if err != nil {
		return err
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	enc := yaml.NewEncoder(textio.AsWriter(out))
	indent := w.Indent
	if indent <= 0 {
		indent = DefaultIndent
	}
	enc.SetIndent(indent)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return out.Err()
}

func mappingNode(c cfgtree.Config) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range cfgtree.Entries(c) {
		k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
		if e.HasComment {
			k.HeadComment = commentText(e.Comment)
		}
		v, err := valueNode(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		n.Content = append(n.Content, k, v)
	}
	return n, nil
}

func valueNode(v cfgtree.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case cfgtree.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case cfgtree.KindBool:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}, nil
	case cfgtree.KindInt:
		i, _ := v.AsInt()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}, nil
	case cfgtree.KindFloat:
		f, _ := v.AsFloat()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(f)}, nil
	case cfgtree.KindString:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}, nil
	case cfgtree.KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < v.Len(); i++ {
			item, err := valueNode(v.Index(i))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, item)
		}
		if len(n.Content) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n, nil
	case cfgtree.KindConfig:
		sub, _ := v.AsConfig()
		n, err := mappingNode(sub)
		if err != nil {
			return nil, err
		}
		if len(n.Content) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", cfgtree.ErrUnsupportedKind, v.Kind())
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func commentText(c string) string {
	lines := strings.Split(c, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = "#"
			continue
		}
		lines[i] = "# " + line
	}
	return strings.Join(lines, "\n")
}
