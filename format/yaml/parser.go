// FILE: lixenwraith/cfgtree/format/yaml/parser.go
package yaml

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/textio"
)

// Parser reads a YAML document whose root is a mapping. Nested mappings become
// sub-configs created by the destination, sequences become lists. Head
// comments of keys, or else line comments, become entry comments. Aliases
// are resolved and '<<' merge keys add the merged entries that are not set
// explicitly. Timestamps and other tagged scalars are kept as strings.
type Parser struct{}

var _ cfgtree.Parser = (*Parser)(nil)

func (p *Parser) Parse(in textio.Input) (cfgtree.Config, error) {
	c := cfgtree.NewTreeWithFormat(Info)
	if err := p.parse(in, c, cfgtree.ModeMerge); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseInto puts the top-level keys of the document into dst according to mode.
// An empty document leaves dst prepared but without new entries. Nothing is
// put into dst unless the whole document converts.
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
		return fmt.Errorf("failed to read YAML input: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return convertError(err)
	}

	mode.Prepare(dst)
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}
	root := resolve(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return &textio.ParseError{
			Line:    root.Line,
			Column:  max(root.Column-1, 0),
			Message: "document root must be a mapping",
			Err:     textio.ErrUnexpectedChar,
		}
	}
	return mapping(root, dst, mode)
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// mapping puts the entries of n into dst with mode. Merge keys are applied
// last and only add what is still absent.
func mapping(n *yaml.Node, dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := resolve(n.Content[i]), n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			merges = append(merges, resolve(v))
			continue
		}
		if k.Kind != yaml.ScalarNode {
			return &textio.ParseError{
				Line:    k.Line,
				Column:  max(k.Column-1, 0),
				Message: "mapping keys must be scalars",
				Err:     textio.ErrUnexpectedChar,
			}
		}

		val, err := value(dst, v)
		if err != nil {
			return err
		}
		key := cfgtree.Path{k.Value}
		put, err := mode.Put(dst, key, val)
		if err != nil {
			return &textio.ParseError{Line: k.Line, Column: max(k.Column-1, 0), Message: fmt.Sprintf("failed to store key %q", k.Value), Err: err}
		}
		if comment := entryComment(k, v); put && comment != "" {
			if _, err := dst.SetComment(key, comment); err != nil {
				return err
			}
		}
	}

	for _, m := range merges {
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			src = resolve(src)
			if src.Kind != yaml.MappingNode {
				return &textio.ParseError{Line: src.Line, Column: max(src.Column-1, 0), Message: "merge value must be a mapping", Err: textio.ErrUnexpectedChar}
			}
			if err := mapping(src, dst, cfgtree.ModeAdd); err != nil {
				return err
			}
		}
	}
	return nil
}

func value(owner cfgtree.Config, n *yaml.Node) (cfgtree.Value, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		sub := owner.CreateSubConfig()
		if err := mapping(n, sub, cfgtree.ModeMerge); err != nil {
			return cfgtree.Value{}, err
		}
		return cfgtree.Sub(sub), nil
	case yaml.SequenceNode:
		items := make([]cfgtree.Value, len(n.Content))
		for i, item := range n.Content {
			v, err := value(owner, item)
			if err != nil {
				return cfgtree.Value{}, err
			}
			items[i] = v
		}
		return cfgtree.List(items...), nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return cfgtree.Value{}, &textio.ParseError{Line: n.Line, Column: max(n.Column-1, 0), Message: "unsupported YAML node", Err: textio.ErrUnexpectedChar}
}

func scalar(n *yaml.Node) (cfgtree.Value, error) {
	var err error
	switch n.ShortTag() {
	case "!!null":
		return cfgtree.Null(), nil
	case "!!bool":
		var b bool
		if err = n.Decode(&b); err == nil {
			return cfgtree.Bool(b), nil
		}
	case "!!int":
		var i int64
		if err = n.Decode(&i); err == nil {
			return cfgtree.Int(i), nil
		}
		// Beyond int64
		var f float64
		if err = n.Decode(&f); err == nil {
			return cfgtree.Float(f), nil
		}
	case "!!float":
		var f float64
		if err = n.Decode(&f); err == nil {
			return cfgtree.Float(f), nil
		}
	default:
		return cfgtree.String(n.Value), nil
	}
	return cfgtree.Value{}, &textio.ParseError{
		Line:    n.Line,
		Column:  max(n.Column-1, 0),
		Message: fmt.Sprintf("invalid %s value %q", n.ShortTag(), n.Value),
		Err:     err,
	}
}

func entryComment(k, v *yaml.Node) string {
	for _, c := range []string{k.HeadComment, k.LineComment, v.LineComment} {
		if c != "" {
			return stripComment(c)
		}
	}
	return ""
}

// stripComment removes the '#' markers yaml.v3 keeps in comment text.
func stripComment(c string) string {
	lines := strings.Split(c, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "#")
		lines[i] = strings.TrimPrefix(line, " ")
	}
	return strings.Join(lines, "\n")
}

// convertError extracts the line from yaml.v3 messages of the form
// "yaml: line N: message".
func convertError(err error) error {
	msg := err.Error()
	var line int
	if _, scanErr := fmt.Sscanf(msg, "yaml: line %d:", &line); scanErr == nil {
		if i := strings.Index(msg, ": "); i >= 0 {
			if j := strings.Index(msg[i+2:], ": "); j >= 0 {
				msg = msg[i+2+j+2:]
			}
		}
		return &textio.ParseError{Line: line, Message: msg, Err: err}
	}
	return &textio.ParseError{Message: strings.TrimPrefix(msg, "yaml: "), Err: err}
}
