// FILE: lixenwraith/cfgtree/format/yaml/yaml.go

// Package yaml reads and writes YAML mappings as configs through the node
// API of yaml.v3, which keeps key order and comments.
package yaml

import (
	"github.com/lixenwraith/cfgtree"
)

// Info describes YAML.
var Info = cfgtree.Format{Name: "yaml", Comments: true, Kinds: cfgtree.AllKinds}

// DefaultIndent is the number of spaces per nesting level.
const DefaultIndent = 2

// Codec is the YAML TextFormat.
type Codec struct {
	Indent int
}

var _ cfgtree.TextFormat = (*Codec)(nil)

func New() *Codec { return &Codec{Indent: DefaultIndent} }

func (c *Codec) Format() cfgtree.Format    { return Info }
func (c *Codec) Extensions() []string      { return []string{".yaml", ".yml"} }
func (c *Codec) NewParser() cfgtree.Parser { return &Parser{} }

func (c *Codec) NewWriter() cfgtree.Writer {
	return &Writer{Indent: c.Indent}
}
