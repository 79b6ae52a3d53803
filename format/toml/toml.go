// FILE: lixenwraith/cfgtree/format/toml/toml.go

// Package toml reads and writes TOML documents as configs.
//
// Documents are decoded by BurntSushi/toml; the decoder metadata restores the
// key order of the document. TOML comments are not retained by the decoder,
// but comments of a config are written as '#' lines above their entry.
package toml

import (
	"github.com/lixenwraith/cfgtree"
)

// Info describes TOML. There is no null; writing one fails.
var Info = cfgtree.Format{
	Name:     "toml",
	Comments: true,
	Kinds: cfgtree.KindsOf(cfgtree.KindBool, cfgtree.KindInt, cfgtree.KindFloat,
		cfgtree.KindString, cfgtree.KindList, cfgtree.KindConfig),
}

// Codec is the TOML TextFormat.
type Codec struct{}

var _ cfgtree.TextFormat = (*Codec)(nil)

func New() *Codec { return &Codec{} }

func (c *Codec) Format() cfgtree.Format    { return Info }
func (c *Codec) Extensions() []string      { return []string{".toml", ".tml"} }
func (c *Codec) NewParser() cfgtree.Parser { return &Parser{} }
func (c *Codec) NewWriter() cfgtree.Writer { return &Writer{} }
