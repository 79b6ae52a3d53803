// FILE: lixenwraith/cfgtree/format/json/json.go

// Package json reads and writes JSON objects as configs. The parser runs on
// textio input and keeps the key order of the document. JSONC input, with
// comments and trailing commas, is accepted when enabled.
package json

import (
	"github.com/lixenwraith/cfgtree"
)

// Info describes JSON. It cannot carry comments; writers drop them.
var Info = cfgtree.Format{Name: "json", Comments: false, Kinds: cfgtree.AllKinds}

// Codec is the JSON TextFormat.
type Codec struct {
	// JSONC strips // and /* */ comments and trailing commas before parsing.
	JSONC bool
	// Minimal writes without any whitespace.
	Minimal bool
	// Indent and Newline shape fancy output.
	Indent  string
	Newline string
}

var _ cfgtree.TextFormat = (*Codec)(nil)

// New returns a codec writing tab-indented output.
func New() *Codec {
	return &Codec{Indent: "\t", Newline: "\n"}
}

// NewJSONC returns a codec that accepts comments and trailing commas.
func NewJSONC() *Codec {
	c := New()
	c.JSONC = true
	return c
}

// NewMinimal returns a codec writing compact output.
func NewMinimal() *Codec {
	c := New()
	c.Minimal = true
	return c
}

func (c *Codec) Format() cfgtree.Format { return Info }

func (c *Codec) Extensions() []string { return []string{".json", ".jsonc"} }

func (c *Codec) NewParser() cfgtree.Parser {
	return &Parser{JSONC: c.JSONC}
}

func (c *Codec) NewWriter() cfgtree.Writer {
	if c.Minimal {
		return &MinimalWriter{}
	}
	return &FancyWriter{
		Indent:      c.Indent,
		Newline:     c.Newline,
		IndentArray: HasNested,
	}
}
