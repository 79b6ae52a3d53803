// FILE: lixenwraith/cfgtree/format.go
package cfgtree

import (
	"bytes"
	"fmt"

	"github.com/lixenwraith/cfgtree/textio"
)

// Parser reads a configuration document.
type Parser interface {
	// Parse reads a document into a new config of the parser's format.
	Parse(in textio.Input) (Config, error)
	// ParseInto reads a document into dst, combining entries according to mode.
	ParseInto(in textio.Input, dst Config, mode ParsingMode) error
}

// Writer serializes a config. It is the inverse of the matching Parser.
type Writer interface {
	Write(c Config, out textio.Output) error
}

// TextFormat binds a Format to its parser and writer.
// Adapters program against Config only, never a specific implementation.
type TextFormat interface {
	Format() Format
	// Extensions lists file extensions, lower case with the leading dot.
	Extensions() []string
	NewParser() Parser
	NewWriter() Writer
}

// NewConfigFor creates an empty plain tree bound to the format of f.
func NewConfigFor(f TextFormat) *Tree {
	return NewTreeWithFormat(f.Format())
}

// ParseString parses s with the parser of f.
func ParseString(f TextFormat, s string) (Config, error) {
	return f.NewParser().Parse(textio.NewStringInput(s))
}

// ParseBytes parses data with the parser of f into dst.
func ParseBytes(f TextFormat, data []byte, dst Config, mode ParsingMode) error {
	return f.NewParser().ParseInto(textio.NewReaderInput(bytes.NewReader(data)), dst, mode)
}

// WriteString serializes c with the writer of f.
func WriteString(f TextFormat, c Config) (string, error) {
	b := textio.NewBuilder(256)
	if err := f.NewWriter().Write(c, textio.NewBuilderOutput(b)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteBytes serializes c with the writer of f.
func WriteBytes(f TextFormat, c Config) ([]byte, error) {
	var buf bytes.Buffer
	out := textio.NewWriterOutput(&buf)
	if err := f.NewWriter().Write(c, out); err != nil {
		return nil, err
	}
	if err := out.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush %s output: %w", f.Format().Name, err)
	}
	return buf.Bytes(), nil
}

// CheckKinds fails with ErrUnsupportedKind on the first value of c, at any depth,
// that f cannot represent.
func CheckKinds(f Format, c Config) error {
	return checkKinds(f, c, nil)
}

func checkKinds(f Format, c Config, prefix Path) error {
	for _, e := range Entries(c) {
		if err := checkValueKind(f, e.Value, prefix.Child(e.Key)); err != nil {
			return err
		}
	}
	return nil
}

func checkValueKind(f Format, v Value, p Path) error {
	if !f.SupportsKind(v.Kind()) {
		return fmt.Errorf("%w: %s cannot hold %s at %q", ErrUnsupportedKind, f.Name, v.Kind(), p.String())
	}
	switch v.Kind() {
	case KindList:
		for i := 0; i < v.Len(); i++ {
			if err := checkValueKind(f, v.Index(i), p); err != nil {
				return err
			}
		}
	case KindConfig:
		return checkKinds(f, v.cfg, p)
	}
	return nil
}
