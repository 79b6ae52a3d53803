// FILE: lixenwraith/cfgtree/format/json/parser.go
package json

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/jsonc"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/textio"
)

// Parser reads a JSON object. Nested objects become sub-configs created by the
// destination, arrays become lists. Numbers with a fraction or exponent are
// floats, other numbers are ints; integers beyond int64 fall back to floats.
type Parser struct {
	JSONC bool
}

var _ cfgtree.Parser = (*Parser)(nil)

func (p *Parser) Parse(in textio.Input) (cfgtree.Config, error) {
	c := cfgtree.NewTreeWithFormat(Info)
	if err := p.parse(in, c, cfgtree.ModeMerge); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseInto reads a document into dst. Top-level keys are put according to
// mode; a nested object is stored as a whole under its key. The document is
// read completely before dst is touched, so malformed input leaves dst as it was.
func (p *Parser) ParseInto(in textio.Input, dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	side := cfgtree.NewTreeWithFormat(Info)
	if err := p.parse(in, side, mode); err != nil {
		return err
	}
	return cfgtree.Transfer(side, dst, mode)
}

func (p *Parser) parse(in textio.Input, dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	if p.JSONC {
		in = stripComments(in)
	}
	ps := &parser{in: in}
	err := ps.document(dst, mode)
	if rerr := in.Err(); rerr != nil {
		return fmt.Errorf("failed to read JSON input: %w", rerr)
	}
	return err
}

// stripComments drains in and returns the JSON equivalent. jsonc keeps
// lengths and line breaks, so positions still match the source.
func stripComments(in textio.Input) textio.Input {
	stripped := jsonc.ToJSON([]byte(textio.ReadAll(in)))
	return &jsoncInput{Input: textio.NewStringInput(string(stripped)), src: in}
}

// jsoncInput reports read errors of the original source.
type jsoncInput struct {
	textio.Input
	src textio.Input
}

func (in *jsoncInput) Err() error { return in.src.Err() }

type parser struct {
	in textio.Input
}

func (p *parser) document(dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	if r := p.in.SkipWhitespace(); r != '{' {
		return textio.UnexpectedChar(p.in, r, "'{' to open a JSON object")
	}
	p.in.Read()
	mode.Prepare(dst)
	if err := p.object(dst, mode); err != nil {
		return err
	}
	if r := p.in.SkipWhitespace(); r != textio.EOF {
		return textio.UnexpectedChar(p.in, r, "end of input")
	}
	return nil
}

// object reads the members after '{' up to and including '}'.
func (p *parser) object(dst cfgtree.Config, mode cfgtree.ParsingMode) error {
	if p.in.SkipWhitespace() == '}' {
		p.in.Read()
		return nil
	}
	for {
		if r := p.in.SkipWhitespace(); r != '"' {
			return textio.UnexpectedChar(p.in, r, "'\"' to open a key")
		}
		p.in.Read()
		key, err := p.str()
		if err != nil {
			return err
		}
		if r := p.in.SkipWhitespace(); r != ':' {
			return textio.UnexpectedChar(p.in, r, "':' after key")
		}
		p.in.Read()

		v, err := p.value(dst)
		if err != nil {
			return err
		}
		if _, err := mode.Put(dst, cfgtree.Path{key}, v); err != nil {
			return textio.Errorf(p.in, err, "failed to store key %q", key)
		}

		switch r := p.in.SkipWhitespace(); r {
		case ',':
			p.in.Read()
		case '}':
			p.in.Read()
			return nil
		default:
			return textio.UnexpectedChar(p.in, r, "',' or '}'")
		}
	}
}

func (p *parser) array(owner cfgtree.Config) (cfgtree.Value, error) {
	var items []cfgtree.Value
	if p.in.SkipWhitespace() == ']' {
		p.in.Read()
		return cfgtree.List(), nil
	}
	for {
		v, err := p.value(owner)
		if err != nil {
			return cfgtree.Value{}, err
		}
		items = append(items, v)

		switch r := p.in.SkipWhitespace(); r {
		case ',':
			p.in.Read()
		case ']':
			p.in.Read()
			return cfgtree.List(items...), nil
		default:
			return cfgtree.Value{}, textio.UnexpectedChar(p.in, r, "',' or ']'")
		}
	}
}

// value reads any JSON value. Objects are created as sub-configs of owner.
func (p *parser) value(owner cfgtree.Config) (cfgtree.Value, error) {
	r := p.in.SkipWhitespace()
	switch {
	case r == '"':
		p.in.Read()
		s, err := p.str()
		if err != nil {
			return cfgtree.Value{}, err
		}
		return cfgtree.String(s), nil
	case r == '{':
		p.in.Read()
		sub := owner.CreateSubConfig()
		if err := p.object(sub, cfgtree.ModeMerge); err != nil {
			return cfgtree.Value{}, err
		}
		return cfgtree.Sub(sub), nil
	case r == '[':
		p.in.Read()
		return p.array(owner)
	case r == 't':
		return p.literal("true", cfgtree.Bool(true))
	case r == 'f':
		return p.literal("false", cfgtree.Bool(false))
	case r == 'n':
		return p.literal("null", cfgtree.Null())
	case r == '-' || (r >= '0' && r <= '9'):
		return p.number()
	}
	return cfgtree.Value{}, textio.UnexpectedChar(p.in, r, "a JSON value")
}

func (p *parser) literal(word string, v cfgtree.Value) (cfgtree.Value, error) {
	chars, err := p.in.ReadExactly(len(word))
	if err != nil {
		return cfgtree.Value{}, textio.Errorf(p.in, textio.ErrUnexpectedEOF, "incomplete literal, expected %s", word)
	}
	if !chars.ContentEquals(word) {
		return cfgtree.Value{}, textio.Errorf(p.in, textio.ErrUnexpectedChar, "invalid literal %q, expected %s", chars.String(), word)
	}
	return v, nil
}

func (p *parser) number() (cfgtree.Value, error) {
	s := p.in.ReadWhileAny("+-0123456789.eE").String()
	if !validNumber(s) {
		return cfgtree.Value{}, textio.Errorf(p.in, textio.ErrUnexpectedChar, "invalid number %q", s)
	}
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return cfgtree.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return cfgtree.Value{}, textio.Errorf(p.in, err, "invalid number %q", s)
	}
	return cfgtree.Float(f), nil
}

// validNumber checks the JSON number grammar.
func validNumber(s string) bool {
	i := 0
	digits := func() int {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i - start
	}

	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	if s[i] == '0' {
		i++
	} else if digits() == 0 {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(s)
}

// str reads the rest of a string whose opening quote was consumed.
func (p *parser) str() (string, error) {
	b := textio.NewBuilder(16)
	for {
		b.WriteCharray(p.in.ReadUntilAny("\"\\"))
		switch r := p.in.Read(); r {
		case '"':
			return b.String(), nil
		case '\\':
			esc, err := p.escape()
			if err != nil {
				return "", err
			}
			b.WriteRune(esc)
		default:
			return "", textio.UnexpectedChar(p.in, r, "'\"' to close the string")
		}
	}
}

func (p *parser) escape() (rune, error) {
	switch r := p.in.Read(); r {
	case '"', '\\', '/':
		return r, nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		r1, err := p.hex4()
		if err != nil {
			return 0, err
		}
		if !utf16.IsSurrogate(r1) {
			return r1, nil
		}
		if p.in.Peek() != '\\' || p.in.PeekAfter(1) != 'u' {
			return utf8.RuneError, nil
		}
		p.in.SkipPeeks()
		r2, err := p.hex4()
		if err != nil {
			return 0, err
		}
		return utf16.DecodeRune(r1, r2), nil
	case textio.EOF:
		return 0, textio.UnexpectedChar(p.in, r, "an escape sequence")
	default:
		return 0, textio.Errorf(p.in, textio.ErrUnexpectedChar, "invalid escape sequence \\%c", r)
	}
}

func (p *parser) hex4() (rune, error) {
	chars, err := p.in.ReadExactly(4)
	if err != nil {
		return 0, textio.Errorf(p.in, textio.ErrUnexpectedEOF, "incomplete unicode escape")
	}
	n, err := strconv.ParseUint(chars.String(), 16, 32)
	if err != nil {
		return 0, textio.Errorf(p.in, textio.ErrUnexpectedChar, "invalid unicode escape \\u%s", chars.String())
	}
	return rune(n), nil
}
