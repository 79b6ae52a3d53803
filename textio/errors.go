// FILE: lixenwraith/cfgtree/textio/errors.go
package textio

import (
	"errors"
	"fmt"
)

var (
	ErrNotEnoughData  = errors.New("not enough data available")
	ErrUnexpectedEOF  = errors.New("unexpected end of input")
	ErrUnexpectedChar = errors.New("unexpected character")
)

// ParseError reports a failure at a position of an Input.
type ParseError struct {
	Source  string // file name or other origin, may be empty
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.Source != "" {
		loc = e.Source + ":" + loc
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		return loc + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, msg, e.Err)
	}
	return loc + ": " + msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Errorf builds a ParseError at the current position of in.
func Errorf(in Input, err error, format string, args ...any) *ParseError {
	return &ParseError{
		Line:    in.Line(),
		Column:  in.Column(),
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// UnexpectedChar builds a ParseError for r found where one of expected was required.
func UnexpectedChar(in Input, r rune, expected string) *ParseError {
	if r == EOF {
		return Errorf(in, ErrUnexpectedEOF, "expected %s", expected)
	}
	return Errorf(in, ErrUnexpectedChar, "found %q, expected %s", r, expected)
}
