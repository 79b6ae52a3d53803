// FILE: lixenwraith/cfgtree/textio/reader_input.go
package textio

import (
	"bufio"
	"errors"
	"io"
)

// ReaderInput decodes UTF-8 from an io.Reader. Read errors end the input; the first
// one other than io.EOF is reported by Err.
type ReaderInput struct {
	cursor
	r    *bufio.Reader
	done bool
	err  error
}

func NewReaderInput(r io.Reader) *ReaderInput {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	in := &ReaderInput{r: br}
	in.cursor = newCursor(in.pull)
	return in
}

func (in *ReaderInput) pull() rune {
	if in.done {
		return EOF
	}
	r, _, err := in.r.ReadRune()
	if err != nil {
		in.done = true
		if !errors.Is(err, io.EOF) {
			in.err = err
		}
		return EOF
	}
	return r
}

func (in *ReaderInput) Err() error {
	return in.err
}
