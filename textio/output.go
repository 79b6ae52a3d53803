// FILE: lixenwraith/cfgtree/textio/output.go
package textio

import (
	"bufio"
	"io"
)

// Output is a rune sink. Write errors are sticky: after the first failure every
// write is a no-op and Err and Flush report that failure.
type Output interface {
	WriteRune(r rune)
	WriteString(s string)
	WriteCharray(c Charray)
	Flush() error
	Err() error
}

// WriterOutput buffers runes and encodes them as UTF-8 to an io.Writer.
type WriterOutput struct {
	w   *bufio.Writer
	err error
}

func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: bufio.NewWriter(w)}
}

func (o *WriterOutput) WriteRune(r rune) {
	if o.err != nil {
		return
	}
	_, o.err = o.w.WriteRune(r)
}

func (o *WriterOutput) WriteString(s string) {
	if o.err != nil {
		return
	}
	_, o.err = o.w.WriteString(s)
}

func (o *WriterOutput) WriteCharray(c Charray) {
	for i := c.off; i < c.lim && o.err == nil; i++ {
		_, o.err = o.w.WriteRune(c.buf[i])
	}
}

func (o *WriterOutput) Flush() error {
	if o.err != nil {
		return o.err
	}
	o.err = o.w.Flush()
	return o.err
}

func (o *WriterOutput) Err() error { return o.err }

// BuilderOutput appends to a Builder and never fails.
type BuilderOutput struct {
	b *Builder
}

func NewBuilderOutput(b *Builder) *BuilderOutput {
	return &BuilderOutput{b: b}
}

func (o *BuilderOutput) WriteRune(r rune)       { o.b.WriteRune(r) }
func (o *BuilderOutput) WriteString(s string)   { o.b.WriteString(s) }
func (o *BuilderOutput) WriteCharray(c Charray) { o.b.WriteCharray(c) }
func (o *BuilderOutput) Flush() error           { return nil }
func (o *BuilderOutput) Err() error             { return nil }
func (o *BuilderOutput) Builder() *Builder      { return o.b }

// writerAdapter exposes an Output as an io.Writer.
type writerAdapter struct {
	out Output
}

// AsWriter adapts out for encoders that write to an io.Writer.
func AsWriter(out Output) io.Writer {
	return writerAdapter{out: out}
}

func (w writerAdapter) Write(p []byte) (int, error) {
	w.out.WriteString(string(p))
	if err := w.out.Err(); err != nil {
		return 0, err
	}
	return len(p), nil
}
