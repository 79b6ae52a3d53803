// FILE: lixenwraith/cfgtree/textio/input.go
package textio

import "strings"

// EOF is returned by every read once the input is exhausted.
const EOF rune = -1

// Input is a rune source with unbounded lookahead, push back and position tracking.
// Line is 1-based and Column is 0-based; both describe the position after the last
// consumed rune. Bulk scanners never consume the rune that stops them.
type Input interface {
	Line() int
	Column() int

	// Read consumes and returns the next rune, or EOF.
	Read() rune
	// Peek returns the next rune without consuming it.
	Peek() rune
	// PeekAfter returns the rune n positions after the next one. PeekAfter(0) == Peek().
	PeekAfter(n int) rune
	// SkipPeeks consumes every rune buffered by Peek and PeekAfter.
	SkipPeeks()
	// ReadPeeks consumes and returns every rune buffered by Peek and PeekAfter.
	ReadPeeks() Charray
	// PushBack un-consumes r; it becomes the next rune returned by Read.
	PushBack(r rune)

	ReadAtMost(n int) Charray
	ReadExactly(n int) (Charray, error)
	SkipAtMost(n int) int

	ReadWhileRange(lo, hi rune) Charray
	ReadUntilRange(lo, hi rune) Charray
	ReadWhileAny(set string) Charray
	ReadUntilAny(set string) Charray

	// SkipWhitespace consumes runes <= ' ' and returns the next rune without consuming it.
	SkipWhitespace() rune

	// Err returns the first error of the underlying source, if any.
	Err() error
}

// maxLineMemory bounds how many consecutive newline push backs restore an exact column.
const maxLineMemory = 16

// cursor holds the lookahead buffer and position shared by all inputs.
// next pulls one rune straight from the source, bypassing lookahead.
type cursor struct {
	next     func() rune
	peeks    *runeDeque
	line     int
	col      int
	lineEnds []int
}

func newCursor(next func() rune) cursor {
	return cursor{next: next, peeks: newRuneDeque(), line: 1}
}

func (c *cursor) Line() int   { return c.line }
func (c *cursor) Column() int { return c.col }

func (c *cursor) advance(r rune) {
	if r == EOF {
		return
	}
	if r == '\n' {
		c.lineEnds = append(c.lineEnds, c.col)
		if len(c.lineEnds) > maxLineMemory {
			c.lineEnds = c.lineEnds[1:]
		}
		c.line++
		c.col = 0
		return
	}
	c.col++
}

func (c *cursor) retreat(r rune) {
	if r == '\n' {
		c.line--
		if n := len(c.lineEnds); n > 0 {
			c.col = c.lineEnds[n-1]
			c.lineEnds = c.lineEnds[:n-1]
		} else {
			c.col = 0
		}
		return
	}
	if c.col > 0 {
		c.col--
	}
}

func (c *cursor) Read() rune {
	var r rune
	if c.peeks.Len() > 0 {
		r = c.peeks.PopFront()
	} else {
		r = c.next()
	}
	c.advance(r)
	return r
}

func (c *cursor) Peek() rune {
	return c.PeekAfter(0)
}

func (c *cursor) PeekAfter(n int) rune {
	// EOF is never buffered; sources keep returning it once exhausted.
	for c.peeks.Len() <= n {
		r := c.next()
		if r == EOF {
			return EOF
		}
		c.peeks.PushBack(r)
	}
	return c.peeks.At(n)
}

func (c *cursor) SkipPeeks() {
	for c.peeks.Len() > 0 {
		c.advance(c.peeks.PopFront())
	}
}

func (c *cursor) ReadPeeks() Charray {
	b := NewBuilder(c.peeks.Len())
	for c.peeks.Len() > 0 {
		r := c.peeks.PopFront()
		c.advance(r)
		b.WriteRune(r)
	}
	return b.Take()
}

func (c *cursor) PushBack(r rune) {
	if r == EOF {
		return
	}
	c.peeks.PushFront(r)
	c.retreat(r)
}

// scan reads runes while keep returns true.
func (c *cursor) scan(keep func(rune) bool) Charray {
	b := NewBuilder(16)
	for {
		r := c.Peek()
		if r == EOF || !keep(r) {
			break
		}
		b.WriteRune(c.Read())
	}
	return b.Take()
}

func (c *cursor) ReadAtMost(n int) Charray {
	b := NewBuilder(n)
	for i := 0; i < n; i++ {
		r := c.Read()
		if r == EOF {
			break
		}
		b.WriteRune(r)
	}
	return b.Take()
}

func (c *cursor) ReadExactly(n int) (Charray, error) {
	out := c.ReadAtMost(n)
	if out.Len() < n {
		return out, Errorf(c, ErrNotEnoughData, "read %d of %d runes", out.Len(), n)
	}
	return out, nil
}

func (c *cursor) SkipAtMost(n int) int {
	i := 0
	for ; i < n; i++ {
		if c.Read() == EOF {
			break
		}
	}
	return i
}

func (c *cursor) ReadWhileRange(lo, hi rune) Charray {
	return c.scan(func(r rune) bool { return r >= lo && r <= hi })
}

func (c *cursor) ReadUntilRange(lo, hi rune) Charray {
	return c.scan(func(r rune) bool { return r < lo || r > hi })
}

func (c *cursor) ReadWhileAny(set string) Charray {
	return c.scan(func(r rune) bool { return strings.ContainsRune(set, r) })
}

func (c *cursor) ReadUntilAny(set string) Charray {
	return c.scan(func(r rune) bool { return !strings.ContainsRune(set, r) })
}

func (c *cursor) SkipWhitespace() rune {
	for {
		r := c.Peek()
		if r == EOF || r > ' ' {
			return r
		}
		c.Read()
	}
}

func (c *cursor) Err() error { return nil }

// ReadAll consumes the rest of in and returns it as a string.
func ReadAll(in Input) string {
	b := NewBuilder(1024)
	for r := in.Read(); r != EOF; r = in.Read() {
		b.WriteRune(r)
	}
	return b.String()
}
