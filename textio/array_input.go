// FILE: lixenwraith/cfgtree/textio/array_input.go
package textio

import "strings"

// ArrayInput reads from an in-memory rune array. While no lookahead is buffered, the
// bulk scanners return views into the source array without allocating.
type ArrayInput struct {
	cursor
	data []rune
	pos  int
	end  int
}

func NewArrayInput(runes []rune) *ArrayInput {
	return newArrayInput(runes, 0, len(runes))
}

func NewStringInput(s string) *ArrayInput {
	return NewArrayInput([]rune(s))
}

// NewCharrayInput reads the runes of c. Returned views share c's backing array.
func NewCharrayInput(c Charray) *ArrayInput {
	return newArrayInput(c.buf, c.off, c.lim)
}

func newArrayInput(data []rune, start, end int) *ArrayInput {
	in := &ArrayInput{data: data, pos: start, end: end}
	in.cursor = newCursor(in.pull)
	return in
}

func (in *ArrayInput) pull() rune {
	if in.pos >= in.end {
		return EOF
	}
	r := in.data[in.pos]
	in.pos++
	return r
}

func (in *ArrayInput) scan(keep func(rune) bool) Charray {
	if in.peeks.Len() > 0 {
		return in.cursor.scan(keep)
	}
	start := in.pos
	for in.pos < in.end && keep(in.data[in.pos]) {
		in.advance(in.data[in.pos])
		in.pos++
	}
	return View(in.data, start, in.pos)
}

func (in *ArrayInput) ReadAtMost(n int) Charray {
	if in.peeks.Len() > 0 {
		return in.cursor.ReadAtMost(n)
	}
	start := in.pos
	stop := min(in.end, in.pos+max(n, 0))
	for ; in.pos < stop; in.pos++ {
		in.advance(in.data[in.pos])
	}
	return View(in.data, start, in.pos)
}

// ReadExactly consumes nothing when fewer than n runes remain.
func (in *ArrayInput) ReadExactly(n int) (Charray, error) {
	if available := in.peeks.Len() + in.end - in.pos; available < n {
		return Charray{}, Errorf(in, ErrNotEnoughData, "need %d runes, %d left", n, available)
	}
	return in.ReadAtMost(n), nil
}

func (in *ArrayInput) ReadWhileRange(lo, hi rune) Charray {
	return in.scan(func(r rune) bool { return r >= lo && r <= hi })
}

func (in *ArrayInput) ReadUntilRange(lo, hi rune) Charray {
	return in.scan(func(r rune) bool { return r < lo || r > hi })
}

func (in *ArrayInput) ReadWhileAny(set string) Charray {
	return in.scan(func(r rune) bool { return strings.ContainsRune(set, r) })
}

func (in *ArrayInput) ReadUntilAny(set string) Charray {
	return in.scan(func(r rune) bool { return !strings.ContainsRune(set, r) })
}
