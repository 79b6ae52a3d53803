// FILE: lixenwraith/cfgtree/textio/builder.go
package textio

import "fmt"

// Builder is a growable rune buffer. The backing array grows by doubling.
type Builder struct {
	buf   []rune
	n     int
	taken bool
}

// NewBuilder creates a builder with at least 2 runes of capacity.
func NewBuilder(capacity int) *Builder {
	if capacity < 2 {
		capacity = 2
	}
	return &Builder{buf: make([]rune, capacity)}
}

func (b *Builder) Len() int { return b.n }
func (b *Builder) Cap() int { return len(b.buf) }

func (b *Builder) live() {
	if b.taken {
		panic("textio: builder used after Take")
	}
}

func (b *Builder) ensure(extra int) {
	b.live()
	needed := b.n + extra
	if needed <= len(b.buf) {
		return
	}
	size := max(needed, len(b.buf)*2)
	grown := make([]rune, size)
	copy(grown, b.buf[:b.n])
	b.buf = grown
}

func (b *Builder) WriteRune(r rune) {
	b.ensure(1)
	b.buf[b.n] = r
	b.n++
}

func (b *Builder) WriteRunes(rs []rune) {
	b.ensure(len(rs))
	b.n += copy(b.buf[b.n:], rs)
}

func (b *Builder) WriteString(s string) {
	for _, r := range s {
		b.WriteRune(r)
	}
}

func (b *Builder) WriteCharray(c Charray) {
	b.ensure(c.Len())
	b.n += copy(b.buf[b.n:], c.buf[c.off:c.lim])
}

// Set replaces the rune at index i, which must be below Len.
func (b *Builder) Set(i int, r rune) {
	b.live()
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("textio: builder index %d out of range [0:%d]", i, b.n))
	}
	b.buf[i] = r
}

// View returns a view over the current content, sharing the backing array.
// Later writes that grow the buffer detach the builder from views taken earlier.
func (b *Builder) View() Charray {
	b.live()
	return Charray{buf: b.buf, off: 0, lim: b.n}
}

// Take hands the backing array over to the returned view without copying.
// The builder must not be used afterwards.
func (b *Builder) Take() Charray {
	v := b.View()
	b.taken = true
	b.buf = nil
	return v
}

// Copy returns the content in a new, independent array.
func (b *Builder) Copy() Charray {
	return b.View().Clone()
}

// Compact shrinks the backing array to the exact content length and returns a view over it.
func (b *Builder) Compact() Charray {
	b.live()
	if b.n != len(b.buf) {
		exact := make([]rune, b.n)
		copy(exact, b.buf[:b.n])
		b.buf = exact
	}
	return b.View()
}

// Reset empties the builder, keeping its capacity.
func (b *Builder) Reset() {
	b.live()
	b.n = 0
}

func (b *Builder) String() string {
	b.live()
	return string(b.buf[:b.n])
}
