// FILE: lixenwraith/cfgtree/textio/charray.go
package textio

import (
	"fmt"
	"unicode"
)

// Charray is a view over a shared rune array. Copying a Charray copies the view,
// never the runes: Sub and SubFrom return views over the same backing array, so a
// Set through one view is visible through every overlapping view.
type Charray struct {
	buf []rune
	off int
	lim int
}

// NewCharray wraps runes without copying.
func NewCharray(runes []rune) Charray {
	return Charray{buf: runes, off: 0, lim: len(runes)}
}

// CharrayOf copies s into a new backing array.
func CharrayOf(s string) Charray {
	return NewCharray([]rune(s))
}

// View wraps runes[start:end] without copying.
func View(runes []rune, start, end int) Charray {
	if start < 0 || end > len(runes) || start > end {
		panic(fmt.Sprintf("textio: invalid view [%d:%d] of %d runes", start, end, len(runes)))
	}
	return Charray{buf: runes, off: start, lim: end}
}

func (c Charray) Len() int      { return c.lim - c.off }
func (c Charray) IsEmpty() bool { return c.lim == c.off }

// At returns the rune at index i of the view.
func (c Charray) At(i int) rune {
	c.check(i)
	return c.buf[c.off+i]
}

// Set overwrites the rune at index i in the backing array.
func (c Charray) Set(i int, r rune) {
	c.check(i)
	c.buf[c.off+i] = r
}

func (c Charray) check(i int) {
	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("textio: index %d out of range [0:%d]", i, c.Len()))
	}
}

// IndexOf returns the first index of r, or -1.
func (c Charray) IndexOf(r rune) int {
	for i := c.off; i < c.lim; i++ {
		if c.buf[i] == r {
			return i - c.off
		}
	}
	return -1
}

// IndexOfFirst returns the first index of any of rs, or -1.
func (c Charray) IndexOfFirst(rs ...rune) int {
	for i := c.off; i < c.lim; i++ {
		for _, r := range rs {
			if c.buf[i] == r {
				return i - c.off
			}
		}
	}
	return -1
}

func (c Charray) Contains(r rune) bool {
	return c.IndexOf(r) >= 0
}

// ContentEquals compares the view with s rune by rune.
func (c Charray) ContentEquals(s string) bool {
	i := c.off
	for _, r := range s {
		if i >= c.lim || c.buf[i] != r {
			return false
		}
		i++
	}
	return i == c.lim
}

// EqualFold compares the view with s, ignoring case.
func (c Charray) EqualFold(s string) bool {
	i := c.off
	for _, r := range s {
		if i >= c.lim {
			return false
		}
		a := c.buf[i]
		if a != r && unicode.ToLower(a) != unicode.ToLower(r) && unicode.ToUpper(a) != unicode.ToUpper(r) {
			return false
		}
		i++
	}
	return i == c.lim
}

// Equal reports whether two views hold the same runes.
func (c Charray) Equal(other Charray) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if c.buf[c.off+i] != other.buf[other.off+i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether the view starts with s.
func (c Charray) HasPrefix(s string) bool {
	i := c.off
	for _, r := range s {
		if i >= c.lim || c.buf[i] != r {
			return false
		}
		i++
	}
	return true
}

// Trimmed drops leading and trailing runes <= ' '. The result shares the backing array.
func (c Charray) Trimmed() Charray {
	start, end := c.off, c.lim
	for start < end && c.buf[start] <= ' ' {
		start++
	}
	for end > start && c.buf[end-1] <= ' ' {
		end--
	}
	return Charray{buf: c.buf, off: start, lim: end}
}

// Sub returns the view [start:end), sharing the backing array.
func (c Charray) Sub(start, end int) Charray {
	if start < 0 || end > c.Len() || start > end {
		panic(fmt.Sprintf("textio: invalid sub range [%d:%d] of %d", start, end, c.Len()))
	}
	return Charray{buf: c.buf, off: c.off + start, lim: c.off + end}
}

// SubFrom returns the view [start:Len()), sharing the backing array.
func (c Charray) SubFrom(start int) Charray {
	return c.Sub(start, c.Len())
}

// Copy returns an independent copy of [start:end).
func (c Charray) Copy(start, end int) Charray {
	return c.Sub(start, end).Clone()
}

// Clone returns an independent copy of the whole view.
func (c Charray) Clone() Charray {
	return NewCharray(c.Runes())
}

// Runes copies the view into a new slice.
func (c Charray) Runes() []rune {
	out := make([]rune, c.Len())
	copy(out, c.buf[c.off:c.lim])
	return out
}

// ReplaceAll overwrites every occurrence of old with replacement, in place.
func (c Charray) ReplaceAll(old, replacement rune) {
	for i := c.off; i < c.lim; i++ {
		if c.buf[i] == old {
			c.buf[i] = replacement
		}
	}
}

func (c Charray) String() string {
	return string(c.buf[c.off:c.lim])
}

// Hash returns the base-31 polynomial hash of the runes with int32 wrap-around.
// It equals HashString of the same content, so views and strings are interchangeable
// as keys of the same hash scheme.
func (c Charray) Hash() int32 {
	var h int32
	for i := c.off; i < c.lim; i++ {
		h = 31*h + c.buf[i]
	}
	return h
}

// HashString hashes s with the same scheme as Charray.Hash.
func HashString(s string) int32 {
	var h int32
	for _, r := range s {
		h = 31*h + r
	}
	return h
}
