// FILE: lixenwraith/cfgtree/textio/deque.go
package textio

// runeDeque is a ring buffer of runes with a power-of-two capacity.
type runeDeque struct {
	buf  []rune
	head int
	size int
}

func newRuneDeque() *runeDeque {
	return &runeDeque{buf: make([]rune, 8)}
}

func (d *runeDeque) Len() int { return d.size }

func (d *runeDeque) grow() {
	if d.size < len(d.buf) {
		return
	}
	grown := make([]rune, len(d.buf)*2)
	for i := 0; i < d.size; i++ {
		grown[i] = d.buf[(d.head+i)&(len(d.buf)-1)]
	}
	d.buf = grown
	d.head = 0
}

func (d *runeDeque) PushFront(r rune) {
	d.grow()
	d.head = (d.head - 1) & (len(d.buf) - 1)
	d.buf[d.head] = r
	d.size++
}

func (d *runeDeque) PushBack(r rune) {
	d.grow()
	d.buf[(d.head+d.size)&(len(d.buf)-1)] = r
	d.size++
}

func (d *runeDeque) PopFront() rune {
	r := d.buf[d.head]
	d.head = (d.head + 1) & (len(d.buf) - 1)
	d.size--
	return r
}

// At returns the i-th rune from the front.
func (d *runeDeque) At(i int) rune {
	return d.buf[(d.head+i)&(len(d.buf)-1)]
}

func (d *runeDeque) Clear() {
	d.head = 0
	d.size = 0
}
