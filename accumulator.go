// FILE: lixenwraith/cfgtree/accumulator.go
package cfgtree

// Accumulator is an unsynchronized Config for building a tree on one goroutine
// before publishing it into a Stamped with ReplaceContentBy. Publishing moves
// its nodes instead of copying them; the accumulator and all its sub-configs
// panic on any later use.
type Accumulator struct {
	n      *node
	state  *accState
	format Format
	up     Config
}

type accState struct {
	consumed bool
}

var _ Config = (*Accumulator)(nil)

func NewAccumulator() *Accumulator {
	return newAccumulator(&accState{}, InMemory)
}

func newAccumulator(state *accState, f Format) *Accumulator {
	return &Accumulator{n: newNode(), state: state, format: f}
}

type accDomain struct {
	a *Accumulator
}

func (d accDomain) nodeOf(c Config) *node {
	if a, ok := c.(*Accumulator); ok && a.state == d.a.state {
		return a.n
	}
	return nil
}

func (d accDomain) mutable(c Config) *node { return d.nodeOf(c) }
func (d accDomain) newSub() Config         { return newAccumulator(d.a.state, d.a.format) }

func (a *Accumulator) domain() accDomain {
	if a.state.consumed {
		panic(&UsageError{Op: "accumulator", Err: ErrConsumed})
	}
	return accDomain{a}
}

func (a *Accumulator) owner() Config      { return a.up }
func (a *Accumulator) setOwner(c Config) { a.up = c }

func (a *Accumulator) Get(p Path) (Value, bool) {
	return getAt(a.domain(), a, p)
}

func (a *Accumulator) Contains(p Path) bool {
	_, ok := a.Get(p)
	return ok
}

func (a *Accumulator) Set(p Path, v Value) (Value, error) {
	d := a.domain()
	return setAt(d, a, p, adopt(d, v), true)
}

func (a *Accumulator) Add(p Path, v Value) (bool, error) {
	d := a.domain()
	return addAt(d, a, p, adopt(d, v))
}

func (a *Accumulator) Merge(p Path, v Value) (Value, error) {
	d := a.domain()
	return setAt(d, a, p, adopt(d, v), false)
}

func (a *Accumulator) Remove(p Path) Value {
	return removeAt(a.domain(), a, p)
}

func (a *Accumulator) Size() int {
	a.domain()
	return a.n.size()
}

func (a *Accumulator) IsEmpty() bool { return a.Size() == 0 }

func (a *Accumulator) Clear() {
	clearAt(a.domain(), a)
}

func (a *Accumulator) Iterator() Iterator {
	a.domain()
	return newKeyIterator(a.n,
		func(key string) (Entry, bool) {
			a.domain()
			return entryOf(a.n, key)
		},
		func(key string) {
			deleteKey(a.domain(), a, key)
		})
}

func (a *Accumulator) CreateSubConfig() Config {
	return a.domain().newSub()
}

func (a *Accumulator) Format() Format { return a.format }

func (a *Accumulator) GetComment(p Path) (string, bool) {
	return getCommentAt(a.domain(), a, p)
}

func (a *Accumulator) ContainsComment(p Path) bool {
	_, ok := a.GetComment(p)
	return ok
}

func (a *Accumulator) SetComment(p Path, comment string) (string, error) {
	return setCommentAt(a.domain(), a, p, comment)
}

func (a *Accumulator) RemoveComment(p Path) (string, bool) {
	return removeCommentAt(a.domain(), a, p)
}

func (a *Accumulator) ClearComments() {
	clearCommentsAt(a.domain(), a)
}

// IsConsumed reports whether the content was moved into a Stamped.
func (a *Accumulator) IsConsumed() bool {
	return a.state.consumed
}
