// FILE: lixenwraith/cfgtree/tree.go
package cfgtree

// Tree is the plain, single-threaded Config. Sub-configs it creates are Trees.
type Tree struct {
	n      *node
	format Format
	up     Config
}

var _ Config = (*Tree)(nil)

// NewTree creates an empty in-memory tree.
func NewTree() *Tree {
	return NewTreeWithFormat(InMemory)
}

// NewTreeWithFormat creates an empty tree bound to a format.
func NewTreeWithFormat(f Format) *Tree {
	return &Tree{n: newNode(), format: f}
}

// CopyOf deep copies any config into a new Tree with the same format.
func CopyOf(c Config) *Tree {
	t := NewTreeWithFormat(c.Format())
	copyInto(treeDomain{t.format}, t, c)
	return t
}

// treeDomain accepts any *Tree as native.
type treeDomain struct {
	format Format
}

func (treeDomain) nodeOf(c Config) *node {
	if t, ok := c.(*Tree); ok {
		return t.n
	}
	return nil
}

func (d treeDomain) mutable(c Config) *node { return d.nodeOf(c) }
func (d treeDomain) newSub() Config         { return NewTreeWithFormat(d.format) }

func (t *Tree) domain() treeDomain { return treeDomain{t.format} }

func (t *Tree) owner() Config      { return t.up }
func (t *Tree) setOwner(c Config) { t.up = c }

func (t *Tree) Get(p Path) (Value, bool) {
	return getAt(t.domain(), t, p)
}

func (t *Tree) Contains(p Path) bool {
	_, ok := t.Get(p)
	return ok
}

func (t *Tree) Set(p Path, v Value) (Value, error) {
	d := t.domain()
	return setAt(d, t, p, adopt(d, v), true)
}

func (t *Tree) Add(p Path, v Value) (bool, error) {
	d := t.domain()
	return addAt(d, t, p, adopt(d, v))
}

func (t *Tree) Remove(p Path) Value {
	return removeAt(t.domain(), t, p)
}

func (t *Tree) Size() int     { return t.n.size() }
func (t *Tree) IsEmpty() bool { return t.n.size() == 0 }
func (t *Tree) Clear()        { clearAt(t.domain(), t) }

// Iterator reflects removals made after its creation but not additions.
func (t *Tree) Iterator() Iterator {
	return newKeyIterator(t.n,
		func(key string) (Entry, bool) { return entryOf(t.n, key) },
		func(key string) { deleteKey(t.domain(), t, key) })
}

func (t *Tree) CreateSubConfig() Config { return NewTreeWithFormat(t.format) }
func (t *Tree) Format() Format          { return t.format }

func (t *Tree) GetComment(p Path) (string, bool) {
	return getCommentAt(t.domain(), t, p)
}

func (t *Tree) ContainsComment(p Path) bool {
	_, ok := t.GetComment(p)
	return ok
}

func (t *Tree) SetComment(p Path, comment string) (string, error) {
	return setCommentAt(t.domain(), t, p, comment)
}

func (t *Tree) RemoveComment(p Path) (string, bool) {
	return removeCommentAt(t.domain(), t, p)
}

func (t *Tree) ClearComments() {
	clearCommentsAt(t.domain(), t)
}

// Merge stores v at p like Set but fails with ErrIncompatibleLevel instead of
// replacing a non-config value in the way.
func (t *Tree) Merge(p Path, v Value) (Value, error) {
	d := t.domain()
	return setAt(d, t, p, adopt(d, v), false)
}
