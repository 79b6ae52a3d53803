// FILE: lixenwraith/cfgtree/stamped.go
package cfgtree

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// MaxOptimisticRetries bounds the lock-free attempts of a Stamped read before
// it falls back to the read lock.
const MaxOptimisticRetries = 8

// stampedShared is the state common to a Stamped root and its sub-configs.
// seq is a sequence lock: odd while a writer publishes snapshots.
type stampedShared struct {
	mu  sync.RWMutex
	seq atomic.Uint64
}

// Stamped is a Config tuned for read-mostly workloads. Each level is an
// immutable snapshot behind an atomic pointer. Writers serialize on a lock,
// copy the levels they touch and publish them between two sequence increments.
// Readers load snapshots without locking and validate the sequence afterwards,
// retrying a bounded number of times before taking the read lock.
//
// Iterators walk the level snapshot taken at creation.
type Stamped struct {
	sh     *stampedShared
	snap   atomic.Pointer[node]
	format Format
	// up is only touched by writers.
	up Config
}

var _ Config = (*Stamped)(nil)

func NewStamped() *Stamped {
	return NewStampedWithFormat(InMemory)
}

func NewStampedWithFormat(f Format) *Stamped {
	return newStampedLevel(&stampedShared{}, f, newNode())
}

func newStampedLevel(sh *stampedShared, f Format, n *node) *Stamped {
	s := &Stamped{sh: sh, format: f}
	s.snap.Store(n)
	return s
}

func (s *Stamped) owner() Config      { return s.up }
func (s *Stamped) setOwner(c Config) { s.up = c }

// Stamp returns the number of committed mutations of the whole tree.
func (s *Stamped) Stamp() uint64 {
	return s.sh.seq.Load() / 2
}

func (s *Stamped) native(c Config) bool {
	o, ok := c.(*Stamped)
	return ok && o.sh == s.sh
}

// stampedRead resolves configs to their published snapshots.
type stampedRead struct {
	sh *stampedShared
}

func (d stampedRead) nodeOf(c Config) *node {
	if o, ok := c.(*Stamped); ok && o.sh == d.sh {
		return o.snap.Load()
	}
	return nil
}

func (d stampedRead) mutable(Config) *node {
	panic("cfgtree: write through a read-only stamped domain")
}

func (d stampedRead) newSub() Config {
	panic("cfgtree: write through a read-only stamped domain")
}

// stampedTx collects private copies of the levels changed by one write.
type stampedTx struct {
	sh     *stampedShared
	format Format
	work   map[*Stamped]*node
}

func (tx *stampedTx) nodeOf(c Config) *node {
	o, ok := c.(*Stamped)
	if !ok || o.sh != tx.sh {
		return nil
	}
	if w, ok := tx.work[o]; ok {
		return w
	}
	return o.snap.Load()
}

func (tx *stampedTx) mutable(c Config) *node {
	o := c.(*Stamped)
	if w, ok := tx.work[o]; ok {
		return w
	}
	w := o.snap.Load().clone()
	tx.work[o] = w
	return w
}

func (tx *stampedTx) newSub() Config {
	n := newNode()
	sub := newStampedLevel(tx.sh, tx.format, n)
	tx.work[sub] = n
	return sub
}

// commit publishes the changed levels as one step for readers.
func (tx *stampedTx) commit() {
	if len(tx.work) == 0 {
		return
	}
	tx.sh.seq.Add(1)
	for level, n := range tx.work {
		level.snap.Store(n)
	}
	tx.sh.seq.Add(1)
}

func (s *Stamped) write(fn func(tx *stampedTx)) {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	tx := &stampedTx{sh: s.sh, format: s.format, work: make(map[*Stamped]*node)}
	fn(tx)
	tx.commit()
}

// read runs fn until it observes no concurrent publication. fn must only
// assign its results, since it may run more than once.
func (s *Stamped) read(fn func(d stampedRead)) {
	d := stampedRead{s.sh}
	for i := 0; i < MaxOptimisticRetries; i++ {
		seq := s.sh.seq.Load()
		if seq&1 == 0 {
			fn(d)
			if s.sh.seq.Load() == seq {
				return
			}
		}
		runtime.Gosched()
	}
	s.sh.mu.RLock()
	defer s.sh.mu.RUnlock()
	fn(d)
}

func (s *Stamped) Get(p Path) (v Value, ok bool) {
	mustPath("get", p)
	s.read(func(d stampedRead) { v, ok = getAt(d, s, p) })
	return v, ok
}

func (s *Stamped) Contains(p Path) bool {
	_, ok := s.Get(p)
	return ok
}

func (s *Stamped) Set(p Path, v Value) (prev Value, err error) {
	mustPath("set", p)
	v = detach(v, s.native)
	s.write(func(tx *stampedTx) { prev, err = setAt(tx, s, p, adopt(tx, v), true) })
	return prev, err
}

func (s *Stamped) Add(p Path, v Value) (added bool, err error) {
	mustPath("add", p)
	v = detach(v, s.native)
	s.write(func(tx *stampedTx) { added, err = addAt(tx, s, p, adopt(tx, v)) })
	return added, err
}

// Merge is Set that fails with ErrIncompatibleLevel instead of replacing a
// non-config value in the way.
func (s *Stamped) Merge(p Path, v Value) (prev Value, err error) {
	mustPath("merge", p)
	v = detach(v, s.native)
	s.write(func(tx *stampedTx) { prev, err = setAt(tx, s, p, adopt(tx, v), false) })
	return prev, err
}

func (s *Stamped) Remove(p Path) (prev Value) {
	mustPath("remove", p)
	s.write(func(tx *stampedTx) { prev = removeAt(tx, s, p) })
	return prev
}

func (s *Stamped) Size() int     { return s.snap.Load().size() }
func (s *Stamped) IsEmpty() bool { return s.Size() == 0 }

func (s *Stamped) Clear() {
	s.write(func(tx *stampedTx) { clearAt(tx, s) })
}

func (s *Stamped) Iterator() Iterator {
	n := s.snap.Load()
	return newKeyIterator(n,
		func(key string) (Entry, bool) { return entryOf(n, key) },
		func(key string) { s.Remove(Path{key}) })
}

func (s *Stamped) CreateSubConfig() Config {
	return newStampedLevel(s.sh, s.format, newNode())
}

func (s *Stamped) Format() Format { return s.format }

func (s *Stamped) GetComment(p Path) (c string, ok bool) {
	mustPath("get comment", p)
	s.read(func(d stampedRead) { c, ok = getCommentAt(d, s, p) })
	return c, ok
}

func (s *Stamped) ContainsComment(p Path) bool {
	_, ok := s.GetComment(p)
	return ok
}

func (s *Stamped) SetComment(p Path, comment string) (prev string, err error) {
	mustPath("set comment", p)
	s.write(func(tx *stampedTx) { prev, err = setCommentAt(tx, s, p, comment) })
	return prev, err
}

func (s *Stamped) RemoveComment(p Path) (prev string, ok bool) {
	mustPath("remove comment", p)
	s.write(func(tx *stampedTx) { prev, ok = removeCommentAt(tx, s, p) })
	return prev, ok
}

func (s *Stamped) ClearComments() {
	s.write(func(tx *stampedTx) { clearCommentsAt(tx, s) })
}

// PutAll sets every direct entry of src, with its comment, in one atomic step.
func (s *Stamped) PutAll(src Config) {
	entries := Entries(src)
	for i := range entries {
		entries[i].Value = detach(entries[i].Value, s.native)
	}
	s.write(func(tx *stampedTx) {
		for _, e := range entries {
			p := Path{e.Key}
			setAt(tx, s, p, adopt(tx, e.Value), true)
			if e.HasComment {
				setCommentAt(tx, s, p, e.Comment)
			}
		}
	})
}

// RemoveAll removes every path in one atomic step and returns how many existed.
func (s *Stamped) RemoveAll(paths ...Path) int {
	for _, p := range paths {
		mustPath("remove", p)
	}
	removed := 0
	s.write(func(tx *stampedTx) {
		for _, p := range paths {
			if removeAt(tx, s, p).IsValid() {
				removed++
			}
		}
	})
	return removed
}

// NewAccumulator returns an empty accumulator with the format of s.
func (s *Stamped) NewAccumulator() *Accumulator {
	return newAccumulator(&accState{}, s.format)
}

// ReplaceContentBy discards the content of s and adopts the content of src.
// Readers see either the old or the new content, never a mix. An *Accumulator
// is consumed and its nodes are moved; any other config is deep copied first.
// Sub-configs previously obtained from s keep their old content and are detached.
func (s *Stamped) ReplaceContentBy(src Config) {
	var root *node
	if a, ok := src.(*Accumulator); ok {
		root = s.moveAccumulator(a)
	} else {
		root = s.moveTree(s, CopyOf(src))
	}
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.publish(root)
}

// publish swaps in a new root level. The caller holds the write lock.
func (s *Stamped) publish(root *node) {
	rd := stampedRead{s.sh}
	for _, v := range s.snap.Load().values {
		release(rd, v)
	}
	s.sh.seq.Add(1)
	s.snap.Store(root)
	s.sh.seq.Add(1)
}

// BulkRead runs fn while writers are excluded, so every read made by fn
// through s observes the same state. fn must not write to s.
func (s *Stamped) BulkRead(fn func(c Config)) {
	s.sh.mu.RLock()
	defer s.sh.mu.RUnlock()
	fn(s)
}

// BulkUpdate hands fn a private copy of the content and publishes the result
// atomically if fn returns nil. Writers are excluded meanwhile; fn must not use s.
func (s *Stamped) BulkUpdate(fn func(acc *Accumulator) error) error {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()

	acc := s.NewAccumulator()
	copyInto(acc.domain(), acc, s)
	if err := fn(acc); err != nil {
		acc.state.consumed = true
		return err
	}
	s.publish(s.moveAccumulator(acc))
	return nil
}

// moveAccumulator re-homes the nodes of a into new stamped levels and consumes a.
func (s *Stamped) moveAccumulator(a *Accumulator) *node {
	a.domain()
	state := a.state
	n := s.moveNodes(s, a.n, func(c Config) (*node, bool) {
		if sub, ok := c.(*Accumulator); ok && sub.state == state {
			return sub.n, true
		}
		return nil, false
	})
	state.consumed = true
	return n
}

func (s *Stamped) moveTree(parent *Stamped, t *Tree) *node {
	return s.moveNodes(parent, t.n, func(c Config) (*node, bool) {
		if sub, ok := c.(*Tree); ok {
			return sub.n, true
		}
		return nil, false
	})
}

// moveNodes rewrites the values of n in place so that every sub-config whose
// node owned yields becomes a stamped level over that same node, owned by parent.
func (s *Stamped) moveNodes(parent *Stamped, n *node, owned func(Config) (*node, bool)) *node {
	for key, v := range n.values {
		if !v.hasConfigs() {
			continue
		}
		n.values[key] = v.mapConfigs(func(c Config) Config {
			level := newStampedLevel(s.sh, s.format, nil)
			level.up = parent
			sub, ok := owned(c)
			if !ok {
				level.snap.Store(s.moveTree(level, CopyOf(c)))
			} else {
				level.snap.Store(s.moveNodes(level, sub, owned))
			}
			return level
		})
	}
	return n
}
