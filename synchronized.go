// FILE: lixenwraith/cfgtree/synchronized.go
package cfgtree

import "sync"

// Synchronized is a Config guarded by one mutex. Sub-configs it creates share
// the mutex of their root, so every operation anywhere in the tree is serialized.
//
// Iterators capture the key list at creation and read each value under the lock
// as they advance; they never hold the lock between calls.
type Synchronized struct {
	mu     *sync.Mutex
	n      *node
	format Format
	up     Config
}

var _ Config = (*Synchronized)(nil)

func NewSynchronized() *Synchronized {
	return NewSynchronizedWithFormat(InMemory)
}

func NewSynchronizedWithFormat(f Format) *Synchronized {
	return &Synchronized{mu: &sync.Mutex{}, n: newNode(), format: f}
}

type syncDomain struct {
	mu     *sync.Mutex
	format Format
}

func (d syncDomain) nodeOf(c Config) *node {
	switch s := c.(type) {
	case *Synchronized:
		if s.mu == d.mu {
			return s.n
		}
	case *syncView:
		if s.s.mu == d.mu {
			return s.s.n
		}
	}
	return nil
}

func (d syncDomain) mutable(c Config) *node { return d.nodeOf(c) }

func (d syncDomain) newSub() Config {
	return &Synchronized{mu: d.mu, n: newNode(), format: d.format}
}

func (s *Synchronized) domain() syncDomain { return syncDomain{s.mu, s.format} }

// owner and setOwner are called with the lock held.
func (s *Synchronized) owner() Config      { return s.up }
func (s *Synchronized) setOwner(c Config) { s.up = c }

// native reports whether c can be stored without copying.
func (s *Synchronized) native(c Config) bool {
	return s.domain().nodeOf(c) != nil
}

// detach copies configs from other locking domains before our lock is taken,
// so no foreign lock is ever acquired while holding ours.
func detach(v Value, native func(Config) bool) Value {
	if !v.hasConfigs() {
		return v
	}
	return v.mapConfigs(func(c Config) Config {
		if native(c) {
			return c
		}
		return CopyOf(c)
	})
}

func (s *Synchronized) Get(p Path) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getAt(s.domain(), s, p)
}

func (s *Synchronized) Contains(p Path) bool {
	_, ok := s.Get(p)
	return ok
}

func (s *Synchronized) Set(p Path, v Value) (Value, error) {
	v = detach(v, s.native)
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domain()
	return setAt(d, s, p, unview(adopt(d, v)), true)
}

func (s *Synchronized) Add(p Path, v Value) (bool, error) {
	v = detach(v, s.native)
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domain()
	return addAt(d, s, p, unview(adopt(d, v)))
}

func (s *Synchronized) Remove(p Path) Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeAt(s.domain(), s, p)
}

func (s *Synchronized) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n.size()
}

func (s *Synchronized) IsEmpty() bool { return s.Size() == 0 }

func (s *Synchronized) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clearAt(s.domain(), s)
}

func (s *Synchronized) Iterator() Iterator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newKeyIterator(s.n,
		func(key string) (Entry, bool) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return entryOf(s.n, key)
		},
		func(key string) {
			s.mu.Lock()
			defer s.mu.Unlock()
			deleteKey(s.domain(), s, key)
		})
}

func (s *Synchronized) CreateSubConfig() Config {
	return s.domain().newSub()
}

func (s *Synchronized) Format() Format { return s.format }

func (s *Synchronized) GetComment(p Path) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getCommentAt(s.domain(), s, p)
}

func (s *Synchronized) ContainsComment(p Path) bool {
	_, ok := s.GetComment(p)
	return ok
}

func (s *Synchronized) SetComment(p Path, comment string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setCommentAt(s.domain(), s, p, comment)
}

func (s *Synchronized) RemoveComment(p Path) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeCommentAt(s.domain(), s, p)
}

func (s *Synchronized) ClearComments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clearCommentsAt(s.domain(), s)
}

// BulkRead runs fn with the lock held. fn receives an unlocked view of s and
// must not retain it or call methods of s.
func (s *Synchronized) BulkRead(fn func(view Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&syncView{s})
}

// BulkUpdate runs fn with the lock held, making all of its changes one atomic
// step for other goroutines. The same restrictions as BulkRead apply.
func (s *Synchronized) BulkUpdate(fn func(view Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&syncView{s})
}

// syncView is the lock-free face of a Synchronized used inside bulk operations.
// Sub-configs read through it are views as well.
type syncView struct {
	s *Synchronized
}

func viewValue(v Value) Value {
	if !v.hasConfigs() {
		return v
	}
	return v.mapConfigs(func(c Config) Config {
		if s, ok := c.(*Synchronized); ok {
			return &syncView{s}
		}
		return c
	})
}

// unview maps views back to their configs before storing.
func unview(v Value) Value {
	if !v.hasConfigs() {
		return v
	}
	return v.mapConfigs(func(c Config) Config {
		if sv, ok := c.(*syncView); ok {
			return sv.s
		}
		return c
	})
}

func (v *syncView) Get(p Path) (Value, bool) {
	val, ok := getAt(v.s.domain(), v.s, p)
	return viewValue(val), ok
}

func (v *syncView) Contains(p Path) bool {
	_, ok := getAt(v.s.domain(), v.s, p)
	return ok
}

func (v *syncView) Set(p Path, val Value) (Value, error) {
	d := v.s.domain()
	prev, err := setAt(d, v.s, p, unview(adopt(d, val)), true)
	return viewValue(prev), err
}

func (v *syncView) Add(p Path, val Value) (bool, error) {
	d := v.s.domain()
	return addAt(d, v.s, p, unview(adopt(d, val)))
}

func (v *syncView) Remove(p Path) Value {
	return viewValue(removeAt(v.s.domain(), v.s, p))
}

func (v *syncView) Size() int     { return v.s.n.size() }
func (v *syncView) IsEmpty() bool { return v.s.n.size() == 0 }
func (v *syncView) Clear()        { clearAt(v.s.domain(), v.s) }

func (v *syncView) Iterator() Iterator {
	n := v.s.n
	return newKeyIterator(n,
		func(key string) (Entry, bool) {
			e, ok := entryOf(n, key)
			e.Value = viewValue(e.Value)
			return e, ok
		},
		func(key string) { deleteKey(v.s.domain(), v.s, key) })
}

func (v *syncView) CreateSubConfig() Config {
	return &syncView{v.s.domain().newSub().(*Synchronized)}
}

func (v *syncView) Format() Format { return v.s.format }

func (v *syncView) GetComment(p Path) (string, bool) {
	return getCommentAt(v.s.domain(), v.s, p)
}

func (v *syncView) ContainsComment(p Path) bool {
	_, ok := v.GetComment(p)
	return ok
}

func (v *syncView) SetComment(p Path, comment string) (string, error) {
	return setCommentAt(v.s.domain(), v.s, p, comment)
}

func (v *syncView) RemoveComment(p Path) (string, bool) {
	return removeCommentAt(v.s.domain(), v.s, p)
}

func (v *syncView) ClearComments() {
	clearCommentsAt(v.s.domain(), v.s)
}

// Merge is Set that fails with ErrIncompatibleLevel instead of replacing a
// non-config value in the way.
func (s *Synchronized) Merge(p Path, v Value) (Value, error) {
	v = detach(v, s.native)
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domain()
	return setAt(d, s, p, unview(adopt(d, v)), false)
}

// PutAll sets every direct entry of src, with its comment, in one atomic step.
func (s *Synchronized) PutAll(src Config) {
	entries := Entries(src)
	for i := range entries {
		entries[i].Value = detach(entries[i].Value, s.native)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domain()
	for _, e := range entries {
		p := Path{e.Key}
		setAt(d, s, p, unview(adopt(d, e.Value)), true)
		if e.HasComment {
			setCommentAt(d, s, p, e.Comment)
		}
	}
}

// RemoveAll removes every path in one atomic step and returns how many existed.
func (s *Synchronized) RemoveAll(paths ...Path) int {
	for _, p := range paths {
		mustPath("remove", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, p := range paths {
		if removeAt(s.domain(), s, p).IsValid() {
			removed++
		}
	}
	return removed
}

// ReplaceContentBy discards the content of s and adopts a deep copy of src.
// The copy is built before the lock is taken; other goroutines see either
// the old or the new content. Sub-configs previously obtained from s keep
// their old content and are detached.
func (s *Synchronized) ReplaceContentBy(src Config) {
	root := s.moveTree(s, CopyOf(src).n)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.n.values {
		release(s.domain(), v)
	}
	s.n = root
}

// moveTree rewrites the values of n in place so that every nested Tree
// becomes a level sharing the lock of s, owned by parent.
func (s *Synchronized) moveTree(parent *Synchronized, n *node) *node {
	for key, v := range n.values {
		if !v.hasConfigs() {
			continue
		}
		n.values[key] = v.mapConfigs(func(c Config) Config {
			level := &Synchronized{mu: s.mu, format: s.format, up: parent}
			level.n = s.moveTree(level, c.(*Tree).n)
			return level
		})
	}
	return n
}
