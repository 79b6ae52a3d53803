// FILE: lixenwraith/cfgtree/iterator.go
package cfgtree

// keyIterator walks a key list captured at creation. Entries removed after
// the capture are skipped; entries added after it are not visited.
type keyIterator struct {
	keys      []string
	pos       int
	pending   *Entry
	last      string
	canRemove bool
	read      func(key string) (Entry, bool)
	remove    func(key string)
}

func newKeyIterator(n *node, read func(string) (Entry, bool), remove func(string)) *keyIterator {
	keys := make([]string, len(n.keys))
	copy(keys, n.keys)
	return &keyIterator{keys: keys, read: read, remove: remove}
}

func (it *keyIterator) HasNext() bool {
	for it.pending == nil && it.pos < len(it.keys) {
		key := it.keys[it.pos]
		it.pos++
		if e, ok := it.read(key); ok {
			it.pending = &e
		}
	}
	return it.pending != nil
}

func (it *keyIterator) Next() Entry {
	if !it.HasNext() {
		panic(&UsageError{Op: "iterate", Err: ErrIteratorExhausted})
	}
	e := *it.pending
	it.pending = nil
	it.last = e.Key
	it.canRemove = true
	return e
}

func (it *keyIterator) Remove() {
	if !it.canRemove {
		panic(&UsageError{Op: "iterator remove", Err: ErrIteratorState})
	}
	it.canRemove = false
	it.remove(it.last)
}

// entryOf reads one direct entry of n.
func entryOf(n *node, key string) (Entry, bool) {
	v, ok := n.get(key)
	if !ok {
		return Entry{}, false
	}
	c, has := n.comment(key)
	return Entry{Key: key, Value: v, Comment: c, HasComment: has}, true
}
