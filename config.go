// FILE: lixenwraith/cfgtree/config.go
package cfgtree

import "iter"

// Config is a path-addressed tree of values with per-entry comments.
// Every method panics with a *UsageError when given an empty path.
//
// Reads through a value that is not a config report the entry as absent.
// Sub-configs stored in a Config are owned by it; a sub-config from another
// implementation or locking domain is deep copied on insertion.
type Config interface {
	// Get returns the value at p, or false when absent.
	Get(p Path) (Value, bool)
	Contains(p Path) bool

	// Set stores v at p and returns the previous value, absent if there was none.
	// Missing intermediate levels are created. A non-config value in the way is
	// replaced by a new sub-config, losing that value.
	Set(p Path, v Value) (Value, error)

	// Add stores v at p only if p is absent and reports whether it did.
	// A non-config value in the way fails with ErrIncompatibleLevel and nothing changes.
	Add(p Path, v Value) (bool, error)

	// Remove deletes the entry at p together with its comment and, for a
	// sub-config, its whole subtree. Returns the removed value.
	Remove(p Path) Value

	// Size returns the number of direct entries.
	Size() int
	IsEmpty() bool
	// Clear removes all entries and comments.
	Clear()
	// Iterator walks the direct entries in insertion order.
	Iterator() Iterator
	// CreateSubConfig returns an empty config of the same kind and format.
	CreateSubConfig() Config
	Format() Format

	GetComment(p Path) (string, bool)
	ContainsComment(p Path) bool
	// SetComment attaches a comment to an existing entry and returns the previous one.
	SetComment(p Path, comment string) (string, error)
	RemoveComment(p Path) (string, bool)
	// ClearComments removes every comment of this level and below.
	ClearComments()
}

// Entry is one direct child of a config.
type Entry struct {
	Key        string
	Value      Value
	Comment    string
	HasComment bool
}

// Iterator walks the direct entries of a config.
type Iterator interface {
	HasNext() bool
	// Next returns the next entry. Calling it when HasNext is false panics.
	Next() Entry
	// Remove deletes the entry last returned by Next. Calling it twice without
	// a Next in between panics.
	Remove()
}

// All ranges over the direct entries of c.
func All(c Config) iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		it := c.Iterator()
		for it.HasNext() {
			e := it.Next()
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Entries collects the direct entries of c.
func Entries(c Config) []Entry {
	var out []Entry
	it := c.Iterator()
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}

// Keys returns the direct keys of c in iteration order.
func Keys(c Config) []string {
	var out []string
	for k := range All(c) {
		out = append(out, k)
	}
	return out
}

// Format describes what a configuration format can represent.
type Format struct {
	Name     string
	Comments bool
	Kinds    KindSet
}

// SupportsKind reports whether values of kind k can be represented.
func (f Format) SupportsKind(k Kind) bool {
	return f.Kinds.Has(k)
}

// InMemory supports everything and is the format of configs not bound to a file format.
var InMemory = Format{Name: "memory", Comments: true, Kinds: AllKinds}
