// FILE: lixenwraith/cfgtree/path.go
package cfgtree

import "strings"

// Path addresses an entry by its key segments, outermost first.
// The segment form can name keys that contain dots.
type Path []string

// ParsePath splits a dotted path. The empty string yields an empty Path.
func ParsePath(dotted string) Path {
	if dotted == "" {
		return Path{}
	}
	return Path(strings.Split(dotted, "."))
}

// P is shorthand for ParsePath.
func P(dotted string) Path {
	return ParsePath(dotted)
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

func (p Path) IsEmpty() bool {
	return len(p) == 0
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Last returns the leaf key.
func (p Path) Last() string {
	return p[len(p)-1]
}

// Child returns a new path extended by key.
func (p Path) Child(key string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = key
	return out
}

// HasPrefix reports whether every segment of prefix leads p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if p[i] != seg {
			return false
		}
	}
	return true
}

func (p Path) Equal(o Path) bool {
	return len(p) == len(o) && p.HasPrefix(o)
}

// mustPath panics with a UsageError on an empty path.
func mustPath(op string, p Path) {
	if len(p) == 0 {
		panic(&UsageError{Op: op, Err: ErrEmptyPath})
	}
}
