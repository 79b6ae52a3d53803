// FILE: lixenwraith/cfgtree/errors.go
package cfgtree

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPath is carried by the UsageError panic of any path operation given no segments.
	ErrEmptyPath = errors.New("empty path")
	// ErrIncompatibleLevel reports a non-config value where a sub-config is needed.
	ErrIncompatibleLevel = errors.New("incompatible intermediary level")
	// ErrNoEntry reports a comment operation on a path without a value.
	ErrNoEntry           = errors.New("no entry at path")
	ErrIteratorExhausted = errors.New("iterator exhausted")
	ErrIteratorState     = errors.New("remove without a preceding next")
	ErrAbsentValue       = errors.New("absent value cannot be stored")
	ErrConsumed          = errors.New("accumulator already consumed")
	ErrUnsupportedValue  = errors.New("unsupported value type")
	ErrUnsupportedKind   = errors.New("value kind not supported by format")
	ErrConfigNotFound    = errors.New("configuration file not found")
)

// UsageError is the panic payload for programming errors such as an empty path
// or misuse of an iterator.
type UsageError struct {
	Op   string
	Path Path
	Err  error
}

func (e *UsageError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("cfgtree: %s %q: %v", e.Op, e.Path.String(), e.Err)
	}
	return fmt.Sprintf("cfgtree: %s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// levelError wraps ErrIncompatibleLevel with the offending path prefix.
func levelError(p Path, depth int) error {
	return fmt.Errorf("%w: %q holds a value, not a config", ErrIncompatibleLevel, p[:depth+1].String())
}
