// FILE: lixenwraith/cfgtree/mode.go
package cfgtree

import (
	"errors"
	"fmt"
	"strings"
)

// ParsingMode controls how parsed entries combine with existing content.
type ParsingMode uint8

const (
	// ModeReplace clears the destination first.
	ModeReplace ParsingMode = iota
	// ModeMerge overwrites existing entries by key.
	ModeMerge
	// ModeAdd only fills absent entries.
	ModeAdd
)

func (m ParsingMode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeMerge:
		return "merge"
	case ModeAdd:
		return "add"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode accepts the names returned by String, case insensitively.
func ParseMode(s string) (ParsingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replace":
		return ModeReplace, nil
	case "merge":
		return ModeMerge, nil
	case "add":
		return ModeAdd, nil
	}
	return 0, fmt.Errorf("invalid parsing mode %q, expected replace, merge or add", s)
}

// Prepare readies dst before entries are put.
func (m ParsingMode) Prepare(dst Config) {
	if m == ModeReplace {
		dst.Clear()
	}
}

// Put stores v at p according to the mode and reports whether it did.
// In merge mode a non-config value on the way to p is reported as
// ErrIncompatibleLevel rather than overwritten. In add mode existing entries
// and conflicting levels are left untouched.
func (m ParsingMode) Put(dst Config, p Path, v Value) (bool, error) {
	switch m {
	case ModeMerge:
		if mg, ok := dst.(interface {
			Merge(Path, Value) (Value, error)
		}); ok {
			_, err := mg.Merge(p, v)
			return err == nil, err
		}
		for i := 1; i < len(p); i++ {
			if lv, ok := dst.Get(p[:i]); ok && !lv.IsConfig() {
				return false, levelError(p, i-1)
			}
		}
		_, err := dst.Set(p, v)
		return err == nil, err
	case ModeAdd:
		added, err := dst.Add(p, v)
		if errors.Is(err, ErrIncompatibleLevel) {
			return false, nil
		}
		return added, err
	default:
		_, err := dst.Set(p, v)
		return err == nil, err
	}
}

// Transfer puts the direct entries of src into dst according to mode,
// carrying their comments along. In replace mode a dst that can swap its
// content in one step, such as Stamped or Synchronized, does so.
func Transfer(src, dst Config, mode ParsingMode) error {
	if mode == ModeReplace {
		if r, ok := dst.(interface{ ReplaceContentBy(Config) }); ok {
			r.ReplaceContentBy(src)
			return nil
		}
	}
	mode.Prepare(dst)
	for _, e := range Entries(src) {
		p := Path{e.Key}
		put, err := mode.Put(dst, p, e.Value)
		if err != nil {
			return fmt.Errorf("failed to store key %q: %w", e.Key, err)
		}
		if put && e.HasComment {
			if _, err := dst.SetComment(p, e.Comment); err != nil {
				return fmt.Errorf("failed to store comment of %q: %w", e.Key, err)
			}
		}
	}
	return nil
}
