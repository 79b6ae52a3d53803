// FILE: lixenwraith/cfgtree/equal.go
package cfgtree

// Equal reports whether a and b hold the same keys with equal values at every
// level. Comments, formats and concrete implementations are ignored.
func Equal(a, b Config) bool {
	if a == nil || b == nil {
		return a == b
	}
	ea := Entries(a)
	if len(ea) != b.Size() {
		return false
	}
	for _, e := range ea {
		bv, ok := b.Get(Path{e.Key})
		if !ok || !e.Value.Equal(bv) {
			return false
		}
	}
	return true
}

// Copy deep copies the entries and comments of src into dst, replacing
// entries with the same keys. Sub-configs are rebuilt with dst.CreateSubConfig.
func Copy(dst, src Config) error {
	for _, e := range Entries(src) {
		p := Path{e.Key}
		if _, err := dst.Set(p, cloneFor(dst, e.Value)); err != nil {
			return err
		}
		if e.HasComment {
			if _, err := dst.SetComment(p, e.Comment); err != nil {
				return err
			}
		}
	}
	return nil
}

func cloneFor(dst Config, v Value) Value {
	return v.mapConfigs(func(c Config) Config {
		sub := dst.CreateSubConfig()
		Copy(sub, c)
		return sub
	})
}
