// FILE: lixenwraith/cfgtree/config_test.go
package cfgtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// variants lists every Config implementation; shared behavior runs against each
var variants = []struct {
	name string
	new  func() Config
}{
	{"Tree", func() Config { return NewTree() }},
	{"Synchronized", func() Config { return NewSynchronized() }},
	{"Stamped", func() Config { return NewStamped() }},
	{"Accumulator", func() Config { return NewAccumulator() }},
}

func forEachVariant(t *testing.T, fn func(t *testing.T, newConfig func() Config)) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			fn(t, v.new)
		})
	}
}

// assertUsagePanic runs fn and checks it panics with a *UsageError wrapping target
func assertUsagePanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("expected panic wrapping %v", target)
			return
		}
		ue, ok := r.(*UsageError)
		if !ok {
			t.Errorf("expected *UsageError, got %T: %v", r, r)
			return
		}
		assert.ErrorIs(t, ue, target)
	}()
	fn()
}

func mustSet(t *testing.T, c Config, path string, v Value) {
	t.Helper()
	_, err := c.Set(P(path), v)
	require.NoError(t, err)
}

func mustGet(t *testing.T, c Config, path string) Value {
	t.Helper()
	v, ok := c.Get(P(path))
	require.True(t, ok, "missing %s", path)
	return v
}

func mustSub(t *testing.T, c Config, path string) Config {
	t.Helper()
	sub, ok := mustGet(t, c, path).AsConfig()
	require.True(t, ok, "%s is not a config", path)
	return sub
}

// TestBasicOperations tests set, get, add, remove and size
func TestBasicOperations(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		c := newConfig()
		assert.True(t, c.IsEmpty())

		prev, err := c.Set(P("name"), String("alpha"))
		require.NoError(t, err)
		assert.False(t, prev.IsValid())

		prev, err = c.Set(P("name"), String("beta"))
		require.NoError(t, err)
		assert.True(t, prev.Equal(String("alpha")))

		added, err := c.Add(P("name"), String("gamma"))
		require.NoError(t, err)
		assert.False(t, added)

		added, err = c.Add(P("count"), Int(3))
		require.NoError(t, err)
		assert.True(t, added)

		mustSet(t, c, "ratio", Float(0.5))
		assert.Equal(t, 3, c.Size())
		assert.Equal(t, []string{"name", "count", "ratio"}, Keys(c))

		v, ok := c.Get(P("name"))
		require.True(t, ok)
		s, _ := v.AsString()
		assert.Equal(t, "beta", s)

		removed := c.Remove(P("count"))
		assert.True(t, removed.Equal(Int(3)))
		assert.False(t, c.Contains(P("count")))
		assert.False(t, c.Remove(P("count")).IsValid())
		assert.Equal(t, []string{"name", "ratio"}, Keys(c))

		c.Clear()
		assert.True(t, c.IsEmpty())
		assert.False(t, c.Contains(P("name")))
	})
}

// TestPathRoundTrip tests that every kind reads back as stored
func TestPathRoundTrip(t *testing.T) {
	values := []struct {
		name  string
		value Value
	}{
		{"Null", Null()},
		{"True", Bool(true)},
		{"False", Bool(false)},
		{"Int", Int(-42)},
		{"MaxInt", Int(math.MaxInt64)},
		{"Float", Float(3.25)},
		{"NaN", Float(math.NaN())},
		{"String", String("héllo")},
		{"Empty", String("")},
		{"List", List(Int(1), String("two"), List(Bool(true)))},
	}
	paths := []Path{P("k"), P("a.b"), P("x.y.z.w"), {"dotted.key"}}

	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		for _, tt := range values {
			for _, p := range paths {
				c := newConfig()
				_, err := c.Set(p, tt.value)
				require.NoError(t, err)
				got, ok := c.Get(p)
				require.True(t, ok, "%s at %v", tt.name, p)
				assert.True(t, got.Equal(tt.value), "%s at %v: got %s", tt.name, p, got)
				assert.True(t, c.Contains(p))
			}
		}
	})
}

// TestAutoVivification tests creation of intermediate levels on write
func TestAutoVivification(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		c := newConfig()
		_, err := c.Set(Path{"a", "b", "c"}, Int(7))
		require.NoError(t, err)

		assert.True(t, c.Contains(P("a")))
		assert.True(t, c.Contains(P("a.b")))

		a, ok := c.Get(P("a"))
		require.True(t, ok)
		assert.Equal(t, KindConfig, a.Kind())
		ab, ok := c.Get(P("a.b"))
		require.True(t, ok)
		assert.Equal(t, KindConfig, ab.Kind())

		sub, _ := ab.AsConfig()
		v, ok := sub.Get(P("c"))
		require.True(t, ok)
		assert.True(t, v.Equal(Int(7)))

		// Sub-configs are the same kind as their parent
		assert.IsType(t, newConfig(), sub)

		// Writes through a sub-config are visible from the root
		mustSet(t, sub, "d", Bool(true))
		assert.True(t, c.Contains(P("a.b.d")))

		added, err := c.Add(P("a.x.y"), String("new"))
		require.NoError(t, err)
		assert.True(t, added)
		assert.True(t, c.Contains(P("a.x")))
	})
}

// TestDottedKeys tests that the segment form names keys containing dots
func TestDottedKeys(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		c := newConfig()
		mustSet(t, c, "a.b", Int(1))
		_, err := c.Set(Path{"a.b"}, Int(2))
		require.NoError(t, err)

		v1, _ := c.Get(P("a.b"))
		v2, _ := c.Get(Path{"a.b"})
		assert.True(t, v1.Equal(Int(1)))
		assert.True(t, v2.Equal(Int(2)))
		assert.Equal(t, []string{"a", "a.b"}, Keys(c))
	})
}

// TestNonConfigLevels tests operations that meet a value where a level is expected
func TestNonConfigLevels(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		t.Run("ReadsReportAbsent", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a", String("test"))
			_, ok := c.Get(P("a.b.c"))
			assert.False(t, ok)
			assert.False(t, c.Contains(P("a.b")))
			assert.False(t, c.ContainsComment(P("a.b")))
			assert.False(t, c.Remove(P("a.b")).IsValid())
			_, removed := c.RemoveComment(P("a.b"))
			assert.False(t, removed)
		})

		t.Run("SetReplacesValue", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a", String("test"))
			prev, err := c.Set(P("a.b.c"), Int(1))
			require.NoError(t, err)
			assert.False(t, prev.IsValid())
			v, _ := c.Get(P("a"))
			assert.Equal(t, KindConfig, v.Kind())
			assert.True(t, c.Contains(P("a.b.c")))
		})

		t.Run("AddFailsWithoutChange", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a", String("test"))
			added, err := c.Add(P("a.b.c"), Int(1))
			assert.ErrorIs(t, err, ErrIncompatibleLevel)
			assert.False(t, added)
			v, _ := c.Get(P("a"))
			assert.True(t, v.Equal(String("test")))
			assert.Equal(t, 1, c.Size())
		})

		t.Run("AddFailsDeepWithoutChange", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "x.leaf", Int(1))
			_, err := c.Add(P("x.leaf.deeper.key"), Int(2))
			assert.ErrorIs(t, err, ErrIncompatibleLevel)
			sub, _ := c.Get(P("x"))
			cfg, _ := sub.AsConfig()
			assert.Equal(t, 1, cfg.Size())
		})

		t.Run("MergeModeFails", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a", String("test"))
			_, err := ModeMerge.Put(c, P("a.b"), Int(1))
			assert.ErrorIs(t, err, ErrIncompatibleLevel)
			v, _ := c.Get(P("a"))
			assert.True(t, v.Equal(String("test")))
		})

		t.Run("SetCommentFails", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a", String("test"))
			_, err := c.SetComment(P("a.b"), "nope")
			assert.ErrorIs(t, err, ErrIncompatibleLevel)
		})
	})
}

// TestEmptyPath tests that every path operation rejects an empty path
func TestEmptyPath(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		c := newConfig()
		ops := map[string]func(){
			"Get":             func() { c.Get(Path{}) },
			"Contains":        func() { c.Contains(nil) },
			"Set":             func() { c.Set(P(""), Int(1)) },
			"Add":             func() { c.Add(Path{}, Int(1)) },
			"Remove":          func() { c.Remove(Path{}) },
			"GetComment":      func() { c.GetComment(Path{}) },
			"ContainsComment": func() { c.ContainsComment(Path{}) },
			"SetComment":      func() { c.SetComment(Path{}, "x") },
			"RemoveComment":   func() { c.RemoveComment(Path{}) },
		}
		for name, op := range ops {
			t.Run(name, func(t *testing.T) {
				assertUsagePanic(t, ErrEmptyPath, op)
			})
		}
	})
}

func TestAbsentValueRejected(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		c := newConfig()
		assertUsagePanic(t, ErrAbsentValue, func() { c.Set(P("a"), Value{}) })
		assertUsagePanic(t, ErrAbsentValue, func() { c.Add(P("a"), Value{}) })
		assert.True(t, c.IsEmpty())
	})
}

// TestComments tests comment storage and its coupling to values
func TestComments(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		t.Run("RequiresValue", func(t *testing.T) {
			c := newConfig()
			_, err := c.SetComment(P("missing"), "doc")
			assert.ErrorIs(t, err, ErrNoEntry)
			assert.False(t, c.ContainsComment(P("missing")))
		})

		t.Run("SetGetRemove", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "server.port", Int(80))
			prev, err := c.SetComment(P("server.port"), "listen port")
			require.NoError(t, err)
			assert.Equal(t, "", prev)

			prev, err = c.SetComment(P("server.port"), "tcp port")
			require.NoError(t, err)
			assert.Equal(t, "listen port", prev)

			got, ok := c.GetComment(P("server.port"))
			require.True(t, ok)
			assert.Equal(t, "tcp port", got)

			removed, ok := c.RemoveComment(P("server.port"))
			assert.True(t, ok)
			assert.Equal(t, "tcp port", removed)
			assert.False(t, c.ContainsComment(P("server.port")))
			assert.True(t, c.Contains(P("server.port")))
		})

		t.Run("RemoveCascades", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a.b", Int(1))
			_, err := c.SetComment(P("a.b"), "leaf")
			require.NoError(t, err)
			_, err = c.SetComment(P("a"), "table")
			require.NoError(t, err)

			c.Remove(P("a.b"))
			assert.False(t, c.ContainsComment(P("a.b")))
			assert.True(t, c.ContainsComment(P("a")))

			c.Remove(P("a"))
			assert.False(t, c.ContainsComment(P("a")))

			// A new value at the same path starts without a comment
			mustSet(t, c, "a.b", Int(2))
			assert.False(t, c.ContainsComment(P("a.b")))
		})

		t.Run("IteratorCarriesComments", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "x", Int(1))
			mustSet(t, c, "y", Int(2))
			c.SetComment(P("y"), "why")
			entries := Entries(c)
			require.Len(t, entries, 2)
			assert.False(t, entries[0].HasComment)
			assert.True(t, entries[1].HasComment)
			assert.Equal(t, "why", entries[1].Comment)
		})

		t.Run("ClearComments", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a.b.c", Int(1))
			mustSet(t, c, "d", Int(1))
			c.SetComment(P("a.b.c"), "deep")
			c.SetComment(P("d"), "top")
			c.ClearComments()
			assert.False(t, c.ContainsComment(P("a.b.c")))
			assert.False(t, c.ContainsComment(P("d")))
			assert.True(t, c.Contains(P("a.b.c")))
		})

		t.Run("ClearDropsComments", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "k", Int(1))
			c.SetComment(P("k"), "doc")
			c.Clear()
			mustSet(t, c, "k", Int(1))
			assert.False(t, c.ContainsComment(P("k")))
		})
	})
}

// TestIterator tests the iteration contract
func TestIterator(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		t.Run("InsertionOrder", func(t *testing.T) {
			c := newConfig()
			for _, k := range []string{"zeta", "alpha", "mid", "beta"} {
				mustSet(t, c, k, String(k))
			}
			mustSet(t, c, "alpha", String("again"))
			assert.Equal(t, []string{"zeta", "alpha", "mid", "beta"}, Keys(c))
		})

		t.Run("DirectChildrenOnly", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a.b.c", Int(1))
			mustSet(t, c, "d", Int(2))
			assert.Equal(t, []string{"a", "d"}, Keys(c))
		})

		t.Run("RemoveCurrent", func(t *testing.T) {
			c := newConfig()
			for _, k := range []string{"a", "b", "c"} {
				mustSet(t, c, k, String(k))
			}
			c.SetComment(P("b"), "gone with b")
			it := c.Iterator()
			for it.HasNext() {
				if e := it.Next(); e.Key == "b" {
					it.Remove()
				}
			}
			assert.Equal(t, []string{"a", "c"}, Keys(c))
			assert.False(t, c.ContainsComment(P("b")))
		})

		t.Run("DoubleRemovePanics", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a", Int(1))
			mustSet(t, c, "b", Int(2))
			it := c.Iterator()
			assertUsagePanic(t, ErrIteratorState, func() { it.Remove() })
			it.Next()
			it.Remove()
			assertUsagePanic(t, ErrIteratorState, func() { it.Remove() })
			it.Next()
			it.Remove()
			assert.True(t, c.IsEmpty())
		})

		t.Run("NextPastEndPanics", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "only", Int(1))
			it := c.Iterator()
			require.True(t, it.HasNext())
			it.Next()
			assert.False(t, it.HasNext())
			assertUsagePanic(t, ErrIteratorExhausted, func() { it.Next() })
		})

		t.Run("RangeOverAll", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a", Int(1))
			mustSet(t, c, "b", Int(2))
			mustSet(t, c, "c", Int(3))
			var sum int64
			for _, v := range All(c) {
				i, _ := v.AsInt()
				sum += i
				if sum >= 3 {
					break
				}
			}
			assert.Equal(t, int64(3), sum)
		})
	})
}

// TestForeignSubConfig tests that sub-configs from other implementations are copied in
func TestForeignSubConfig(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		c := newConfig()

		foreign := NewTree()
		mustSet(t, foreign, "x.y", Int(1))
		foreign.SetComment(P("x.y"), "kept")
		if _, isTree := c.(*Tree); isTree {
			foreign2 := NewSynchronized()
			mustSet(t, foreign2, "x.y", Int(1))
			foreign2.SetComment(P("x.y"), "kept")
			_, err := c.Set(P("sub"), Sub(foreign2))
			require.NoError(t, err)
		} else {
			_, err := c.Set(P("sub"), Sub(foreign))
			require.NoError(t, err)
		}

		v, ok := c.Get(P("sub"))
		require.True(t, ok)
		stored, _ := v.AsConfig()
		assert.IsType(t, newConfig(), stored)
		assert.True(t, c.Contains(P("sub.x.y")))
		got, _ := c.GetComment(P("sub.x.y"))
		assert.Equal(t, "kept", got)

		// Lists holding configs are adopted too
		_, err := c.Set(P("list"), List(Sub(foreign)))
		require.NoError(t, err)
		lv, _ := c.Get(P("list"))
		items, _ := lv.AsList()
		require.Len(t, items, 1)
		item, _ := items[0].AsConfig()
		assert.IsType(t, newConfig(), item)
	})
}

// TestSubConfigOwnership tests that a stored level belongs to one place only
func TestSubConfigOwnership(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		t.Run("SecondKeyGetsCopy", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a.x", Int(1))
			sub := mustSub(t, c, "a")
			mustSet(t, c, "b", Sub(sub))
			mustSet(t, c, "b.x", Int(2))

			assert.True(t, mustGet(t, c, "a.x").Equal(Int(1)))
			assert.True(t, mustGet(t, c, "b.x").Equal(Int(2)))

			// The handle still addresses the original level
			mustSet(t, sub, "y", Int(3))
			assert.True(t, c.Contains(P("a.y")))
			assert.False(t, c.Contains(P("b.y")))
		})

		t.Run("SameValueTwiceInList", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a.x", Int(1))
			sub := mustSub(t, c, "a")
			mustSet(t, c, "l", List(Sub(sub), Sub(sub)))
			mustSet(t, c, "a.x", Int(5))

			lv := mustGet(t, c, "l")
			items, _ := lv.AsList()
			require.Len(t, items, 2)
			first, _ := items[0].AsConfig()
			second, _ := items[1].AsConfig()
			mustSet(t, first, "x", Int(7))
			v, _ := second.Get(P("x"))
			assert.True(t, v.Equal(Int(1)))
		})

		t.Run("AncestorUnderDescendant", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a.x", Int(1))
			sub := mustSub(t, c, "a")
			_, err := sub.Set(P("loop"), Sub(c))
			require.NoError(t, err)

			assert.True(t, mustGet(t, c, "a.loop.a.x").Equal(Int(1)))
			assert.False(t, c.Contains(P("a.loop.a.loop")))

			// Walks over the whole tree terminate
			assert.True(t, Equal(c, CopyOf(c)))
			assert.NotNil(t, ToMap(c))
			c.ClearComments()

			_, err = sub.Set(P("self"), Sub(sub))
			require.NoError(t, err)
			assert.True(t, mustGet(t, c, "a.self.x").Equal(Int(1)))
			assert.False(t, c.Contains(P("a.self.self")))
		})

		t.Run("RemovedLevelMoves", func(t *testing.T) {
			c := newConfig()
			mustSet(t, c, "a.x", Int(1))
			prev := c.Remove(P("a"))
			sub, ok := prev.AsConfig()
			require.True(t, ok)

			mustSet(t, c, "b", Sub(sub))
			mustSet(t, c, "c", Sub(sub))
			mustSet(t, c, "c.x", Int(2))
			assert.True(t, mustGet(t, c, "b.x").Equal(Int(1)))
			assert.True(t, mustGet(t, c, "c.x").Equal(Int(2)))
		})
	})
}

// TestCreateSubConfig tests that created sub-configs match the parent
func TestCreateSubConfig(t *testing.T) {
	forEachVariant(t, func(t *testing.T, newConfig func() Config) {
		c := newConfig()
		sub := c.CreateSubConfig()
		assert.IsType(t, c, sub)
		assert.True(t, sub.IsEmpty())
		assert.Equal(t, c.Format(), sub.Format())

		mustSet(t, sub, "k", Int(1))
		_, err := c.Set(P("child"), Sub(sub))
		require.NoError(t, err)
		assert.True(t, c.Contains(P("child.k")))
	})
}

// TestEquality tests structural equality across implementations
func TestEquality(t *testing.T) {
	fill := func(c Config) {
		c.Set(P("a.b"), Int(1))
		c.Set(P("a.c"), List(String("x"), Float(2)))
		c.Set(P("d"), Null())
	}

	sync := NewSynchronized()
	stamped := NewStamped()
	fill(sync)
	fill(stamped)
	assert.True(t, Equal(sync, stamped))

	_, err := sync.SetComment(P("a.b"), "only on one side")
	require.NoError(t, err)
	assert.True(t, Equal(sync, stamped))
	assert.True(t, Equal(stamped, sync))

	stamped.Set(P("a.b"), Int(2))
	assert.False(t, Equal(sync, stamped))

	stamped.Set(P("a.b"), Int(1))
	stamped.Set(P("extra"), Bool(true))
	assert.False(t, Equal(sync, stamped))
	assert.False(t, Equal(stamped, sync))

	assert.False(t, Int(1).Equal(Float(1)))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(NewTree(), nil))
}

// TestCopy tests deep copying between implementations
func TestCopy(t *testing.T) {
	src := NewTree()
	mustSet(t, src, "a.b", Int(1))
	src.SetComment(P("a.b"), "doc")

	dst := NewStamped()
	require.NoError(t, Copy(dst, src))
	assert.True(t, Equal(src, dst))
	got, _ := dst.GetComment(P("a.b"))
	assert.Equal(t, "doc", got)

	// The copy is independent
	mustSet(t, src, "a.b", Int(2))
	v, _ := dst.Get(P("a.b"))
	assert.True(t, v.Equal(Int(1)))

	cp := CopyOf(dst)
	assert.True(t, Equal(cp, dst))
	mustSet(t, cp, "a.c", Int(3))
	assert.False(t, dst.Contains(P("a.c")))
}
