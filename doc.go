// FILE: lixenwraith/cfgtree/doc.go

// Package cfgtree provides a hierarchical configuration model: a path-addressed
// tree of typed values with per-entry comments, three concurrency variants of
// the same Config contract, a format-adapter contract and a rule-based
// correction engine.
//
// Implementations:
//   - Tree: plain, single goroutine
//   - Synchronized: one mutex shared by the whole tree
//   - Stamped: copy-on-write snapshots with optimistic lock-free reads
//   - Accumulator: unsynchronized builder, published into a Stamped with ReplaceContentBy
//
// Quick Start:
//
//	cfg := cfgtree.NewStamped()
//	cfg.Set(cfgtree.P("server.port"), cfgtree.Int(8080))
//	cfg.SetComment(cfgtree.P("server.port"), "listen port")
//
//	port, _ := cfgtree.GetInt64(cfg, "server.port")
//
//	spec := cfgtree.NewSpec(false)
//	spec.DefineInRange(cfgtree.P("server.port"), cfgtree.Int(8080), cfgtree.Int(1), cfgtree.Int(65535))
//	fixed := spec.Correct(cfg)
//
// Paths:
//
// Every operation takes a Path, a list of key segments. ParsePath (or P) splits
// a dotted string; building a Path directly names keys that contain dots.
// An empty path is a programming error and panics with *UsageError.
//
// Writes create missing intermediate sub-configs. Set replaces a non-config
// value found in the way, discarding it; Add and Merge report ErrIncompatibleLevel
// instead. Reads through a non-config value report the entry as absent.
//
// Formats live in the format subpackages (json, toml, yaml, cbor) and read and
// write through the textio package.
package cfgtree
