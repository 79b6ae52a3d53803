// FILE: lixenwraith/cfgtree/node.go
package cfgtree

import (
	"fmt"
	"slices"
)

// node is one level of a tree: ordered keys, values and the comment side map.
// It does no locking; the owning implementation does.
type node struct {
	keys     []string
	values   map[string]Value
	comments map[string]string
}

func newNode() *node {
	return &node{values: make(map[string]Value)}
}

func (n *node) get(key string) (Value, bool) {
	v, ok := n.values[key]
	return v, ok
}

// put stores v and returns the previous value, absent if new.
func (n *node) put(key string, v Value) Value {
	prev, exists := n.values[key]
	if !exists {
		n.keys = append(n.keys, key)
	}
	n.values[key] = v
	return prev
}

// del removes the value and its comment.
func (n *node) del(key string) (Value, bool) {
	prev, exists := n.values[key]
	if !exists {
		return Value{}, false
	}
	delete(n.values, key)
	delete(n.comments, key)
	if i := slices.Index(n.keys, key); i >= 0 {
		n.keys = slices.Delete(n.keys, i, i+1)
	}
	return prev, true
}

func (n *node) comment(key string) (string, bool) {
	c, ok := n.comments[key]
	return c, ok
}

func (n *node) setComment(key, c string) (string, bool) {
	if n.comments == nil {
		n.comments = make(map[string]string)
	}
	prev, ok := n.comments[key]
	n.comments[key] = c
	return prev, ok
}

func (n *node) delComment(key string) (string, bool) {
	c, ok := n.comments[key]
	if ok {
		delete(n.comments, key)
	}
	return c, ok
}

func (n *node) clear() {
	n.keys = nil
	n.values = make(map[string]Value)
	n.comments = nil
}

func (n *node) size() int {
	return len(n.keys)
}

// clone copies the level. Values are shared, so nested configs are not copied.
func (n *node) clone() *node {
	c := &node{
		keys:   slices.Clone(n.keys),
		values: make(map[string]Value, len(n.values)),
	}
	for k, v := range n.values {
		c.values[k] = v
	}
	if len(n.comments) > 0 {
		c.comments = make(map[string]string, len(n.comments))
		for k, v := range n.comments {
			c.comments[k] = v
		}
	}
	return c
}

// domain abstracts how an implementation maps its configs to nodes.
type domain interface {
	// nodeOf returns the readable node of c, or nil when c is not a native
	// sub-config of this domain.
	nodeOf(c Config) *node
	// mutable returns the node to write into for a native config.
	mutable(c Config) *node
	// newSub creates an empty native sub-config.
	newSub() Config
}

// level is implemented by every Config that stores nodes. A level has at
// most one owner: the config whose node holds it.
type level interface {
	Config
	owner() Config
	setOwner(c Config)
}

// adopt returns v with every foreign sub-config replaced by a native deep copy.
func adopt(d domain, v Value) Value {
	if !v.hasConfigs() {
		return v
	}
	return v.mapConfigs(func(c Config) Config {
		if d.nodeOf(c) != nil {
			return c
		}
		sub := d.newSub()
		copyInto(d, sub, c)
		return sub
	})
}

// attach links the native configs of v to parent before v is stored there.
// A config that already has an owner, or that is parent or one of its
// ancestors, is replaced by a deep copy, so every level keeps a single owner
// and the tree stays acyclic.
func attach(d domain, parent Config, v Value) Value {
	if !v.hasConfigs() {
		return v
	}
	return v.mapConfigs(func(c Config) Config {
		l, ok := c.(level)
		if !ok || d.nodeOf(c) == nil {
			return c
		}
		if l.owner() != nil || isAncestor(c, parent) {
			sub := d.newSub()
			copyLevel(d, sub, d.nodeOf(c))
			l = sub.(level)
		}
		l.setOwner(parent)
		return l
	})
}

// isAncestor reports whether c is of or one of its owners.
func isAncestor(c, of Config) bool {
	for cur := of; cur != nil; {
		if cur == c {
			return true
		}
		l, ok := cur.(level)
		if !ok {
			return false
		}
		cur = l.owner()
	}
	return false
}

// release unlinks the native configs of a value that left the tree.
func release(d domain, v Value) {
	if !v.hasConfigs() {
		return
	}
	v.mapConfigs(func(c Config) Config {
		if l, ok := c.(level); ok && d.nodeOf(c) != nil {
			l.setOwner(nil)
		}
		return c
	})
}

// clearAt removes every entry of c.
func clearAt(d domain, c Config) {
	n := d.mutable(c)
	for _, v := range n.values {
		release(d, v)
	}
	n.clear()
}

// deleteKey removes one direct entry of c.
func deleteKey(d domain, c Config, key string) {
	prev, _ := d.mutable(c).del(key)
	release(d, prev)
}

// copyInto copies src, native or not, into the native config dst.
func copyInto(d domain, dst Config, src Config) {
	n := d.mutable(dst)
	it := src.Iterator()
	for it.HasNext() {
		e := it.Next()
		n.put(e.Key, attach(d, dst, adopt(d, e.Value)))
		if e.HasComment {
			n.setComment(e.Key, e.Comment)
		}
	}
}

// copyLevel deep copies the native level src into dst without going through
// the locking methods of src.
func copyLevel(d domain, dst Config, src *node) {
	n := d.mutable(dst)
	for _, key := range src.keys {
		n.put(key, attach(d, dst, src.values[key]))
		if c, ok := src.comment(key); ok {
			n.setComment(key, c)
		}
	}
}

// locate walks to the node holding the leaf of p without creating anything.
func locate(d domain, root Config, p Path) (*node, bool) {
	n := d.nodeOf(root)
	for _, seg := range p[:len(p)-1] {
		v, ok := n.get(seg)
		if !ok || v.kind != KindConfig {
			return nil, false
		}
		if n = d.nodeOf(v.cfg); n == nil {
			return nil, false
		}
	}
	return n, true
}

// parentFor walks to the config holding the leaf of p, creating missing levels.
// With destructive set, a non-config value in the way is replaced.
func parentFor(d domain, root Config, p Path, destructive bool) (Config, error) {
	cur := root
	for i, seg := range p[:len(p)-1] {
		v, ok := d.nodeOf(cur).get(seg)
		if ok && v.kind == KindConfig && d.nodeOf(v.cfg) != nil {
			cur = v.cfg
			continue
		}
		if ok && !destructive {
			return nil, levelError(p, i)
		}
		sub := d.newSub()
		d.mutable(cur).put(seg, attach(d, cur, Sub(sub)))
		cur = sub
	}
	return cur, nil
}

// checkLevels fails if a non-config value lies on the way to the leaf of p.
func checkLevels(d domain, root Config, p Path) error {
	n := d.nodeOf(root)
	for i, seg := range p[:len(p)-1] {
		v, ok := n.get(seg)
		if !ok {
			return nil
		}
		if v.kind != KindConfig || d.nodeOf(v.cfg) == nil {
			return levelError(p, i)
		}
		n = d.nodeOf(v.cfg)
	}
	return nil
}

func getAt(d domain, root Config, p Path) (Value, bool) {
	mustPath("get", p)
	n, ok := locate(d, root, p)
	if !ok {
		return Value{}, false
	}
	return n.get(p.Last())
}

// setAt expects the foreign configs of v to be adopted already; attach takes
// care of native ones.
func setAt(d domain, root Config, p Path, v Value, destructive bool) (Value, error) {
	mustPath("set", p)
	if !v.IsValid() {
		panic(&UsageError{Op: "set", Path: p, Err: ErrAbsentValue})
	}
	if !destructive {
		if err := checkLevels(d, root, p); err != nil {
			return Value{}, err
		}
	}
	parent, err := parentFor(d, root, p, destructive)
	if err != nil {
		return Value{}, err
	}
	prev := d.mutable(parent).put(p.Last(), attach(d, parent, v))
	release(d, prev)
	return prev, nil
}

func addAt(d domain, root Config, p Path, v Value) (bool, error) {
	mustPath("add", p)
	if !v.IsValid() {
		panic(&UsageError{Op: "add", Path: p, Err: ErrAbsentValue})
	}
	if err := checkLevels(d, root, p); err != nil {
		return false, err
	}
	if n, ok := locate(d, root, p); ok {
		if _, exists := n.get(p.Last()); exists {
			return false, nil
		}
	}
	parent, err := parentFor(d, root, p, false)
	if err != nil {
		return false, err
	}
	d.mutable(parent).put(p.Last(), attach(d, parent, v))
	return true, nil
}

func removeAt(d domain, root Config, p Path) Value {
	mustPath("remove", p)
	n, ok := locate(d, root, p)
	if !ok {
		return Value{}
	}
	if _, exists := n.get(p.Last()); !exists {
		return Value{}
	}
	parent, _ := parentFor(d, root, p, false)
	prev, _ := d.mutable(parent).del(p.Last())
	release(d, prev)
	return prev
}

func getCommentAt(d domain, root Config, p Path) (string, bool) {
	mustPath("get comment", p)
	n, ok := locate(d, root, p)
	if !ok {
		return "", false
	}
	return n.comment(p.Last())
}

func setCommentAt(d domain, root Config, p Path, c string) (string, error) {
	mustPath("set comment", p)
	if err := checkLevels(d, root, p); err != nil {
		return "", err
	}
	n, ok := locate(d, root, p)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoEntry, p.String())
	}
	if _, exists := n.get(p.Last()); !exists {
		return "", fmt.Errorf("%w: %q", ErrNoEntry, p.String())
	}
	parent, _ := parentFor(d, root, p, false)
	prev, _ := d.mutable(parent).setComment(p.Last(), c)
	return prev, nil
}

func removeCommentAt(d domain, root Config, p Path) (string, bool) {
	mustPath("remove comment", p)
	n, ok := locate(d, root, p)
	if !ok {
		return "", false
	}
	if _, has := n.comment(p.Last()); !has {
		return "", false
	}
	parent, _ := parentFor(d, root, p, false)
	return d.mutable(parent).delComment(p.Last())
}

// clearCommentsAt walks the whole subtree of root.
func clearCommentsAt(d domain, root Config) {
	n := d.nodeOf(root)
	if len(n.comments) > 0 {
		d.mutable(root).comments = nil
	}
	for _, key := range n.keys {
		v := n.values[key]
		if v.kind == KindConfig && d.nodeOf(v.cfg) != nil {
			clearCommentsAt(d, v.cfg)
		}
	}
}
