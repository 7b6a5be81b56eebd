package conflayer

import (
	"strconv"
	"strings"
)

// mappingView is anything that can hand out the current merged mapping. Root
// re-reads its atomic pointer on every access; a bare Mapping returns itself.
type mappingView interface {
	currentMapping() *Mapping
}

// Node is a lightweight view bound to a key path prefix. Navigation steps
// never fail: a step through a missing path yields a not-found node that
// keeps chaining, and only a terminal conversion reports an error. Nodes hold
// no data of their own; every access re-reads the current mapping, so a node
// never serves entries older than the navigation step that produced it.
type Node struct {
	src  mappingView
	path string
	ok   bool
}

// NodeOf returns a navigation root over a bare mapping snapshot.
func NodeOf(m *Mapping) Node {
	if m == nil {
		m = NewMapping()
	}
	return Node{src: m, ok: true}
}

// Path returns the node's key path prefix, empty at the root.
func (n Node) Path() string { return n.path }

// Key returns the node's own key, the last segment of its path.
func (n Node) Key() string {
	if i := strings.LastIndex(n.path, Delimiter); i >= 0 {
		return n.path[i+1:]
	}
	return n.path
}

// Found reports whether the node refers to an existing entry or subtree.
func (n Node) Found() bool { return n.ok }

// Exists reports whether the node has a leaf entry or at least one child in
// the current mapping.
func (n Node) Exists() bool {
	if !n.ok {
		return false
	}
	m := n.src.currentMapping()
	return n.path == "" || m.Has(n.path) || m.HasChildren(n.path)
}

// Value returns the leaf string at the node's path. The second result is
// false when the node was not found, the entry is missing, or the entry is
// present without a value.
func (n Node) Value() (string, bool) {
	if !n.ok {
		return "", false
	}
	return n.src.currentMapping().Get(n.path)
}

// At navigates along a delimiter-joined path relative to this node. Blank or
// whitespace-only input yields a not-found node.
func (n Node) At(path string) Node {
	path = strings.TrimSpace(path)
	if path == "" {
		return Node{src: n.src, path: n.path}
	}
	out := n
	for _, seg := range strings.Split(path, Delimiter) {
		out = out.Field(seg)
	}
	return out
}

// Field returns the direct child named name, matched case-insensitively
// against the node's children. Missing children yield a not-found node whose
// further navigation steps stay not-found.
func (n Node) Field(name string) Node {
	name = strings.TrimSpace(name)
	if name == "" {
		return Node{src: n.src, path: n.path}
	}
	child := Node{src: n.src, path: JoinKey(n.path, name)}
	if !n.ok {
		return child
	}
	m := n.src.currentMapping()
	if m.Has(child.path) || m.HasChildren(child.path) {
		child.ok = true
	}
	return child
}

// Child returns the direct child whose own key equals the decimal text of i,
// scanning the node's children. Array elements produced by flattening have
// exactly such keys.
func (n Node) Child(i int) Node {
	if i < 0 {
		return Node{src: n.src, path: n.path}
	}
	return n.Field(strconv.Itoa(i))
}

// Children returns a node for every direct child, in the order the underlying
// mapping lists them.
func (n Node) Children() []Node {
	if !n.ok {
		return nil
	}
	m := n.src.currentMapping()
	keys := m.ChildKeys(n.path)
	children := make([]Node, 0, len(keys))
	for _, key := range keys {
		children = append(children, Node{src: n.src, path: JoinKey(n.path, key), ok: true})
	}
	return children
}
