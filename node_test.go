package conflayer

import (
	"context"
	"testing"
)

func testMapping() *Mapping {
	m := NewMapping()
	m.Set("server:host", "localhost")
	m.Set("server:port", "8080")
	m.Set("tags:0", "alpha")
	m.Set("tags:1", "beta")
	m.SetNull("feature:legacy")
	return m
}

func TestNodeAtLeafValue(t *testing.T) {
	n := NodeOf(testMapping()).At("server:host")
	got, ok := n.Value()
	if !ok || got != "localhost" {
		t.Fatalf("expected localhost, got %q (ok=%v)", got, ok)
	}
}

func TestNodeCaseInsensitiveNavigation(t *testing.T) {
	n := NodeOf(testMapping()).Field("SERVER").Field("Port")
	if got, _ := n.Value(); got != "8080" {
		t.Fatalf("expected 8080, got %q", got)
	}
}

func TestNodeMissingChainNeverPanics(t *testing.T) {
	n := NodeOf(testMapping()).Field("nope").Child(3).Field("deeper").At("a:b:c")
	if n.Found() || n.Exists() {
		t.Fatal("expected not-found node at end of chain")
	}
	if _, ok := n.Value(); ok {
		t.Fatal("expected no value on not-found node")
	}
	if got, err := n.Int(); err != nil || got != 0 {
		t.Fatalf("missing node should convert to default, got %d (err=%v)", got, err)
	}
}

func TestNodeBlankPathIsNotFound(t *testing.T) {
	root := NodeOf(testMapping())
	for _, path := range []string{"", "   ", "\t"} {
		if n := root.At(path); n.Found() {
			t.Fatalf("expected blank path %q to be not found", path)
		}
	}
}

func TestNodePositionalAccess(t *testing.T) {
	tags := NodeOf(testMapping()).Field("tags")
	if got, _ := tags.Child(1).Value(); got != "beta" {
		t.Fatalf("expected beta, got %q", got)
	}
	if tags.Child(5).Found() {
		t.Fatal("expected out-of-range child to be not found")
	}
	if tags.Child(-1).Found() {
		t.Fatal("expected negative index to be not found")
	}
}

func TestNodeChildrenOrder(t *testing.T) {
	children := NodeOf(testMapping()).Field("tags").Children()
	if len(children) != 2 {
		t.Fatalf("expected two children, got %d", len(children))
	}
	if children[0].Key() != "0" || children[1].Key() != "1" {
		t.Fatalf("unexpected child keys: %q, %q", children[0].Key(), children[1].Key())
	}
}

func TestNodeNullEntryExistsWithoutValue(t *testing.T) {
	n := NodeOf(testMapping()).At("feature:legacy")
	if !n.Exists() {
		t.Fatal("null entry should exist")
	}
	if _, ok := n.Value(); ok {
		t.Fatal("null entry should have no value")
	}
}

func TestNodeSeesReloadedMapping(t *testing.T) {
	src := newSwitchSource("live", map[string]string{"k": "a"})
	root, err := NewBuilder().Add(src).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer root.Close()

	n := root.At("k")
	if got, _ := n.Value(); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
	src.set(map[string]string{"k": "b"}, nil)
	root.Refresh(context.Background())
	// The node is a view over the root, not a snapshot.
	if got, _ := n.Value(); got != "b" {
		t.Fatalf("expected node to read reloaded value, got %q", got)
	}
}
