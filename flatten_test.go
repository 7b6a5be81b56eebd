package conflayer

import (
	"testing"
)

func TestFlattenNestedObject(t *testing.T) {
	m := Flatten(map[string]any{"a": map[string]any{"b": "v"}}, "")
	got, ok := m.Get("a:b")
	if !ok || got != "v" {
		t.Fatalf("expected a:b=v, got %q (ok=%v)", got, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("expected one entry, got %d", m.Len())
	}
}

func TestFlattenArrayUnderPrefix(t *testing.T) {
	m := Flatten([]any{"x", "y"}, "p")
	if got, _ := m.Get("p:0"); got != "x" {
		t.Fatalf("expected p:0=x, got %q", got)
	}
	if got, _ := m.Get("p:1"); got != "y" {
		t.Fatalf("expected p:1=y, got %q", got)
	}
}

func TestFlattenScalars(t *testing.T) {
	m := Flatten(map[string]any{
		"s": "text",
		"b": true,
		"f": 1.5,
		"i": 42,
	}, "")
	cases := map[string]string{"s": "text", "b": "true", "f": "1.5", "i": "42"}
	for key, want := range cases {
		if got, _ := m.Get(key); got != want {
			t.Fatalf("key %s: expected %q, got %q", key, want, got)
		}
	}
}

func TestFlattenNullIsPresentWithoutValue(t *testing.T) {
	m := Flatten(map[string]any{"k": nil}, "")
	if !m.Has("k") {
		t.Fatal("expected k to be present")
	}
	if _, ok := m.Get("k"); ok {
		t.Fatal("expected k to have no value")
	}
}

func TestFlattenJSONPlainStringVerbatim(t *testing.T) {
	m := FlattenJSON("just a string", "p")
	got, ok := m.Get("p")
	if !ok || got != "just a string" {
		t.Fatalf("expected verbatim string at p, got %q (ok=%v)", got, ok)
	}
}

func TestFlattenJSONMalformedFallsBack(t *testing.T) {
	raw := `{"a": unterminated`
	m := FlattenJSON(raw, "p")
	got, ok := m.Get("p")
	if !ok || got != raw {
		t.Fatalf("expected raw text at p, got %q (ok=%v)", got, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", m.Len())
	}
}

func TestFlattenJSONDocument(t *testing.T) {
	m := FlattenJSON(`{"db":{"port":5432,"hosts":["a","b"]}}`, "svc")
	if got, _ := m.Get("svc:db:port"); got != "5432" {
		t.Fatalf("expected svc:db:port=5432, got %q", got)
	}
	if got, _ := m.Get("svc:db:hosts:1"); got != "b" {
		t.Fatalf("expected svc:db:hosts:1=b, got %q", got)
	}
}

func TestFlattenJSONPreservesNumberText(t *testing.T) {
	m := FlattenJSON(`{"big": 12345678901234567890, "dec": 0.10}`, "")
	if got, _ := m.Get("big"); got != "12345678901234567890" {
		t.Fatalf("expected big number text preserved, got %q", got)
	}
	if got, _ := m.Get("dec"); got != "0.10" {
		t.Fatalf("expected decimal text preserved, got %q", got)
	}
}
