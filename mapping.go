package conflayer

import (
	"strings"
)

// Delimiter separates the segments of a key path.
const Delimiter = ":"

// JoinKey appends a segment to a key path prefix.
func JoinKey(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + Delimiter + segment
}

type entry struct {
	key   string  // original casing
	value *string // nil when the entry is present without a value
}

// Mapping is a flat set of key paths with at most one entry per path. Keys are
// compared case-insensitively; writing an existing key replaces its value but
// keeps the original insertion position. Values distinguish three states: a
// string (possibly empty), present-without-a-value, and missing entirely.
type Mapping struct {
	entries map[string]entry // keyed by lowercased path
	order   []string         // lowercased paths, insertion order
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{entries: make(map[string]entry)}
}

// Len reports the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Set writes a string value at key, overwriting any existing entry with the
// same path regardless of casing.
func (m *Mapping) Set(key, value string) {
	m.put(key, &value)
}

// SetNull records key as present without a value.
func (m *Mapping) SetNull(key string) {
	m.put(key, nil)
}

func (m *Mapping) put(key string, value *string) {
	if key == "" {
		return
	}
	lower := strings.ToLower(key)
	if _, ok := m.entries[lower]; !ok {
		m.order = append(m.order, lower)
	}
	m.entries[lower] = entry{key: key, value: value}
}

// Get returns the string value at key. The second result is false when the
// key is missing or present without a value.
func (m *Mapping) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	e, ok := m.entries[strings.ToLower(key)]
	if !ok || e.value == nil {
		return "", false
	}
	return *e.value, true
}

// Has reports whether key is present, with or without a value.
func (m *Mapping) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.entries[strings.ToLower(key)]
	return ok
}

// Keys returns every key path in insertion order, with original casing.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.order))
	for _, lower := range m.order {
		keys = append(keys, m.entries[lower].key)
	}
	return keys
}

// ChildKeys returns the distinct immediate child segments under prefix, in
// order of first appearance. An empty prefix lists the top-level segments.
// Segment names keep the casing of their first occurrence.
func (m *Mapping) ChildKeys(prefix string) []string {
	if m == nil {
		return nil
	}
	lowerPrefix := strings.ToLower(prefix)
	if lowerPrefix != "" {
		lowerPrefix += Delimiter
	}
	seen := make(map[string]struct{})
	var children []string
	for _, lower := range m.order {
		rest, ok := strings.CutPrefix(lower, lowerPrefix)
		if !ok || rest == "" {
			continue
		}
		seg, _, _ := strings.Cut(rest, Delimiter)
		if seg == "" {
			continue
		}
		if _, dup := seen[seg]; dup {
			continue
		}
		seen[seg] = struct{}{}
		orig, _, _ := strings.Cut(m.entries[lower].key[len(lowerPrefix):], Delimiter)
		children = append(children, orig)
	}
	return children
}

// HasChildren reports whether at least one entry lies strictly below prefix.
func (m *Mapping) HasChildren(prefix string) bool {
	if m == nil {
		return false
	}
	lowerPrefix := strings.ToLower(prefix) + Delimiter
	for _, lower := range m.order {
		if strings.HasPrefix(lower, lowerPrefix) {
			return true
		}
	}
	return false
}

// Merge folds other into m, later entries overwriting earlier ones on
// conflicting key paths.
func (m *Mapping) Merge(other *Mapping) {
	if other == nil {
		return
	}
	for _, lower := range other.order {
		e := other.entries[lower]
		m.put(e.key, e.value)
	}
}

// currentMapping lets a Mapping stand in for a Root when deriving nodes, so
// navigation and conversion work over a bare snapshot in tests and sources.
func (m *Mapping) currentMapping() *Mapping { return m }
