package conflayer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Flatten converts a nested document value into a flat mapping rooted at
// prefix. Objects recurse per property, arrays per element index, and scalars
// become leaf entries: strings verbatim, numbers as their decimal text,
// booleans as "true"/"false", and nil as a present-but-valueless entry.
// Values of other types fall back to their fmt representation, so the
// function is total and never fails.
func Flatten(value any, prefix string) *Mapping {
	m := NewMapping()
	flattenInto(m, value, prefix)
	return m
}

func flattenInto(m *Mapping, value any, prefix string) {
	switch v := value.(type) {
	case map[string]any:
		for _, name := range sortedKeys(v) {
			flattenInto(m, v[name], JoinKey(prefix, name))
		}
	case []any:
		for i, elem := range v {
			flattenInto(m, elem, JoinKey(prefix, strconv.Itoa(i)))
		}
	case string:
		m.Set(prefix, v)
	case json.Number:
		m.Set(prefix, v.String())
	case float64:
		m.Set(prefix, strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		m.Set(prefix, strconv.Itoa(v))
	case int64:
		m.Set(prefix, strconv.FormatInt(v, 10))
	case bool:
		m.Set(prefix, strconv.FormatBool(v))
	case nil:
		m.SetNull(prefix)
	default:
		m.Set(prefix, fmt.Sprint(v))
	}
}

// FlattenJSON parses raw as a JSON document and flattens it at prefix. Inputs
// that do not parse as JSON are stored verbatim at prefix, so a plain string
// payload round-trips unchanged.
func FlattenJSON(raw, prefix string) *Mapping {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		m := NewMapping()
		m.Set(prefix, raw)
		return m
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil || dec.More() {
		m := NewMapping()
		m.Set(prefix, raw)
		return m
	}
	return Flatten(value, prefix)
}

func sortedKeys(v map[string]any) []string {
	keys := make([]string, 0, len(v))
	for name := range v {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}
