package conflayer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Typed accessors for leaf values. A missing leaf yields the type's zero
// value with a nil error; only an unparsable value fails, with *FormatError.
// The -Or variants return def when the leaf is missing or unparsable.

// Int converts the node's leaf to an int.
func (n Node) Int() (int, error) {
	raw, ok := n.Value()
	if !ok {
		return 0, nil
	}
	parsed, err := cast.ToIntE(raw)
	if err != nil {
		return 0, &FormatError{Key: n.path, Raw: raw, Target: "int", Err: err}
	}
	return parsed, nil
}

// Int64 converts the node's leaf to an int64.
func (n Node) Int64() (int64, error) {
	raw, ok := n.Value()
	if !ok {
		return 0, nil
	}
	parsed, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, &FormatError{Key: n.path, Raw: raw, Target: "int64", Err: err}
	}
	return parsed, nil
}

// Uint64 converts the node's leaf to a uint64.
func (n Node) Uint64() (uint64, error) {
	raw, ok := n.Value()
	if !ok {
		return 0, nil
	}
	parsed, err := cast.ToUint64E(raw)
	if err != nil {
		return 0, &FormatError{Key: n.path, Raw: raw, Target: "uint64", Err: err}
	}
	return parsed, nil
}

// Float64 converts the node's leaf to a float64.
func (n Node) Float64() (float64, error) {
	raw, ok := n.Value()
	if !ok {
		return 0, nil
	}
	parsed, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, &FormatError{Key: n.path, Raw: raw, Target: "float64", Err: err}
	}
	return parsed, nil
}

// Bool converts the node's leaf to a bool.
func (n Node) Bool() (bool, error) {
	raw, ok := n.Value()
	if !ok {
		return false, nil
	}
	parsed, err := cast.ToBoolE(raw)
	if err != nil {
		return false, &FormatError{Key: n.path, Raw: raw, Target: "bool", Err: err}
	}
	return parsed, nil
}

// Duration converts the node's leaf to a time.Duration.
func (n Node) Duration() (time.Duration, error) {
	raw, ok := n.Value()
	if !ok {
		return 0, nil
	}
	parsed, err := cast.ToDurationE(raw)
	if err != nil {
		return 0, &FormatError{Key: n.path, Raw: raw, Target: "time.Duration", Err: err}
	}
	return parsed, nil
}

// Time converts the node's leaf to a time.Time using the common
// locale-independent layouts (RFC 3339 first).
func (n Node) Time() (time.Time, error) {
	raw, ok := n.Value()
	if !ok {
		return time.Time{}, nil
	}
	parsed, err := cast.ToTimeE(raw)
	if err != nil {
		return time.Time{}, &FormatError{Key: n.path, Raw: raw, Target: "time.Time", Err: err}
	}
	return parsed, nil
}

// StringOr returns the leaf string, or def when missing.
func (n Node) StringOr(def string) string {
	if raw, ok := n.Value(); ok {
		return raw
	}
	return def
}

// IntOr returns the leaf as int, or def when missing or unparsable.
func (n Node) IntOr(def int) int {
	raw, ok := n.Value()
	if !ok {
		return def
	}
	parsed, err := cast.ToIntE(raw)
	if err != nil {
		return def
	}
	return parsed
}

// BoolOr returns the leaf as bool, or def when missing or unparsable.
func (n Node) BoolOr(def bool) bool {
	raw, ok := n.Value()
	if !ok {
		return def
	}
	parsed, err := cast.ToBoolE(raw)
	if err != nil {
		return def
	}
	return parsed
}

// DurationOr returns the leaf as duration, or def when missing or unparsable.
func (n Node) DurationOr(def time.Duration) time.Duration {
	raw, ok := n.Value()
	if !ok {
		return def
	}
	parsed, err := cast.ToDurationE(raw)
	if err != nil {
		return def
	}
	return parsed
}

// Strings converts the node's immediate children to a string slice in mapping
// order. Children that are present without a value contribute empty strings.
func (n Node) Strings() []string {
	children := n.Children()
	if len(children) == 0 {
		return nil
	}
	out := make([]string, len(children))
	for i, child := range children {
		out[i], _ = child.Value()
	}
	return out
}

// ParseEnum matches the node's leaf case-insensitively against the named
// members. A missing leaf yields the zero member with no error; an unmatched
// value fails with *FormatError listing the accepted names.
func ParseEnum[T any](n Node, members map[string]T) (T, error) {
	var zero T
	raw, ok := n.Value()
	if !ok {
		return zero, nil
	}
	for name, member := range members {
		if strings.EqualFold(name, raw) {
			return member, nil
		}
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return zero, &FormatError{
		Key:    n.path,
		Raw:    raw,
		Target: fmt.Sprintf("enum(%s)", strings.Join(names, "|")),
	}
}
