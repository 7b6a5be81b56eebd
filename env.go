package conflayer

import (
	"context"
	"os"
	"sort"
	"strings"
)

// EnvSource reads the process environment. Double underscores in variable
// names become key path delimiters, so APP_SERVER__PORT with prefix "APP_"
// yields "server:port". Variables are read in sorted order for determinism.
type EnvSource struct {
	prefix  string
	environ func() []string
}

// EnvOption configures an EnvSource.
type EnvOption func(*EnvSource)

// WithEnvPrefix restricts the source to variables starting with prefix and
// strips it from the resulting keys.
func WithEnvPrefix(prefix string) EnvOption {
	return func(s *EnvSource) {
		s.prefix = prefix
	}
}

// WithEnviron overrides the environment snapshot function, mainly for tests.
func WithEnviron(fn func() []string) EnvOption {
	return func(s *EnvSource) {
		if fn != nil {
			s.environ = fn
		}
	}
}

// NewEnvSource constructs an environment variable source.
func NewEnvSource(opts ...EnvOption) *EnvSource {
	s := &EnvSource{environ: os.Environ}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source in errors and logs.
func (s *EnvSource) Name() string {
	if s.prefix == "" {
		return "env"
	}
	return "env(" + s.prefix + "*)"
}

// Load snapshots the environment into a flat mapping.
func (s *EnvSource) Load(context.Context) (*Mapping, error) {
	vars := s.environ()
	sort.Strings(vars)
	m := NewMapping()
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if s.prefix != "" {
			var matched bool
			name, matched = cutPrefixFold(name, s.prefix)
			if !matched {
				continue
			}
		}
		key := envKeyToPath(name)
		if key == "" {
			continue
		}
		m.Set(key, value)
	}
	return m, nil
}

// envKeyToPath rewrites the fixed "__" hierarchy marker to the delimiter.
func envKeyToPath(name string) string {
	return strings.Trim(strings.ReplaceAll(name, "__", Delimiter), Delimiter)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// MapSource serves a fixed in-memory mapping. It backs default-value layers
// and tests. Keys are inserted in sorted order.
type MapSource struct {
	name   string
	values map[string]string
}

// NewMapSource copies values into a static source with the given identity.
func NewMapSource(name string, values map[string]string) *MapSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, values: copied}
}

// Name identifies the source in errors and logs.
func (s *MapSource) Name() string { return s.name }

// Load returns the static mapping.
func (s *MapSource) Load(context.Context) (*Mapping, error) {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := NewMapping()
	for _, k := range keys {
		m.Set(k, s.values[k])
	}
	return m, nil
}
