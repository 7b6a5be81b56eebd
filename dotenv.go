package conflayer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// DotenvSource reads a .env file. As with EnvSource, double underscores in
// variable names become key path delimiters. A missing or unreadable file is
// a whole-source failure; register the source with Optional() to tolerate it.
type DotenvSource struct {
	path string
}

// NewDotenvSource constructs a source over the .env file at path.
func NewDotenvSource(path string) *DotenvSource {
	return &DotenvSource{path: path}
}

// Name identifies the source in errors and logs.
func (s *DotenvSource) Name() string { return "dotenv(" + s.path + ")" }

// Load parses the file into a flat mapping.
func (s *DotenvSource) Load(context.Context) (*Mapping, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := NewMapping()
	for _, k := range keys {
		key := envKeyToPath(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		m.Set(key, values[k])
	}
	return m, nil
}
