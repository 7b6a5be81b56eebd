package conflayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// JSONFileSource reads a JSON document from disk and flattens it into the key
// space. A missing file or invalid document is a whole-source failure;
// register the source with Optional() to tolerate it.
type JSONFileSource struct {
	path string
}

// NewJSONFileSource constructs a source over the JSON file at path.
func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

// Name identifies the source in errors and logs.
func (s *JSONFileSource) Name() string { return "json(" + s.path + ")" }

// Load parses and flattens the document.
func (s *JSONFileSource) Load(context.Context) (*Mapping, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	switch value.(type) {
	case map[string]any, []any:
		return Flatten(value, ""), nil
	default:
		// A bare scalar or null flattens to nothing, so refuse it outright.
		return nil, fmt.Errorf("parse %s: top-level document must be a JSON object or array", s.path)
	}
}
