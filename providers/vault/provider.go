// Package vault adapts a HashiCorp Vault KV v2 mount into a conflayer
// source: it lists the secrets under a base path (recursing into folders),
// reads each one, and contributes the result as hierarchical keys.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"

	"github.com/djbozjr/conflayer"
)

// KV is the subset of the Vault KV v2 interface the source depends on.
type KV interface {
	Get(ctx context.Context, path string) (*vaultapi.KVSecret, error)
}

// Lister enumerates secret names. *vaultapi.Logical satisfies it; for KV v2
// the list path must address the metadata endpoint, which FromClient sets up.
type Lister interface {
	ListWithContext(ctx context.Context, path string) (*vaultapi.Secret, error)
}

// Source loads every secret under a KV v2 base path.
type Source struct {
	kv         KV
	lister     Lister
	listBase   string
	basePath   string
	name       string
	field      string
	explicit   bool
	structured bool
	tolerant   bool
}

// Option configures the source.
type Option func(*Source)

// WithBasePath scopes the source to secrets under path within the mount.
func WithBasePath(path string) Option {
	return func(s *Source) {
		s.basePath = strings.Trim(path, "/")
	}
}

// WithField selects a concrete key of each secret's data map instead of the
// default extraction ("value" key, sole key, or the whole map as JSON).
func WithField(field string) Option {
	return func(s *Source) {
		s.field = field
		s.explicit = true
	}
}

// WithName overrides the source identity used in errors and logs.
func WithName(name string) Option {
	return func(s *Source) {
		if name != "" {
			s.name = name
		}
	}
}

// Structured routes each secret's data map through the flattening algorithm,
// producing one key per nested property instead of a single JSON leaf.
func Structured() Option {
	return func(s *Source) {
		s.structured = true
	}
}

// Tolerant skips secrets that cannot be read or extracted instead of failing
// the whole snapshot. Loads also run tolerantly when the engine marks the
// context, which it does for sources registered with conflayer.Optional.
func Tolerant() Option {
	return func(s *Source) {
		s.tolerant = true
	}
}

// New creates a source from explicit KV and list accessors. Directory names
// handed to the Lister are base-relative; FromClient prefixes them with the
// mount's metadata path.
func New(kv KV, lister Lister, opts ...Option) (*Source, error) {
	if kv == nil {
		return nil, errors.New("vault: KV accessor is required")
	}
	if lister == nil {
		return nil, errors.New("vault: lister is required")
	}
	s := &Source{kv: kv, lister: lister, name: "vault"}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FromClient derives the source from a Vault client and mount path.
func FromClient(client *vaultapi.Client, mountPath string, opts ...Option) (*Source, error) {
	if client == nil {
		return nil, errors.New("vault: client is required")
	}
	if mountPath == "" {
		mountPath = "secret"
	}
	s, err := New(client.KVv2(mountPath), client.Logical(), opts...)
	if err != nil {
		return nil, err
	}
	s.listBase = mountPath + "/metadata"
	if s.name == "vault" {
		s.name = "vault(" + mountPath + ")"
	}
	return s, nil
}

// Name identifies the source in errors and logs.
func (s *Source) Name() string { return s.name }

// Load walks the base path and reads every secret into a flat mapping. Secret
// path separators become key path delimiters.
func (s *Source) Load(ctx context.Context) (*conflayer.Mapping, error) {
	m := conflayer.NewMapping()
	tolerant := s.tolerant || conflayer.TolerateEntries(ctx)
	if err := s.walk(ctx, s.basePath, m, tolerant); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Source) walk(ctx context.Context, dir string, m *conflayer.Mapping, tolerant bool) error {
	secret, err := s.lister.ListWithContext(ctx, s.listPath(dir))
	if err != nil {
		return fmt.Errorf("vault: list %q: %w", dir, err)
	}
	if secret == nil || secret.Data == nil {
		return nil
	}
	names, _ := secret.Data["keys"].([]any)
	for _, raw := range names {
		name, ok := raw.(string)
		if !ok || name == "" {
			continue
		}
		if strings.HasSuffix(name, "/") {
			if err := s.walk(ctx, joinPath(dir, strings.TrimSuffix(name, "/")), m, tolerant); err != nil {
				return err
			}
			continue
		}
		if err := s.read(ctx, joinPath(dir, name), m); err != nil {
			if tolerant {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Source) read(ctx context.Context, path string, m *conflayer.Mapping) error {
	secret, err := s.kv.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("vault: get %q: %w", path, err)
	}
	if secret == nil || len(secret.Data) == 0 {
		return fmt.Errorf("vault: secret %q contained no data", path)
	}
	key := pathKey(path, s.basePath)
	if s.structured {
		var data any = secret.Data
		m.Merge(conflayer.Flatten(data, key))
		return nil
	}
	value, err := s.extract(secret.Data)
	if err != nil {
		return fmt.Errorf("vault: secret %q: %w", path, err)
	}
	m.Set(key, value)
	return nil
}

func (s *Source) extract(data map[string]any) (string, error) {
	if s.explicit {
		value, ok := data[s.field]
		if !ok {
			return "", fmt.Errorf("field %q not found", s.field)
		}
		return asString(value, s.field)
	}
	if value, ok := data["value"]; ok {
		if str, err := asString(value, "value"); err == nil {
			return str, nil
		}
	}
	if len(data) == 1 {
		for key, value := range data {
			if str, err := asString(value, key); err == nil {
				return str, nil
			}
		}
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal secret: %w", err)
	}
	return string(buf), nil
}

func (s *Source) listPath(dir string) string {
	if s.listBase == "" {
		return dir
	}
	return joinPath(s.listBase, dir)
}

// pathKey strips the base path and turns "/" separators into key delimiters.
func pathKey(path, base string) string {
	if base != "" {
		path = strings.TrimPrefix(strings.TrimPrefix(path, base), "/")
	}
	return strings.ReplaceAll(path, "/", conflayer.Delimiter)
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func asString(value any, field string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("field %q is not a string", field)
	}
}
