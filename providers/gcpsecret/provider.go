// Package gcpsecret adapts Google Secret Manager into a conflayer source.
// The source is scoped to an explicit list of secret IDs; each one is read
// via AccessSecretVersion and contributed under its own key.
package gcpsecret

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"

	"github.com/djbozjr/conflayer"
)

// Client represents the subset of the GCP Secret Manager client used.
type Client interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// Source reads a fixed set of secrets from Google Secret Manager.
type Source struct {
	client     Client
	project    string
	version    string
	name       string
	secrets    []string
	structured bool
	tolerant   bool
}

// Option configures the source.
type Option func(*Source)

// WithProject sets the default project ID used when secrets are referenced by
// short IDs instead of fully qualified resource names.
func WithProject(projectID string) Option {
	return func(s *Source) {
		s.project = projectID
	}
}

// WithVersion overrides the default version (latest).
func WithVersion(version string) Option {
	return func(s *Source) {
		if version != "" {
			s.version = version
		}
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

// Structured routes JSON-shaped payloads through the flattening algorithm,
// producing one key per nested property instead of a single JSON leaf.
func Structured() Option {
	return func(s *Source) {
		s.structured = true
	}
}

// Tolerant skips secrets that cannot be accessed instead of failing the whole
// snapshot. Loads also run tolerantly when the engine marks the context,
// which it does for sources registered with conflayer.Optional.
func Tolerant() Option {
	return func(s *Source) {
		s.tolerant = true
	}
}

// New constructs a Secret Manager source over the given secret IDs. IDs can
// be full resource names (projects/*/secrets/*/versions/*) or shorthand
// secret IDs when a project was provided via options.
func New(client Client, secrets []string, opts ...Option) (*Source, error) {
	if client == nil {
		return nil, errors.New("gcpsecret: client is required")
	}
	if len(secrets) == 0 {
		return nil, errors.New("gcpsecret: at least one secret id is required")
	}
	s := &Source{
		client:  client,
		version: "latest",
		name:    "gcpsecret",
		secrets: append([]string(nil), secrets...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name identifies the source in errors and logs.
func (s *Source) Name() string { return s.name }

// Load reads every configured secret into a flat mapping. Hyphens in short
// secret IDs become key path delimiters, so "server-port" yields
// "server:port".
func (s *Source) Load(ctx context.Context) (*conflayer.Mapping, error) {
	m := conflayer.NewMapping()
	tolerant := s.tolerant || conflayer.TolerateEntries(ctx)
	for _, id := range s.secrets {
		if err := s.read(ctx, id, m); err != nil {
			if tolerant {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

func (s *Source) read(ctx context.Context, id string, m *conflayer.Mapping) error {
	name, key, err := s.resolve(id)
	if err != nil {
		return err
	}
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return fmt.Errorf("gcpsecret: access %q: %w", id, err)
	}
	if resp.GetPayload() == nil || len(resp.Payload.Data) == 0 {
		return fmt.Errorf("gcpsecret: secret %q payload empty", id)
	}
	payload := string(resp.Payload.Data)
	if s.structured {
		m.Merge(conflayer.FlattenJSON(payload, key))
		return nil
	}
	m.Set(key, payload)
	return nil
}

// resolve expands a short secret ID into a full resource name and derives the
// key path the secret contributes under.
func (s *Source) resolve(id string) (name, key string, err error) {
	if id == "" {
		return "", "", errors.New("gcpsecret: secret id cannot be empty")
	}
	if strings.HasPrefix(id, "projects/") {
		parts := strings.Split(id, "/")
		if len(parts) < 4 || parts[3] == "" {
			return "", "", fmt.Errorf("gcpsecret: malformed resource name %q", id)
		}
		return id, secretKey(parts[3]), nil
	}
	if s.project == "" {
		return "", "", errors.New("gcpsecret: project must be set when using short secret ids")
	}
	name = fmt.Sprintf("projects/%s/secrets/%s/versions/%s", s.project, id, s.version)
	return name, secretKey(id), nil
}

func secretKey(id string) string {
	return strings.ReplaceAll(id, "-", conflayer.Delimiter)
}
