// Package awssm adapts AWS Secrets Manager into a conflayer source: it pages
// through ListSecrets scoped by a name prefix, reads each secret's value, and
// contributes the result as hierarchical keys.
package awssm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/djbozjr/conflayer"
)

// Client captures the subset of the AWS Secrets Manager client used by the
// source. *secretsmanager.Client satisfies this interface.
type Client interface {
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Source loads every secret whose name starts with the configured prefix.
type Source struct {
	client       Client
	prefix       string
	name         string
	versionStage *string
	versionID    *string
	structured   bool
	tolerant     bool
	callOpts     []func(*secretsmanager.Options)
}

// Option configures the source.
type Option func(*Source)

// WithPrefix scopes listing to secrets whose name begins with prefix; the
// prefix is stripped from the resulting keys.
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = prefix
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

// WithVersionStage requests a specific version stage (defaults to AWS Current).
func WithVersionStage(stage string) Option {
	return func(s *Source) {
		if stage != "" {
			s.versionStage = aws.String(stage)
		}
	}
}

// WithVersionID requests a specific version ID.
func WithVersionID(id string) Option {
	return func(s *Source) {
		if id != "" {
			s.versionID = aws.String(id)
		}
	}
}

// WithClientOptions forwards Secrets Manager call options to each request.
func WithClientOptions(opts ...func(*secretsmanager.Options)) Option {
	return func(s *Source) {
		s.callOpts = append(s.callOpts, opts...)
	}
}

// Structured routes JSON-shaped payloads through the flattening algorithm,
// producing one key per nested property instead of a single JSON leaf.
// Payloads that are not JSON documents stay verbatim.
func Structured() Option {
	return func(s *Source) {
		s.structured = true
	}
}

// Tolerant skips secrets whose value cannot be fetched instead of failing the
// whole snapshot. Loads also run tolerantly when the engine marks the
// context, which it does for sources registered with conflayer.Optional.
func Tolerant() Option {
	return func(s *Source) {
		s.tolerant = true
	}
}

// New constructs a Secrets Manager source.
func New(client Client, opts ...Option) (*Source, error) {
	if client == nil {
		return nil, errors.New("awssm: client is required")
	}
	s := &Source{client: client, name: "awssm"}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name identifies the source in errors and logs.
func (s *Source) Name() string { return s.name }

// Load pages through the scoped secret list and reads every value into a flat
// mapping. Slash separators in secret names become key path delimiters.
func (s *Source) Load(ctx context.Context) (*conflayer.Mapping, error) {
	m := conflayer.NewMapping()
	tolerant := s.tolerant || conflayer.TolerateEntries(ctx)
	input := &secretsmanager.ListSecretsInput{}
	if s.prefix != "" {
		input.Filters = []types.Filter{{
			Key:    types.FilterNameStringTypeName,
			Values: []string{s.prefix},
		}}
	}
	for {
		page, err := s.client.ListSecrets(ctx, input, s.callOpts...)
		if err != nil {
			return nil, fmt.Errorf("awssm: list secrets: %w", err)
		}
		for _, secret := range page.SecretList {
			name := aws.ToString(secret.Name)
			if name == "" {
				continue
			}
			if err := s.read(ctx, name, m); err != nil {
				if tolerant {
					continue
				}
				return nil, err
			}
		}
		if page.NextToken == nil {
			return m, nil
		}
		input.NextToken = page.NextToken
	}
}

func (s *Source) read(ctx context.Context, name string, m *conflayer.Mapping) error {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	}
	if s.versionStage != nil {
		input.VersionStage = s.versionStage
	}
	if s.versionID != nil {
		input.VersionId = s.versionID
	}
	out, err := s.client.GetSecretValue(ctx, input, s.callOpts...)
	if err != nil {
		return fmt.Errorf("awssm: get %q: %w", name, err)
	}
	payload, err := extract(out)
	if err != nil {
		return fmt.Errorf("awssm: secret %q: %w", name, err)
	}
	key := s.secretKey(name)
	if key == "" {
		return fmt.Errorf("awssm: secret %q maps to an empty key", name)
	}
	if s.structured {
		m.Merge(conflayer.FlattenJSON(payload, key))
		return nil
	}
	m.Set(key, payload)
	return nil
}

// secretKey strips the configured prefix and turns "/" into key delimiters.
func (s *Source) secretKey(name string) string {
	name = strings.TrimPrefix(name, s.prefix)
	name = strings.Trim(name, "/")
	return strings.ReplaceAll(name, "/", conflayer.Delimiter)
}

func extract(out *secretsmanager.GetSecretValueOutput) (string, error) {
	if out.SecretString != nil {
		return aws.ToString(out.SecretString), nil
	}
	if len(out.SecretBinary) > 0 {
		return string(out.SecretBinary), nil
	}
	return "", errors.New("secret contained no payload")
}
