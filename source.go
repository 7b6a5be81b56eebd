package conflayer

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Source contributes a flat mapping to the merged key space. Implementations
// gather entries from a backing store (process environment, file, remote
// service) and may block on I/O; Load is always given a context and should
// honor its cancellation.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Mapping, error)
}

// KeyTransformFunc rewrites a key path before it enters a source's mapping.
// The result must be a non-empty key path; entries whose transform yields an
// empty key are rejected under the source's failure policy.
type KeyTransformFunc func(key string) string

// ErrorCallback receives the load failure of an optional source, or a
// reload-tick failure of any source.
type ErrorCallback func(err *SourceLoadError)

// SourceOption configures a source at registration time.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	optional  bool
	reload    time.Duration
	timeout   time.Duration
	transform KeyTransformFunc
	onError   ErrorCallback
}

// Optional marks the source as failure-tolerant: a failed load contributes an
// empty mapping for that cycle instead of aborting the build or reload. The
// flag also extends to individual entries: loads run with entry tolerance set
// on their context (see TolerateEntries), so sources that honor it skip
// unreadable entries instead of failing the whole snapshot.
func Optional() SourceOption {
	return func(c *sourceConfig) {
		c.optional = true
	}
}

type entryToleranceKey struct{}

// WithEntryTolerance marks ctx so that a Load should skip entries it cannot
// fetch or parse instead of aborting the snapshot. The engine sets it on
// every load of a source registered with Optional.
func WithEntryTolerance(ctx context.Context) context.Context {
	return context.WithValue(ctx, entryToleranceKey{}, true)
}

// TolerateEntries reports whether the load owning ctx should skip unreadable
// entries. Sources that fetch entries one by one consult it in Load.
func TolerateEntries(ctx context.Context) bool {
	tolerate, _ := ctx.Value(entryToleranceKey{}).(bool)
	return tolerate
}

// ReloadEvery schedules the source for periodic reloading. Each tick reloads
// this source only and republishes the full merged mapping atomically.
func ReloadEvery(interval time.Duration) SourceOption {
	return func(c *sourceConfig) {
		if interval > 0 {
			c.reload = interval
		}
	}
}

// LoadTimeout bounds each Load call. A timeout is treated like any other
// whole-source failure.
func LoadTimeout(d time.Duration) SourceOption {
	return func(c *sourceConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// TransformKeys applies fn to every key the source produces. fn must be pure;
// entries it maps to an empty key are rejected.
func TransformKeys(fn KeyTransformFunc) SourceOption {
	return func(c *sourceConfig) {
		if fn != nil {
			c.transform = fn
		}
	}
}

// OnError registers a callback invoked when this source fails to load while
// marked optional, or when one of its reload ticks fails.
func OnError(fn ErrorCallback) SourceOption {
	return func(c *sourceConfig) {
		if fn != nil {
			c.onError = fn
		}
	}
}

// registeredSource pairs a source with its registration-time policy.
type registeredSource struct {
	src Source
	cfg sourceConfig
}

// load fetches one snapshot honoring the source's timeout and key transform.
func (rs *registeredSource) load(ctx context.Context) (*Mapping, error) {
	if rs.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.cfg.timeout)
		defer cancel()
	}
	if rs.cfg.optional {
		ctx = WithEntryTolerance(ctx)
	}
	snap, err := rs.src.Load(ctx)
	if err != nil {
		return nil, &SourceLoadError{Source: rs.src.Name(), Err: err}
	}
	if snap == nil {
		snap = NewMapping()
	}
	if rs.cfg.transform == nil {
		return snap, nil
	}
	return rs.rewrite(snap)
}

// rewrite applies the caller transform to every key. Invalid results are
// skipped when the source is optional and abort the snapshot when required.
func (rs *registeredSource) rewrite(snap *Mapping) (*Mapping, error) {
	out := NewMapping()
	for _, lower := range snap.order {
		e := snap.entries[lower]
		rewritten := strings.TrimSpace(rs.cfg.transform(e.key))
		if rewritten == "" {
			if rs.cfg.optional {
				continue
			}
			cause := &KeyTransformError{
				Source: rs.src.Name(),
				Key:    e.key,
				Err:    errors.New("transform produced an empty key"),
			}
			return nil, &SourceLoadError{Source: rs.src.Name(), Err: cause}
		}
		out.put(rewritten, e.value)
	}
	return out, nil
}
