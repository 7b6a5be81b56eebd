package conflayer

import (
	"context"
	"log/slog"
)

// Builder accumulates sources in registration order. Later sources override
// earlier ones on conflicting keys once built.
type Builder struct {
	sources []*registeredSource
	logger  *slog.Logger
}

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for reload diagnostics. Defaults to
// slog.Default.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder constructs an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends a source with its registration-time policy. It returns the
// Builder for chaining.
func (b *Builder) Add(src Source, opts ...SourceOption) *Builder {
	if src == nil {
		return b
	}
	rs := &registeredSource{src: src}
	for _, opt := range opts {
		opt(&rs.cfg)
	}
	b.sources = append(b.sources, rs)
	return b
}

// Build loads every source once in registration order and returns the merged,
// navigable root. A failed required source aborts the build: the returned
// error is a *BuildError naming each failed source and no Root is created. A
// failed optional source contributes an empty mapping and its failure goes to
// the source's OnError callback. Sources with a reload interval are scheduled
// from here; close the Root to stop them.
func (b *Builder) Build(ctx context.Context) (*Root, error) {
	snapshots := make([]*Mapping, len(b.sources))
	var group *BuildError
	for i, rs := range b.sources {
		snap, err := rs.load(ctx)
		if err != nil {
			loadErr := err.(*SourceLoadError)
			if !rs.cfg.optional {
				appendBuildFailure(&group, loadErr)
				continue
			}
			if rs.cfg.onError != nil {
				rs.cfg.onError(loadErr)
			}
			snap = NewMapping()
		}
		snapshots[i] = snap
	}
	if group.Has() {
		return nil, group
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &Root{
		sources:   b.sources,
		snapshots: snapshots,
		logger:    b.logger,
		cancel:    cancel,
	}
	r.merged.Store(mergeSnapshots(snapshots))
	for i, rs := range b.sources {
		if rs.cfg.reload <= 0 {
			continue
		}
		r.wg.Add(1)
		go r.reloadLoop(runCtx, i)
	}
	return r, nil
}
