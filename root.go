package conflayer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Root owns the ordered sources and the current merged mapping. The mapping
// is replaced wholesale on every (re)build and read through an atomic
// pointer, so a reader always sees a mapping that is fully before or fully
// after any given reload.
type Root struct {
	sources []*registeredSource
	logger  *slog.Logger

	mu        sync.Mutex // guards snapshots and publication order
	snapshots []*Mapping

	merged atomic.Pointer[Mapping]

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Mapping returns the current merged mapping. The returned mapping is never
// mutated; a reload publishes a fresh one.
func (r *Root) Mapping() *Mapping {
	return r.merged.Load()
}

func (r *Root) currentMapping() *Mapping { return r.Mapping() }

// Node returns the navigation root, bound to the empty key path prefix.
func (r *Root) Node() Node {
	return Node{src: r, ok: true}
}

// At navigates from the root along path, e.g. "server:port".
func (r *Root) At(path string) Node {
	return r.Node().At(path)
}

// Get looks up the leaf string value at key in the current merged mapping.
func (r *Root) Get(key string) (string, bool) {
	return r.Mapping().Get(key)
}

// Refresh reloads every source immediately, applying each source's failure
// policy, and republishes the merged mapping. Reload-tick semantics apply: a
// source that fails keeps its previous snapshot.
func (r *Root) Refresh(ctx context.Context) {
	for i := range r.sources {
		r.refreshSource(ctx, i)
	}
}

// Close cancels every reload timer and waits for in-flight loads to finish.
// Results of loads still running at close time are discarded.
func (r *Root) Close() {
	r.closeOnce.Do(func() {
		r.cancel()
		r.wg.Wait()
	})
}

// reloadLoop drives one source's recurring reload. Ticks are independent per
// source; two sources never coordinate.
func (r *Root) reloadLoop(ctx context.Context, i int) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.sources[i].cfg.reload)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshSource(ctx, i)
		}
	}
}

// refreshSource reloads one source and, on success, recomputes the merged
// mapping from the cached snapshots of every other source plus the fresh one,
// publishing the result as a single replacement. On failure the previous
// snapshot stays in effect.
func (r *Root) refreshSource(ctx context.Context, i int) {
	rs := r.sources[i]
	snap, err := rs.load(ctx)
	if err != nil {
		loadErr := err.(*SourceLoadError)
		if rs.cfg.onError != nil {
			rs.cfg.onError(loadErr)
		}
		r.logger.Warn("config reload failed", "source", rs.src.Name(), "error", loadErr.Err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil {
		// Root was closed while the load was in flight; drop the result.
		return
	}
	r.snapshots[i] = snap
	r.merged.Store(mergeSnapshots(r.snapshots))
	r.logger.Debug("config reloaded", "source", rs.src.Name(), "entries", snap.Len())
}
