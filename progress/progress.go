package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the runtime
// resolver or the session lifecycle.  The fields are signed and therefore
// can be either positive (increment) or negative (decrement).
type Delta struct {
	Imports         int
	CacheHits       int
	Reloads         int
	SessionsEntered int
	SessionsExited  int
}

// Snapshot is a plain-value copy of the tracker state, safe to pass around
// and retain.
type Snapshot struct {
	// Identification – informative only, filled when the tracker is created.
	RuntimeID string
	StartedAt time.Time

	// Counters – modified via Update().
	Imports         int
	CacheHits       int
	Reloads         int
	SessionsEntered int
	SessionsExited  int
}

// Progress keeps aggregated runtime counters.  It is safe for concurrent
// use.
type Progress struct {
	mu       sync.Mutex
	state    Snapshot
	onChange func(Snapshot)
}

// Update applies the supplied delta to the tracker.  It is safe to call
// from multiple goroutines.  If an onChange callback has been registered it
// will be invoked with a snapshot of the updated state outside the critical
// section so that the callback can perform slow operations (e.g. JSON
// encoding, I/O) without blocking runtime internals.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mu.Lock()

	p.state.Imports += d.Imports
	p.state.CacheHits += d.CacheHits
	p.state.Reloads += d.Reloads
	p.state.SessionsEntered += d.SessionsEntered
	p.state.SessionsExited += d.SessionsExited

	// Capture the snapshot for the callback while we still hold the lock to
	// avoid seeing partially updated counters.
	snapshot := p.state
	cb := p.onChange

	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// OnImport records a module resolution that ran initialization.
func (p *Progress) OnImport() { p.Update(Delta{Imports: 1}) }

// OnCacheHit records a module resolution satisfied by the registry.
func (p *Progress) OnCacheHit() { p.Update(Delta{CacheHits: 1}) }

// OnModuleReloaded records a completed reload.
func (p *Progress) OnModuleReloaded() { p.Update(Delta{Reloads: 1}) }

// OnSessionEntered records a session activation.
func (p *Progress) OnSessionEntered() { p.Update(Delta{SessionsEntered: 1}) }

// OnSessionExited records a session deactivation.
func (p *Progress) OnSessionExited() { p.Update(Delta{SessionsExited: 1}) }

// ActiveSessions returns the number of sessions entered but not yet exited.
func (p *Progress) ActiveSessions() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.SessionsEntered - p.state.SessionsExited
}

// Snapshot returns a copy of the tracker state suitable for read-only
// inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OnChange registers a callback that is invoked after every successful
// Update.  Passing nil disables the callback.  Only one callback can be
// active; subsequent calls overwrite the previous value.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a new Progress tracker, embeds it in a derived
// context and returns both.  The caller may optionally pass an onChange
// callback that will be invoked after every counter update.
func WithNewTracker(ctx context.Context, runtimeID string, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		state: Snapshot{
			RuntimeID: runtimeID,
			StartedAt: time.Now(),
		},
		onChange: onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the Progress tracker from ctx.  It returns nil when
// the context carries no tracker; all Progress methods tolerate a nil
// receiver so callers never need to check.
func FromContext(ctx context.Context) *Progress {
	if ctx == nil {
		return nil
	}
	tr, _ := ctx.Value(trackerKey).(*Progress)
	return tr
}

// GetSnapshot is a convenience wrapper that combines FromContext and
// Snapshot.  The boolean return value is false when the context does not
// carry a tracker.
func GetSnapshot(ctx context.Context) (Snapshot, bool) {
	if tr := FromContext(ctx); tr != nil {
		return tr.Snapshot(), true
	}
	return Snapshot{}, false
}

// UpdateCtx is a helper that looks up the tracker in ctx (if any) and
// applies the supplied delta.
func UpdateCtx(ctx context.Context, d Delta) {
	FromContext(ctx).Update(d)
}
