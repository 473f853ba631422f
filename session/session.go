package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/modscope/modscope/internal/idgen"
	"github.com/modscope/modscope/model"
	"github.com/modscope/modscope/progress"
	"github.com/modscope/modscope/service/environ"
	"github.com/modscope/modscope/service/registry"
	"github.com/modscope/modscope/service/resolver"
	"github.com/modscope/modscope/tracing"
)

var (
	// ErrActive reports a usage error: entering a session that is already
	// active.
	ErrActive = errors.New("session already active")
	// ErrInactive reports a usage error: an operation that requires an
	// active session was invoked on an inactive one.
	ErrInactive = errors.New("session not active")
	// ErrNotOwned reports a usage error: reloading a module that was not
	// loaded by this session.
	ErrNotOwned = errors.New("module not loaded by this session")
)

// Host gives a session access to the three pieces of runtime state it
// interposes on, plus the runtime's standard module re-initialization.
// It is implemented by the root runtime.
type Host interface {
	Registry() *registry.Service
	Environ() *environ.Service
	Resolvers() *resolver.Chain
	SearchPath() []string
	SwapSearchPath(paths []string) []string
	Reinitialize(ctx context.Context, module *model.Module) error
}

// Observer is notified of session lifecycle transitions. The root runtime
// installs one to publish session events.
type Observer interface {
	SessionEntered(session *Session)
	SessionExited(session *Session)
}

// Session isolates a scope of module loading from the rest of the runtime:
// while active it strips the module registry down to protected and
// keep-global names, records every module resolved through the resolver
// chain, and overlays the environment table and the manifest search path.
// On exit all three are restored to their pre-entry state.
//
// A session is re-entrant across separate uses but must not be entered
// while already active. Concurrent use of overlapping sessions is not
// supported; callers serialize session use.
type Session struct {
	id   string
	host Host

	keepGlobal    []string
	inheritEnv    bool
	isolatedEnv   environ.Table
	inheritPaths  bool
	isolatedPaths []string

	observer Observer

	active           bool
	originalPath     []string
	originalEnv      environ.Table
	originalSnapshot registry.Snapshot
	isolatedModules  map[string]*model.Module
	tracker          *progress.Progress
}

// New creates an inactive session bound to the supplied host runtime.
func New(host Host, opts ...Option) *Session {
	ret := &Session{
		id:           idgen.New(),
		host:         host,
		inheritEnv:   true,
		inheritPaths: true,
		isolatedEnv:  environ.Table{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// IsActive returns true between Enter and Exit.
func (s *Session) IsActive() bool {
	return s.active
}

// IsolatedModules returns the session's private view of what it loaded:
// every module successfully resolved while the session was active, keyed
// by name.
func (s *Session) IsolatedModules() map[string]*model.Module {
	return s.isolatedModules
}

// Enter activates the session. Side effects, in order: snapshot the
// registry, search path and environment table; strip the registry of every
// entry outside the protected set and keepGlobal; install the session at
// the head of the resolver chain; swap in the isolated environment table
// (inheriting outer values without overwriting session-declared ones);
// swap in the isolated search path (session paths first, inherited outer
// paths appended).
//
// Entering an already active session fails fast and mutates nothing.
func (s *Session) Enter(ctx context.Context) error {
	if s.active {
		return fmt.Errorf("%w: %v", ErrActive, s.id)
	}
	_, span := tracing.StartSpan(ctx, "session.enter", "INTERNAL")
	defer tracing.EndSpan(span, nil)
	span.WithAttributes(map[string]string{"session.id": s.id})

	s.isolatedModules = make(map[string]*model.Module)

	reg := s.host.Registry()
	s.originalSnapshot = reg.Snapshot()
	s.originalPath = s.host.SearchPath()
	s.originalEnv = s.host.Environ().Current()

	reg.Strip(s.keepGlobal...)
	s.host.Resolvers().Push(s)

	if s.inheritEnv {
		s.isolatedEnv.SetMissing(s.originalEnv)
	}
	s.host.Environ().Swap(s.isolatedEnv)
	s.host.SwapSearchPath(s.effectivePaths())

	s.active = true
	s.tracker = progress.FromContext(ctx)
	s.tracker.OnSessionEntered()
	if s.observer != nil {
		s.observer.SessionEntered(s)
	}
	return nil
}

// effectivePaths builds the search path visible inside the session:
// session-declared entries first, inherited outer entries appended.
func (s *Session) effectivePaths() []string {
	paths := make([]string, 0, len(s.isolatedPaths)+len(s.originalPath))
	paths = append(paths, s.isolatedPaths...)
	if s.inheritPaths {
		paths = append(paths, s.originalPath...)
	}
	return paths
}

// Exit deactivates the session and restores the registry, environment
// table, search path and resolver chain to their pre-entry state. It is
// unconditional, never fails, and is safe to call on an inactive session.
func (s *Session) Exit() {
	if !s.active {
		return
	}
	reg := s.host.Registry()
	reg.Strip(s.keepGlobal...)
	reg.Merge(s.originalSnapshot)

	s.host.Resolvers().Remove(s)
	s.host.Environ().Swap(s.originalEnv)
	s.host.SwapSearchPath(s.originalPath)

	s.active = false
	s.tracker.OnSessionExited()
	s.tracker = nil
	if s.observer != nil {
		s.observer.SessionExited(s)
	}
}

// Do runs fn inside the session: enter, invoke, exit. Exit runs on every
// return path, including a panic inside fn. The error returned by fn
// passes through unchanged.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.Enter(ctx); err != nil {
		return err
	}
	defer s.Exit()
	return fn(ctx)
}

// Wrap returns a callable that runs fn inside its own enter/exit pair on
// every invocation.
func (s *Session) Wrap(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return s.Do(ctx, fn)
	}
}

// Reload re-runs the initialization of a module this session loaded, with
// the registry temporarily holding the session's isolated view so imports
// performed during re-initialization resolve through the isolation again.
// The registry is restored to the entry snapshot afterwards regardless of
// the re-initialization outcome; re-initialization errors propagate after
// restoration has run.
func (s *Session) Reload(ctx context.Context, module *model.Module) (err error) {
	if !s.active {
		return fmt.Errorf("%w: reload %v", ErrInactive, moduleName(module))
	}
	if module == nil || s.isolatedModules[module.Name] != module {
		return fmt.Errorf("%w: %v", ErrNotOwned, moduleName(module))
	}
	ctx, span := tracing.StartSpan(ctx, "session.reload", "INTERNAL")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	span.WithAttributes(map[string]string{"session.id": s.id, "module": module.Name})

	reg := s.host.Registry()
	reg.Strip(s.keepGlobal...)
	reg.MergeModules(s.isolatedModules)
	defer func() {
		reg.Strip(s.keepGlobal...)
		reg.Merge(s.originalSnapshot)
	}()
	if err = s.host.Reinitialize(ctx, module); err != nil {
		return err
	}
	progress.FromContext(ctx).OnModuleReloaded()
	return nil
}

// Intercept implements resolver.Interceptor: delegate resolution down the
// chain, then record the result unless the name is protected or kept
// global. Resolution failures pass through unchanged.
func (s *Session) Intercept(ctx context.Context, name string, next resolver.Resolver) (*model.Module, error) {
	module, err := next.Resolve(ctx, name)
	if err != nil || module == nil {
		return module, err
	}
	if !s.exempt(module.Name) {
		s.isolatedModules[module.Name] = module
	}
	return module, nil
}

// exempt returns true for names the session never isolates.
func (s *Session) exempt(name string) bool {
	if s.host.Registry().Protected().Has(name) {
		return true
	}
	for _, kept := range s.keepGlobal {
		if kept == name {
			return true
		}
	}
	return false
}

func moduleName(module *model.Module) string {
	if module == nil {
		return "<nil>"
	}
	return module.Name
}
