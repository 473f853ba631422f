package session

import "github.com/modscope/modscope/service/environ"

// Option customises a session at construction time.
type Option func(*Session)

// WithKeepGlobal exempts the supplied module names from isolation: inside
// the session they share identity with the outer scope's modules.
func WithKeepGlobal(names ...string) Option {
	return func(s *Session) {
		s.keepGlobal = append(s.keepGlobal, names...)
	}
}

// WithEnv seeds the session's isolated environment table. Construction-time
// values win over inherited outer values for overlapping keys.
func WithEnv(env map[string]string) Option {
	return func(s *Session) {
		for k, v := range env {
			s.isolatedEnv[k] = v
		}
	}
}

// WithInheritEnv controls whether the outer environment table is merged
// into the session's on entry (default true).
func WithInheritEnv(inherit bool) Option {
	return func(s *Session) {
		s.inheritEnv = inherit
	}
}

// WithPaths declares search-path entries consulted before any inherited
// outer entries while the session is active.
func WithPaths(paths ...string) Option {
	return func(s *Session) {
		s.isolatedPaths = append(s.isolatedPaths, paths...)
	}
}

// WithInheritPaths controls whether the outer search path is appended to
// the session's own entries on entry (default true).
func WithInheritPaths(inherit bool) Option {
	return func(s *Session) {
		s.inheritPaths = inherit
	}
}

// WithObserver installs a lifecycle observer.
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		s.observer = observer
	}
}

// IsolatedEnv returns the session's own environment table. Exposed for the
// host runtime and tests; mutating it while the session is active changes
// the environment visible inside the session.
func (s *Session) IsolatedEnv() environ.Table {
	return s.isolatedEnv
}

// KeepGlobal returns the names this session never isolates.
func (s *Session) KeepGlobal() []string {
	return s.keepGlobal
}
