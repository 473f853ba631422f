package environ

import (
	"sort"
	"sync"
)

// Table represents an environment-variable table: a plain string key/value
// mapping. Tables are passed and restored by reference – a session swaps
// the runtime's current table for its own and puts the original back on
// exit, so outer values survive untouched.
type Table map[string]string

// Clone returns a shallow copy of the table.
func (t Table) Clone() Table {
	ret := make(Table, len(t))
	for k, v := range t {
		ret[k] = v
	}
	return ret
}

// SetMissing copies every entry of other that is not already present. It
// implements inheritance semantics where existing (session-declared) values
// take precedence over inherited outer values.
func (t Table) SetMissing(other Table) {
	for k, v := range other {
		if _, ok := t[k]; !ok {
			t[k] = v
		}
	}
}

// Keys returns the sorted key set, mainly for diagnostics and tests.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Service holds the runtime's current environment table. The table itself
// is a shared singleton from the perspective of module initialization –
// only one table is visible at a time and sessions replace it wholesale.
type Service struct {
	mux     sync.RWMutex
	current Table
}

// New returns a service seeded with the supplied entries (may be nil).
func New(entries Table) *Service {
	if entries == nil {
		entries = Table{}
	}
	return &Service{current: entries}
}

// Current returns the table currently visible to module initialization.
func (s *Service) Current() Table {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.current
}

// Swap replaces the current table and returns the previous one so the
// caller can restore it later by reference.
func (s *Service) Swap(t Table) Table {
	s.mux.Lock()
	defer s.mux.Unlock()
	prev := s.current
	if t == nil {
		t = Table{}
	}
	s.current = t
	return prev
}

// Lookup returns the value for key from the current table.
func (s *Service) Lookup(key string) (string, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	value, ok := s.current[key]
	return value, ok
}

// Set updates a single entry of the current table.
func (s *Service) Set(key, value string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.current[key] = value
}

// Expand replaces all ${env.KEY} expressions in value with entries of the
// current table.
func (s *Service) Expand(value string) string {
	return ExpandExpr(value, func(key string) string {
		v, _ := s.Lookup(key)
		return v
	})
}
