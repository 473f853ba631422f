package registry

import (
	"sort"
	"sync"

	"github.com/modscope/modscope/model"
)

// Service is the runtime module registry: the mapping of a loaded module's
// name to its initialized module object, consulted before re-running a
// module's initialization. Isolation sessions operate on it exclusively
// through the Snapshot/Strip/Merge interface so the save/patch/restore
// discipline stays explicit and testable.
type Service struct {
	mux       sync.RWMutex
	modules   map[string]*model.Module
	protected Protected
}

// New creates a registry guarding the supplied protected name set.
func New(protected Protected) *Service {
	if protected == nil {
		protected = Protected{}
	}
	return &Service{
		modules:   make(map[string]*model.Module),
		protected: protected,
	}
}

// Protected returns the registry's protected name set.
func (s *Service) Protected() Protected {
	return s.protected
}

// Lookup returns the module registered under name or nil.
func (s *Service) Lookup(name string) *model.Module {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.modules[name]
}

// Store registers a module under its name, replacing any previous entry.
func (s *Service) Store(module *model.Module) {
	if module == nil || module.Name == "" {
		return
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.modules[module.Name] = module
}

// Delete removes the entry for name. Protected names are kept regardless.
func (s *Service) Delete(name string) {
	if s.protected.Has(name) {
		return
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.modules, name)
}

// Len returns the number of registered modules.
func (s *Service) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.modules)
}

// Names returns the sorted names of all registered modules.
func (s *Service) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]string, 0, len(s.modules))
	for name := range s.modules {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Snapshot returns a copy of the current registry mapping. The snapshot is
// immutable at capture time: later registry mutations do not affect it.
func (s *Service) Snapshot() Snapshot {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make(Snapshot, len(s.modules))
	for name, module := range s.modules {
		ret[name] = module
	}
	return ret
}

// Strip removes every entry whose name is neither protected nor in keep.
// This is the "patch" half of the session save/patch/restore protocol; the
// caller is expected to hold a snapshot taken beforehand.
func (s *Service) Strip(keep ...string) {
	kept := make(map[string]bool, len(keep))
	for _, name := range keep {
		kept[name] = true
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	for name := range s.modules {
		if s.protected.Has(name) || kept[name] {
			continue
		}
		delete(s.modules, name)
	}
}

// Merge copies every snapshot entry back into the registry, overwriting
// entries with the same name and leaving others untouched.
func (s *Service) Merge(snapshot Snapshot) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for name, module := range snapshot {
		s.modules[name] = module
	}
}

// MergeModules merges a plain module table (e.g. a session's isolated
// modules) into the registry.
func (s *Service) MergeModules(modules map[string]*model.Module) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for name, module := range modules {
		s.modules[name] = module
	}
}
