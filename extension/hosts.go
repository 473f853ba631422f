package extension

import (
	"sort"
	"sync"

	"github.com/viant/x"

	"github.com/modscope/modscope/model/types"
)

// DataTypeIniter lets a host service register the Go types it works with
// when it is added to the registry.
type DataTypeIniter interface {
	InitTypes(types *Types)
}

// Hosts is the registry of builtin host services: modules implemented in
// Go, surfaced to manifests under their service name and protected from
// isolation.
type Hosts struct {
	types    *Types
	services map[string]types.Service
	mux      sync.RWMutex
}

func (s *Hosts) Types() *Types {
	return s.types
}

// Lookup returns a service by name
func (s *Hosts) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register registers a service
func (s *Hosts) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if typer, ok := service.(DataTypeIniter); ok {
		typer.InitTypes(s.types)
	}
	s.services[service.Name()] = service
}

// Names returns the sorted names of all registered host services.
func (s *Hosts) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]string, 0, len(s.services))
	for name := range s.services {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// NewHosts creates a new host service registry
func NewHosts(goTypes ...*x.Type) *Hosts {
	ret := &Hosts{
		types:    NewTypes(),
		services: make(map[string]types.Service),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
