package model

import (
	"time"
)

// Source provides information about the origin of a module definition.
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Module represents an initialized module held by the runtime registry.
// A module is produced by resolving its manifest, importing its declared
// dependencies and expanding its exports. The same Module pointer is reused
// across re-initializations – only its content changes.
type Module struct {

	// Name is the unique identifier the module is registered under
	Name string `json:"name" yaml:"name"`

	// Source provides information about the origin of the module
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Manifest is the decoded definition this module was built from
	Manifest *Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// Imports holds the modules resolved for each import alias
	Imports map[string]*Module `json:"-" yaml:"-"`

	// Exports holds the expanded export values
	Exports map[string]interface{} `json:"exports,omitempty" yaml:"exports,omitempty"`

	// Value holds the exports converted to the manifest's typeName, when a
	// matching extension type has been registered; nil otherwise.
	Value interface{} `json:"-" yaml:"-"`

	// Builtin marks host-provided modules that are implemented in Go and
	// protected from isolation.
	Builtin bool `json:"builtin,omitempty" yaml:"builtin,omitempty"`

	// InitCount is incremented by every (re-)initialization
	InitCount int `json:"initCount" yaml:"initCount"`

	// InitializedAt records the last (re-)initialization time
	InitializedAt time.Time `json:"initializedAt,omitempty" yaml:"initializedAt,omitempty"`
}

// Export returns the expanded export value for the supplied name.
func (m *Module) Export(name string) (interface{}, bool) {
	if m == nil || m.Exports == nil {
		return nil, false
	}
	value, ok := m.Exports[name]
	return value, ok
}

// Import returns the module resolved for the supplied import alias.
func (m *Module) Import(alias string) *Module {
	if m == nil {
		return nil
	}
	return m.Imports[alias]
}
