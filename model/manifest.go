package model

import (
	"fmt"

	"github.com/modscope/modscope/model/exports"
)

// Import represents a single module import declaration: the alias under
// which the dependency is visible to export expressions, and the module
// name submitted to the resolver chain.
type Import struct {
	Alias  string `json:"alias" yaml:"alias"`
	Module string `json:"module" yaml:"module"`
}

// Imports represents a collection of import declarations
type Imports []*Import

// Lookup returns the import with the supplied alias or nil.
func (i Imports) Lookup(alias string) *Import {
	for _, item := range i {
		if item.Alias == alias {
			return item
		}
	}
	return nil
}

// HasModule returns true when the collection already imports the module.
func (i Imports) HasModule(name string) bool {
	for _, item := range i {
		if item.Module == name {
			return true
		}
	}
	return false
}

// Manifest represents a module definition as loaded from a search-path
// location. Initialization resolves every import through the resolver chain
// and expands exports against the current environment table.
type Manifest struct {

	// Source provides information about the origin of the manifest
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Name is the unique identifier for the module
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the module
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// TypeName optionally binds the exports to a registered extension type
	TypeName string `json:"typeName,omitempty" yaml:"typeName,omitempty"`

	// Version specifies the module version
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Imports represents the module dependencies
	Imports Imports `json:"imports,omitempty" yaml:"imports,omitempty"`

	// Exports holds raw export declarations prior to expansion; string
	// values may reference ${env.KEY} and ${import.alias.key}.
	Exports map[string]interface{} `json:"exports,omitempty" yaml:"exports,omitempty"`

	// Declarations holds typed export declarations parsed from keys in the
	// exportName[type](kind/location) format.
	Declarations exports.Declarations `json:"-" yaml:"-"`
}

// Validate performs a best-effort structural validation of the manifest.
// The returned slice is empty when the manifest is sound; otherwise it
// contains human-readable error descriptions. The function does NOT expand
// any expressions – it only verifies static properties.
func (m *Manifest) Validate() []error {
	var issues []error
	if m.Name == "" {
		issues = append(issues, fmt.Errorf("manifest name is empty"))
	}
	seen := map[string]bool{}
	for _, imp := range m.Imports {
		if imp.Alias == "" {
			issues = append(issues, fmt.Errorf("import of %q has empty alias", imp.Module))
			continue
		}
		if imp.Module == "" {
			issues = append(issues, fmt.Errorf("import alias %q has empty module name", imp.Alias))
			continue
		}
		if seen[imp.Alias] {
			issues = append(issues, fmt.Errorf("duplicate import alias %q", imp.Alias))
		}
		seen[imp.Alias] = true
		if imp.Module == m.Name {
			issues = append(issues, fmt.Errorf("module %q imports itself", m.Name))
		}
	}
	return issues
}
