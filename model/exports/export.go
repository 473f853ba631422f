package exports

import (
	bstate "github.com/viant/bindly/state"
)

// Binding location kinds recognised by export declarations.
const (
	KindValue  = "value"  // literal value from the manifest (default)
	KindEnv    = "env"    // resolved from the environment table
	KindImport = "import" // resolved from an imported module's export
)

// Declaration represents a single typed export declaration parsed from a
// manifest key in the format: exportName[fully qualified type name](kind/location).
type Declaration struct {
	// Name is the export name visible to importers
	Name string

	// DataType optionally names a registered extension type the value is
	// converted to
	DataType string

	// Location describes where the value is bound from; a nil/empty
	// location means the literal manifest value is used.
	Location *bstate.Location

	// Value holds the raw manifest value for KindValue declarations
	Value interface{}
}

// Kind returns the binding kind, defaulting to KindValue.
func (d *Declaration) Kind() string {
	if d == nil || d.Location == nil || d.Location.Kind == "" {
		return KindValue
	}
	return d.Location.Kind
}

// In returns the binding location (env key, or alias.export path).
func (d *Declaration) In() string {
	if d == nil || d.Location == nil {
		return ""
	}
	return d.Location.In
}

// Declarations represents a collection of export declarations
type Declarations []*Declaration

// Lookup returns the declaration with the supplied name or nil.
func (d Declarations) Lookup(name string) *Declaration {
	for _, item := range d {
		if item.Name == name {
			return item
		}
	}
	return nil
}
