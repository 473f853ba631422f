// Package extension provides run-time registries that let the module
// runtime work with user-defined Go types (for example typed module
// exports) and with builtin host services.
//
// The registries are normally modified through the public APIs under the
// root modscope package, therefore most applications do not need to import
// this package directly.
package extension
