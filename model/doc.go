// Package model defines the data structures shared across the runtime: the
// module manifest as declared in YAML, and the initialized module held by
// the registry. The model is deliberately free of resolution logic – the
// service layers operate on it.
package model
