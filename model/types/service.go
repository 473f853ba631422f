package types

// Service is a host (builtin) module service interface. Host services are
// implemented in Go, registered with the runtime and surfaced to manifests
// as protected modules whose exports are callable methods.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
