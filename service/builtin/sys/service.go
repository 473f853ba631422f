package sys

import (
	"context"
	"reflect"
	"strings"

	"github.com/modscope/modscope/model/types"
)

const Name = "sys"

// Introspector exposes the runtime state this service reports on. It is
// implemented by the root runtime; a narrow interface keeps this package
// free of a dependency on it.
type Introspector interface {
	ModuleNames() []string
	ProtectedNames() []string
	SearchPath() []string
	EnvironKeys() []string
	EnvironLookup(name string) (string, bool)
	SessionDepth() int
}

// Service surfaces runtime introspection to manifests
type Service struct {
	runtime Introspector
}

// New creates a new sys service
func New(runtime Introspector) *Service {
	return &Service{runtime: runtime}
}

// Name returns the service name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:   "status",
			Input:  reflect.TypeOf(&StatusInput{}),
			Output: reflect.TypeOf(&StatusOutput{}),
		},
		{
			Name:   "env",
			Input:  reflect.TypeOf(&EnvInput{}),
			Output: reflect.TypeOf(&EnvOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "status":
		return s.status, nil
	case "env":
		return s.env, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) status(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*StatusInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*StatusOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Status(ctx, input, output)
}

func (s *Service) env(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*EnvInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*EnvOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Env(ctx, input, output)
}
