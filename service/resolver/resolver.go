package resolver

import (
	"context"

	"github.com/modscope/modscope/model"
)

// Resolver resolves a module name to an initialized module. Implementations
// either produce the module themselves or delegate to the next resolver in
// the chain they were installed into.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*model.Module, error)
}

// Func adapts an ordinary function to the Resolver interface.
type Func func(ctx context.Context, name string) (*model.Module, error)

// Resolve implements Resolver.
func (f Func) Resolve(ctx context.Context, name string) (*model.Module, error) {
	return f(ctx, name)
}

// Interceptor is a resolver that participates in a chain: it receives the
// next resolver to delegate to. Isolation sessions implement Interceptor to
// observe every successful resolution made while they are active.
type Interceptor interface {
	Intercept(ctx context.Context, name string, next Resolver) (*model.Module, error)
}
