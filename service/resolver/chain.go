package resolver

import (
	"context"
	"sync"

	"github.com/modscope/modscope/model"
)

// Chain is an ordered list of interceptors terminated by a base resolver.
// Resolution starts at the most recently pushed interceptor and delegates
// inward; the base resolver (the runtime's standard resolution algorithm)
// runs last. Sessions push themselves on entry and remove themselves on
// exit, so nested sessions naturally stack.
type Chain struct {
	mux          sync.RWMutex
	base         Resolver
	interceptors []Interceptor
}

// NewChain creates a chain over the supplied base resolver.
func NewChain(base Resolver) *Chain {
	return &Chain{base: base}
}

// Base returns the terminal resolver.
func (c *Chain) Base() Resolver {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.base
}

// Push installs an interceptor at the head of the chain.
func (c *Chain) Push(interceptor Interceptor) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.interceptors = append(c.interceptors, interceptor)
}

// Remove uninstalls the supplied interceptor wherever it sits. Removing an
// interceptor that is not installed is a no-op, which keeps session exit
// unconditional even after a partially failed entry.
func (c *Chain) Remove(interceptor Interceptor) {
	c.mux.Lock()
	defer c.mux.Unlock()
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		if c.interceptors[i] == interceptor {
			c.interceptors = append(c.interceptors[:i], c.interceptors[i+1:]...)
			return
		}
	}
}

// Depth returns the number of installed interceptors.
func (c *Chain) Depth() int {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return len(c.interceptors)
}

// Resolve runs the chain from its head down to the base resolver.
func (c *Chain) Resolve(ctx context.Context, name string) (*model.Module, error) {
	c.mux.RLock()
	interceptors := make([]Interceptor, len(c.interceptors))
	copy(interceptors, c.interceptors)
	base := c.base
	c.mux.RUnlock()
	return next(interceptors, base).Resolve(ctx, name)
}

// next builds the delegate for the interceptor at position len-1, wiring
// each interceptor to the one below it.
func next(interceptors []Interceptor, base Resolver) Resolver {
	if len(interceptors) == 0 {
		return base
	}
	head := interceptors[len(interceptors)-1]
	rest := next(interceptors[:len(interceptors)-1], base)
	return Func(func(ctx context.Context, name string) (*model.Module, error) {
		return head.Intercept(ctx, name, rest)
	})
}
