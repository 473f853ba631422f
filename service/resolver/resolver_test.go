package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modscope/modscope/model"
)

type recorder struct {
	id    string
	seen  []string
	trace *[]string
}

func (r *recorder) Intercept(ctx context.Context, name string, next Resolver) (*model.Module, error) {
	*r.trace = append(*r.trace, r.id)
	module, err := next.Resolve(ctx, name)
	if err == nil {
		r.seen = append(r.seen, module.Name)
	}
	return module, err
}

func TestChainOrderAndRemoval(t *testing.T) {
	var trace []string
	base := Func(func(ctx context.Context, name string) (*model.Module, error) {
		trace = append(trace, "base")
		if name == "missing" {
			return nil, fmt.Errorf("module %q not found", name)
		}
		return &model.Module{Name: name}, nil
	})

	chain := NewChain(base)
	outer := &recorder{id: "outer", trace: &trace}
	inner := &recorder{id: "inner", trace: &trace}
	chain.Push(outer)
	chain.Push(inner)

	module, err := chain.Resolve(context.Background(), "app")
	assert.Nil(t, err)
	assert.EqualValues(t, "app", module.Name)
	assert.EqualValues(t, []string{"inner", "outer", "base"}, trace, "innermost interceptor runs first")
	assert.EqualValues(t, []string{"app"}, outer.seen)
	assert.EqualValues(t, []string{"app"}, inner.seen)

	// failures pass through every interceptor unchanged
	trace = nil
	_, err = chain.Resolve(context.Background(), "missing")
	assert.NotNil(t, err)
	assert.EqualValues(t, []string{"inner", "outer", "base"}, trace)
	assert.EqualValues(t, []string{"app"}, outer.seen, "failed resolution is not recorded")

	// removing the inner interceptor leaves the outer one in place
	chain.Remove(inner)
	assert.EqualValues(t, 1, chain.Depth())
	trace = nil
	_, err = chain.Resolve(context.Background(), "lib")
	assert.Nil(t, err)
	assert.EqualValues(t, []string{"outer", "base"}, trace)

	// removing twice is a no-op
	chain.Remove(inner)
	assert.EqualValues(t, 1, chain.Depth())
}
