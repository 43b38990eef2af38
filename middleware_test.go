package typegraph

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type mwService struct {
	calls int
}

func (s *mwService) Value(ctx context.Context) string {
	s.calls++
	return "resolved"
}

func compileMWSchema(t *testing.T, svc *mwService, mw ...Middleware) *CompiledSchema {
	t.Helper()
	reg := NewRegistry()
	reg.Object(mwService{}).FieldFunc("value", (*mwService).Value, Use(mw...))
	compiled, err := Compile(reg,
		reg.Schema("mw").Query(mwService{}),
		WithContainer(ProviderFunc(func(reflect.Type) (any, error) { return svc, nil })))
	require.NoError(t, err)
	return compiled
}

func TestMiddleware_ProceedRunsChainInOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(ctx context.Context, args map[string]any, next *Next) {
			order = append(order, name)
			next.Proceed()
		}
	}
	svc := &mwService{}
	compiled := compileMWSchema(t, svc, mk("outer"), mk("inner"))

	res := compiled.Execute(context.Background(), `{ value }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, "resolved", res.Data.(map[string]any)["value"])
	require.Equal(t, []string{"outer", "inner"}, order)
	require.Equal(t, 1, svc.calls)
}

func TestMiddleware_PassThroughIsIdentity(t *testing.T) {
	passThrough := func(ctx context.Context, args map[string]any, next *Next) {
		next.Proceed()
	}
	svc := &mwService{}
	with := compileMWSchema(t, svc, passThrough)
	without := compileMWSchema(t, svc)

	a := with.Execute(context.Background(), `{ value }`, "", nil)
	b := without.Execute(context.Background(), `{ value }`, "", nil)
	require.Equal(t, b.Data, a.Data)
	require.Equal(t, b.Errors, a.Errors)
}

func TestMiddleware_ResolveShortCircuits(t *testing.T) {
	replace := func(ctx context.Context, args map[string]any, next *Next) {
		next.Resolve("replaced")
	}
	never := func(ctx context.Context, args map[string]any, next *Next) {
		t.Fatal("middleware after Resolve must not run")
	}
	svc := &mwService{}
	compiled := compileMWSchema(t, svc, replace, never)

	res := compiled.Execute(context.Background(), `{ value }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, "replaced", res.Data.(map[string]any)["value"])
	require.Equal(t, 0, svc.calls, "resolver must be skipped")
}

func TestMiddleware_FailAbortsWithError(t *testing.T) {
	fail := func(ctx context.Context, args map[string]any, next *Next) {
		next.Fail(fmt.Errorf("denied"))
	}
	svc := &mwService{}
	compiled := compileMWSchema(t, svc, fail)

	res := compiled.Execute(context.Background(), `{ value }`, "", nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "denied", res.Errors[0].Message)
	require.Equal(t, 0, svc.calls)
}

func TestMiddleware_FailNilGetsDefaultMessage(t *testing.T) {
	fail := func(ctx context.Context, args map[string]any, next *Next) {
		next.Fail(nil)
	}
	svc := &mwService{}
	compiled := compileMWSchema(t, svc, fail)

	res := compiled.Execute(context.Background(), `{ value }`, "", nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "middleware aborted field resolution", res.Errors[0].Message)
}

func TestMiddleware_NoInvocationMeansProceed(t *testing.T) {
	noop := func(ctx context.Context, args map[string]any, next *Next) {}
	svc := &mwService{}
	compiled := compileMWSchema(t, svc, noop)

	res := compiled.Execute(context.Background(), `{ value }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, "resolved", res.Data.(map[string]any)["value"])
	require.Equal(t, 1, svc.calls)
}

func TestMiddleware_DoubleInvocationPanics(t *testing.T) {
	double := func(ctx context.Context, args map[string]any, next *Next) {
		next.Proceed()
		next.Resolve("again")
	}
	svc := &mwService{}
	compiled := compileMWSchema(t, svc, double)

	require.Panics(t, func() {
		compiled.Execute(context.Background(), `{ value }`, "", nil)
	})
}

func TestMiddleware_SeesCoercedArgs(t *testing.T) {
	var seen map[string]any
	spy := func(ctx context.Context, args map[string]any, next *Next) {
		seen = args
		next.Proceed()
	}

	reg := NewRegistry()
	reg.Object(greeter{}).FieldFunc("hello", (*greeter).Hello,
		Arg(1, "name", nil), Use(spy))
	compiled, err := Compile(reg,
		reg.Schema("greeting").Query(greeter{}),
		WithContainer(greeterProvider()))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `{ hello(name: "Mira") }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"name": "Mira"}, seen)
}

func TestMiddleware_ChainStopsAtFirstFail(t *testing.T) {
	first := func(ctx context.Context, args map[string]any, next *Next) {
		next.Fail(errors.New("stop"))
	}
	second := func(ctx context.Context, args map[string]any, next *Next) {
		t.Fatal("unreachable middleware ran")
	}
	svc := &mwService{}
	compiled := compileMWSchema(t, svc, first, second)

	res := compiled.Execute(context.Background(), `{ value }`, "", nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "stop", res.Errors[0].Message)
}
