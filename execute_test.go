package typegraph

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/hanpama/typegraph/executor"
)

type greeter struct {
	Prefix string
}

func (g *greeter) Hello(ctx context.Context, name string) string {
	return fmt.Sprintf("%s, %s!", g.Prefix, name)
}

func greeterProvider() Provider {
	return ProviderFunc(func(t reflect.Type) (any, error) {
		switch t {
		case reflect.TypeOf(greeter{}):
			return &greeter{Prefix: "Hello"}, nil
		}
		return nil, fmt.Errorf("no instance for %s", t)
	})
}

func TestExecute_HelloWorld(t *testing.T) {
	reg := NewRegistry()
	reg.Object(greeter{}).FieldFunc("hello", (*greeter).Hello, Arg(1, "name", nil))

	compiled, err := Compile(reg,
		reg.Schema("greeting").Query(greeter{}),
		WithContainer(greeterProvider()))
	require.NoError(t, err)

	gotRes := compiled.Execute(context.Background(), `{ hello(name: "World") }`, "", nil)

	wantRes := &executor.ExecutionResult{
		Data:   map[string]any{"hello": "Hello, World!"},
		Errors: []executor.GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_GlobalProviderFallback(t *testing.T) {
	SetInstanceProvider(greeterProvider())
	defer ResetInstanceProvider()

	reg := NewRegistry()
	reg.Object(greeter{}).FieldFunc("hello", (*greeter).Hello, Arg(1, "name", nil))

	compiled, err := Compile(reg, reg.Schema("greeting").Query(greeter{}))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `{ hello(name: "Go") }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, "Hello, Go!", res.Data.(map[string]any)["hello"])
}

func TestExecute_NoProviderConfigured(t *testing.T) {
	ResetInstanceProvider()

	reg := NewRegistry()
	reg.Object(greeter{}).FieldFunc("hello", (*greeter).Hello, Arg(1, "name", nil))

	compiled, err := Compile(reg, reg.Schema("greeting").Query(greeter{}))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `{ hello(name: "x") }`, "", nil)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "no instance provider configured")
}

func TestExecute_NestedResolvers(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)

	compiled, err := Compile(reg,
		reg.Schema("library").Query(library{}),
		WithContainer(ProviderFunc(func(t reflect.Type) (any, error) {
			return &library{}, nil
		})))
	require.NoError(t, err)

	gotRes := compiled.Execute(context.Background(), `{ book(title: "Dune") { title author { name } } }`, "", nil)

	wantRes := &executor.ExecutionResult{
		Data: map[string]any{
			"book": map[string]any{
				"title":  "Dune",
				"author": map[string]any{"name": ""},
			},
		},
		Errors: []executor.GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

type counterService struct {
	n int
}

func (s *counterService) Current(ctx context.Context) int { return s.n }

func (s *counterService) Bump(ctx context.Context, by int) int {
	s.n += by
	return s.n
}

func TestExecute_Mutation(t *testing.T) {
	svc := &counterService{}

	reg := NewRegistry()
	reg.Object(counterService{}).
		FieldFunc("current", (*counterService).Current).
		FieldFunc("bump", (*counterService).Bump, Arg(1, "by", nil))

	compiled, err := Compile(reg,
		reg.Schema("counter").
			Query(counterService{}).
			Mutation(counterService{}),
		WithContainer(ProviderFunc(func(reflect.Type) (any, error) { return svc, nil })))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `mutation { bump(by: 3) }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, 3, res.Data.(map[string]any)["bump"])

	res = compiled.Execute(context.Background(), `{ current }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, 3, res.Data.(map[string]any)["current"])
}

func TestExecute_MergedContainers(t *testing.T) {
	type svcA struct{}
	type svcB struct{}

	reg := NewRegistry()
	reg.Object(svcA{}).FieldFunc("a", func(*svcA) string { return "A" })
	reg.Object(svcB{}).FieldFunc("b", func(*svcB) string { return "B" })

	compiled, err := Compile(reg,
		reg.Schema("merged").Query(svcA{}, svcB{}),
		WithContainer(ProviderFunc(func(t reflect.Type) (any, error) {
			return reflect.New(t).Interface(), nil
		})))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `{ a b }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"a": "A", "b": "B"}, res.Data)
}

type draft struct {
	Title string
	Tags  []string
}

type draftService struct {
	saved []draft
}

func (s *draftService) Save(ctx context.Context, d draft) string {
	s.saved = append(s.saved, d)
	return d.Title
}

func (s *draftService) Count() int { return len(s.saved) }

func TestExecute_InputObjectDecoding(t *testing.T) {
	svc := &draftService{}

	reg := NewRegistry()
	reg.Input(draft{}).Name("DraftInput").
		Field("title", nil).
		Field("tags", nil)
	reg.Object(draftService{}).
		FieldFunc("count", (*draftService).Count).
		FieldFunc("save", (*draftService).Save, Arg(1, "draft", nil))

	compiled, err := Compile(reg,
		reg.Schema("drafts").Query(draftService{}).Mutation(draftService{}),
		WithContainer(ProviderFunc(func(reflect.Type) (any, error) { return svc, nil })))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(),
		`mutation { save(draft: {title: "Notes", tags: ["a", "b"]}) }`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, "Notes", res.Data.(map[string]any)["save"])
	require.Equal(t, draft{Title: "Notes", Tags: []string{"a", "b"}}, svc.saved[0])
}

func TestExecute_ParseError(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)

	compiled, err := Compile(reg, reg.Schema("library").Query(library{}))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `{ book(`, "", nil)
	require.Len(t, res.Errors, 1)
	require.Nil(t, res.Data)
}
