package introspection

import (
	"context"
	"testing"

	executor "github.com/hanpama/typegraph/executor"
	language "github.com/hanpama/typegraph/internal/language"
	schema "github.com/hanpama/typegraph/schema"
)

// noopRuntime implements executor.Runtime with no behaviour.
type noopRuntime struct{}

func (noopRuntime) ResolveField(context.Context, string, string, any, map[string]any) (any, error) {
	return nil, nil
}

func (noopRuntime) ResolveType(context.Context, string, any) (string, error) {
	return "", nil
}

func (noopRuntime) SerializeLeafValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch := schema.NewSchema("")
	sch.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(schema.NewField("hello", "", schema.NamedType("String"))))
	sch.SetQueryType("Query")
	return sch
}

func TestIntrospectionEnabled(t *testing.T) {
	sch := buildSchema(t)
	wrapper := Wrap(noopRuntime{}, sch)
	exec := executor.NewExecutor(wrapper.Runtime, wrapper.Schema)
	doc, err := language.ParseQuery("{__schema{queryType{name}}}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	data := res.Data.(map[string]any)
	schData := data["__schema"].(map[string]any)
	qt := schData["queryType"].(map[string]any)
	if qt["name"].(string) != "Query" {
		t.Fatalf("queryType.name = %v", qt["name"])
	}
}

func TestTypeQuery(t *testing.T) {
	sch := buildSchema(t)
	wrapper := Wrap(noopRuntime{}, sch)
	exec := executor.NewExecutor(wrapper.Runtime, wrapper.Schema)
	doc, err := language.ParseQuery(`{__type(name: "Query"){name kind}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	data := res.Data.(map[string]any)
	typ := data["__type"].(map[string]any)
	if typ["name"] != "Query" || typ["kind"] != "OBJECT" {
		t.Fatalf("unexpected __type payload: %v", typ)
	}
}

func TestTypenameField(t *testing.T) {
	sch := buildSchema(t)
	// __typename works without the introspection wrapper.
	exec := executor.NewExecutor(noopRuntime{}, sch)
	doc, err := language.ParseQuery("{__typename}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	data := res.Data.(map[string]any)
	if data["__typename"] != "Query" {
		t.Fatalf("expected __typename to be Query, got %v", data["__typename"])
	}
}
