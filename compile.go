package typegraph

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/hanpama/typegraph/executor"
	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
	"github.com/hanpama/typegraph/internal/introspection"
	"github.com/hanpama/typegraph/internal/language"
	"github.com/hanpama/typegraph/internal/reqid"
	"github.com/hanpama/typegraph/schema"
)

// CompileOption configures one Compile call.
type CompileOption func(*compileConfig)

type compileConfig struct {
	container     Provider
	introspection bool
}

// WithContainer pins the instance provider for this compiled schema,
// bypassing the process-wide provider.
func WithContainer(p Provider) CompileOption {
	return func(c *compileConfig) { c.container = p }
}

// WithIntrospection enables the __schema and __type meta fields on the
// compiled schema's query root.
func WithIntrospection() CompileOption {
	return func(c *compileConfig) { c.introspection = true }
}

// CompiledSchema is the executable product of a compile pass: the type
// system plus the runtime carrying the synthesized resolvers.
type CompiledSchema struct {
	Schema  *schema.Schema
	Runtime executor.Runtime

	exec *executor.Executor
}

// Compile turns the registered metadata into an executable schema. The whole
// registry is validated up front: any recorded authoring violation, missing
// Query role, unresolvable field type or root field collision fails the call
// with a typed error, never a partial schema. Every call compiles from
// scratch with a fresh type table; compiled schemas from separate calls
// share nothing.
func Compile(reg *Registry, roots *SchemaBuilder, opts ...CompileOption) (*CompiledSchema, error) {
	cfg := compileConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := ""
	if roots != nil {
		name = roots.name
	}
	ctx := context.Background()
	started := time.Now()
	eventbus.Publish(ctx, events.CompileStart{Schema: name})

	compiled, err := compile(reg, roots, cfg)

	types := 0
	if compiled != nil {
		types = len(compiled.Schema.Types)
	}
	eventbus.Publish(ctx, events.CompileFinish{
		Schema:   name,
		Types:    types,
		Err:      err,
		Duration: time.Since(started),
	})
	return compiled, err
}

func compile(reg *Registry, roots *SchemaBuilder, cfg compileConfig) (*CompiledSchema, error) {
	if len(reg.violations) > 0 {
		return nil, errors.Join(reg.violations...)
	}
	if roots == nil || len(roots.queries) == 0 {
		return nil, configErrorf("schema needs at least one Query container")
	}

	s := newSession(reg, roots.name, cfg.container)

	if err := s.compileRoot("Query", roots.queries); err != nil {
		return nil, err
	}
	s.sch.SetQueryType("Query")
	if len(roots.mutations) > 0 {
		if err := s.compileRoot("Mutation", roots.mutations); err != nil {
			return nil, err
		}
		s.sch.SetMutationType("Mutation")
	}

	rt := executor.Runtime(&boundRuntime{
		resolvers:     s.resolvers,
		typeResolvers: s.typeResolvers,
	})
	sch := s.sch
	if cfg.introspection {
		w := introspection.Wrap(rt, sch)
		rt = w.Runtime
		sch = w.Schema
	}
	return &CompiledSchema{
		Schema:  sch,
		Runtime: rt,
		exec:    executor.NewExecutor(rt, sch),
	}, nil
}

// compileRoot merges the container shapes into one root object type. Fields
// from different containers keep their declaration order per container;
// cross-container name collisions are authoring errors.
func (s *session) compileRoot(name string, containers []reflect.Type) error {
	if _, taken := s.sch.Types[name]; taken {
		return configErrorf("root type name %q already in use", name)
	}
	typ := schema.NewType(name, schema.TypeKindObject, "")
	s.sch.AddType(typ)
	for _, ct := range containers {
		d := s.reg.lookup(ct)
		if d == nil || d.kind != KindObject {
			return configErrorf("%s container %s is not a registered object shape", name, ct)
		}
		for _, f := range d.fields {
			if typ.GetField(f.name) != nil {
				return configErrorf("%s field %q declared by more than one container", name, f.name)
			}
			if err := s.compileField(typ, d, f, &containerBinding{shape: d.goType}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Execute parses and runs one operation against the compiled schema. Parse
// failures and execution errors are reported in the result's error list.
func (c *CompiledSchema) Execute(ctx context.Context, query, operationName string, vars map[string]any) *executor.ExecutionResult {
	ctx, _ = reqid.NewContext(ctx)
	doc, err := language.ParseQuery(query)
	if err != nil {
		return &executor.ExecutionResult{Errors: []executor.GraphQLError{{Message: err.Error()}}}
	}
	return c.exec.ExecuteRequest(ctx, doc, operationName, vars, nil)
}

// SDL renders the compiled type system in schema definition language.
func (c *CompiledSchema) SDL() string {
	return schema.Render(c.Schema)
}
