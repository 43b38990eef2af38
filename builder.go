package typegraph

import (
	"reflect"
)

// FieldOption configures one field declaration.
type FieldOption func(*fieldDesc)

// Returns overrides the field's result type. Without it, the type is inferred
// from the resolver's return value or the backing struct field.
func Returns(t *TypeExpr) FieldOption {
	return func(f *fieldDesc) { f.typ = t }
}

// Nullable marks the field's result type nullable. Types default to non-null.
func Nullable() FieldOption {
	return func(f *fieldDesc) {
		f.nullable = true
		if f.typ != nil {
			f.typ = f.typ.Nullable()
		}
	}
}

// Paginated wraps the field's element type in a connection envelope. The
// resolver must return (items, total) or (items, total, error).
func Paginated() FieldOption {
	return func(f *fieldDesc) { f.paginated = true }
}

// Use appends middleware to the field's chain, outermost first.
func Use(mw ...Middleware) FieldOption {
	return func(f *fieldDesc) { f.middleware = append(f.middleware, mw...) }
}

// Arg binds the resolver parameter at pos to the named GraphQL argument.
// A nil type means infer it from the parameter's Go type.
func Arg(pos int, name string, t *TypeExpr) FieldOption {
	return func(f *fieldDesc) {
		f.args = append(f.args, &argDesc{pos: pos, name: name, typ: t, source: argSourceArg})
	}
}

// Context binds the resolver parameter at pos to the request context.
func Context(pos int) FieldOption {
	return func(f *fieldDesc) {
		f.args = append(f.args, &argDesc{pos: pos, source: argSourceContext})
	}
}

// Root binds the resolver parameter at pos to the parent value.
func Root(pos int) FieldOption {
	return func(f *fieldDesc) {
		f.args = append(f.args, &argDesc{pos: pos, source: argSourceRoot})
	}
}

// Inject binds the resolver parameter at pos to an instance obtained from the
// configured provider, keyed by the parameter's Go type.
func Inject(pos int) FieldOption {
	return func(f *fieldDesc) {
		f.args = append(f.args, &argDesc{pos: pos, source: argSourceInject})
	}
}

// Description sets the field's schema description.
func Description(s string) FieldOption {
	return func(f *fieldDesc) { f.description = s }
}

// Deprecated marks the field deprecated with the given reason.
func Deprecated(reason string) FieldOption {
	return func(f *fieldDesc) { f.deprecation = reason }
}

// From overrides the Go struct field a property is read from. Without it the
// property name is matched against struct fields case-insensitively.
func From(goField string) FieldOption {
	return func(f *fieldDesc) { f.structField = goField }
}

// ObjectBuilder registers fields onto an object shape.
type ObjectBuilder struct {
	r *Registry
	d *shapeDesc
}

// Object registers proto's type as an object shape and returns a builder for
// it. Repeated calls with the same prototype merge into one shape.
func (r *Registry) Object(proto any) *ObjectBuilder {
	return &ObjectBuilder{r: r, d: r.setKind(shapeKey(proto), KindObject)}
}

// Name overrides the shape's GraphQL type name, which defaults to the Go
// type name.
func (b *ObjectBuilder) Name(name string) *ObjectBuilder {
	b.d.name = name
	return b
}

// Describe sets the type's schema description.
func (b *ObjectBuilder) Describe(s string) *ObjectBuilder {
	b.d.description = s
	return b
}

// Field declares a property field backed by a struct field of the prototype.
// A nil type means infer it from the struct field.
func (b *ObjectBuilder) Field(name string, typ *TypeExpr, opts ...FieldOption) *ObjectBuilder {
	b.r.addField(b.d, newFieldDesc(name, typ, reflect.Value{}, opts))
	return b
}

// FieldFunc declares a resolver-backed field. fn is any Go func value; use
// a method expression like (*RecipeService).Recipe to have the receiver
// injected (container instance for root fields, parent value otherwise).
func (b *ObjectBuilder) FieldFunc(name string, fn any, opts ...FieldOption) *ObjectBuilder {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		b.r.violate(configErrorf("field %s.%s: resolver is %T, want a func", b.d.name, name, fn))
		return b
	}
	b.r.addField(b.d, newFieldDesc(name, nil, fv, opts))
	return b
}

// Implements declares that this object implements the interface shape
// registered for ifaceProto.
func (b *ObjectBuilder) Implements(ifaceProto any) *ObjectBuilder {
	t := shapeKey(ifaceProto)
	for _, it := range b.d.interfaces {
		if it == t {
			return b
		}
	}
	b.d.interfaces = append(b.d.interfaces, t)
	return b
}

// InputBuilder registers fields onto an input shape.
type InputBuilder struct {
	r *Registry
	d *shapeDesc
}

// Input registers proto's type as an input object shape.
func (r *Registry) Input(proto any) *InputBuilder {
	return &InputBuilder{r: r, d: r.setKind(shapeKey(proto), KindInput)}
}

func (b *InputBuilder) Name(name string) *InputBuilder {
	b.d.name = name
	return b
}

func (b *InputBuilder) Describe(s string) *InputBuilder {
	b.d.description = s
	return b
}

// Field declares an input field backed by a struct field of the prototype.
func (b *InputBuilder) Field(name string, typ *TypeExpr, opts ...FieldOption) *InputBuilder {
	b.r.addField(b.d, newFieldDesc(name, typ, reflect.Value{}, opts))
	return b
}

// InterfaceBuilder registers fields onto an interface shape.
type InterfaceBuilder struct {
	r *Registry
	d *shapeDesc
}

// Interface registers proto's type as an interface shape. proto is a typed
// nil pointer to the Go interface, e.g. (*Searchable)(nil).
func (r *Registry) Interface(proto any) *InterfaceBuilder {
	return &InterfaceBuilder{r: r, d: r.setKind(shapeKey(proto), KindInterface)}
}

func (b *InterfaceBuilder) Name(name string) *InterfaceBuilder {
	b.d.name = name
	return b
}

func (b *InterfaceBuilder) Describe(s string) *InterfaceBuilder {
	b.d.description = s
	return b
}

// Field declares an abstract field every implementor must expose.
func (b *InterfaceBuilder) Field(name string, typ *TypeExpr, opts ...FieldOption) *InterfaceBuilder {
	b.r.addField(b.d, newFieldDesc(name, typ, reflect.Value{}, opts))
	return b
}

// ResolveType sets the discriminator mapping runtime values to concrete type
// names. Without one, the value's Go type is looked up in the registry.
func (b *InterfaceBuilder) ResolveType(d Discriminator) *InterfaceBuilder {
	b.d.discriminator = d
	return b
}

// UnionBuilder registers members onto a union shape.
type UnionBuilder struct {
	r *Registry
	d *shapeDesc
}

// Union registers proto's type as a union shape.
func (r *Registry) Union(proto any) *UnionBuilder {
	return &UnionBuilder{r: r, d: r.setKind(shapeKey(proto), KindUnion)}
}

func (b *UnionBuilder) Name(name string) *UnionBuilder {
	b.d.name = name
	return b
}

func (b *UnionBuilder) Describe(s string) *UnionBuilder {
	b.d.description = s
	return b
}

// Member adds object shapes to the union.
func (b *UnionBuilder) Member(protos ...any) *UnionBuilder {
	for _, p := range protos {
		t := shapeKey(p)
		seen := false
		for _, m := range b.d.members {
			if m == t {
				seen = true
				break
			}
		}
		if !seen {
			b.d.members = append(b.d.members, t)
		}
	}
	return b
}

// ResolveType sets the discriminator for the union.
func (b *UnionBuilder) ResolveType(d Discriminator) *UnionBuilder {
	b.d.discriminator = d
	return b
}

func newFieldDesc(name string, typ *TypeExpr, fn reflect.Value, opts []FieldOption) *fieldDesc {
	f := &fieldDesc{name: name, typ: typ, fn: fn}
	for _, opt := range opts {
		opt(f)
	}
	if f.nullable && f.typ != nil {
		f.typ = f.typ.Nullable()
	}
	return f
}

// SchemaBuilder declares the schema roots: which registered object shapes act
// as field containers for the Query and Mutation types.
type SchemaBuilder struct {
	r         *Registry
	name      string
	queries   []reflect.Type
	mutations []reflect.Type
}

// Schema starts a root declaration. name becomes the schema description.
func (r *Registry) Schema(name string) *SchemaBuilder {
	return &SchemaBuilder{r: r, name: name}
}

// Query adds container shapes whose resolver fields merge into the Query
// root type. At least one Query container is required to compile.
func (b *SchemaBuilder) Query(protos ...any) *SchemaBuilder {
	for _, p := range protos {
		b.queries = append(b.queries, shapeKey(p))
	}
	return b
}

// Mutation adds container shapes whose resolver fields merge into the
// Mutation root type.
func (b *SchemaBuilder) Mutation(protos ...any) *SchemaBuilder {
	for _, p := range protos {
		b.mutations = append(b.mutations, shapeKey(p))
	}
	return b
}
