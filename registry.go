package typegraph

import (
	"reflect"
)

// Kind classifies a registered shape.
type Kind string

const (
	KindObject    Kind = "OBJECT"
	KindInput     Kind = "INPUT"
	KindInterface Kind = "INTERFACE"
	KindUnion     Kind = "UNION"
)

// Discriminator maps a runtime value of an abstract type to the name of its
// concrete shape. Return "" when the value cannot be discriminated; the
// executor then reports its standard abstract-type resolution error.
type Discriminator func(value any) string

type argSource uint8

const (
	argSourceArg argSource = iota
	argSourceContext
	argSourceRoot
	argSourceInject
)

// shapeDesc is the structural description of one registered shape. Fragments
// merge into it in any order during registration; it is never mutated after
// registration finishes, and finalization (kind checks, type resolution)
// happens lazily at compile time.
type shapeDesc struct {
	kind          Kind
	name          string
	description   string
	goType        reflect.Type
	fields        []*fieldDesc
	interfaces    []reflect.Type // KindObject: implemented interface shapes
	members       []reflect.Type // KindUnion
	discriminator Discriminator  // KindInterface / KindUnion
}

func (d *shapeDesc) field(name string) *fieldDesc {
	for _, f := range d.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// fieldDesc describes one declared field of a shape.
type fieldDesc struct {
	name        string
	description string
	deprecation string
	typ         *TypeExpr // declared result type; nil means infer
	nullable    bool
	paginated   bool
	args        []*argDesc
	middleware  []Middleware
	fn          reflect.Value // resolver func; invalid for plain properties
	structField string        // properties: Go field name override
}

// argDesc binds one resolver parameter position to its value source.
type argDesc struct {
	pos    int
	name   string    // argSourceArg only
	typ    *TypeExpr // argSourceArg only; nil means infer from the parameter
	source argSource
}

// Registry is the metadata registry: an association table from shape identity
// (the prototype's reflect.Type) to its structural description. It is written
// during registration, which must happen-before any Compile call, and read
// exhaustively at compile time. Registration-order violations are tolerated;
// authoring errors are recorded and surfaced by Compile.
type Registry struct {
	shapes     map[reflect.Type]*shapeDesc
	order      []*shapeDesc
	violations []error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.init()
	return r
}

func (r *Registry) init() {
	r.shapes = make(map[reflect.Type]*shapeDesc)
	r.order = nil
	r.violations = nil
}

// Reset drops every registered shape and recorded violation. Intended for
// test teardown.
func (r *Registry) Reset() { r.init() }

func (r *Registry) lookup(t reflect.Type) *shapeDesc {
	return r.shapes[t]
}

// ensure returns the descriptor for t, creating an unkinded one on first use
// so fragments may arrive before the shape-level registration.
func (r *Registry) ensure(t reflect.Type) *shapeDesc {
	if d, ok := r.shapes[t]; ok {
		return d
	}
	d := &shapeDesc{goType: t, name: t.Name()}
	r.shapes[t] = d
	r.order = append(r.order, d)
	return d
}

func (r *Registry) violate(err error) {
	r.violations = append(r.violations, err)
}

// setKind merges a shape-level registration. The kind is immutable once set;
// a conflicting re-registration is recorded as an authoring error.
func (r *Registry) setKind(t reflect.Type, kind Kind) *shapeDesc {
	d := r.ensure(t)
	if d.kind != "" && d.kind != kind {
		r.violate(configErrorf("shape %s registered as %s but already registered as %s", t, kind, d.kind))
		return d
	}
	d.kind = kind
	return d
}

// addField merges a field fragment. Registering the same name twice is
// tolerated only when the declared types agree.
func (r *Registry) addField(d *shapeDesc, f *fieldDesc) {
	if existing := d.field(f.name); existing != nil {
		if !existing.typ.equal(f.typ) {
			r.violate(&DuplicateRegistrationError{Shape: d.goType, Field: f.name})
		}
		return
	}
	d.fields = append(d.fields, f)
}
