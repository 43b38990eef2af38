package typegraph

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hanpama/typegraph/schema"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// session owns one compile pass. Its schema's type table is the memoization
// cache: a type is registered there under its name before its fields are
// filled, so mutually recursive shapes terminate. Sessions never share state;
// every Compile call builds a fresh one.
type session struct {
	reg       *Registry
	sch       *schema.Schema
	names     map[reflect.Type]string // shape identity -> compiled type name
	byName    map[string]reflect.Type
	container Provider

	resolvers     map[string]map[string]resolverFunc
	typeResolvers map[string]func(value any) string
	pageInfoDone  bool
}

func newSession(reg *Registry, description string, container Provider) *session {
	return &session{
		reg:           reg,
		sch:           schema.NewSchema(description),
		names:         make(map[reflect.Type]string),
		byName:        make(map[string]reflect.Type),
		container:     container,
		resolvers:     make(map[string]map[string]resolverFunc),
		typeResolvers: make(map[string]func(value any) string),
	}
}

func (s *session) setResolver(typeName, fieldName string, fn resolverFunc) {
	m := s.resolvers[typeName]
	if m == nil {
		m = make(map[string]resolverFunc)
		s.resolvers[typeName] = m
	}
	m[fieldName] = fn
}

// compileShape compiles the shape registered for t into a named schema type,
// returning its name. Results are memoized in the session type table.
func (s *session) compileShape(t reflect.Type) (string, error) {
	if name, ok := s.names[t]; ok {
		return name, nil
	}
	d := s.reg.lookup(t)
	if d == nil || d.kind == "" {
		return "", &UnresolvedTypeError{Shape: t}
	}
	name := d.name
	if name == "" {
		return "", configErrorf("shape %s has no type name; anonymous types need Name()", t)
	}
	if prev, ok := s.byName[name]; ok && prev != t {
		return "", configErrorf("type name %q claimed by both %s and %s", name, prev, t)
	}
	if _, taken := s.sch.Types[name]; taken {
		return "", configErrorf("type name %q already in use", name)
	}

	// Register the placeholder before filling fields so cycles terminate.
	s.names[t] = name
	s.byName[name] = t
	typ := schema.NewType(name, typeKindOf(d.kind), d.description)
	s.sch.AddType(typ)

	switch d.kind {
	case KindObject:
		if err := s.fillObject(typ, d); err != nil {
			return "", err
		}
	case KindInput:
		if err := s.fillInput(typ, d); err != nil {
			return "", err
		}
	case KindInterface:
		if err := s.fillInterface(typ, d); err != nil {
			return "", err
		}
	case KindUnion:
		if err := s.fillUnion(typ, d); err != nil {
			return "", err
		}
	}
	return name, nil
}

func typeKindOf(k Kind) schema.TypeKind {
	switch k {
	case KindInput:
		return schema.TypeKindInputObject
	case KindInterface:
		return schema.TypeKindInterface
	case KindUnion:
		return schema.TypeKindUnion
	default:
		return schema.TypeKindObject
	}
}

func (s *session) fillObject(typ *schema.Type, d *shapeDesc) error {
	for _, f := range d.fields {
		if err := s.compileField(typ, d, f, nil); err != nil {
			return err
		}
	}
	for _, it := range d.interfaces {
		id := s.reg.lookup(it)
		if id == nil || id.kind != KindInterface {
			return configErrorf("type %s implements %s, which is not a registered interface", typ.Name, it)
		}
		iname, err := s.compileShape(it)
		if err != nil {
			return err
		}
		typ.AddInterface(iname)
		s.sch.Types[iname].AddPossibleType(typ.Name)
		// Interface fields the object does not declare itself are carried
		// over as properties of the object's struct.
		for _, f := range id.fields {
			if typ.GetField(f.name) == nil {
				if err := s.compileField(typ, d, f, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *session) fillInput(typ *schema.Type, d *shapeDesc) error {
	for _, f := range d.fields {
		ref, err := s.fieldTypeRef(d, f)
		if err != nil {
			return err
		}
		v := schema.NewInputValue(f.name, f.description, ref)
		if f.deprecation != "" {
			v.Deprecate(f.deprecation)
		}
		typ.AddInputField(v)
	}
	return nil
}

func (s *session) fillInterface(typ *schema.Type, d *shapeDesc) error {
	for _, f := range d.fields {
		if err := s.compileField(typ, d, f, nil); err != nil {
			return err
		}
	}
	// Implementors may only ever be reached through fragment spreads, so
	// compiling the interface pulls every registered implementor in with it.
	for _, od := range s.reg.order {
		if od.kind != KindObject {
			continue
		}
		for _, it := range od.interfaces {
			if it != d.goType {
				continue
			}
			if _, err := s.compileShape(od.goType); err != nil {
				return err
			}
		}
	}
	s.typeResolvers[typ.Name] = s.discriminatorFor(d)
	return nil
}

func (s *session) fillUnion(typ *schema.Type, d *shapeDesc) error {
	if len(d.members) == 0 {
		return configErrorf("union %s has no members", typ.Name)
	}
	for _, m := range d.members {
		md := s.reg.lookup(m)
		if md == nil || md.kind != KindObject {
			return configErrorf("union %s member %s is not a registered object", typ.Name, m)
		}
		mname, err := s.compileShape(m)
		if err != nil {
			return err
		}
		typ.AddPossibleType(mname)
	}
	s.typeResolvers[typ.Name] = s.discriminatorFor(d)
	return nil
}

// compileField compiles one field onto typ and binds its resolver. container
// is non-nil for root fields, where the receiver comes from the provider
// instead of the parent value.
func (s *session) compileField(typ *schema.Type, d *shapeDesc, f *fieldDesc, container *containerBinding) error {
	ref, err := s.fieldTypeRef(d, f)
	if err != nil {
		return err
	}
	fld := schema.NewField(f.name, f.description, ref)
	if f.deprecation != "" {
		fld.Deprecate(f.deprecation)
	}
	if err := s.compileArguments(typ.Name, d, f, fld); err != nil {
		return err
	}
	typ.AddField(fld)
	if typ.Kind == schema.TypeKindInterface {
		return nil
	}
	res, err := s.bindResolver(typ.Name, d, f, container)
	if err != nil {
		return err
	}
	s.setResolver(typ.Name, f.name, res)
	return nil
}

func (s *session) compileArguments(typeName string, d *shapeDesc, f *fieldDesc, fld *schema.Field) error {
	for _, a := range f.args {
		if a.source != argSourceArg {
			continue
		}
		expr := a.typ
		var ref *schema.TypeRef
		var err error
		if expr != nil {
			ref, err = s.compileExpr(expr)
		} else {
			pt, perr := resolverParamType(d, f, a.pos)
			if perr != nil {
				err = perr
			} else {
				ref, err = s.typeRefFromGoType(pt)
			}
		}
		if err != nil {
			return fmt.Errorf("field %s.%s argument %q: %w", typeName, f.name, a.name, err)
		}
		fld.AddArgument(schema.NewInputValue(a.name, "", ref))
	}
	return nil
}

// fieldTypeRef computes the field's schema type: the declared expression if
// present, otherwise inferred from the resolver return or backing struct
// field. Paginated fields get a connection envelope around the element type.
func (s *session) fieldTypeRef(d *shapeDesc, f *fieldDesc) (ref *schema.TypeRef, err error) {
	if f.paginated {
		return s.connectionRef(d, f)
	}
	if f.typ != nil {
		return s.compileExpr(f.typ)
	}
	rt, err := fieldResultGoType(d, f)
	if err != nil {
		return nil, err
	}
	ref, err = s.typeRefFromGoType(rt)
	if err != nil {
		return nil, err
	}
	if f.nullable {
		ref = stripNonNull(ref)
	}
	return ref, nil
}

func (s *session) connectionRef(d *shapeDesc, f *fieldDesc) (*schema.TypeRef, error) {
	var elemRef *schema.TypeRef
	var err error
	if f.typ != nil {
		elemRef, err = s.compileExpr(f.typ)
	} else {
		var rt reflect.Type
		rt, err = fieldResultGoType(d, f)
		if err == nil {
			if rt.Kind() != reflect.Slice {
				return nil, configErrorf("field %s.%s: paginated resolver must return a slice, got %s", d.name, f.name, rt)
			}
			elemRef, err = s.typeRefFromGoType(rt.Elem())
		}
	}
	if err != nil {
		return nil, err
	}
	connName, err := s.ensureConnection(elemRef)
	if err != nil {
		return nil, err
	}
	ref := schema.NonNullType(schema.NamedType(connName))
	if f.nullable {
		ref = stripNonNull(ref)
	}
	return ref, nil
}

// ensureConnection synthesizes the <Elem>Connection envelope for the element
// type, once per session, along with the shared PageInfo type.
func (s *session) ensureConnection(elemRef *schema.TypeRef) (string, error) {
	elemName := elemRef.GetNamedType()
	connName := elemName + "Connection"
	if _, ok := s.sch.Types[connName]; ok {
		return connName, nil
	}
	if prev, ok := s.byName[connName]; ok {
		return "", configErrorf("connection type name %q claimed by shape %s", connName, prev)
	}
	s.ensurePageInfo()
	nodes := schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType(elemName))))
	conn := schema.NewType(connName, schema.TypeKindObject, "").
		AddField(schema.NewField("nodes", "", nodes)).
		AddField(schema.NewField("count", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("pageInfo", "", schema.NonNullType(schema.NamedType("PageInfo"))))
	s.sch.AddType(conn)
	return connName, nil
}

func (s *session) ensurePageInfo() {
	if s.pageInfoDone {
		return
	}
	s.pageInfoDone = true
	pi := schema.NewType("PageInfo", schema.TypeKindObject, "Window position within a paginated field.").
		AddField(schema.NewField("hasNextPage", "", schema.NonNullType(schema.NamedType("Boolean")))).
		AddField(schema.NewField("hasPreviousPage", "", schema.NonNullType(schema.NamedType("Boolean"))))
	s.sch.AddType(pi)
}

// compileExpr converts a declared type expression into a schema reference,
// compiling referenced shapes on the way.
func (s *session) compileExpr(e *TypeExpr) (*schema.TypeRef, error) {
	var inner *schema.TypeRef
	switch e.kind {
	case exprNamed:
		s.ensureScalar(e.named)
		inner = schema.NamedType(e.named)
	case exprShape:
		name, err := s.compileShape(e.shape)
		if err != nil {
			return nil, err
		}
		inner = schema.NamedType(name)
	case exprList:
		elem, err := s.compileExpr(e.elem)
		if err != nil {
			return nil, err
		}
		inner = schema.ListType(elem)
	}
	if e.nullable {
		return inner, nil
	}
	return schema.NonNullType(inner), nil
}

// ensureScalar adds a custom scalar declaration for names outside the
// built-in five.
func (s *session) ensureScalar(name string) {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return
	}
	if _, ok := s.sch.Types[name]; ok {
		return
	}
	s.sch.AddType(schema.NewType(name, schema.TypeKindScalar, ""))
}

// typeRefFromGoType infers a schema type from a Go type. Pointers map to
// nullable, slices to non-null lists, scalars to the builtin five, and
// registered shapes to their compiled types.
func (s *session) typeRefFromGoType(t reflect.Type) (*schema.TypeRef, error) {
	if t.Kind() == reflect.Ptr {
		inner, err := s.typeRefFromGoType(t.Elem())
		if err != nil {
			return nil, err
		}
		return stripNonNull(inner), nil
	}
	switch t.Kind() {
	case reflect.String:
		return schema.NonNullType(schema.NamedType("String")), nil
	case reflect.Bool:
		return schema.NonNullType(schema.NamedType("Boolean")), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return schema.NonNullType(schema.NamedType("Int")), nil
	case reflect.Float32, reflect.Float64:
		return schema.NonNullType(schema.NamedType("Float")), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return schema.NonNullType(schema.NamedType("String")), nil
		}
		elem, err := s.typeRefFromGoType(t.Elem())
		if err != nil {
			return nil, err
		}
		return schema.NonNullType(schema.ListType(elem)), nil
	case reflect.Struct, reflect.Interface:
		if d := s.reg.lookup(t); d != nil && d.kind != "" {
			name, err := s.compileShape(t)
			if err != nil {
				return nil, err
			}
			return schema.NonNullType(schema.NamedType(name)), nil
		}
	}
	return nil, &UnresolvedTypeError{Shape: t}
}

func stripNonNull(ref *schema.TypeRef) *schema.TypeRef {
	if ref.IsNonNull() {
		return ref.OfType
	}
	return ref
}

// fieldResultGoType finds the Go type a field's value will have: the first
// non-error return of its resolver, or the backing struct field for plain
// properties.
func fieldResultGoType(d *shapeDesc, f *fieldDesc) (reflect.Type, error) {
	if f.fn.IsValid() {
		ft := f.fn.Type()
		if ft.NumOut() == 0 {
			return nil, configErrorf("field %s.%s: resolver returns nothing", d.name, f.name)
		}
		return ft.Out(0), nil
	}
	sf, ok := findStructField(d.goType, f)
	if !ok {
		return nil, &UnresolvedTypeError{Shape: d.goType, Field: f.name}
	}
	return sf.Type, nil
}

// resolverParamType returns the Go type of the resolver parameter at pos.
// Declared positions are offsets after the method-expression receiver, when
// the func carries one.
func resolverParamType(d *shapeDesc, f *fieldDesc, pos int) (reflect.Type, error) {
	if !f.fn.IsValid() {
		return nil, configErrorf("field %s: argument positions need a resolver func", f.name)
	}
	ft := f.fn.Type()
	idx := pos + resolverParamBase(d, ft)
	if idx < 0 || idx >= ft.NumIn() {
		return nil, configErrorf("field %s: argument position %d out of range", f.name, pos)
	}
	return ft.In(idx), nil
}

// resolverParamBase returns 1 when the func's first parameter is the shape
// itself, i.e. the receiver of a method expression. Declared positions then
// start after it.
func resolverParamBase(d *shapeDesc, ft reflect.Type) int {
	if ft.NumIn() == 0 {
		return 0
	}
	if derefType(ft.In(0)) == d.goType {
		return 1
	}
	return 0
}

func derefType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

// findStructField locates the backing struct field for a property: the
// explicit From override, or a case-insensitive match on the property name.
func findStructField(goType reflect.Type, f *fieldDesc) (reflect.StructField, bool) {
	t := goType
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	if f.structField != "" {
		return t.FieldByName(f.structField)
	}
	return t.FieldByNameFunc(func(name string) bool {
		return strings.EqualFold(name, f.name)
	})
}
