package typegraph

import "reflect"

type typeExprKind uint8

const (
	exprNamed typeExprKind = iota
	exprShape
	exprList
)

// TypeExpr declares a field, argument, or input value type. Expressions are
// non-null by default; call Nullable to lift that.
type TypeExpr struct {
	kind     typeExprKind
	named    string       // exprNamed: scalar name
	shape    reflect.Type // exprShape: registered shape identity
	elem     *TypeExpr    // exprList
	nullable bool
}

// String declares the built-in String scalar.
func String() *TypeExpr { return &TypeExpr{kind: exprNamed, named: "String"} }

// Int declares the built-in Int scalar.
func Int() *TypeExpr { return &TypeExpr{kind: exprNamed, named: "Int"} }

// Float declares the built-in Float scalar.
func Float() *TypeExpr { return &TypeExpr{kind: exprNamed, named: "Float"} }

// Boolean declares the built-in Boolean scalar.
func Boolean() *TypeExpr { return &TypeExpr{kind: exprNamed, named: "Boolean"} }

// ID declares the built-in ID scalar.
func ID() *TypeExpr { return &TypeExpr{kind: exprNamed, named: "ID"} }

// Scalar declares a custom scalar by name. The scalar type is synthesized in
// the compiled schema on first use.
func Scalar(name string) *TypeExpr { return &TypeExpr{kind: exprNamed, named: name} }

// Shape references a registered shape by its prototype. The shape may be
// registered after the reference is declared; resolution happens at compile
// time.
func Shape(proto any) *TypeExpr { return &TypeExpr{kind: exprShape, shape: shapeKey(proto)} }

// ListOf declares a non-null list of elem.
func ListOf(elem *TypeExpr) *TypeExpr { return &TypeExpr{kind: exprList, elem: elem} }

// Nullable returns a copy of the expression marked nullable at its outermost
// level.
func (t *TypeExpr) Nullable() *TypeExpr {
	c := *t
	c.nullable = true
	return &c
}

func (t *TypeExpr) equal(o *TypeExpr) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.kind != o.kind || t.named != o.named || t.shape != o.shape || t.nullable != o.nullable {
		return false
	}
	return t.elem.equal(o.elem)
}

// shapeKey normalizes a prototype value to the reflect.Type used as shape
// identity: pointers are dereferenced, so Recipe{}, &Recipe{} and
// (*Recipe)(nil) all name the same shape. Interface shapes are referenced
// through a typed nil pointer, e.g. (*Searchable)(nil).
func shapeKey(proto any) reflect.Type {
	t := reflect.TypeOf(proto)
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
