package typegraph

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// resolverFunc is the synthesized resolution closure of one field.
type resolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// containerBinding marks a root field whose receiver comes from the instance
// provider rather than the parent value.
type containerBinding struct {
	shape reflect.Type
}

type paramKind uint8

const (
	paramReceiver paramKind = iota
	paramArg
	paramContext
	paramRoot
	paramInject
)

type paramPlan struct {
	kind paramKind
	name string // paramArg
	typ  reflect.Type
}

// bindResolver synthesizes the resolution closure for one field: property
// read for plain fields, reflect invocation with positional injection for
// func-backed fields, with the middleware chain wrapped around either.
func (s *session) bindResolver(typeName string, d *shapeDesc, f *fieldDesc, container *containerBinding) (resolverFunc, error) {
	var core resolverFunc
	var err error
	if f.fn.IsValid() {
		core, err = s.bindFunc(typeName, d, f, container)
	} else {
		core, err = bindProperty(d, f)
	}
	if err != nil {
		return nil, err
	}
	if len(f.middleware) == 0 {
		return core, nil
	}
	chain := f.middleware
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return runChain(ctx, args, chain, func() (any, error) {
			return core(ctx, source, args)
		})
	}, nil
}

func bindProperty(d *shapeDesc, f *fieldDesc) (resolverFunc, error) {
	sf, ok := findStructField(d.goType, f)
	if !ok && d.goType.Kind() == reflect.Struct {
		return nil, &UnresolvedTypeError{Shape: d.goType, Field: f.name}
	}
	name := f.name
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		if m, isMap := source.(map[string]any); isMap {
			return m[name], nil
		}
		v := reflect.ValueOf(source)
		for v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return nil, nil
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("cannot read property %q from %T", name, source)
		}
		fv := v.FieldByIndex(sf.Index)
		return fv.Interface(), nil
	}, nil
}

func (s *session) bindFunc(typeName string, d *shapeDesc, f *fieldDesc, container *containerBinding) (resolverFunc, error) {
	ft := f.fn.Type()
	base := resolverParamBase(d, ft)

	plans := make([]paramPlan, ft.NumIn())
	bound := make([]bool, ft.NumIn())
	if base == 1 {
		plans[0] = paramPlan{kind: paramRoot, typ: ft.In(0)}
		if container != nil {
			plans[0].kind = paramReceiver
		}
		bound[0] = true
	}
	for _, a := range f.args {
		idx := a.pos + base
		if idx < 0 || idx >= ft.NumIn() {
			return nil, configErrorf("field %s.%s: argument position %d out of range", typeName, f.name, a.pos)
		}
		if bound[idx] {
			return nil, configErrorf("field %s.%s: parameter %d bound twice", typeName, f.name, a.pos)
		}
		bound[idx] = true
		p := paramPlan{typ: ft.In(idx)}
		switch a.source {
		case argSourceArg:
			p.kind = paramArg
			p.name = a.name
		case argSourceContext:
			p.kind = paramContext
		case argSourceRoot:
			p.kind = paramRoot
		case argSourceInject:
			p.kind = paramInject
		}
		plans[idx] = p
	}
	// Unannotated context parameters bind implicitly.
	for i := range plans {
		if bound[i] {
			continue
		}
		if ft.In(i) == contextType {
			plans[i] = paramPlan{kind: paramContext, typ: ft.In(i)}
			bound[i] = true
			continue
		}
		return nil, configErrorf("field %s.%s: parameter %d has no binding", typeName, f.name, i-base)
	}

	if err := validateResults(typeName, f, ft); err != nil {
		return nil, err
	}
	hasErr := ft.Out(ft.NumOut()-1) == errorType
	paginated := f.paginated
	fn := f.fn
	provider := s.container
	receiverShape := d.goType
	if container != nil {
		receiverShape = container.shape
	}

	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		in := make([]reflect.Value, len(plans))
		for i, p := range plans {
			switch p.kind {
			case paramReceiver:
				inst, err := lookupInstance(provider, receiverShape)
				if err != nil {
					return nil, err
				}
				v, err := adaptValue(inst, p.typ)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s receiver: %w", typeName, f.name, err)
				}
				in[i] = v
			case paramRoot:
				v, err := adaptValue(source, p.typ)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s parent: %w", typeName, f.name, err)
				}
				in[i] = v
			case paramContext:
				in[i] = reflect.ValueOf(ctx)
			case paramArg:
				v, err := decodeValue(args[p.name], p.typ)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s argument %q: %w", typeName, f.name, p.name, err)
				}
				in[i] = v
			case paramInject:
				inst, err := lookupInstance(provider, derefType(p.typ))
				if err != nil {
					return nil, err
				}
				v, err := adaptValue(inst, p.typ)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s injected parameter: %w", typeName, f.name, err)
				}
				in[i] = v
			}
		}
		out := fn.Call(in)
		if hasErr {
			if errv := out[len(out)-1]; !errv.IsNil() {
				return nil, errv.Interface().(error)
			}
			out = out[:len(out)-1]
		}
		if paginated {
			return paginate(out[0], int(out[1].Int()), args), nil
		}
		return out[0].Interface(), nil
	}, nil
}

func validateResults(typeName string, f *fieldDesc, ft reflect.Type) error {
	n := ft.NumOut()
	trailing := 0
	if n > 0 && ft.Out(n-1) == errorType {
		trailing = 1
	}
	values := n - trailing
	if f.paginated {
		if values != 2 || ft.Out(0).Kind() != reflect.Slice || !isIntKind(ft.Out(1).Kind()) {
			return configErrorf("field %s.%s: paginated resolver must return (items, total) or (items, total, error)", typeName, f.name)
		}
		return nil
	}
	if values != 1 {
		return configErrorf("field %s.%s: resolver must return a value or (value, error)", typeName, f.name)
	}
	return nil
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// paginate builds the connection envelope around a resolver's window. The
// window math: more pages follow when the window is smaller than the total,
// and pages precede when the coerced args carried a positive offset.
func paginate(nodes reflect.Value, count int, args map[string]any) map[string]any {
	items := make([]any, nodes.Len())
	for i := range items {
		items[i] = nodes.Index(i).Interface()
	}
	offset := 0
	if raw, ok := args["offset"]; ok {
		switch v := raw.(type) {
		case int:
			offset = v
		case int64:
			offset = int(v)
		case float64:
			offset = int(v)
		}
	}
	return map[string]any{
		"nodes": items,
		"count": count,
		"pageInfo": map[string]any{
			"hasNextPage":     len(items) < count,
			"hasPreviousPage": offset > 0,
		},
	}
}

// adaptValue converts a dynamically typed value to the parameter type,
// taking or following a pointer when only the addressability differs.
func adaptValue(value any, want reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(want), nil
	}
	v := reflect.ValueOf(value)
	if v.Type() == want {
		return v, nil
	}
	if v.Type().Kind() == reflect.Ptr && v.Type().Elem() == want {
		if v.IsNil() {
			return reflect.Zero(want), nil
		}
		return v.Elem(), nil
	}
	if want.Kind() == reflect.Ptr && want.Elem() == v.Type() {
		p := reflect.New(want.Elem())
		p.Elem().Set(v)
		return p, nil
	}
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), want)
}

// decodeValue converts a coerced argument value into the resolver's
// parameter type. Input objects arrive as map[string]any and are decoded
// into their registered struct by field name.
func decodeValue(value any, want reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(want), nil
	}
	if want.Kind() == reflect.Ptr {
		inner, err := decodeValue(value, want.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(want.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	v := reflect.ValueOf(value)
	if v.Type() == want {
		return v, nil
	}
	switch want.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch n := value.(type) {
		case int:
			return reflect.ValueOf(n).Convert(want), nil
		case int64:
			return reflect.ValueOf(n).Convert(want), nil
		case float64:
			return reflect.ValueOf(n).Convert(want), nil
		}
	case reflect.Float32, reflect.Float64:
		switch n := value.(type) {
		case float64:
			return reflect.ValueOf(n).Convert(want), nil
		case int:
			return reflect.ValueOf(n).Convert(want), nil
		case int64:
			return reflect.ValueOf(n).Convert(want), nil
		}
	case reflect.String:
		if s, ok := value.(string); ok {
			return reflect.ValueOf(s).Convert(want), nil
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			return reflect.ValueOf(b).Convert(want), nil
		}
	case reflect.Slice:
		items, ok := value.([]any)
		if !ok {
			break
		}
		out := reflect.MakeSlice(want, len(items), len(items))
		for i, item := range items {
			ev, err := decodeValue(item, want.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case reflect.Struct:
		fields, ok := value.(map[string]any)
		if !ok {
			break
		}
		return decodeStruct(fields, want)
	}
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot decode %T into %s", value, want)
}

// decodeStruct fills a struct from a coerced input object by structural
// field match: GraphQL field name against Go field name, case-insensitive.
func decodeStruct(fields map[string]any, want reflect.Type) (reflect.Value, error) {
	out := reflect.New(want).Elem()
	for name, raw := range fields {
		sf, ok := want.FieldByNameFunc(func(goName string) bool {
			return strings.EqualFold(goName, name)
		})
		if !ok {
			continue
		}
		fv, err := decodeValue(raw, sf.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("input field %q: %w", name, err)
		}
		out.FieldByIndex(sf.Index).Set(fv)
	}
	return out, nil
}
