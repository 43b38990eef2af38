package typegraph

import (
	"context"
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"
)

// boundRuntime adapts the session's synthesized resolvers to the executor's
// runtime contract. Fields without a synthesized resolver fall back to
// structural lookup, which covers connection envelopes and middleware
// replacement values carried as maps.
type boundRuntime struct {
	resolvers     map[string]map[string]resolverFunc
	typeResolvers map[string]func(value any) string
}

func (r *boundRuntime) ResolveField(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	if m := r.resolvers[objectType]; m != nil {
		if fn := m[field]; fn != nil {
			return fn(ctx, source, args)
		}
	}
	return structuralLookup(objectType, field, source)
}

func (r *boundRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	fn := r.typeResolvers[abstractType]
	if fn == nil {
		return "", fmt.Errorf("no type resolver for abstract type %q", abstractType)
	}
	name := fn(value)
	if name == "" {
		return "", fmt.Errorf("could not resolve concrete type for value of abstract type %q", abstractType)
	}
	return name, nil
}

func (r *boundRuntime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if b, ok := value.([]byte); ok {
		return base64.StdEncoding.EncodeToString(b), nil
	}
	return value, nil
}

// structuralLookup resolves a field directly from the source value: map key
// for map sources, exported Go field matched case-insensitively otherwise.
func structuralLookup(objectType, field string, source any) (any, error) {
	if m, ok := source.(map[string]any); ok {
		return m[field], nil
	}
	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		fv := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, field)
		})
		if fv.IsValid() {
			return fv.Interface(), nil
		}
	}
	return nil, fmt.Errorf("no resolver bound for %s.%s", objectType, field)
}
