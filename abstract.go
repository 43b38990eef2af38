package typegraph

import (
	"reflect"
)

// discriminatorFor wraps the shape's registered discriminator, falling back
// to identifying values by their runtime Go type looked up in the session
// type table. The returned func yields "" when no concrete type applies; the
// executor turns that into its abstract-type resolution error.
func (s *session) discriminatorFor(d *shapeDesc) func(value any) string {
	user := d.discriminator
	return func(value any) string {
		if user != nil {
			if name := user(value); name != "" {
				return name
			}
			return ""
		}
		return s.nameOfValue(value)
	}
}

func (s *session) nameOfValue(value any) string {
	if value == nil {
		return ""
	}
	if m, ok := value.(map[string]any); ok {
		if tn, ok := m["__typename"].(string); ok {
			return tn
		}
		return ""
	}
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return s.names[t]
}
