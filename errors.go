package typegraph

import (
	"fmt"
	"reflect"
)

// DuplicateRegistrationError reports a field registered twice inside the same
// shape with a different declared type.
type DuplicateRegistrationError struct {
	Shape reflect.Type
	Field string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("typegraph: field %q registered twice with different types on shape %s", e.Field, e.Shape)
}

// UnresolvedTypeError reports a field whose declared or inferred type has no
// registered shape and no explicit scalar annotation. Surfaced at compile
// time, never at first query execution.
type UnresolvedTypeError struct {
	Shape reflect.Type
	Field string
	Got   reflect.Type
}

func (e *UnresolvedTypeError) Error() string {
	if e.Got != nil {
		return fmt.Sprintf("typegraph: cannot resolve type %s for field %q on shape %s: not a registered shape", e.Got, e.Field, e.Shape)
	}
	return fmt.Sprintf("typegraph: cannot resolve type for field %q on shape %s", e.Field, e.Shape)
}

// SchemaConfigurationError reports a caller-authoring mistake in the schema
// declaration: missing or ambiguous Query role, colliding field names across
// merged root containers, kind conflicts, and invalid builder input.
type SchemaConfigurationError struct {
	Reason string
}

func (e *SchemaConfigurationError) Error() string {
	return "typegraph: " + e.Reason
}

func configErrorf(format string, args ...any) *SchemaConfigurationError {
	return &SchemaConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// NoProviderConfiguredError reports a resolution that required a
// container-provided instance while no instance provider was configured.
type NoProviderConfiguredError struct {
	Shape reflect.Type
}

func (e *NoProviderConfiguredError) Error() string {
	return fmt.Sprintf("typegraph: no instance provider configured for shape %s", e.Shape)
}
