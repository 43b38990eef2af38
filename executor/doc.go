// Package executor implements a GraphQL executor with explicit runtime hooks
// for field resolution, abstract-type resolution, and leaf serialization.
//
// # Overview
//
// The executor walks the query document depth-first and, for every selected
// field, asks the injected Runtime for a value, then completes that value
// according to the GraphQL specification:
//   - Lists are completed element-wise; a Non-Null element completing to null
//     nullifies the whole list value.
//   - Leaf values (scalars, enums) are passed through Runtime.SerializeLeafValue.
//   - Object values recurse into their sub-selection sets.
//   - Abstract values (interfaces, unions) are discriminated through
//     Runtime.ResolveType before recursing.
//
// Errors never escape the field where they occurred: each failure is recorded
// as a located GraphQL error and the field's value becomes null. When the
// field's declared type is Non-Null, the null propagates to the nearest
// nullable ancestor, per spec. Sibling fields resolve independently; the
// result supports partial success.
//
// Field collection handles aliases, fragment spreads, inline fragments with
// type conditions (including conditions on interfaces and unions the object
// belongs to), the @skip and @include directives, and the __typename meta
// field.
//
// Resolution is synchronous: resolvers are in-process functions, so there is
// no depth-wise batching and no ordering guarantee among sibling fields other
// than the document order used for the response map. Resolvers that perform
// I/O should honor ctx.
package executor
