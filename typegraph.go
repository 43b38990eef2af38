// Package typegraph compiles declarative Go type registrations into an
// executable GraphQL schema.
//
// Callers register plain structs as object, input, interface and union
// shapes on a Registry, attach resolver funcs and middleware through the
// fluent builders, declare the schema roots, and call Compile. The compiler
// walks the registered metadata, infers GraphQL types from Go types where no
// explicit annotation is given, synthesizes a resolution closure per field,
// and returns a CompiledSchema ready to execute operations.
//
//	reg := typegraph.NewRegistry()
//	reg.Object(Recipe{}).
//		Field("title", nil).
//		FieldFunc("ratings", (*Recipe).Ratings)
//	reg.Object(RecipeService{}).
//		FieldFunc("recipe", (*RecipeService).Recipe,
//			typegraph.Arg(0, "id", typegraph.ID()))
//	sch, err := typegraph.Compile(reg, reg.Schema("recipes").Query(RecipeService{}))
//
// Shape identity is the reflect.Type of the registered prototype, so
// fragments of one shape registered from different packages merge into a
// single type. All authoring mistakes surface as typed errors from Compile;
// a successful compile never produces a partially valid schema.
package typegraph
