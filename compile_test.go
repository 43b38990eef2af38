package typegraph

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/hanpama/typegraph/schema"
)

type author struct {
	Name string
}

type book struct {
	Title  string
	Author author
}

func (b book) Related() []book { return nil }

type library struct{}

func (*library) Book(title string) book { return book{Title: title} }

func registerLibrary(reg *Registry) {
	reg.Object(author{}).Name("Author").Field("name", nil)
	reg.Object(book{}).Name("Book").
		Field("title", nil).
		Field("author", nil).
		FieldFunc("related", book.Related)
	reg.Object(library{}).FieldFunc("book", (*library).Book, Arg(0, "title", nil))
}

func TestCompile_RecursiveShapesTerminate(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)

	compiled, err := Compile(reg, reg.Schema("library").Query(library{}))
	require.NoError(t, err)

	bookType := compiled.Schema.Types["Book"]
	require.NotNil(t, bookType)
	require.Equal(t, "[Book!]!", bookType.GetField("related").Type.String())
	require.Equal(t, "Author!", bookType.GetField("author").Type.String())
}

func TestCompile_FreshTypeTablePerCall(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)
	roots := reg.Schema("library").Query(library{})

	first, err := Compile(reg, roots)
	require.NoError(t, err)
	second, err := Compile(reg, roots)
	require.NoError(t, err)

	require.NotSame(t, first.Schema, second.Schema)
	require.NotSame(t, first.Schema.Types["Book"], second.Schema.Types["Book"])
}

func TestCompile_UnresolvedType(t *testing.T) {
	type mystery struct{}
	type host struct{ M mystery }

	reg := NewRegistry()
	reg.Object(host{}).Field("m", nil)
	reg.Object(library{}).FieldFunc("book", (*library).Book, Arg(0, "title", nil))
	reg.Object(book{}).Name("Book").Field("title", nil).Field("author", nil).FieldFunc("related", book.Related)
	reg.Object(author{}).Name("Author").Field("name", nil)
	reg.Object(struct{ H host }{}).Name("HostQuery").Field("h", nil)

	_, err := Compile(reg, reg.Schema("x").Query(struct{ H host }{}))
	require.Error(t, err)
	var unresolved *UnresolvedTypeError
	require.True(t, errors.As(err, &unresolved))
}

func TestCompile_MissingQueryRole(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)

	_, err := Compile(reg, nil)
	var cfg *SchemaConfigurationError
	require.True(t, errors.As(err, &cfg))

	_, err = Compile(reg, reg.Schema("library"))
	require.True(t, errors.As(err, &cfg))
}

func TestCompile_RootFieldCollision(t *testing.T) {
	type svcA struct{}
	type svcB struct{}

	reg := NewRegistry()
	registerLibrary(reg)
	reg.Object(svcA{}).FieldFunc("book", func(*svcA) book { return book{} })
	reg.Object(svcB{}).FieldFunc("book", func(*svcB) book { return book{} })

	_, err := Compile(reg, reg.Schema("x").Query(svcA{}, svcB{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "more than one container")
}

func TestCompile_TypeNameCollision(t *testing.T) {
	type one struct{ V string }
	type two struct{ V string }
	type svc struct {
		A one
		B two
	}

	reg := NewRegistry()
	reg.Object(one{}).Name("Clash").Field("v", nil)
	reg.Object(two{}).Name("Clash").Field("v", nil)
	reg.Object(svc{}).Field("a", nil).Field("b", nil)

	_, err := Compile(reg, reg.Schema("x").Query(svc{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Clash")
}

func TestCompile_InterfaceFieldsCarriedToImplementors(t *testing.T) {
	type named interface{ isNamed() }
	type person struct {
		Name string
		Age  int
	}

	reg := NewRegistry()
	reg.Interface((*named)(nil)).Name("Named").Field("name", String())
	reg.Object(person{}).Name("Person").
		Implements((*named)(nil)).
		Field("age", nil)

	type svc struct{}
	reg.Object(svc{}).FieldFunc("person", func(*svc) person { return person{} })

	compiled, err := Compile(reg, reg.Schema("x").Query(svc{}))
	require.NoError(t, err)

	personType := compiled.Schema.Types["Person"]
	require.Equal(t, []string{"Named"}, personType.Interfaces)
	require.NotNil(t, personType.GetField("name"), "interface field carried onto implementor")
	require.True(t, compiled.Schema.Types["Named"].HasPossibleType("Person"))
}

func TestCompile_UnionMembers(t *testing.T) {
	type cat struct{ Meow string }
	type dog struct{ Bark string }
	type pet struct{}

	reg := NewRegistry()
	reg.Object(cat{}).Name("Cat").Field("meow", nil)
	reg.Object(dog{}).Name("Dog").Field("bark", nil)
	reg.Union(pet{}).Name("Pet").Member(cat{}, dog{})

	type svc struct{}
	reg.Object(svc{}).FieldFunc("pet", func(*svc) any { return cat{} }, Returns(Shape(pet{})))

	compiled, err := Compile(reg, reg.Schema("x").Query(svc{}))
	require.NoError(t, err)

	petType := compiled.Schema.Types["Pet"]
	require.Equal(t, schema.TypeKindUnion, petType.Kind)
	require.True(t, petType.HasPossibleType("Cat"))
	require.True(t, petType.HasPossibleType("Dog"))
}

func TestCompile_EmptyUnion(t *testing.T) {
	type pet struct{}
	type svc struct{}

	reg := NewRegistry()
	reg.Union(pet{}).Name("Pet")
	reg.Object(svc{}).FieldFunc("pet", func(*svc) any { return nil }, Returns(Shape(pet{})))

	_, err := Compile(reg, reg.Schema("x").Query(svc{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no members")
}

func TestCompile_SDLRender(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)

	compiled, err := Compile(reg, reg.Schema("library").Query(library{}))
	require.NoError(t, err)

	sdl := compiled.SDL()
	require.Contains(t, sdl, "type Book {")
	require.Contains(t, sdl, "book(title: String!): Book!")
	require.True(t, strings.Contains(sdl, "type Query {"))
}

func TestCompile_NullableOption(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)

	type svc struct{}
	reg.Object(svc{}).FieldFunc("maybe", func(*svc) string { return "" }, Nullable())

	compiled, err := Compile(reg, reg.Schema("x").Query(svc{}))
	require.NoError(t, err)
	require.Equal(t, "String", compiled.Schema.GetQueryType().GetField("maybe").Type.String())
}

func TestCompile_PointerResultIsNullable(t *testing.T) {
	reg := NewRegistry()
	registerLibrary(reg)

	type svc struct{}
	reg.Object(svc{}).FieldFunc("find", func(*svc) *book { return nil })

	compiled, err := Compile(reg, reg.Schema("x").Query(svc{}))
	require.NoError(t, err)
	require.Equal(t, "Book", compiled.Schema.GetQueryType().GetField("find").Type.String())
}
