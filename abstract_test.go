package typegraph

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type searchable interface {
	searchKey() string
}

type article struct {
	Headline string
}

func (a article) searchKey() string { return a.Headline }

type profile struct {
	Handle string
}

func (p profile) searchKey() string { return p.Handle }

type searchService struct {
	results []searchable
}

func (s *searchService) Search(ctx context.Context, q string) []searchable {
	return s.results
}

func registerSearch(reg *Registry) {
	reg.Interface((*searchable)(nil)).Name("Searchable").Field("key", String())
	reg.Object(article{}).Name("Article").
		Implements((*searchable)(nil)).
		Field("headline", nil).
		FieldFunc("key", func(a article) string { return a.searchKey() })
	reg.Object(profile{}).Name("Profile").
		Implements((*searchable)(nil)).
		Field("handle", nil).
		FieldFunc("key", func(p profile) string { return p.searchKey() })
	reg.Object(searchService{}).FieldFunc("search", (*searchService).Search, Arg(1, "q", nil))
}

func compileSearch(t *testing.T, svc *searchService) *CompiledSchema {
	t.Helper()
	reg := NewRegistry()
	registerSearch(reg)
	compiled, err := Compile(reg,
		reg.Schema("search").Query(searchService{}),
		WithContainer(ProviderFunc(func(reflect.Type) (any, error) { return svc, nil })))
	require.NoError(t, err)
	return compiled
}

func TestAbstract_DefaultDiscriminatorUsesGoType(t *testing.T) {
	svc := &searchService{results: []searchable{article{Headline: "H"}, profile{Handle: "@p"}}}
	compiled := compileSearch(t, svc)

	res := compiled.Execute(context.Background(), `{
		search(q: "x") {
			__typename
			key
			... on Article { headline }
			... on Profile { handle }
		}
	}`, "", nil)
	require.Empty(t, res.Errors)

	items := res.Data.(map[string]any)["search"].([]any)
	require.Equal(t, map[string]any{"__typename": "Article", "key": "H", "headline": "H"}, items[0])
	require.Equal(t, map[string]any{"__typename": "Profile", "key": "@p", "handle": "@p"}, items[1])
}

// snippet satisfies searchable but is never registered as a shape.
type snippet struct {
	Body string
}

func (s snippet) searchKey() string { return s.Body }

func TestAbstract_UnregisteredConcreteTypeIsFieldError(t *testing.T) {
	svc := &searchService{results: []searchable{snippet{Body: "?"}}}
	compiled := compileSearch(t, svc)

	res := compiled.Execute(context.Background(), `{ search(q: "x") { key } }`, "", nil)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "could not resolve concrete type")
}

type event struct{}

type concert struct {
	Venue string
}

type lecture struct {
	Topic string
}

type eventService struct{}

func (*eventService) Next(ctx context.Context) any { return concert{Venue: "Roxy"} }

func TestAbstract_UnionWithCustomDiscriminator(t *testing.T) {
	reg := NewRegistry()
	reg.Object(concert{}).Name("Concert").Field("venue", nil)
	reg.Object(lecture{}).Name("Lecture").Field("topic", nil)
	reg.Union(event{}).Name("Event").
		Member(concert{}, lecture{}).
		ResolveType(func(value any) string {
			switch value.(type) {
			case concert:
				return "Concert"
			case lecture:
				return "Lecture"
			}
			return ""
		})
	reg.Object(eventService{}).FieldFunc("next", (*eventService).Next, Returns(Shape(event{})))

	compiled, err := Compile(reg,
		reg.Schema("events").Query(eventService{}),
		WithContainer(ProviderFunc(func(reflect.Type) (any, error) { return &eventService{}, nil })))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `{
		next { __typename ... on Concert { venue } ... on Lecture { topic } }
	}`, "", nil)
	require.Empty(t, res.Errors)
	require.Equal(t,
		map[string]any{"__typename": "Concert", "venue": "Roxy"},
		res.Data.(map[string]any)["next"])
}

func TestAbstract_DiscriminatorReturningEmptyFails(t *testing.T) {
	reg := NewRegistry()
	reg.Object(concert{}).Name("Concert").Field("venue", nil)
	reg.Object(lecture{}).Name("Lecture").Field("topic", nil)
	reg.Union(event{}).Name("Event").
		Member(concert{}, lecture{}).
		ResolveType(func(value any) string { return "" })
	reg.Object(eventService{}).FieldFunc("next", (*eventService).Next, Returns(Shape(event{})))

	compiled, err := Compile(reg,
		reg.Schema("events").Query(eventService{}),
		WithContainer(ProviderFunc(func(reflect.Type) (any, error) { return &eventService{}, nil })))
	require.NoError(t, err)

	res := compiled.Execute(context.Background(), `{ next { __typename } }`, "", nil)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "could not resolve concrete type")
}
