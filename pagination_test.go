package typegraph

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/hanpama/typegraph/executor"
)

type song struct {
	Title string
}

type jukebox struct {
	songs []song
}

func (j *jukebox) Songs(ctx context.Context, offset int, limit int) ([]song, int) {
	total := len(j.songs)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return j.songs[offset:end], total
}

func compileJukebox(t *testing.T, j *jukebox) *CompiledSchema {
	t.Helper()
	reg := NewRegistry()
	reg.Object(song{}).Name("Song").Field("title", nil)
	reg.Object(jukebox{}).FieldFunc("songs", (*jukebox).Songs,
		Paginated(),
		Arg(1, "offset", nil),
		Arg(2, "limit", nil))
	compiled, err := Compile(reg,
		reg.Schema("jukebox").Query(jukebox{}),
		WithContainer(ProviderFunc(func(reflect.Type) (any, error) { return j, nil })))
	require.NoError(t, err)
	return compiled
}

func TestPagination_ConnectionEnvelope(t *testing.T) {
	j := &jukebox{songs: []song{{"a"}, {"b"}, {"c"}}}
	compiled := compileJukebox(t, j)

	gotRes := compiled.Execute(context.Background(), `{
		songs(offset: 0, limit: 2) {
			nodes { title }
			count
			pageInfo { hasNextPage hasPreviousPage }
		}
	}`, "", nil)

	wantRes := &executor.ExecutionResult{
		Data: map[string]any{
			"songs": map[string]any{
				"nodes": []any{
					map[string]any{"title": "a"},
					map[string]any{"title": "b"},
				},
				"count": 3,
				"pageInfo": map[string]any{
					"hasNextPage":     true,
					"hasPreviousPage": false,
				},
			},
		},
		Errors: []executor.GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestPagination_WindowEdges(t *testing.T) {
	j := &jukebox{songs: []song{{"a"}, {"b"}, {"c"}}}
	compiled := compileJukebox(t, j)

	t.Run("Last page", func(t *testing.T) {
		res := compiled.Execute(context.Background(), `{
			songs(offset: 1, limit: 5) { pageInfo { hasNextPage hasPreviousPage } }
		}`, "", nil)
		require.Empty(t, res.Errors)
		pi := res.Data.(map[string]any)["songs"].(map[string]any)["pageInfo"].(map[string]any)
		require.Equal(t, map[string]any{"hasNextPage": true, "hasPreviousPage": true}, pi)
	})

	t.Run("Whole set in one window", func(t *testing.T) {
		res := compiled.Execute(context.Background(), `{
			songs(offset: 0, limit: 5) { pageInfo { hasNextPage hasPreviousPage } }
		}`, "", nil)
		require.Empty(t, res.Errors)
		pi := res.Data.(map[string]any)["songs"].(map[string]any)["pageInfo"].(map[string]any)
		require.Equal(t, map[string]any{"hasNextPage": false, "hasPreviousPage": false}, pi)
	})

	t.Run("Empty set", func(t *testing.T) {
		empty := compileJukebox(t, &jukebox{})
		res := empty.Execute(context.Background(), `{
			songs(offset: 0, limit: 5) { count pageInfo { hasNextPage } }
		}`, "", nil)
		require.Empty(t, res.Errors)
		conn := res.Data.(map[string]any)["songs"].(map[string]any)
		require.Equal(t, 0, conn["count"])
		require.Equal(t, false, conn["pageInfo"].(map[string]any)["hasNextPage"])
	})
}

func TestPagination_SynthesizedTypes(t *testing.T) {
	j := &jukebox{}
	compiled := compileJukebox(t, j)

	conn := compiled.Schema.Types["SongConnection"]
	require.NotNil(t, conn)
	require.Equal(t, "[Song!]!", conn.GetField("nodes").Type.String())
	require.Equal(t, "Int!", conn.GetField("count").Type.String())
	require.Equal(t, "PageInfo!", conn.GetField("pageInfo").Type.String())

	pi := compiled.Schema.Types["PageInfo"]
	require.NotNil(t, pi)
	require.NotNil(t, pi.GetField("hasNextPage"))
	require.NotNil(t, pi.GetField("hasPreviousPage"))

	require.Equal(t, "SongConnection!", compiled.Schema.GetQueryType().GetField("songs").Type.String())
}

func TestPagination_SharedEnvelopePerElementType(t *testing.T) {
	reg := NewRegistry()
	reg.Object(song{}).Name("Song").Field("title", nil)

	type svc struct{}
	reg.Object(svc{}).
		FieldFunc("recent", func(*svc) ([]song, int) { return nil, 0 }, Paginated()).
		FieldFunc("popular", func(*svc) ([]song, int) { return nil, 0 }, Paginated())

	compiled, err := Compile(reg,
		reg.Schema("x").Query(svc{}),
		WithContainer(ProviderFunc(func(t reflect.Type) (any, error) {
			return reflect.New(t).Interface(), nil
		})))
	require.NoError(t, err)

	q := compiled.Schema.GetQueryType()
	require.Equal(t, "SongConnection!", q.GetField("recent").Type.String())
	require.Equal(t, "SongConnection!", q.GetField("popular").Type.String())
}
