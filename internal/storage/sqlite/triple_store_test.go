package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

const ex = "http://example.org/"

// newTestStore creates an in-memory SQLite store loaded with triples.
func newTestStore(t *testing.T, triples []types.Triple) *TripleStore {
	t.Helper()
	store, err := NewTripleStore(":memory:", storage.KindAsserted)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Load(context.Background(), triples))
	return store
}

func fixture() []types.Triple {
	return []types.Triple{
		types.T(ex+"A", vocab.CRMContains, ex+"B"),
		{Subject: types.IRI(ex + "A"), Predicate: types.IRI(vocab.SKOSPrefLabel), Object: types.LangLiteral("Alpha", "en")},
		types.T(ex+"B", vocab.CRMConsistsOf, ex+"C"),
		{Subject: types.Blank("n1"), Predicate: types.IRI(vocab.CRMContains), Object: types.IRI(ex + "C")},
		{Subject: types.IRI(ex + "C"), Predicate: types.IRI(ex + "weight"), Object: types.TypedLiteral("3", "http://www.w3.org/2001/XMLSchema#integer")},
		types.T(ex+"A", vocab.CRMContains, ex+"B"),
	}
}

func TestLoad_DeduplicatesAndCounts(t *testing.T) {
	store := newTestStore(t, fixture())
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, storage.KindAsserted, store.Kind())

	all, err := store.Triples(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, fixture()[:5], all)
}

func TestLoad_ReplacesGraph(t *testing.T) {
	store := newTestStore(t, fixture())
	require.NoError(t, store.Load(context.Background(), fixture()[:1]))
	assert.Equal(t, 1, store.Len())
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, fixture())

	po, err := store.PredicateObjects(ctx, ex+"A")
	require.NoError(t, err)
	require.Len(t, po, 2)
	assert.Equal(t, "en", po[1].Object.Lang)

	sp, err := store.SubjectPredicates(ctx, ex+"C")
	require.NoError(t, err)
	require.Len(t, sp, 2)
	assert.Equal(t, "_:n1", sp[1].Subject.String())

	objs, err := store.Objects(ctx, ex+"C", ex+"weight")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", objs[0].Datatype)

	subs, err := store.Subjects(ctx, vocab.CRMConsistsOf, ex+"C")
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "B"}, subs)

	ok, err := store.HasTriple(ctx, "_:n1", vocab.CRMContains, ex+"C")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.HasTriple(ctx, ex+"C", vocab.CRMContains, ex+"A")
	require.NoError(t, err)
	assert.False(t, ok)

	tree, err := store.WithPredicates(ctx, vocab.CRMContains, vocab.CRMConsistsOf)
	require.NoError(t, err)
	assert.Len(t, tree, 3)

	none, err := store.WithPredicates(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBuilder_SharedFileKeepsGraphsApart(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "navigator.db")
	build := Builder(dsn)

	asserted, err := build.Build(ctx, storage.KindAsserted, fixture()[:2])
	require.NoError(t, err)
	defer asserted.Close()

	inferred, err := build.Build(ctx, storage.KindInferred, fixture())
	require.NoError(t, err)
	defer inferred.Close()

	assert.Equal(t, 2, asserted.Len())
	assert.Equal(t, 5, inferred.Len())

	got, err := asserted.Triples(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestNewTripleStore_FileReopenReplacesGraph(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "navigator.db")
	build := Builder(dsn)

	first, err := build.Build(ctx, storage.KindAsserted, fixture())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := build.Build(ctx, storage.KindAsserted, fixture()[:1])
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 1, second.Len())
	got, err := second.Triples(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixture()[:1], got)
}
