package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

const ex = "http://example.org/"

func fixture() []types.Triple {
	return []types.Triple{
		types.T(ex+"A", vocab.CRMContains, ex+"B"),
		types.T(ex+"B", vocab.CRMConsistsOf, ex+"C"),
		types.L(ex+"A", vocab.RDFSLabel, "Alpha"),
		types.T(ex+"A", vocab.RDFType, vocab.CRMEvent),
		{Subject: types.Blank("b0"), Predicate: types.IRI(vocab.CRMContains), Object: types.IRI(ex + "C")},
		types.T(ex+"A", vocab.CRMContains, ex+"B"), // duplicate
	}
}

func TestNew_DeduplicatesPreservingOrder(t *testing.T) {
	s := New(storage.KindAsserted, fixture())
	assert.Equal(t, storage.KindAsserted, s.Kind())
	assert.Equal(t, 5, s.Len())

	all, err := s.Triples(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, types.T(ex+"A", vocab.CRMContains, ex+"B"), all[0])
	assert.True(t, all[4].Subject.IsBlank())
}

func TestStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := New(storage.KindInferred, fixture())

	po, err := s.PredicateObjects(ctx, ex+"A")
	require.NoError(t, err)
	require.Len(t, po, 3)
	assert.Equal(t, vocab.CRMContains, po[0].Predicate.Value)
	assert.Equal(t, "Alpha", po[1].Object.Value)

	sp, err := s.SubjectPredicates(ctx, ex+"C")
	require.NoError(t, err)
	require.Len(t, sp, 2)
	assert.Equal(t, ex+"B", sp[0].Subject.String())
	assert.Equal(t, "_:b0", sp[1].Subject.String())

	objs, err := s.Objects(ctx, ex+"A", vocab.RDFSLabel)
	require.NoError(t, err)
	assert.Equal(t, []types.Term{types.Literal("Alpha")}, objs)

	subs, err := s.Subjects(ctx, vocab.CRMContains, ex+"C")
	require.NoError(t, err)
	assert.Equal(t, []string{"_:b0"}, subs)

	ok, err := s.HasTriple(ctx, "_:b0", vocab.CRMContains, ex+"C")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasTriple(ctx, ex+"C", vocab.CRMContains, ex+"A")
	require.NoError(t, err)
	assert.False(t, ok)

	events, err := s.SubjectsOfType(ctx, vocab.CRMEvent)
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "A"}, events)
}

func TestStore_WithPredicates(t *testing.T) {
	s := New(storage.KindAsserted, fixture())

	got, err := s.WithPredicates(context.Background(), vocab.CRMConsistsOf, vocab.CRMContains, vocab.CRMContains)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Insertion order wins over argument order.
	assert.Equal(t, vocab.CRMContains, got[0].Predicate.Value)
	assert.Equal(t, vocab.CRMConsistsOf, got[1].Predicate.Value)
	assert.Equal(t, vocab.CRMContains, got[2].Predicate.Value)
}

func TestStore_UnknownSubject(t *testing.T) {
	ctx := context.Background()
	s := New(storage.KindAsserted, nil)

	po, err := s.PredicateObjects(ctx, ex+"missing")
	require.NoError(t, err)
	assert.Empty(t, po)

	objs, err := s.Objects(ctx, ex+"missing", vocab.RDFSLabel)
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestBuilder(t *testing.T) {
	st, err := Builder().Build(context.Background(), storage.KindInferred, fixture())
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, storage.KindInferred, st.Kind())
	assert.Equal(t, 5, st.Len())
}
