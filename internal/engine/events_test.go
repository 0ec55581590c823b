package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// ritualChain is the asserted concept scheme Offering → Rite → Ritual.
func ritualChain() []types.Triple {
	return append(labeled("Ritual", "Rite", "Offering", "Dance"),
		types.T(rg("Rite"), vocab.SKOSBroader, rg("Ritual")),
		types.T(rg("Offering"), vocab.SKOSBroader, rg("Rite")),
		types.T(rg("Dance"), vocab.SKOSBroader, rg("Ritual")),
	)
}

func event(id string, typeIDs ...string) []types.Triple {
	out := []types.Triple{
		types.T(id, vocab.RDFType, vocab.CRMEvent),
		label(id, vocab.LocalName(id)),
	}
	for _, t := range typeIDs {
		out = append(out, types.T(id, vocab.CRMHasType, t))
	}
	return out
}

func buildEvents(t *testing.T, asserted, inferred []types.Triple) []types.TreeNode {
	t.Helper()
	as := newStore(storage.KindAsserted, asserted)
	inf := newStore(storage.KindInferred, asserted, inferred)
	forest, err := BuildEventTree(context.Background(), inf, as, mustLabels(t, inf), DefaultEventOptions())
	require.NoError(t, err)
	return forest
}

func TestBuildEventTree_MostSpecificTypeFollowsAssertedChain(t *testing.T) {
	asserted := append(ritualChain(), event(rg("e1"), rg("Offering"), rg("Rite"))...)
	// Entailed shortcut that must not appear as a tree edge.
	inferred := []types.Triple{types.T(rg("Offering"), vocab.SKOSBroader, rg("Ritual"))}

	forest := buildEvents(t, asserted, inferred)

	require.Len(t, forest, 1)
	assert.Equal(t, "Ritual(Rite(Offering(e1)))", shapeOf(forest[0]))
}

func TestBuildEventTree_EventsTagged(t *testing.T) {
	asserted := append(ritualChain(), event(rg("e1"), rg("Dance"))...)

	forest := buildEvents(t, asserted, nil)

	require.Len(t, forest, 1)
	var events, concepts int
	forest[0].Walk(func(n types.TreeNode, _ []string) bool {
		if n.IsEvent {
			events++
			assert.Equal(t, rg("e1"), n.ID)
		} else {
			concepts++
		}
		return true
	})
	assert.Equal(t, 1, events)
	assert.Equal(t, 2, concepts)
}

func TestBuildEventTree_TypesFromInferredStore(t *testing.T) {
	asserted := ritualChain()
	inferred := event(rg("e1"), rg("Dance"))

	forest := buildEvents(t, asserted, inferred)

	require.Len(t, forest, 1)
	assert.Equal(t, "Ritual(Dance(e1))", shapeOf(forest[0]))
}

func TestBuildEventTree_AnchorNotReached(t *testing.T) {
	asserted := append(labeled("Elsewhere"), event(rg("e1"), rg("Elsewhere"))...)

	forest := buildEvents(t, asserted, nil)

	assert.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestBuildEventTree_EventWithoutTypesSkipped(t *testing.T) {
	asserted := append(ritualChain(), event(rg("e1"), rg("Dance"))...)
	asserted = append(asserted, event(rg("untyped"))...)

	forest := buildEvents(t, asserted, nil)

	require.Len(t, forest, 1)
	assert.Equal(t, "Ritual(Dance(e1))", shapeOf(forest[0]))
}

func TestBuildEventTree_EventsSortedUnderSharedLeaf(t *testing.T) {
	asserted := ritualChain()
	asserted = append(asserted, event(rg("zeta"), rg("Dance"))...)
	asserted = append(asserted, event(rg("alpha"), rg("Dance"))...)
	asserted = append(asserted, event(rg("mid"), rg("Offering"))...)

	forest := buildEvents(t, asserted, nil)

	require.Len(t, forest, 1)
	assert.Equal(t, "Ritual(Dance(alpha zeta) Rite(Offering(mid)))", shapeOf(forest[0]))
}

func TestBuildEventTree_EventUnderSeveralLeaves(t *testing.T) {
	asserted := append(ritualChain(), event(rg("feast"), rg("Offering"), rg("Dance"))...)

	forest := buildEvents(t, asserted, nil)

	require.Len(t, forest, 1)
	assert.Equal(t, "Ritual(Dance(feast) Rite(Offering(feast)))", shapeOf(forest[0]))
}

func TestBuildEventTree_EventTypedWithAnchor(t *testing.T) {
	asserted := append(ritualChain(), event(rg("e1"), rg("Ritual"))...)

	forest := buildEvents(t, asserted, nil)

	require.Len(t, forest, 1)
	assert.Equal(t, "Ritual(e1)", shapeOf(forest[0]))
}

func TestBuildEventTree_BroaderCycleTerminates(t *testing.T) {
	asserted := append(ritualChain(),
		types.T(rg("Ritual"), vocab.SKOSBroader, rg("Offering")),
	)
	asserted = append(asserted, event(rg("e1"), rg("Offering"))...)

	forest := buildEvents(t, asserted, nil)

	require.Len(t, forest, 1)
	forest[0].Walk(func(n types.TreeNode, ancestors []string) bool {
		assert.NotContains(t, ancestors, n.ID)
		return true
	})
}

func TestMostSpecific(t *testing.T) {
	store := newStore(storage.KindInferred, []types.Triple{
		types.T(rg("T2"), vocab.SKOSBroader, rg("T1")),
		types.T(rg("T3"), vocab.SKOSBroader, rg("T2")),
		types.T(rg("T3"), vocab.SKOSBroader, rg("T1")),
	})

	got, err := mostSpecific(context.Background(), store, []string{rg("T1"), rg("T2")}, vocab.SKOSBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{rg("T2")}, got)

	got, err = mostSpecific(context.Background(), store, []string{rg("T1"), rg("T2"), rg("T3")}, vocab.SKOSBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{rg("T3")}, got)

	got, err = mostSpecific(context.Background(), store, []string{rg("T1"), rg("Unrelated")}, vocab.SKOSBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{rg("T1"), rg("Unrelated")}, got)
}
