package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/storage/memory"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

const ns = "https://ritualgrammar.org/ontology#"

func rg(local string) string { return ns + local }

// label states an rdfs:label for id.
func label(id, text string) types.Triple { return types.L(id, vocab.RDFSLabel, text) }

// labeled returns label triples for every local name, labeled with itself.
func labeled(locals ...string) []types.Triple {
	out := make([]types.Triple, 0, len(locals))
	for _, l := range locals {
		out = append(out, label(rg(l), l))
	}
	return out
}

func newStore(kind storage.Kind, groups ...[]types.Triple) *memory.Store {
	var all []types.Triple
	for _, g := range groups {
		all = append(all, g...)
	}
	return memory.New(kind, all)
}

func mustLabels(t *testing.T, store storage.TripleStore) *Labels {
	t.Helper()
	labels, err := LoadLabels(context.Background(), store)
	require.NoError(t, err)
	return labels
}

// shape renders a forest as nested id lists with the namespace stripped,
// e.g. "A(B(C))".
func shape(nodes []types.TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, shapeOf(n))
	}
	return out
}

func shapeOf(n types.TreeNode) string {
	s := vocab.LocalName(n.ID)
	if len(n.Children) == 0 {
		return s
	}
	s += "("
	for i, c := range n.Children {
		if i > 0 {
			s += " "
		}
		s += shapeOf(c)
	}
	return s + ")"
}
