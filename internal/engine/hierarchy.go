package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// HierarchyOptions selects the relations a hierarchy tree is built from.
type HierarchyOptions struct {
	// ParentChild predicates are stored as (parent, p, child).
	ParentChild []string

	// ChildParent predicates are stored as (child, p, parent).
	ChildParent []string

	Bounds storage.GraphBounds
}

// DefaultHierarchyOptions uses the CIDOC-CRM part-whole relations.
func DefaultHierarchyOptions() HierarchyOptions {
	return HierarchyOptions{
		ParentChild: append([]string(nil), vocab.ParentChildPredicates...),
		ChildParent: append([]string(nil), vocab.ChildParentPredicates...),
	}
}

// BuildHierarchy materializes the part-whole forest of store.
//
// Only labeled resources take part: an edge with an unlabeled endpoint is
// dropped. Edges from both relation sets are normalized to parent → child and
// unioned. Roots are the nodes with children and no parents, falling back to
// every node with children when there are none. Nodes without any edge never
// appear.
func BuildHierarchy(ctx context.Context, store storage.TripleStore, labels *Labels, opts HierarchyOptions) ([]types.TreeNode, error) {
	parentFirst := make(map[string]bool, len(opts.ParentChild))
	predicates := make([]string, 0, len(opts.ParentChild)+len(opts.ChildParent))
	for _, p := range opts.ParentChild {
		parentFirst[p] = true
		predicates = append(predicates, p)
	}
	predicates = append(predicates, opts.ChildParent...)

	relations, err := store.WithPredicates(ctx, predicates...)
	if err != nil {
		return nil, fmt.Errorf("scan hierarchy relations: %w", err)
	}

	adj := newAdjacency()
	dropped := 0
	for _, t := range relations {
		if t.Object.IsLiteral() {
			continue
		}
		s, o := t.Subject.String(), t.Object.String()
		if !labels.Has(s) || !labels.Has(o) {
			dropped++
			continue
		}
		if parentFirst[t.Predicate.Value] {
			adj.addEdge(s, o)
		} else {
			adj.addEdge(o, s)
		}
	}

	b := &treeBuilder{adj: adj, labels: labels, checker: NewBoundsChecker(opts.Bounds)}
	forest, err := b.forest(ctx, adj.roots())
	if err != nil {
		return nil, err
	}

	stats := b.checker.Stats()
	slog.Debug("hierarchy materialized",
		"store", string(store.Kind()),
		"relations", len(relations),
		"unlabeled_edges", dropped,
		"roots", len(forest),
		"nodes", stats.NodesVisited,
		"depth", stats.DepthReached,
		"duration", stats.Elapsed)
	return forest, nil
}
