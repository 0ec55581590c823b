package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/pkg/types"
)

func newTestBuilder(t *testing.T, labelTriples []types.Triple, bounds storage.GraphBounds) (*treeBuilder, *adjacency) {
	t.Helper()
	adj := newAdjacency()
	labels := mustLabels(t, newStore(storage.KindAsserted, labelTriples))
	return &treeBuilder{adj: adj, labels: labels, checker: NewBoundsChecker(bounds)}, adj
}

// TestAdjacency_DuplicateEdgesCollapse tests that a repeated edge is stored once.
func TestAdjacency_DuplicateEdgesCollapse(t *testing.T) {
	adj := newAdjacency()

	if !adj.addEdge("a", "b") {
		t.Fatalf("first edge should be new")
	}
	if adj.addEdge("a", "b") {
		t.Errorf("repeated edge should not be new")
	}

	if len(adj.children["a"]) != 1 {
		t.Errorf("expected 1 child, got %d", len(adj.children["a"]))
	}
	if len(adj.parents["b"]) != 1 {
		t.Errorf("expected 1 parent, got %d", len(adj.parents["b"]))
	}
}

// TestAdjacency_Roots tests that roots are parentless nodes with children.
func TestAdjacency_Roots(t *testing.T) {
	adj := newAdjacency()
	adj.addEdge("a", "b")
	adj.addEdge("b", "c")
	adj.addEdge("d", "c")

	roots := adj.roots()
	if len(roots) != 2 || roots[0] != "a" || roots[1] != "d" {
		t.Errorf("expected roots [a d], got %v", roots)
	}
}

// TestAdjacency_RootFallback tests that a rootless graph falls back to every
// node with children.
func TestAdjacency_RootFallback(t *testing.T) {
	adj := newAdjacency()
	adj.addEdge("a", "b")
	adj.addEdge("b", "a")
	adj.addNode("isolated")

	roots := adj.roots()
	if len(roots) != 2 || roots[0] != "a" || roots[1] != "b" {
		t.Errorf("expected fallback roots [a b], got %v", roots)
	}
}

// TestTreeBuilder_CycleIsCut tests that a node never repeats on its own path.
func TestTreeBuilder_CycleIsCut(t *testing.T) {
	b, adj := newTestBuilder(t, labeled("A", "B", "C"), storage.GraphBounds{})
	adj.addEdge(rg("A"), rg("B"))
	adj.addEdge(rg("B"), rg("C"))
	adj.addEdge(rg("C"), rg("A"))

	tree, err := b.build(context.Background(), rg("A"), make(map[string]bool), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := shapeOf(tree); got != "A(B(C))" {
		t.Errorf("expected A(B(C)), got %s", got)
	}

	tree.Walk(func(n types.TreeNode, ancestors []string) bool {
		for _, a := range ancestors {
			if a == n.ID {
				t.Errorf("node %s repeats among its ancestors", n.ID)
			}
		}
		return true
	})
}

// TestTreeBuilder_SharedChildExpandedPerBranch tests that siblings do not
// share visited state.
func TestTreeBuilder_SharedChildExpandedPerBranch(t *testing.T) {
	b, adj := newTestBuilder(t, labeled("R", "A", "B", "S", "T"), storage.GraphBounds{})
	adj.addEdge(rg("R"), rg("A"))
	adj.addEdge(rg("R"), rg("B"))
	adj.addEdge(rg("A"), rg("S"))
	adj.addEdge(rg("B"), rg("S"))
	adj.addEdge(rg("S"), rg("T"))

	tree, err := b.build(context.Background(), rg("R"), make(map[string]bool), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := shapeOf(tree); got != "R(A(S(T)) B(S(T)))" {
		t.Errorf("expected R(A(S(T)) B(S(T))), got %s", got)
	}
}

// TestTreeBuilder_SortOrdinal tests byte-wise label ordering with id tie-break.
func TestTreeBuilder_SortOrdinal(t *testing.T) {
	labels := []types.Triple{
		label(rg("root"), "root"),
		label(rg("x1"), "beta"),
		label(rg("x2"), "Alpha"),
		label(rg("x3"), "alpha"),
		label(rg("x5"), "Same"),
		label(rg("x4"), "Same"),
	}
	b, adj := newTestBuilder(t, labels, storage.GraphBounds{})
	for _, c := range []string{"x1", "x2", "x3", "x5", "x4"} {
		adj.addEdge(rg("root"), rg(c))
	}

	tree, err := b.build(context.Background(), rg("root"), make(map[string]bool), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Alpha", "Same", "Same", "alpha", "beta"}
	if len(tree.Children) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(tree.Children))
	}
	for i, w := range want {
		if tree.Children[i].Label != w {
			t.Errorf("child %d: expected label %q, got %q", i, w, tree.Children[i].Label)
		}
	}
	if tree.Children[1].ID != rg("x4") || tree.Children[2].ID != rg("x5") {
		t.Errorf("equal labels should be ordered by id, got %s then %s", tree.Children[1].ID, tree.Children[2].ID)
	}
}

// TestTreeBuilder_LeafHasEmptyChildren tests that leaves carry an empty,
// non-nil children slice.
func TestTreeBuilder_LeafHasEmptyChildren(t *testing.T) {
	b, adj := newTestBuilder(t, labeled("A"), storage.GraphBounds{})
	adj.addNode(rg("A"))

	tree, err := b.build(context.Background(), rg("A"), make(map[string]bool), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Children == nil {
		t.Errorf("leaf children should be an empty slice, not nil")
	}
}

// TestTreeBuilder_MaxNodes tests that the node bound stops materialization.
func TestTreeBuilder_MaxNodes(t *testing.T) {
	b, adj := newTestBuilder(t, labeled("A", "B", "C"), storage.GraphBounds{MaxNodes: 2})
	adj.addEdge(rg("A"), rg("B"))
	adj.addEdge(rg("B"), rg("C"))

	_, err := b.build(context.Background(), rg("A"), make(map[string]bool), 0)
	if !errors.Is(err, storage.ErrGraphBoundsExceeded) {
		t.Errorf("expected ErrGraphBoundsExceeded, got %v", err)
	}
}

// TestTreeBuilder_MaxDepth tests that the depth bound stops materialization.
func TestTreeBuilder_MaxDepth(t *testing.T) {
	b, adj := newTestBuilder(t, labeled("A", "B", "C"), storage.GraphBounds{MaxDepth: 2})
	adj.addEdge(rg("A"), rg("B"))
	adj.addEdge(rg("B"), rg("C"))

	_, err := b.build(context.Background(), rg("A"), make(map[string]bool), 0)
	if !errors.Is(err, storage.ErrGraphBoundsExceeded) {
		t.Errorf("expected ErrGraphBoundsExceeded, got %v", err)
	}
}

// TestTreeBuilder_ContextCancellation tests that a cancelled context aborts.
func TestTreeBuilder_ContextCancellation(t *testing.T) {
	b, adj := newTestBuilder(t, labeled("A", "B"), storage.GraphBounds{Timeout: time.Second})
	adj.addEdge(rg("A"), rg("B"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.build(ctx, rg("A"), make(map[string]bool), 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestBoundsChecker_Stats tests that statistics follow recorded nodes.
func TestBoundsChecker_Stats(t *testing.T) {
	c := NewBoundsChecker(storage.GraphBounds{})
	c.RecordNode(0)
	c.RecordNode(1)
	c.RecordNode(3)

	stats := c.Stats()
	if stats.NodesVisited != 3 {
		t.Errorf("expected 3 nodes, got %d", stats.NodesVisited)
	}
	if stats.DepthReached != 3 {
		t.Errorf("expected depth 3, got %d", stats.DepthReached)
	}
}
