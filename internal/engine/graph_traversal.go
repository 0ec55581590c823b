package engine

import (
	"context"
	"sort"

	"github.com/ritualgrammar/navigator/pkg/types"
)

// adjacency is a set-backed parent/child multimap keyed by resource id.
// Duplicate edges collapse no matter how many predicates produced them.
type adjacency struct {
	children map[string]map[string]struct{}
	parents  map[string]map[string]struct{}
	nodes    []string // first-seen order
	known    map[string]struct{}
}

func newAdjacency() *adjacency {
	return &adjacency{
		children: make(map[string]map[string]struct{}),
		parents:  make(map[string]map[string]struct{}),
		known:    make(map[string]struct{}),
	}
}

func (a *adjacency) addNode(id string) {
	if _, ok := a.known[id]; ok {
		return
	}
	a.known[id] = struct{}{}
	a.nodes = append(a.nodes, id)
}

// addEdge records parent → child and reports whether the edge is new.
func (a *adjacency) addEdge(parent, child string) bool {
	a.addNode(parent)
	a.addNode(child)
	if a.children[parent] == nil {
		a.children[parent] = make(map[string]struct{})
	}
	if _, ok := a.children[parent][child]; ok {
		return false
	}
	a.children[parent][child] = struct{}{}
	if a.parents[child] == nil {
		a.parents[child] = make(map[string]struct{})
	}
	a.parents[child][parent] = struct{}{}
	return true
}

func (a *adjacency) hasChildren(id string) bool { return len(a.children[id]) > 0 }

func (a *adjacency) hasParents(id string) bool { return len(a.parents[id]) > 0 }

// roots returns the nodes with children and no parents. When every such
// node has a parent (the hierarchy is cyclic or rootless), it falls back to
// every node with children.
func (a *adjacency) roots() []string {
	var roots, withChildren []string
	for _, id := range a.nodes {
		if !a.hasChildren(id) {
			continue
		}
		withChildren = append(withChildren, id)
		if !a.hasParents(id) {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		return withChildren
	}
	return roots
}

// treeBuilder materializes trees from an adjacency map by depth-first
// traversal with per-branch cycle protection.
type treeBuilder struct {
	adj     *adjacency
	labels  *Labels
	events  map[string]bool
	checker *BoundsChecker
}

// build materializes the subtree at id. path holds the ids on the current
// branch; a child already on it is dropped from the children list rather
// than rendered as a leaf with empty children, so the repeat does not
// appear at all. Siblings never see each other's descendants, so a node
// reachable by two branches is expanded in both.
func (b *treeBuilder) build(ctx context.Context, id string, path map[string]bool, depth int) (types.TreeNode, error) {
	if err := b.checker.CanContinue(ctx, depth); err != nil {
		return types.TreeNode{}, err
	}
	b.checker.RecordNode(depth)

	node := types.TreeNode{
		ID:       id,
		Label:    b.labels.Label(id),
		Children: []types.TreeNode{},
		IsEvent:  b.events[id],
	}

	path[id] = true
	defer delete(path, id)

	for _, child := range b.sorted(b.adj.children[id]) {
		if path[child] {
			continue
		}
		sub, err := b.build(ctx, child, path, depth+1)
		if err != nil {
			return types.TreeNode{}, err
		}
		node.Children = append(node.Children, sub)
	}
	return node, nil
}

// forest materializes one tree per root, roots sorted like children.
func (b *treeBuilder) forest(ctx context.Context, roots []string) ([]types.TreeNode, error) {
	ids := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		ids[r] = struct{}{}
	}
	out := make([]types.TreeNode, 0, len(roots))
	for _, r := range b.sorted(ids) {
		tree, err := b.build(ctx, r, make(map[string]bool), 0)
		if err != nil {
			return nil, err
		}
		out = append(out, tree)
	}
	return out, nil
}

// sorted orders ids by label using byte-wise comparison, ties broken by id.
func (b *treeBuilder) sorted(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		li, lj := b.labels.Label(ids[i]), b.labels.Label(ids[j])
		if li != lj {
			return li < lj
		}
		return ids[i] < ids[j]
	})
	return ids
}
