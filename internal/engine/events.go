package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// DefaultEventAnchor is the concept the event tree hangs from unless
// configured otherwise.
const DefaultEventAnchor = "https://ritualgrammar.org/ontology#Ritual"

// EventOptions configures the event-type fusion tree.
type EventOptions struct {
	// EventClass marks events via rdf:type. Default: crm:E5_Event
	EventClass string

	// HasType links an event to its type concepts. Default: crm:P2_has_type
	HasType string

	// Broader links a concept to a more general one. Default: skos:broader
	Broader string

	// Anchor is the root concept of the tree.
	Anchor string

	Bounds storage.GraphBounds
}

// DefaultEventOptions returns the CIDOC-CRM and SKOS defaults.
func DefaultEventOptions() EventOptions {
	return EventOptions{
		EventClass: vocab.CRMEvent,
		HasType:    vocab.CRMHasType,
		Broader:    vocab.SKOSBroader,
		Anchor:     DefaultEventAnchor,
	}
}

// BuildEventTree fuses event membership from the inferred store with the
// asserted broader chain into a single tree under opts.Anchor.
//
// Each event hangs under its most specific types: a type is dropped when the
// inferred store says another of the event's types is narrower than it. From
// every such leaf type the asserted broader relation is walked upward
// breadth-first until the anchor, so the tree shows the stated chain rather
// than transitive shortcuts. If no walk reaches the anchor the result is
// empty. labels should resolve against the inferred store.
func BuildEventTree(ctx context.Context, inferred, asserted storage.TripleStore, labels *Labels, opts EventOptions) ([]types.TreeNode, error) {
	events, err := inferred.SubjectsOfType(ctx, opts.EventClass)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	adj := newAdjacency()
	isEvent := make(map[string]bool, len(events))
	walked := make(map[string]bool)
	reached := false

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		typeTerms, err := inferred.Objects(ctx, event, opts.HasType)
		if err != nil {
			return nil, fmt.Errorf("types of %s: %w", event, err)
		}
		leaves, err := mostSpecific(ctx, inferred, resourceIDs(typeTerms), opts.Broader)
		if err != nil {
			return nil, err
		}
		if len(leaves) == 0 {
			continue
		}
		isEvent[event] = true

		for _, leaf := range leaves {
			adj.addEdge(leaf, event)
			// A leaf's upward walk records the same edges every time.
			if walked[leaf] {
				continue
			}
			walked[leaf] = true
			ok, err := walkBroader(ctx, asserted, adj, leaf, opts)
			if err != nil {
				return nil, err
			}
			reached = reached || ok
		}
	}

	if !reached {
		slog.Debug("event anchor not reached", "anchor", opts.Anchor, "events", len(events))
		return []types.TreeNode{}, nil
	}

	b := &treeBuilder{adj: adj, labels: labels, events: isEvent, checker: NewBoundsChecker(opts.Bounds)}
	root, err := b.build(ctx, opts.Anchor, make(map[string]bool), 0)
	if err != nil {
		return nil, err
	}

	stats := b.checker.Stats()
	slog.Debug("event tree materialized",
		"events", len(isEvent),
		"nodes", stats.NodesVisited,
		"depth", stats.DepthReached,
		"duration", stats.Elapsed)
	return []types.TreeNode{root}, nil
}

// mostSpecific removes every type t1 for which some other type t2 of the
// same set has (t2 broader t1) in store. The check runs against the full
// original set.
func mostSpecific(ctx context.Context, store storage.TripleStore, typeIDs []string, broader string) ([]string, error) {
	var out []string
	for _, t1 := range typeIDs {
		subsumed := false
		for _, t2 := range typeIDs {
			if t1 == t2 {
				continue
			}
			ok, err := store.HasTriple(ctx, t2, broader, t1)
			if err != nil {
				return nil, fmt.Errorf("check %s broader %s: %w", t2, t1, err)
			}
			if ok {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, t1)
		}
	}
	return out, nil
}

// walkBroader records the asserted broader chain above leaf and reports
// whether it reached the anchor. Each walk has its own visited set and does
// not continue past the anchor.
func walkBroader(ctx context.Context, asserted storage.TripleStore, adj *adjacency, leaf string, opts EventOptions) (bool, error) {
	reached := false
	visited := map[string]bool{leaf: true}
	queue := []string{leaf}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == opts.Anchor {
			reached = true
			continue
		}
		parents, err := asserted.Objects(ctx, n, opts.Broader)
		if err != nil {
			return false, fmt.Errorf("broader of %s: %w", n, err)
		}
		for _, p := range resourceIDs(parents) {
			adj.addEdge(p, n)
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return reached, nil
}

// resourceIDs returns the ids of the non-literal terms, deduplicated in order.
func resourceIDs(terms []types.Term) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.IsLiteral() {
			continue
		}
		id := t.String()
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
