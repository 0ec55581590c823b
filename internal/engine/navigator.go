package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ritualgrammar/navigator/internal/sparql"
	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// InferenceNotice is shown when an inferred view falls back to asserted data.
const InferenceNotice = "Inference is unavailable; showing asserted triples only."

// TreeView is a materialized forest together with the store it came from.
type TreeView struct {
	Nodes []types.TreeNode `json:"nodes"`

	// Kind is the store the forest was built from. It differs from the
	// requested kind when inference failed.
	Kind storage.Kind `json:"kind"`

	// Notice is set when the view fell back to the asserted store.
	Notice string `json:"notice,omitempty"`
}

// NavigatorConfig configures a Navigator.
type NavigatorConfig struct {
	Hierarchy HierarchyOptions
	Events    EventOptions

	// Queriers answers SPARQL per store kind. Missing kinds are unconfigured.
	Queriers map[storage.Kind]sparql.Querier
}

// Navigator serves every view over the cached stores.
type Navigator struct {
	cache    *StoreCache
	config   NavigatorConfig
	queriers map[storage.Kind]sparql.Querier
}

// NewNavigator creates a navigator reading through cache.
func NewNavigator(cache *StoreCache, config NavigatorConfig) *Navigator {
	queriers := make(map[storage.Kind]sparql.Querier, 2)
	for _, kind := range []storage.Kind{storage.KindAsserted, storage.KindInferred} {
		if q, ok := config.Queriers[kind]; ok && q != nil {
			queriers[kind] = q
		} else {
			queriers[kind] = sparql.Unconfigured{}
		}
	}
	return &Navigator{cache: cache, config: config, queriers: queriers}
}

// Cache returns the store cache behind the navigator.
func (n *Navigator) Cache() *StoreCache { return n.cache }

// NavigationTree builds the part-whole hierarchy of the asserted or inferred
// store.
func (n *Navigator) NavigationTree(ctx context.Context, inferred bool) (*TreeView, error) {
	snap, kind, notice, err := n.snapshot(ctx, storage.KindFor(inferred))
	if err != nil {
		return nil, err
	}
	nodes, err := BuildHierarchy(ctx, snap.Store, snap.Labels, n.config.Hierarchy)
	if err != nil {
		return nil, fmt.Errorf("build hierarchy: %w", err)
	}
	return &TreeView{Nodes: nodes, Kind: kind, Notice: notice}, nil
}

// EventTree builds the event-type tree. Without inference both sides of the
// fusion read the asserted store.
func (n *Navigator) EventTree(ctx context.Context) (*TreeView, error) {
	inferred, kind, notice, err := n.snapshot(ctx, storage.KindInferred)
	if err != nil {
		return nil, err
	}
	asserted, err := n.cache.Get(ctx, storage.KindAsserted)
	if err != nil {
		return nil, err
	}
	nodes, err := BuildEventTree(ctx, inferred.Store, asserted.Store, inferred.Labels, n.config.Events)
	if err != nil {
		return nil, fmt.Errorf("build event tree: %w", err)
	}
	return &TreeView{Nodes: nodes, Kind: kind, Notice: notice}, nil
}

// Details returns the labeled edges of id.
func (n *Navigator) Details(ctx context.Context, id string, inferred bool) (*types.NodeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: node id is required", storage.ErrNotFound)
	}
	snap, _, _, err := n.snapshot(ctx, storage.KindFor(inferred))
	if err != nil {
		return nil, err
	}
	return Details(ctx, snap.Store, snap.Labels, id)
}

// Query runs query against the endpoint of the requested kind and shapes the
// outcome. The store is loaded first, so a configured graph store already
// holds its triples; when inference failed the asserted endpoint answers.
func (n *Navigator) Query(ctx context.Context, query string, inferred bool) *types.QueryResult {
	kind := storage.KindFor(inferred)
	labels := &Labels{}
	if snap, used, _, err := n.snapshot(ctx, kind); err == nil {
		labels = snap.Labels
		kind = used
	} else {
		slog.Warn("query labels unavailable", "kind", string(kind), "error", err)
	}
	return ShapeQuery(ctx, n.queriers[kind], labels, query)
}

// QueryConfigured reports whether a SPARQL endpoint answers for the kind.
func (n *Navigator) QueryConfigured(inferred bool) bool {
	_, unconfigured := n.queriers[storage.KindFor(inferred)].(sparql.Unconfigured)
	return !unconfigured
}

// snapshot returns the store of kind. A failed inferred store falls back to
// the asserted one with a notice; load failures are returned as is.
func (n *Navigator) snapshot(ctx context.Context, kind storage.Kind) (*Snapshot, storage.Kind, string, error) {
	snap, err := n.cache.Get(ctx, kind)
	if err == nil {
		return snap, kind, "", nil
	}
	var infErr *storage.InferenceError
	if kind != storage.KindInferred || !errors.As(err, &infErr) {
		return nil, kind, "", err
	}

	slog.Warn("inferred store unavailable, using asserted", "error", err)
	snap, err = n.cache.Get(ctx, storage.KindAsserted)
	if err != nil {
		return nil, storage.KindAsserted, "", err
	}
	return snap, storage.KindAsserted, InferenceNotice, nil
}
