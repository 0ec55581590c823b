// Package engine turns triple stores into navigation trees, shaped query
// tables and node details, and caches the stores those views read from.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ritualgrammar/navigator/internal/storage"
)

// BoundsChecker tracks and enforces materialization bounds. Trees over DAGs
// expand shared nodes once per branch, so output size is not bounded by the
// ontology size.
//
// It monitors:
//   - Number of tree nodes materialized
//   - Depth of the current branch
//   - Time elapsed since materialization started
//
// All checks respect context cancellation.
type BoundsChecker struct {
	bounds       storage.GraphBounds
	nodesVisited int
	maxDepth     int
	startTime    time.Time
}

// BoundsStats contains statistics about materialization progress.
type BoundsStats struct {
	// NodesVisited is the number of nodes materialized so far.
	NodesVisited int

	// DepthReached is the deepest branch seen so far.
	DepthReached int

	// Elapsed is the time elapsed since materialization started.
	Elapsed time.Duration
}

// NewBoundsChecker creates a new bounds checker with the given bounds.
// The bounds will be normalized to ensure valid defaults and maximums.
func NewBoundsChecker(bounds storage.GraphBounds) *BoundsChecker {
	bounds.Normalize()

	return &BoundsChecker{
		bounds:    bounds,
		startTime: time.Now(),
	}
}

// CanContinue checks all bounds (nodes, depth, timeout, context) before
// materializing a node at depth.
//
// Returns:
//   - nil if materialization can continue
//   - ErrGraphBoundsExceeded if any bound is exceeded
//   - context.Canceled or context.DeadlineExceeded if context is done
func (b *BoundsChecker) CanContinue(ctx context.Context, depth int) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled during tree materialization: %w", ctx.Err())
	default:
	}

	if b.nodesVisited >= b.bounds.MaxNodes {
		return fmt.Errorf("%w: max nodes (%d) exceeded", storage.ErrGraphBoundsExceeded, b.bounds.MaxNodes)
	}

	if depth >= b.bounds.MaxDepth {
		return fmt.Errorf("%w: max depth (%d) exceeded", storage.ErrGraphBoundsExceeded, b.bounds.MaxDepth)
	}

	// The clock is read once every 1024 nodes.
	if b.nodesVisited&1023 == 0 {
		if elapsed := time.Since(b.startTime); elapsed >= b.bounds.Timeout {
			return fmt.Errorf("%w: timeout (%v) exceeded after %v", storage.ErrGraphBoundsExceeded, b.bounds.Timeout, elapsed)
		}
	}

	return nil
}

// RecordNode counts one materialized node at depth.
func (b *BoundsChecker) RecordNode(depth int) {
	b.nodesVisited++
	if depth > b.maxDepth {
		b.maxDepth = depth
	}
}

// Stats returns current materialization statistics.
func (b *BoundsChecker) Stats() BoundsStats {
	return BoundsStats{
		NodesVisited: b.nodesVisited,
		DepthReached: b.maxDepth,
		Elapsed:      time.Since(b.startTime),
	}
}
