package storage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates that the requested resource was not found or a
	// required request parameter was missing.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLoad indicates that the ontology source could not be read or parsed.
	ErrLoad = errors.New("ontology load failed")

	// ErrInference indicates that the reasoning step failed.
	ErrInference = errors.New("inference failed")

	// ErrQuery indicates a malformed or failed query.
	ErrQuery = errors.New("query failed")

	// ErrGraphBoundsExceeded indicates that tree materialization exceeded bounds.
	ErrGraphBoundsExceeded = errors.New("graph bounds exceeded")
)

// LoadError reports a failure to read or parse the ontology source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

// Unwrap exposes both ErrLoad and the underlying cause to errors.Is.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// InferenceError reports a failure of the reasoning collaborator.
type InferenceError struct {
	Reasoner string
	Err      error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("reasoner %s: %v", e.Reasoner, e.Err)
}

// Unwrap exposes both ErrInference and the underlying cause to errors.Is.
func (e *InferenceError) Unwrap() []error { return []error{ErrInference, e.Err} }

// QueryError reports a failed query execution.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query: %v", e.Err)
}

// Unwrap exposes both ErrQuery and the underlying cause to errors.Is.
func (e *QueryError) Unwrap() []error { return []error{ErrQuery, e.Err} }

// GraphBounds prevents combinatorial explosion while materializing trees.
// Trees over DAGs expand shared nodes once per branch, so node counts can
// grow faster than the ontology itself.
type GraphBounds struct {
	// MaxNodes is the maximum number of tree nodes to materialize.
	MaxNodes int

	// MaxDepth is the maximum depth of a materialized branch.
	MaxDepth int

	// Timeout is the maximum duration for one materialization.
	Timeout time.Duration
}

// Normalize applies defaults and caps to the GraphBounds.
func (g *GraphBounds) Normalize() {
	if g.MaxNodes < 1 {
		g.MaxNodes = 200000 // Default max nodes
	}

	if g.MaxNodes > 5000000 {
		g.MaxNodes = 5000000 // Cap max nodes
	}

	if g.MaxDepth < 1 {
		g.MaxDepth = 256 // Default max depth
	}

	if g.Timeout == 0 {
		g.Timeout = 30 * time.Second // Default timeout
	}

	if g.Timeout > 5*time.Minute {
		g.Timeout = 5 * time.Minute // Cap timeout
	}
}
