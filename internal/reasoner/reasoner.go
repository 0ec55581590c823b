// Package reasoner computes entailments over an ontology graph.
//
// Two implementations exist: Rules, an in-process forward chainer covering
// the OWL 2 RL subset the navigator depends on, and Remote, which delegates
// to an HTTP reasoning service exchanging N-Triples. Both return the full
// closure (input plus entailed triples) and never mutate their input.
package reasoner

import (
	"context"
	"errors"

	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// ErrLimitExceeded is returned when a closure grows past the configured
// triple or iteration limits.
var ErrLimitExceeded = errors.New("reasoning limit exceeded")

// Reasoner computes the closure of a graph under a schema.
type Reasoner interface {
	// Name identifies the reasoner in logs and errors.
	Name() string

	// Entail returns triples plus every triple entailed by triples together
	// with schema's declarations.
	Entail(ctx context.Context, triples []types.Triple, schema Schema) ([]types.Triple, error)
}

// Schema holds declarations added to the graph before reasoning.
type Schema struct {
	// Transitive lists properties declared owl:TransitiveProperty.
	Transitive []string

	// SubPropertyOf maps a property to the properties it specializes.
	SubPropertyOf map[string][]string
}

// DefaultSchema returns the navigator's declarations: the part-whole and
// broader relations are transitive, and P9_consists_of specializes
// P10i_contains.
func DefaultSchema() Schema {
	return Schema{
		Transitive: append([]string(nil), vocab.TransitivePredicates...),
		SubPropertyOf: map[string][]string{
			vocab.CRMConsistsOf: {vocab.CRMContains},
		},
	}
}

// Triples renders the schema as RDF declarations in a stable order.
func (s Schema) Triples() []types.Triple {
	out := make([]types.Triple, 0, len(s.Transitive)+len(s.SubPropertyOf))
	for _, p := range s.Transitive {
		out = append(out, types.T(p, vocab.RDFType, vocab.OWLTransitiveProperty))
	}
	for _, sub := range sortedKeys(s.SubPropertyOf) {
		for _, super := range s.SubPropertyOf[sub] {
			out = append(out, types.T(sub, vocab.RDFSSubProperty, super))
		}
	}
	return out
}
