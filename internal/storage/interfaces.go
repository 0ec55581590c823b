// Package storage provides the triple store interface the navigator reads
// ontologies through, together with the error taxonomy shared by loaders,
// reasoners and query collaborators.
//
// Two store kinds exist side by side: the asserted store (triples as parsed
// from the ontology document) and the inferred store (asserted triples plus
// reasoner entailments). Both implement TripleStore; the memory and sqlite
// subpackages provide backends.
package storage

import (
	"context"

	"github.com/ritualgrammar/navigator/pkg/types"
)

// Kind names the two store flavours.
type Kind string

const (
	// KindAsserted holds the triples stated in the ontology document.
	KindAsserted Kind = "asserted"

	// KindInferred holds asserted triples plus reasoner entailments.
	KindInferred Kind = "inferred"
)

// KindFor maps the request-level inferred flag onto a store kind.
func KindFor(inferred bool) Kind {
	if inferred {
		return KindInferred
	}
	return KindAsserted
}

// PredicateObject is one outgoing edge of a subject.
type PredicateObject struct {
	Predicate types.Term
	Object    types.Term
}

// SubjectPredicate is one incoming edge of an object.
type SubjectPredicate struct {
	Subject   types.Term
	Predicate types.Term
}

// TripleStore is a read-only, loaded set of triples.
//
// Resource ids passed to the lookup methods use the Term.String form:
// IRIs as-is, blank nodes with a "_:" prefix. Results preserve the order in
// which triples were added, so "first" always means first in document order.
type TripleStore interface {
	// Kind reports whether this is the asserted or the inferred store.
	Kind() Kind

	// Len returns the number of distinct triples.
	Len() int

	// Triples returns every triple in insertion order.
	Triples(ctx context.Context) ([]types.Triple, error)

	// PredicateObjects returns the outgoing edges of subject.
	PredicateObjects(ctx context.Context, subject string) ([]PredicateObject, error)

	// SubjectPredicates returns the incoming edges of a resource object.
	SubjectPredicates(ctx context.Context, object string) ([]SubjectPredicate, error)

	// Objects returns the objects of (subject, predicate, ?).
	Objects(ctx context.Context, subject, predicate string) ([]types.Term, error)

	// Subjects returns the subjects of (?, predicate, object) for a resource object.
	Subjects(ctx context.Context, predicate, object string) ([]string, error)

	// HasTriple reports whether (s, p, o) is present for a resource object.
	HasTriple(ctx context.Context, s, p, o string) (bool, error)

	// SubjectsOfType returns every subject typed with class via rdf:type.
	SubjectsOfType(ctx context.Context, class string) ([]string, error)

	// WithPredicates returns every triple whose predicate is one of predicates.
	WithPredicates(ctx context.Context, predicates ...string) ([]types.Triple, error)

	// Close releases any resources held by the store.
	Close() error
}

// Builder creates an empty store of the given kind and fills it with triples.
// Implementations deduplicate triples while preserving first-seen order.
type Builder interface {
	Build(ctx context.Context, kind Kind, triples []types.Triple) (TripleStore, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, kind Kind, triples []types.Triple) (TripleStore, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, kind Kind, triples []types.Triple) (TripleStore, error) {
	return f(ctx, kind, triples)
}
