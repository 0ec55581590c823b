package engine

import (
	"context"
	"fmt"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// Details lists the labeled edges of id. Outgoing edges come first in
// document order, followed by incoming edges. Ontology bookkeeping
// (owl:imports, owl:versionIRI, and rdf:type to OWL meta-classes) is hidden
// in both directions, so inspecting owl:Class does not list every class.
func Details(ctx context.Context, store storage.TripleStore, labels *Labels, id string) (*types.NodeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: node id is required", storage.ErrNotFound)
	}

	out := &types.NodeDetails{
		ID:         id,
		Label:      labels.Label(id),
		Inferred:   store.Kind() == storage.KindInferred,
		Properties: []types.Property{},
	}

	edges, err := store.PredicateObjects(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("outgoing edges of %s: %w", id, err)
	}
	for _, e := range edges {
		if ignored(e.Predicate, e.Object) {
			continue
		}
		out.Properties = append(out.Properties, property(labels, e.Predicate, e.Object, types.DirectionOutgoing))
	}

	incoming, err := store.SubjectPredicates(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("incoming edges of %s: %w", id, err)
	}
	// The inspected node is the object of every incoming edge.
	self := types.IRI(id)
	for _, e := range incoming {
		if ignored(e.Predicate, self) {
			continue
		}
		out.Properties = append(out.Properties, property(labels, e.Predicate, e.Subject, types.DirectionIncoming))
	}
	return out, nil
}

func ignored(predicate, object types.Term) bool {
	if vocab.IgnoredPredicates[predicate.Value] {
		return true
	}
	return predicate.Value == vocab.RDFType && vocab.IgnoredTypes[object.Value]
}

func property(labels *Labels, predicate, other types.Term, dir types.Direction) types.Property {
	value := other.String()
	if other.IsLiteral() {
		value = other.Value
	}
	return types.Property{
		Predicate:      predicate.Value,
		PredicateLabel: labels.Label(predicate.Value),
		Object:         value,
		ObjectLabel:    labels.Term(other),
		IsURI:          other.IsIRI(),
		Direction:      dir,
	}
}
