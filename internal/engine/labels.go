package engine

import (
	"context"
	"fmt"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// Labels resolves display labels for one store.
//
// Resolution order: skos:altLabel, skos:prefLabel, rdfs:label, then the
// local name of the id. Only literal objects count, and for each predicate
// the first literal in document order wins. Labels are read in a single scan
// when the resolver is loaded, so lookups never touch the store.
type Labels struct {
	explicit map[string]string
}

// LoadLabels scans store for label triples.
func LoadLabels(ctx context.Context, store storage.TripleStore) (*Labels, error) {
	triples, err := store.WithPredicates(ctx, vocab.LabelPredicates...)
	if err != nil {
		return nil, fmt.Errorf("scan labels: %w", err)
	}

	rank := make(map[string]int, len(vocab.LabelPredicates))
	for i, p := range vocab.LabelPredicates {
		rank[p] = i
	}

	// best holds the rank of the label currently chosen for a subject.
	best := make(map[string]int)
	explicit := make(map[string]string)
	for _, t := range triples {
		if !t.Object.IsLiteral() {
			continue
		}
		id := t.Subject.String()
		r := rank[t.Predicate.Value]
		if cur, ok := best[id]; ok && cur <= r {
			continue
		}
		best[id] = r
		explicit[id] = t.Object.Value
	}
	return &Labels{explicit: explicit}, nil
}

// Explicit returns the label stated by a label predicate, if any.
func (l *Labels) Explicit(id string) (string, bool) {
	label, ok := l.explicit[id]
	return label, ok
}

// Has reports whether id carries a recognized label predicate.
func (l *Labels) Has(id string) bool {
	_, ok := l.explicit[id]
	return ok
}

// Len returns the number of explicitly labeled resources.
func (l *Labels) Len() int { return len(l.explicit) }

// Label returns the display label of id. It is never empty for a non-empty id.
func (l *Labels) Label(id string) string {
	if label, ok := l.explicit[id]; ok {
		return label
	}
	if name := vocab.LocalName(id); name != "" {
		return name
	}
	return id
}

// Term returns the display label of a term: literals render as their
// lexical form, resources through Label.
func (l *Labels) Term(t types.Term) string {
	if t.IsLiteral() {
		return t.Value
	}
	return l.Label(t.String())
}
