// Package memory implements storage.TripleStore with in-process indexes.
//
// Triples are kept once in insertion order; per-subject, per-predicate and
// per-object index lists point into that slice, so every lookup returns
// results in document order. A store is immutable once built and safe for
// concurrent readers.
package memory

import (
	"context"
	"sort"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// Store implements storage.TripleStore in memory.
type Store struct {
	kind    storage.Kind
	triples []types.Triple
	seen    map[types.Triple]struct{}

	bySubject   map[types.Term][]int
	byPredicate map[types.Term][]int
	byObject    map[types.Term][]int
}

var _ storage.TripleStore = (*Store)(nil)

// New creates a store of the given kind holding triples. Duplicates are
// dropped, keeping the first occurrence.
func New(kind storage.Kind, triples []types.Triple) *Store {
	s := &Store{
		kind:        kind,
		triples:     make([]types.Triple, 0, len(triples)),
		seen:        make(map[types.Triple]struct{}, len(triples)),
		bySubject:   make(map[types.Term][]int),
		byPredicate: make(map[types.Term][]int),
		byObject:    make(map[types.Term][]int),
	}
	for _, t := range triples {
		s.add(t)
	}
	return s
}

// Builder returns a storage.Builder producing memory stores.
func Builder() storage.Builder {
	return storage.BuilderFunc(func(_ context.Context, kind storage.Kind, triples []types.Triple) (storage.TripleStore, error) {
		return New(kind, triples), nil
	})
}

func (s *Store) add(t types.Triple) {
	if _, ok := s.seen[t]; ok {
		return
	}
	s.seen[t] = struct{}{}
	idx := len(s.triples)
	s.triples = append(s.triples, t)
	s.bySubject[t.Subject] = append(s.bySubject[t.Subject], idx)
	s.byPredicate[t.Predicate] = append(s.byPredicate[t.Predicate], idx)
	s.byObject[t.Object] = append(s.byObject[t.Object], idx)
}

// Kind reports the store kind.
func (s *Store) Kind() storage.Kind { return s.kind }

// Len returns the number of distinct triples.
func (s *Store) Len() int { return len(s.triples) }

// Triples returns a copy of every triple in insertion order.
func (s *Store) Triples(_ context.Context) ([]types.Triple, error) {
	out := make([]types.Triple, len(s.triples))
	copy(out, s.triples)
	return out, nil
}

// PredicateObjects returns the outgoing edges of subject.
func (s *Store) PredicateObjects(_ context.Context, subject string) ([]storage.PredicateObject, error) {
	idx := s.bySubject[types.Resource(subject)]
	out := make([]storage.PredicateObject, 0, len(idx))
	for _, i := range idx {
		t := s.triples[i]
		out = append(out, storage.PredicateObject{Predicate: t.Predicate, Object: t.Object})
	}
	return out, nil
}

// SubjectPredicates returns the incoming edges of object.
func (s *Store) SubjectPredicates(_ context.Context, object string) ([]storage.SubjectPredicate, error) {
	idx := s.byObject[types.Resource(object)]
	out := make([]storage.SubjectPredicate, 0, len(idx))
	for _, i := range idx {
		t := s.triples[i]
		out = append(out, storage.SubjectPredicate{Subject: t.Subject, Predicate: t.Predicate})
	}
	return out, nil
}

// Objects returns the objects of (subject, predicate, ?).
func (s *Store) Objects(_ context.Context, subject, predicate string) ([]types.Term, error) {
	p := types.IRI(predicate)
	var out []types.Term
	for _, i := range s.bySubject[types.Resource(subject)] {
		if t := s.triples[i]; t.Predicate == p {
			out = append(out, t.Object)
		}
	}
	return out, nil
}

// Subjects returns the subjects of (?, predicate, object).
func (s *Store) Subjects(_ context.Context, predicate, object string) ([]string, error) {
	p := types.IRI(predicate)
	var out []string
	for _, i := range s.byObject[types.Resource(object)] {
		if t := s.triples[i]; t.Predicate == p {
			out = append(out, t.Subject.String())
		}
	}
	return out, nil
}

// HasTriple reports whether (subj, pred, obj) is present.
func (s *Store) HasTriple(_ context.Context, subj, pred, obj string) (bool, error) {
	_, ok := s.seen[types.Triple{
		Subject:   types.Resource(subj),
		Predicate: types.IRI(pred),
		Object:    types.Resource(obj),
	}]
	return ok, nil
}

// SubjectsOfType returns every subject typed with class.
func (s *Store) SubjectsOfType(ctx context.Context, class string) ([]string, error) {
	return s.Subjects(ctx, vocab.RDFType, class)
}

// WithPredicates returns the triples whose predicate is one of predicates,
// in insertion order.
func (s *Store) WithPredicates(_ context.Context, predicates ...string) ([]types.Triple, error) {
	var idx []int
	seen := make(map[string]bool, len(predicates))
	for _, p := range predicates {
		if seen[p] {
			continue
		}
		seen[p] = true
		idx = append(idx, s.byPredicate[types.IRI(p)]...)
	}
	sort.Ints(idx)
	out := make([]types.Triple, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.triples[i])
	}
	return out, nil
}

// Close is a no-op for in-memory stores.
func (s *Store) Close() error { return nil }
