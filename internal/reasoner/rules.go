package reasoner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// RulesConfig bounds the forward chainer.
type RulesConfig struct {
	// MaxTriples caps the size of the closure. Default: 2,000,000
	MaxTriples int

	// MaxIterations caps the number of semi-naive rounds. Default: 1000
	MaxIterations int
}

// Rules is a semi-naive forward-chaining reasoner.
//
// Supported entailments:
//   - rdfs:subPropertyOf (prp-spo1) and rdfs:subClassOf (cax-sco)
//   - owl:TransitiveProperty (prp-trp) and owl:inverseOf (prp-inv)
//   - rdfs:domain and rdfs:range (prp-dom, prp-rng)
//   - two-step owl:propertyChainAxiom (prp-spo2)
//
// Schema axioms are read once from the input graph plus the Schema
// declarations; only instance-level triples are derived iteratively.
type Rules struct {
	config RulesConfig
}

// NewRules creates a rule reasoner, applying defaults to zero limits.
func NewRules(config RulesConfig) *Rules {
	if config.MaxTriples <= 0 {
		config.MaxTriples = 2000000
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = 1000
	}
	return &Rules{config: config}
}

// Name identifies the reasoner.
func (r *Rules) Name() string { return "rules" }

// Entail computes the closure of triples under schema.
func (r *Rules) Entail(ctx context.Context, triples []types.Triple, schema Schema) ([]types.Triple, error) {
	start := time.Now()
	input := make([]types.Triple, 0, len(triples)+len(schema.Transitive)+len(schema.SubPropertyOf))
	input = append(input, triples...)
	input = append(input, schema.Triples()...)

	ax := readAxioms(input)
	g := newGraph(len(input))
	delta := make([]types.Triple, 0, len(input))
	for _, t := range input {
		if g.add(t) {
			delta = append(delta, t)
		}
	}

	iterations := 0
	for len(delta) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if iterations >= r.config.MaxIterations {
			return nil, fmt.Errorf("%w: more than %d iterations", ErrLimitExceeded, r.config.MaxIterations)
		}
		iterations++

		var next []types.Triple
		emit := func(t types.Triple) {
			if g.add(t) {
				next = append(next, t)
			}
		}
		for _, t := range delta {
			ax.apply(g, t, emit)
		}
		if g.len() > r.config.MaxTriples {
			return nil, fmt.Errorf("%w: closure exceeds %d triples", ErrLimitExceeded, r.config.MaxTriples)
		}
		delta = next
	}

	slog.Debug("rule reasoning complete",
		"input", len(triples),
		"closure", g.len(),
		"iterations", iterations,
		"duration", time.Since(start))
	return g.triples, nil
}

// axioms is the schema knowledge the rules consult.
type axioms struct {
	superProps   map[string][]string // reflexive-free closure of subPropertyOf
	superClasses map[string][]string // reflexive-free closure of subClassOf
	transitive   map[string]bool
	inverses     map[string][]string
	domains      map[string][]string
	ranges       map[string][]string
	chainsFirst  map[string][]chain // keyed by the first link
	chainsSecond map[string][]chain // keyed by the second link
}

// chain is first ∘ second ⊑ result.
type chain struct {
	first, second, result string
}

func readAxioms(triples []types.Triple) *axioms {
	ax := &axioms{
		transitive:   make(map[string]bool),
		inverses:     make(map[string][]string),
		domains:      make(map[string][]string),
		ranges:       make(map[string][]string),
		chainsFirst:  make(map[string][]chain),
		chainsSecond: make(map[string][]chain),
	}
	subProp := make(map[string][]string)
	subClass := make(map[string][]string)
	lists := make(map[types.Term]map[string]types.Term)
	var chainHeads []types.Triple

	for _, t := range triples {
		if !t.Subject.IsIRI() && !t.Subject.IsBlank() {
			continue
		}
		s, p, o := t.Subject.Value, t.Predicate.Value, t.Object
		switch p {
		case vocab.RDFSSubProperty:
			if o.IsIRI() && t.Subject.IsIRI() {
				subProp[s] = appendUnique(subProp[s], o.Value)
			}
		case vocab.RDFSSubClassOf:
			if o.IsIRI() && t.Subject.IsIRI() {
				subClass[s] = appendUnique(subClass[s], o.Value)
			}
		case vocab.RDFType:
			if o.Value == vocab.OWLTransitiveProperty && t.Subject.IsIRI() {
				ax.transitive[s] = true
			}
		case vocab.OWLInverseOf:
			if o.IsIRI() && t.Subject.IsIRI() {
				ax.inverses[s] = appendUnique(ax.inverses[s], o.Value)
				ax.inverses[o.Value] = appendUnique(ax.inverses[o.Value], s)
			}
		case vocab.RDFSDomain:
			if o.IsIRI() && t.Subject.IsIRI() {
				ax.domains[s] = appendUnique(ax.domains[s], o.Value)
			}
		case vocab.RDFSRange:
			if o.IsIRI() && t.Subject.IsIRI() {
				ax.ranges[s] = appendUnique(ax.ranges[s], o.Value)
			}
		case vocab.OWLPropertyChainAxiom:
			chainHeads = append(chainHeads, t)
		case vocab.RDFFirst, vocab.RDFRest:
			if lists[t.Subject] == nil {
				lists[t.Subject] = make(map[string]types.Term)
			}
			lists[t.Subject][p] = o
		}
	}

	ax.superProps = closure(subProp)
	ax.superClasses = closure(subClass)

	for _, h := range chainHeads {
		links := readList(lists, h.Object)
		if len(links) != 2 {
			slog.Debug("skipping property chain", "property", h.Subject.Value, "links", len(links))
			continue
		}
		c := chain{first: links[0], second: links[1], result: h.Subject.Value}
		ax.chainsFirst[c.first] = append(ax.chainsFirst[c.first], c)
		ax.chainsSecond[c.second] = append(ax.chainsSecond[c.second], c)
	}
	return ax
}

// apply derives every triple that t participates in, joining with g.
func (ax *axioms) apply(g *graph, t types.Triple, emit func(types.Triple)) {
	s, p, o := t.Subject, t.Predicate.Value, t.Object
	resourceObject := o.IsIRI() || o.IsBlank()

	for _, q := range ax.superProps[p] {
		emit(types.Triple{Subject: s, Predicate: types.IRI(q), Object: o})
	}
	for _, c := range ax.domains[p] {
		emit(types.Triple{Subject: s, Predicate: types.IRI(vocab.RDFType), Object: types.IRI(c)})
	}

	if p == vocab.RDFType && o.IsIRI() {
		for _, d := range ax.superClasses[o.Value] {
			emit(types.Triple{Subject: s, Predicate: t.Predicate, Object: types.IRI(d)})
		}
	}

	if !resourceObject {
		return
	}

	for _, c := range ax.ranges[p] {
		emit(types.Triple{Subject: o, Predicate: types.IRI(vocab.RDFType), Object: types.IRI(c)})
	}
	for _, q := range ax.inverses[p] {
		emit(types.Triple{Subject: o, Predicate: types.IRI(q), Object: s})
	}

	if ax.transitive[p] {
		// (s p o) ∧ (o p z) → (s p z)
		for _, z := range g.objects(o, p) {
			emit(types.Triple{Subject: s, Predicate: t.Predicate, Object: z})
		}
		// (w p s) ∧ (s p o) → (w p o)
		for _, w := range g.subjects(p, s) {
			emit(types.Triple{Subject: w, Predicate: t.Predicate, Object: o})
		}
	}

	for _, c := range ax.chainsFirst[p] {
		for _, z := range g.objects(o, c.second) {
			emit(types.Triple{Subject: s, Predicate: types.IRI(c.result), Object: z})
		}
	}
	for _, c := range ax.chainsSecond[p] {
		for _, w := range g.subjects(c.first, s) {
			emit(types.Triple{Subject: w, Predicate: types.IRI(c.result), Object: o})
		}
	}
}

// graph is the growing closure with the two join indexes the rules need.
type graph struct {
	triples []types.Triple
	seen    map[types.Triple]struct{}
	sp      map[spKey][]types.Term
	po      map[poKey][]types.Term
}

type spKey struct {
	s types.Term
	p string
}

type poKey struct {
	p string
	o types.Term
}

func newGraph(capacity int) *graph {
	return &graph{
		triples: make([]types.Triple, 0, capacity),
		seen:    make(map[types.Triple]struct{}, capacity),
		sp:      make(map[spKey][]types.Term),
		po:      make(map[poKey][]types.Term),
	}
}

func (g *graph) add(t types.Triple) bool {
	if _, ok := g.seen[t]; ok {
		return false
	}
	g.seen[t] = struct{}{}
	g.triples = append(g.triples, t)
	if t.Object.IsIRI() || t.Object.IsBlank() {
		k := spKey{t.Subject, t.Predicate.Value}
		g.sp[k] = append(g.sp[k], t.Object)
		pk := poKey{t.Predicate.Value, t.Object}
		g.po[pk] = append(g.po[pk], t.Subject)
	}
	return true
}

func (g *graph) len() int { return len(g.triples) }

// objects returns a snapshot; callers emit while iterating.
func (g *graph) objects(s types.Term, p string) []types.Term {
	return append([]types.Term(nil), g.sp[spKey{s, p}]...)
}

func (g *graph) subjects(p string, o types.Term) []types.Term {
	return append([]types.Term(nil), g.po[poKey{p, o}]...)
}

// closure returns, for each key, every node reachable through edges,
// excluding the key itself.
func closure(edges map[string][]string) map[string][]string {
	out := make(map[string][]string, len(edges))
	for _, start := range sortedKeys(edges) {
		visited := map[string]bool{start: true}
		queue := append([]string(nil), edges[start]...)
		var reach []string
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if visited[n] {
				continue
			}
			visited[n] = true
			reach = append(reach, n)
			queue = append(queue, edges[n]...)
		}
		out[start] = reach
	}
	return out
}

// readList follows an rdf:first/rdf:rest list of IRIs.
func readList(lists map[types.Term]map[string]types.Term, head types.Term) []string {
	var out []string
	seen := make(map[types.Term]bool)
	for node := head; !(node.IsIRI() && node.Value == vocab.RDFNil); {
		cell, ok := lists[node]
		if !ok || seen[node] {
			return nil
		}
		seen[node] = true
		first, ok := cell[vocab.RDFFirst]
		if !ok || !first.IsIRI() {
			return nil
		}
		out = append(out, first.Value)
		node = cell[vocab.RDFRest]
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
