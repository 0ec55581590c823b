// Package types defines the core data structures shared by the navigator:
// RDF terms and triples, materialized navigation trees, shaped query results
// and node details.
package types

import "strings"

// TermKind identifies the lexical category of an RDF term.
type TermKind uint8

// Term kind constants
const (
	// KindIRI is a resource identified by an IRI.
	KindIRI TermKind = iota + 1

	// KindBlank is a blank node with a document-scoped identifier.
	KindBlank

	// KindLiteral is a literal value with optional language tag or datatype.
	KindLiteral
)

// String returns the SPARQL JSON results name of the kind.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "uri"
	case KindBlank:
		return "bnode"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a single RDF term. Terms are comparable and may be used as map keys.
type Term struct {
	Kind     TermKind `json:"kind"`
	Value    string   `json:"value"`              // IRI, blank node id (without "_:"), or lexical form
	Lang     string   `json:"lang,omitempty"`     // Language tag of a literal
	Datatype string   `json:"datatype,omitempty"` // Datatype IRI of a typed literal
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Blank returns a blank node term. A leading "_:" is stripped.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: strings.TrimPrefix(id, "_:")} }

// Literal returns a plain literal term.
func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// LangLiteral returns a language-tagged literal term.
func LangLiteral(v, lang string) Term { return Term{Kind: KindLiteral, Value: v, Lang: lang} }

// TypedLiteral returns a literal term with a datatype IRI.
func TypedLiteral(v, datatype string) Term {
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsZero reports whether the term is unset.
func (t Term) IsZero() bool { return t.Kind == 0 }

// String returns the raw value of the term. Blank nodes keep their "_:" prefix
// so they can never collide with an IRI of the same text.
func (t Term) String() string {
	if t.Kind == KindBlank {
		return "_:" + t.Value
	}
	return t.Value
}

// Triple is a single (subject, predicate, object) statement.
type Triple struct {
	Subject   Term `json:"subject"`
	Predicate Term `json:"predicate"`
	Object    Term `json:"object"`
}

// T builds a triple of IRIs. It is a convenience for schema declarations and tests.
func T(s, p, o string) Triple {
	return Triple{Subject: IRI(s), Predicate: IRI(p), Object: IRI(o)}
}

// L builds a triple whose object is a plain literal.
func L(s, p, lit string) Triple {
	return Triple{Subject: IRI(s), Predicate: IRI(p), Object: Literal(lit)}
}

// Resource returns the term for a subject or object id as produced by
// Term.String: "_:"-prefixed ids are blank nodes, everything else is an IRI.
func Resource(id string) Term {
	if strings.HasPrefix(id, "_:") {
		return Blank(id)
	}
	return IRI(id)
}
