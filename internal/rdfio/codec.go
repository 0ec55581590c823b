package rdfio

import (
	"errors"
	"fmt"
	"io"

	"github.com/knakk/rdf"

	"github.com/ritualgrammar/navigator/pkg/types"
)

const (
	xsdString     = "http://www.w3.org/2001/XMLSchema#string"
	rdfLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Decode parses every triple in r.
func Decode(r io.Reader, f Format) ([]types.Triple, error) {
	dec := rdf.NewTripleDecoder(r, f.rdf())
	var out []types.Triple
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f, err)
		}
		out = append(out, FromTriple(tr))
	}
}

// FromTriple converts a decoded triple.
func FromTriple(tr rdf.Triple) types.Triple {
	return types.Triple{
		Subject:   FromTerm(tr.Subj),
		Predicate: FromTerm(tr.Pred),
		Object:    FromTerm(tr.Obj),
	}
}

// EncodeNTriples writes triples to w as N-Triples.
func EncodeNTriples(w io.Writer, triples []types.Triple) error {
	enc := rdf.NewTripleEncoder(w, rdf.NTriples)
	for _, t := range triples {
		tr, err := toTriple(t)
		if err != nil {
			return err
		}
		if err := enc.Encode(tr); err != nil {
			return fmt.Errorf("encode triple: %w", err)
		}
	}
	return enc.Close()
}

// FromTerm converts a decoded term. Plain literals lose their implicit
// xsd:string or rdf:langString datatype.
func FromTerm(t rdf.Term) types.Term {
	switch v := t.(type) {
	case rdf.IRI:
		return types.IRI(v.String())
	case rdf.Blank:
		return types.Blank(v.String())
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return types.LangLiteral(v.String(), lang)
		}
		dt := v.DataType.String()
		if dt == xsdString || dt == rdfLangString {
			dt = ""
		}
		return types.TypedLiteral(v.String(), dt)
	default:
		return types.Literal(t.String())
	}
}

func toTriple(t types.Triple) (rdf.Triple, error) {
	subj, err := toTerm(t.Subject)
	if err != nil {
		return rdf.Triple{}, err
	}
	pred, err := rdf.NewIRI(t.Predicate.Value)
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("predicate %q: %w", t.Predicate.Value, err)
	}
	obj, err := toTerm(t.Object)
	if err != nil {
		return rdf.Triple{}, err
	}
	s, ok := subj.(rdf.Subject)
	if !ok {
		return rdf.Triple{}, fmt.Errorf("literal subject %q", t.Subject.Value)
	}
	return rdf.Triple{Subj: s, Pred: pred, Obj: obj.(rdf.Object)}, nil
}

func toTerm(t types.Term) (rdf.Term, error) {
	switch t.Kind {
	case types.KindIRI:
		iri, err := rdf.NewIRI(t.Value)
		if err != nil {
			return nil, fmt.Errorf("iri %q: %w", t.Value, err)
		}
		return iri, nil
	case types.KindBlank:
		b, err := rdf.NewBlank(t.Value)
		if err != nil {
			return nil, fmt.Errorf("blank node %q: %w", t.Value, err)
		}
		return b, nil
	case types.KindLiteral:
		switch {
		case t.Lang != "":
			l, err := rdf.NewLangLiteral(t.Value, t.Lang)
			if err != nil {
				return nil, fmt.Errorf("literal %q: %w", t.Value, err)
			}
			return l, nil
		case t.Datatype != "":
			dt, err := rdf.NewIRI(t.Datatype)
			if err != nil {
				return nil, fmt.Errorf("datatype %q: %w", t.Datatype, err)
			}
			return rdf.NewTypedLiteral(t.Value, dt), nil
		default:
			l, err := rdf.NewLiteral(t.Value)
			if err != nil {
				return nil, fmt.Errorf("literal %q: %w", t.Value, err)
			}
			return l, nil
		}
	default:
		return nil, fmt.Errorf("unset term")
	}
}
