// Package vocab holds the IRIs the navigator reads from ontologies.
//
// The ritual-grammar ontology is modelled on CIDOC-CRM for events and
// part-whole structure, and on SKOS for labels and the concept hierarchy.
// References:
//   - RDF Schema: https://www.w3.org/TR/rdf-schema/
//   - OWL: https://www.w3.org/TR/owl2-overview/
//   - SKOS: https://www.w3.org/TR/skos-reference/
//   - CIDOC-CRM: https://cidoc-crm.org/
package vocab

import "strings"

// Namespaces
const (
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
	OWL  = "http://www.w3.org/2002/07/owl#"
	SKOS = "http://www.w3.org/2004/02/skos/core#"
	CRM  = "http://www.cidoc-crm.org/cidoc-crm/"
)

// RDF and RDFS
const (
	RDFType         = RDF + "type"
	RDFFirst        = RDF + "first"
	RDFRest         = RDF + "rest"
	RDFNil          = RDF + "nil"
	RDFSLabel       = RDFS + "label"
	RDFSComment     = RDFS + "comment"
	RDFSSubClassOf  = RDFS + "subClassOf"
	RDFSSubProperty = RDFS + "subPropertyOf"
	RDFSDomain      = RDFS + "domain"
	RDFSRange       = RDFS + "range"
)

// OWL
const (
	OWLImports            = OWL + "imports"
	OWLVersionIRI         = OWL + "versionIRI"
	OWLOntology           = OWL + "Ontology"
	OWLClass              = OWL + "Class"
	OWLNamedIndividual    = OWL + "NamedIndividual"
	OWLObjectProperty     = OWL + "ObjectProperty"
	OWLDatatypeProperty   = OWL + "DatatypeProperty"
	OWLAnnotationProperty = OWL + "AnnotationProperty"
	OWLTransitiveProperty = OWL + "TransitiveProperty"
	OWLInverseOf          = OWL + "inverseOf"
	OWLPropertyChainAxiom = OWL + "propertyChainAxiom"
)

// SKOS
const (
	SKOSPrefLabel = SKOS + "prefLabel"
	SKOSAltLabel  = SKOS + "altLabel"
	SKOSBroader   = SKOS + "broader"
	SKOSNarrower  = SKOS + "narrower"
)

// CIDOC-CRM
const (
	// CRMEvent is the class every ritual event is typed with.
	CRMEvent = CRM + "E5_Event"
	// CRMHasType links an entity to its type concepts.
	CRMHasType = CRM + "P2_has_type"

	CRMContains     = CRM + "P10i_contains"
	CRMFallsWithin  = CRM + "P10_falls_within"
	CRMConsistsOf   = CRM + "P9_consists_of"
	CRMFormsPartOf  = CRM + "P9i_forms_part_of"
	CRMHasComponent = CRM + "P148_has_component"
)

// LabelPredicates lists the labeling predicates in resolution priority order.
var LabelPredicates = []string{SKOSAltLabel, SKOSPrefLabel, RDFSLabel}

// ParentChildPredicates are stored parent-first: (parent, p, child).
var ParentChildPredicates = []string{CRMContains, CRMConsistsOf}

// ChildParentPredicates are stored child-first: (child, p, parent).
var ChildParentPredicates = []string{CRMFallsWithin, CRMFormsPartOf}

// TransitivePredicates are declared owl:TransitiveProperty before reasoning.
var TransitivePredicates = []string{CRMContains, CRMFallsWithin, CRMConsistsOf, CRMFormsPartOf, SKOSBroader}

// IgnoredTypes are rdf:type objects hidden from node details.
var IgnoredTypes = map[string]bool{
	OWLNamedIndividual:    true,
	OWLClass:              true,
	OWLObjectProperty:     true,
	OWLDatatypeProperty:   true,
	OWLOntology:           true,
	OWLAnnotationProperty: true,
}

// IgnoredPredicates are hidden from node details.
var IgnoredPredicates = map[string]bool{
	OWLImports:    true,
	OWLVersionIRI: true,
}

// LocalName returns the fragment after the last '#', or the segment after
// the last '/' when there is no fragment.
func LocalName(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
