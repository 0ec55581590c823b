// Package rdfio reads ontology documents from local files, HTTP endpoints and
// S3-compatible object stores, and converts between RDF serializations and
// the navigator's triple types.
package rdfio

import (
	"fmt"
	"path"
	"strings"

	"github.com/knakk/rdf"
)

// Format names an RDF serialization.
type Format string

// Supported formats
const (
	FormatAuto     Format = ""
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatRDFXML   Format = "rdfxml"
)

// ParseFormat normalizes a configured format name. Empty and "auto" select
// detection by file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	case "rdfxml", "rdf/xml", "xml", "owl":
		return FormatRDFXML, nil
	default:
		return "", fmt.Errorf("unknown RDF format %q", name)
	}
}

// DetectFormat picks a format from the extension of source. OWL files are
// RDF/XML unless they say otherwise; anything unrecognized is read as Turtle.
func DetectFormat(source string) Format {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	switch strings.ToLower(path.Ext(source)) {
	case ".nt":
		return FormatNTriples
	case ".owl", ".rdf", ".xml":
		return FormatRDFXML
	default:
		return FormatTurtle
	}
}

// Resolve returns f, or the format detected from source when f is FormatAuto.
func (f Format) Resolve(source string) Format {
	if f == FormatAuto {
		return DetectFormat(source)
	}
	return f
}

func (f Format) rdf() rdf.Format {
	switch f {
	case FormatNTriples:
		return rdf.NTriples
	case FormatRDFXML:
		return rdf.RDFXML
	default:
		return rdf.Turtle
	}
}
