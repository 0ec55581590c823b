// Package sparql runs queries against SPARQL 1.1 protocol endpoints.
package sparql

import (
	"strings"
	"unicode"
)

// Form is the kind of a SPARQL request.
type Form string

// Query forms
const (
	FormSelect    Form = "SELECT"
	FormConstruct Form = "CONSTRUCT"
	FormDescribe  Form = "DESCRIBE"
	FormAsk       Form = "ASK"
	FormUpdate    Form = "UPDATE"
	FormUnknown   Form = "UNKNOWN"
)

var updateKeywords = map[string]bool{
	"INSERT": true, "DELETE": true, "LOAD": true, "CLEAR": true,
	"CREATE": true, "DROP": true, "COPY": true, "MOVE": true, "ADD": true, "WITH": true,
}

// DetectForm returns the form of query, skipping comments and the
// PREFIX/BASE prologue.
func DetectForm(query string) Form {
	words := prologueFree(stripComments(query))
	if len(words) == 0 {
		return FormUnknown
	}
	kw := strings.ToUpper(words[0])
	switch Form(kw) {
	case FormSelect, FormConstruct, FormDescribe, FormAsk:
		return Form(kw)
	}
	if updateKeywords[kw] {
		return FormUpdate
	}
	return FormUnknown
}

// stripComments removes '#' comments outside IRIs and string literals.
func stripComments(query string) string {
	var b strings.Builder
	var quote rune
	inIRI := false
	inComment := false
	for _, r := range query {
		switch {
		case inComment:
			if r == '\n' || r == '\r' {
				inComment = false
				b.WriteRune(r)
			}
			continue
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case inIRI:
			if r == '>' {
				inIRI = false
			}
		case r == '#':
			inComment = true
			continue
		case r == '"' || r == '\'':
			quote = r
		case r == '<':
			inIRI = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// prologueFree splits query into words and drops PREFIX and BASE declarations.
func prologueFree(query string) []string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || r == '{' || r == '*' || r == '('
	})
	for len(words) > 0 {
		switch strings.ToUpper(words[0]) {
		case "PREFIX":
			// PREFIX name: <iri>, where the IRI may be glued to the name.
			if len(words) >= 2 && strings.HasSuffix(words[1], ">") {
				words = words[2:]
			} else if len(words) >= 3 {
				words = words[3:]
			} else {
				return nil
			}
		case "BASE":
			words = words[min(2, len(words)):]
		default:
			return words
		}
	}
	return words
}
