package types

// ResultKind discriminates shaped query results.
type ResultKind string

// Result kind constants
const (
	// ResultSelect is a tabular SELECT result.
	ResultSelect ResultKind = "SELECT"

	// ResultTriples is a CONSTRUCT or DESCRIBE result flattened to three columns.
	ResultTriples ResultKind = "TRIPLES"

	// ResultOther marks query forms that have no table view.
	ResultOther ResultKind = "OTHER"
)

// CellType tags a result cell as an IRI or a literal value.
type CellType string

// Cell type constants
const (
	CellURI     CellType = "uri"
	CellLiteral CellType = "literal"
)

// TriplesColumns are the fixed column names of a ResultTriples table.
var TriplesColumns = []string{"Subject", "Predicate", "Object"}

// Cell is one bound value of a result row.
type Cell struct {
	Value string   `json:"value"`
	Label string   `json:"label"`
	Type  CellType `json:"type"`
}

// IsURI reports whether the cell holds an IRI.
func (c *Cell) IsURI() bool { return c != nil && c.Type == CellURI }

// QueryResult is the table view of a query. Exactly one of Rows, Message or
// Error carries the payload depending on Kind and outcome.
type QueryResult struct {
	Kind    ResultKind `json:"type,omitempty"`
	Vars    []string   `json:"vars,omitempty"`
	Rows    [][]*Cell  `json:"results,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Failed reports whether the query produced an error payload.
func (r *QueryResult) Failed() bool { return r != nil && r.Error != "" }
