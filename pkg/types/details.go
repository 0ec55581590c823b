package types

// Direction tells whether a detail property leaves or enters the node.
type Direction string

// Direction constants
const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// Property is one labeled edge of a node. For incoming edges Object holds the
// subject at the other end.
type Property struct {
	Predicate      string    `json:"predicate"`
	PredicateLabel string    `json:"predicate_label"`
	Object         string    `json:"object"`
	ObjectLabel    string    `json:"object_label"`
	IsURI          bool      `json:"is_uri"`
	Direction      Direction `json:"direction"`
}

// NodeDetails is the inspection payload for a single entity.
type NodeDetails struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Inferred   bool       `json:"inferred"`
	Properties []Property `json:"properties"`
}
