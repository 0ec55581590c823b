package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ritualgrammar/navigator/internal/sparql"
	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// UnsupportedQueryMessage is reported for query forms without a table view.
const UnsupportedQueryMessage = "Query type not supported for table view."

// DefaultQuery is offered by the SPARQL console before anything is run.
const DefaultQuery = "SELECT ?s ?p ?o WHERE { ?s ?p ?o } LIMIT 50"

// ShapeQuery runs query and renders the outcome as a table. It never returns
// an error: failures become the Error field of the result.
func ShapeQuery(ctx context.Context, querier sparql.Querier, labels *Labels, query string) *types.QueryResult {
	if strings.TrimSpace(query) == "" {
		return queryFailure(query, errors.New("empty query"))
	}

	res, err := querier.Query(ctx, query)
	if err != nil {
		return queryFailure(query, err)
	}

	switch res.Form {
	case sparql.FormSelect:
		out := &types.QueryResult{
			Kind: types.ResultSelect,
			Vars: append([]string(nil), res.Vars...),
			Rows: make([][]*types.Cell, 0, len(res.Solutions)),
		}
		for _, sol := range res.Solutions {
			row := make([]*types.Cell, len(res.Vars))
			for i, v := range res.Vars {
				if term, ok := sol[v]; ok {
					row[i] = cell(labels, term)
				}
			}
			out.Rows = append(out.Rows, row)
		}
		return out
	case sparql.FormConstruct, sparql.FormDescribe:
		out := &types.QueryResult{
			Kind: types.ResultTriples,
			Vars: append([]string(nil), types.TriplesColumns...),
			Rows: make([][]*types.Cell, 0, len(res.Triples)),
		}
		for _, t := range res.Triples {
			out.Rows = append(out.Rows, []*types.Cell{
				cell(labels, t.Subject),
				cell(labels, t.Predicate),
				cell(labels, t.Object),
			})
		}
		return out
	default:
		return &types.QueryResult{Kind: types.ResultOther, Message: UnsupportedQueryMessage}
	}
}

func cell(labels *Labels, t types.Term) *types.Cell {
	if t.IsZero() {
		return nil
	}
	c := &types.Cell{Value: t.String(), Label: labels.Term(t), Type: types.CellLiteral}
	if t.IsIRI() {
		c.Type = types.CellURI
	}
	if t.IsLiteral() {
		c.Value = t.Value
	}
	return c
}

func queryFailure(query string, err error) *types.QueryResult {
	qerr := &storage.QueryError{Query: query, Err: err}
	slog.Warn("query failed", "error", qerr)
	return &types.QueryResult{Error: err.Error()}
}
