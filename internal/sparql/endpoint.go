package sparql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/knakk/rdf"
	ksparql "github.com/knakk/sparql"

	"github.com/ritualgrammar/navigator/internal/rdfio"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// ErrNoEndpoint is returned by Unconfigured.
var ErrNoEndpoint = errors.New("no SPARQL endpoint configured")

// Result is the outcome of one query. Solutions is set for SELECT, Triples
// for CONSTRUCT and DESCRIBE; other forms carry only Form.
type Result struct {
	Form      Form
	Vars      []string
	Solutions []map[string]types.Term
	Triples   []types.Triple
}

// Querier executes SPARQL queries.
type Querier interface {
	Query(ctx context.Context, query string) (*Result, error)
}

// Endpoint is a Querier backed by a SPARQL 1.1 protocol endpoint.
type Endpoint struct {
	url  string
	repo *ksparql.Repo
}

// NewEndpoint connects to url. timeout bounds each request.
func NewEndpoint(url string, timeout time.Duration) (*Endpoint, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	repo, err := ksparql.NewRepo(url, ksparql.Timeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("sparql endpoint %s: %w", url, err)
	}
	return &Endpoint{url: url, repo: repo}, nil
}

// URL returns the endpoint address.
func (e *Endpoint) URL() string { return e.url }

// Query runs query. Update requests and unrecognized forms are not sent to
// the endpoint.
func (e *Endpoint) Query(ctx context.Context, query string) (*Result, error) {
	form := DetectForm(query)
	switch form {
	case FormSelect, FormAsk:
		res, err := call(ctx, func() (*ksparql.Results, error) { return e.repo.Query(query) })
		if err != nil {
			return nil, err
		}
		out := &Result{Form: form}
		if form == FormSelect {
			out.Vars = append([]string(nil), res.Head.Vars...)
			for _, sol := range res.Solutions() {
				row := make(map[string]types.Term, len(sol))
				for name, term := range sol {
					row[name] = rdfio.FromTerm(term)
				}
				out.Solutions = append(out.Solutions, row)
			}
		}
		return out, nil
	case FormConstruct, FormDescribe:
		triples, err := call(ctx, func() ([]rdf.Triple, error) { return e.repo.Construct(query) })
		if err != nil {
			return nil, err
		}
		out := &Result{Form: form, Triples: make([]types.Triple, 0, len(triples))}
		for _, tr := range triples {
			out.Triples = append(out.Triples, rdfio.FromTriple(tr))
		}
		return out, nil
	default:
		return &Result{Form: form}, nil
	}
}

// call runs fn, returning early when ctx is done. The repository has no
// context support; its own timeout reclaims the abandoned request.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type outcome struct {
		v   T
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn()
		ch <- outcome{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case o := <-ch:
		return o.v, o.err
	}
}

// Unconfigured is a Querier for deployments without an endpoint.
type Unconfigured struct{}

// Query always fails with ErrNoEndpoint.
func (Unconfigured) Query(context.Context, string) (*Result, error) {
	return nil, ErrNoEndpoint
}
