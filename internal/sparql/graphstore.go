package sparql

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ritualgrammar/navigator/internal/rdfio"
	"github.com/ritualgrammar/navigator/pkg/types"
)

const nTriplesMediaType = "application/n-triples"

// GraphStore writes graphs through the SPARQL 1.1 Graph Store HTTP Protocol.
// url addresses one graph, e.g. http://host/ds/data?default or
// http://host/ds/data?graph=urn:navigator:inferred.
type GraphStore struct {
	url    string
	client *http.Client
}

// NewGraphStore creates a graph store client. timeout bounds each request.
func NewGraphStore(url string, timeout time.Duration) *GraphStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GraphStore{url: url, client: &http.Client{Timeout: timeout}}
}

// URL returns the graph address.
func (g *GraphStore) URL() string { return g.url }

// Replace overwrites the graph with triples.
func (g *GraphStore) Replace(ctx context.Context, triples []types.Triple) error {
	var body bytes.Buffer
	if err := rdfio.EncodeNTriples(&body, triples); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", nTriplesMediaType)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", g.url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("PUT %s: status %s: %s", g.url, resp.Status, bytes.TrimSpace(msg))
	}
}
