package reasoner

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

// Remote delegates reasoning to an HTTP service. The graph and schema
// declarations are POSTed as N-Triples; the response body is the closure
// in N-Triples.
type Remote struct {
	url     string
	client  *http.Client
	breaker *CircuitBreaker
}

// NewRemote creates a remote reasoner for url. Each call is bounded by
// timeout and guarded by a circuit breaker.
func NewRemote(url string, timeout time.Duration, breaker CircuitBreakerConfig) *Remote {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Remote{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: NewCircuitBreaker("remote-reasoner", breaker),
	}
}

// Name identifies the reasoner.
func (r *Remote) Name() string { return "remote" }

// State reports the circuit breaker state.
func (r *Remote) State() string { return r.breaker.State() }

// Entail sends triples and schema to the remote service and returns its closure.
func (r *Remote) Entail(ctx context.Context, triples []types.Triple, schema Schema) ([]types.Triple, error) {
	var body bytes.Buffer
	if err := rdfio.EncodeNTriples(&body, append(append([]types.Triple(nil), triples...), schema.Triples()...)); err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}

	result, err := r.breaker.Execute(ctx, func() (interface{}, error) {
		return r.post(ctx, body.Bytes())
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Triple), nil
}

func (r *Remote) post(ctx context.Context, payload []byte) ([]types.Triple, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", nTriplesMediaType)
	req.Header.Set("Accept", nTriplesMediaType)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("POST %s: status %s: %s", r.url, resp.Status, bytes.TrimSpace(msg))
	}

	triples, err := rdfio.Decode(resp.Body, rdfio.FormatNTriples)
	if err != nil {
		return nil, fmt.Errorf("decode closure: %w", err)
	}
	return triples, nil
}
