package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ritualgrammar/navigator/internal/rdfio"
	"github.com/ritualgrammar/navigator/internal/reasoner"
	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// ErrStoreTimeout is returned when a caller gives up waiting for a store
// that is still being computed.
var ErrStoreTimeout = errors.New("timed out waiting for store")

// Store states reported through StatusEvent.
const (
	StatusLoading = "loading"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

// StatusEvent describes a store state change.
type StatusEvent struct {
	Kind     storage.Kind  `json:"kind"`
	Status   string        `json:"status"`
	Triples  int           `json:"triples,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	At       time.Time     `json:"at"`

	// PublishError is set when a ready store could not be copied to its
	// graph store. The store itself is still served.
	PublishError string `json:"publish_error,omitempty"`
}

// GraphPublisher replaces the contents of a remote graph, so SPARQL queries
// run over the same triples the trees are built from.
type GraphPublisher interface {
	Replace(ctx context.Context, triples []types.Triple) error
}

// Loader reads the ontology source.
type Loader interface {
	Load(ctx context.Context, source string, format rdfio.Format) ([]types.Triple, error)
}

// Snapshot is a loaded store together with its label index.
type Snapshot struct {
	Store    storage.TripleStore
	Labels   *Labels
	LoadedAt time.Time
}

// CacheConfig configures a StoreCache.
type CacheConfig struct {
	// Source is the ontology location (path, file://, http(s):// or s3://).
	Source string

	// Format of the source; FormatAuto detects it from the extension.
	Format rdfio.Format

	// WaitTimeout bounds how long one caller waits for a store. The
	// computation itself is not cancelled. Default: 2 minutes
	WaitTimeout time.Duration

	// Schema is declared before reasoning. Default: reasoner.DefaultSchema()
	Schema *reasoner.Schema

	// Publishers receive each store kind once it is computed. A store is
	// not handed out before its publish attempt finished.
	Publishers map[storage.Kind]GraphPublisher
}

// StoreCache loads each store kind at most once per process. Concurrent
// first requests share a single computation; failures are not cached, so the
// next request retries.
type StoreCache struct {
	loader   Loader
	builder  storage.Builder
	reasoner reasoner.Reasoner
	config   CacheConfig
	schema   reasoner.Schema

	group singleflight.Group

	mu       sync.RWMutex
	stores   map[storage.Kind]*Snapshot
	status   map[storage.Kind]StatusEvent
	watchers []func(StatusEvent)
}

// NewStoreCache creates an empty cache.
func NewStoreCache(loader Loader, builder storage.Builder, r reasoner.Reasoner, config CacheConfig) *StoreCache {
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = 2 * time.Minute
	}
	schema := reasoner.DefaultSchema()
	if config.Schema != nil {
		schema = *config.Schema
	}
	return &StoreCache{
		loader:   loader,
		builder:  builder,
		reasoner: r,
		config:   config,
		schema:   schema,
		stores:   make(map[storage.Kind]*Snapshot),
		status:   make(map[storage.Kind]StatusEvent),
	}
}

// Watch registers fn to receive every status change.
func (c *StoreCache) Watch(fn func(StatusEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, fn)
}

// Get returns the store of the given kind, computing it on first use.
// The wait is bounded by ctx and by WaitTimeout; on timeout the computation
// keeps running and later callers reuse its result. Load failures are
// *storage.LoadError, reasoning failures and inferred-store timeouts are
// *storage.InferenceError.
func (c *StoreCache) Get(ctx context.Context, kind storage.Kind) (*Snapshot, error) {
	if snap := c.cached(kind); snap != nil {
		return snap, nil
	}

	ch := c.group.DoChan(string(kind), func() (interface{}, error) {
		return c.compute(context.Background(), kind)
	})

	timer := time.NewTimer(c.config.WaitTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-timer.C:
		return nil, c.timeoutError(kind, ErrStoreTimeout)
	case <-ctx.Done():
		return nil, c.timeoutError(kind, ctx.Err())
	}
}

// Status returns the last reported state of each kind.
func (c *StoreCache) Status() map[storage.Kind]StatusEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[storage.Kind]StatusEvent, len(c.status))
	for k, v := range c.status {
		out[k] = v
	}
	return out
}

// Warm starts loading both kinds in the background.
func (c *StoreCache) Warm() {
	for _, kind := range []storage.Kind{storage.KindAsserted, storage.KindInferred} {
		go func(kind storage.Kind) {
			if _, err := c.Get(context.Background(), kind); err != nil {
				slog.Warn("store warm-up failed", "kind", string(kind), "error", err)
			}
		}(kind)
	}
}

// Close releases every cached store.
func (c *StoreCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for kind, snap := range c.stores {
		if err := snap.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s store: %w", kind, err))
		}
		delete(c.stores, kind)
	}
	return errors.Join(errs...)
}

func (c *StoreCache) cached(kind storage.Kind) *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stores[kind]
}

func (c *StoreCache) timeoutError(kind storage.Kind, err error) error {
	if kind == storage.KindInferred {
		return &storage.InferenceError{Reasoner: c.reasoner.Name(), Err: err}
	}
	return &storage.LoadError{Source: c.config.Source, Err: err}
}

// compute runs inside the single-flight group.
func (c *StoreCache) compute(ctx context.Context, kind storage.Kind) (*Snapshot, error) {
	if snap := c.cached(kind); snap != nil {
		return snap, nil
	}

	start := time.Now()
	c.publish(StatusEvent{Kind: kind, Status: StatusLoading, At: start})

	var (
		snap *Snapshot
		err  error
	)
	if kind == storage.KindInferred {
		snap, err = c.computeInferred(ctx)
	} else {
		snap, err = c.computeAsserted(ctx)
	}
	if err != nil {
		slog.Error("store computation failed", "kind", string(kind), "error", err)
		c.publish(StatusEvent{Kind: kind, Status: StatusFailed, Error: err.Error(), Duration: time.Since(start), At: time.Now()})
		return nil, err
	}

	ready := StatusEvent{Kind: kind, Status: StatusReady, Triples: snap.Store.Len()}
	if err := c.publishGraph(ctx, kind, snap); err != nil {
		slog.Warn("graph publish failed", "kind", string(kind), "error", err)
		ready.PublishError = err.Error()
	}

	c.mu.Lock()
	c.stores[kind] = snap
	c.mu.Unlock()

	slog.Info("store ready",
		"kind", string(kind),
		"triples", snap.Store.Len(),
		"labels", snap.Labels.Len(),
		"duration", time.Since(start))
	ready.Duration = time.Since(start)
	ready.At = time.Now()
	c.publish(ready)
	return snap, nil
}

// publishGraph copies the triples of snap to the graph store of kind, if
// one is configured.
func (c *StoreCache) publishGraph(ctx context.Context, kind storage.Kind, snap *Snapshot) error {
	p := c.config.Publishers[kind]
	if p == nil {
		return nil
	}
	triples, err := snap.Store.Triples(ctx)
	if err != nil {
		return fmt.Errorf("read %s triples: %w", kind, err)
	}
	if err := p.Replace(ctx, triples); err != nil {
		return err
	}
	slog.Debug("graph published", "kind", string(kind), "triples", len(triples))
	return nil
}

func (c *StoreCache) computeAsserted(ctx context.Context) (*Snapshot, error) {
	triples, err := c.loader.Load(ctx, c.config.Source, c.config.Format)
	if err != nil {
		var loadErr *storage.LoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &storage.LoadError{Source: c.config.Source, Err: err}
	}
	return c.snapshot(ctx, storage.KindAsserted, triples)
}

func (c *StoreCache) computeInferred(ctx context.Context) (*Snapshot, error) {
	res, err, _ := c.group.Do(string(storage.KindAsserted), func() (interface{}, error) {
		return c.compute(ctx, storage.KindAsserted)
	})
	if err != nil {
		return nil, err
	}
	asserted := res.(*Snapshot)

	triples, err := asserted.Store.Triples(ctx)
	if err != nil {
		return nil, &storage.InferenceError{Reasoner: c.reasoner.Name(), Err: err}
	}
	triples = withoutImports(triples)

	closure, err := c.reasoner.Entail(ctx, triples, c.schema)
	if err != nil {
		return nil, &storage.InferenceError{Reasoner: c.reasoner.Name(), Err: err}
	}
	return c.snapshot(ctx, storage.KindInferred, closure)
}

func (c *StoreCache) snapshot(ctx context.Context, kind storage.Kind, triples []types.Triple) (*Snapshot, error) {
	store, err := c.builder.Build(ctx, kind, triples)
	if err != nil {
		return nil, c.timeoutError(kind, fmt.Errorf("build store: %w", err))
	}
	labels, err := LoadLabels(ctx, store)
	if err != nil {
		store.Close()
		return nil, c.timeoutError(kind, err)
	}
	return &Snapshot{Store: store, Labels: labels, LoadedAt: time.Now()}, nil
}

func (c *StoreCache) publish(ev StatusEvent) {
	c.mu.Lock()
	c.status[ev.Kind] = ev
	watchers := slices.Clone(c.watchers)
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(ev)
	}
}

// withoutImports drops owl:imports so reasoning never reaches for other
// documents.
func withoutImports(triples []types.Triple) []types.Triple {
	out := make([]types.Triple, 0, len(triples))
	for _, t := range triples {
		if t.Predicate.Value == vocab.OWLImports {
			continue
		}
		out = append(out, t)
	}
	return out
}
