// Package app wires configuration into the navigator's collaborators. Both
// the web server and the CLI build their navigator here.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ritualgrammar/navigator/internal/config"
	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/internal/rdfio"
	"github.com/ritualgrammar/navigator/internal/reasoner"
	"github.com/ritualgrammar/navigator/internal/sparql"
	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/storage/memory"
	"github.com/ritualgrammar/navigator/internal/storage/sqlite"
)

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewLoader returns an ontology loader. An S3 client is attached when the
// source, one of the extra locations or the S3 section asks for one.
func NewLoader(cfg *config.Config, extra ...string) *rdfio.Loader {
	if !usesS3(cfg, extra) {
		return rdfio.NewLoader(nil)
	}
	return rdfio.NewLoader(rdfio.NewS3Client(rdfio.S3Options{
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		UsePathStyle:    cfg.S3.UsePathStyle,
	}))
}

func usesS3(cfg *config.Config, extra []string) bool {
	for _, loc := range append([]string{cfg.Ontology.Source}, extra...) {
		if strings.HasPrefix(loc, "s3://") {
			return true
		}
	}
	return cfg.S3.Endpoint != "" || cfg.S3.AccessKeyID != ""
}

// NewBuilder returns the store builder for the configured engine.
func NewBuilder(cfg config.StorageConfig) (storage.Builder, error) {
	switch cfg.StorageEngine {
	case "", "memory":
		return memory.Builder(), nil
	case "sqlite":
		return sqlite.Builder(cfg.SQLiteDSN), nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q: %w", cfg.StorageEngine, storage.ErrInvalidInput)
	}
}

// NewReasoner returns the configured reasoner.
func NewReasoner(cfg config.ReasonerConfig) (reasoner.Reasoner, error) {
	switch cfg.Mode {
	case "", "rules":
		return reasoner.NewRules(reasoner.RulesConfig{
			MaxTriples:    cfg.MaxTriples,
			MaxIterations: cfg.MaxIterations,
		}), nil
	case "remote":
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote reasoner without URL: %w", storage.ErrInvalidInput)
		}
		return reasoner.NewRemote(cfg.URL, cfg.RequestTimeout, reasoner.CircuitBreakerConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown reasoner mode %q: %w", cfg.Mode, storage.ErrInvalidInput)
	}
}

// NewQueriers opens a SPARQL endpoint per configured store kind. Kinds
// without an endpoint are left out.
func NewQueriers(cfg config.QueryConfig) (map[storage.Kind]sparql.Querier, error) {
	queriers := make(map[storage.Kind]sparql.Querier, 2)
	endpoints := map[storage.Kind]string{
		storage.KindAsserted: cfg.AssertedEndpoint,
		storage.KindInferred: cfg.InferredEndpoint,
	}
	for kind, url := range endpoints {
		if url == "" {
			continue
		}
		ep, err := sparql.NewEndpoint(url, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		queriers[kind] = ep
	}
	return queriers, nil
}

// NewGraphPublishers returns a Graph Store Protocol client per store kind
// with a configured graph address.
func NewGraphPublishers(cfg config.QueryConfig) map[storage.Kind]engine.GraphPublisher {
	publishers := make(map[storage.Kind]engine.GraphPublisher, 2)
	if cfg.AssertedGraph != "" {
		publishers[storage.KindAsserted] = sparql.NewGraphStore(cfg.AssertedGraph, cfg.Timeout)
	}
	if cfg.InferredGraph != "" {
		publishers[storage.KindInferred] = sparql.NewGraphStore(cfg.InferredGraph, cfg.Timeout)
	}
	return publishers
}

// NavigationOptions maps the navigation section onto tree builder options.
func NavigationOptions(cfg config.NavigationConfig) (engine.HierarchyOptions, engine.EventOptions) {
	bounds := storage.GraphBounds{
		MaxNodes: cfg.MaxNodes,
		MaxDepth: cfg.MaxDepth,
		Timeout:  cfg.Timeout,
	}

	hierarchy := engine.DefaultHierarchyOptions()
	if len(cfg.ParentChild) > 0 || len(cfg.ChildParent) > 0 {
		hierarchy.ParentChild = cfg.ParentChild
		hierarchy.ChildParent = cfg.ChildParent
	}
	hierarchy.Bounds = bounds

	events := engine.DefaultEventOptions()
	if cfg.EventAnchor != "" {
		events.Anchor = cfg.EventAnchor
	}
	if cfg.EventClass != "" {
		events.EventClass = cfg.EventClass
	}
	if cfg.HasType != "" {
		events.HasType = cfg.HasType
	}
	if cfg.Broader != "" {
		events.Broader = cfg.Broader
	}
	events.Bounds = bounds

	return hierarchy, events
}

// NewNavigator builds the store cache and navigator described by cfg.
// Nothing is loaded until the first request or an explicit Warm.
func NewNavigator(cfg *config.Config) (*engine.Navigator, error) {
	format, err := rdfio.ParseFormat(cfg.Ontology.Format)
	if err != nil {
		return nil, err
	}
	builder, err := NewBuilder(cfg.Storage)
	if err != nil {
		return nil, err
	}
	r, err := NewReasoner(cfg.Reasoner)
	if err != nil {
		return nil, err
	}
	queriers, err := NewQueriers(cfg.Query)
	if err != nil {
		return nil, err
	}

	cache := engine.NewStoreCache(NewLoader(cfg), builder, r, engine.CacheConfig{
		Source:      cfg.Ontology.Source,
		Format:      format,
		WaitTimeout: cfg.Reasoner.InferenceTimeout,
		Publishers:  NewGraphPublishers(cfg.Query),
	})

	hierarchy, events := NavigationOptions(cfg.Navigation)
	return engine.NewNavigator(cache, engine.NavigatorConfig{
		Hierarchy: hierarchy,
		Events:    events,
		Queriers:  queriers,
	}), nil
}
