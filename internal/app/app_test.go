package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualgrammar/navigator/internal/config"
	"github.com/ritualgrammar/navigator/internal/reasoner"
	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
)

const ontology = `@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix crm: <http://www.cidoc-crm.org/cidoc-crm/> .
@prefix rg: <https://ritualgrammar.org/ontology#> .

rg:Wedding rdfs:label "Wedding" ;
    crm:P9_consists_of rg:Vows .
rg:Vows rdfs:label "Exchange of vows" ;
    crm:P9_consists_of rg:Ring .
rg:Ring rdfs:label "Ring exchange" .
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ontology.ttl")
	require.NoError(t, os.WriteFile(path, []byte(ontology), 0o600))

	return &config.Config{
		Ontology: config.OntologyConfig{Source: path},
		Storage:  config.StorageConfig{StorageEngine: "memory"},
		Reasoner: config.ReasonerConfig{Mode: "rules", InferenceTimeout: 10 * time.Second},
		Query:    config.QueryConfig{Timeout: time.Second},
		Navigation: config.NavigationConfig{
			MaxNodes: 1000,
			MaxDepth: 32,
			Timeout:  5 * time.Second,
		},
		S3:  config.S3Config{Region: "us-east-1"},
		Log: config.LogConfig{Level: "info", Format: "text"},
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "kind", "asserted")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"kind":"asserted"`)
}

func TestNewLogger_TextDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "bogus"}, &buf)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewLoader_S3OnlyWhenNeeded(t *testing.T) {
	cfg := testConfig(t)
	assert.Nil(t, NewLoader(cfg).S3)

	cfg.Ontology.Source = "s3://bucket/ontology.ttl"
	assert.NotNil(t, NewLoader(cfg).S3)

	cfg.Ontology.Source = "ontology.ttl"
	assert.Nil(t, NewLoader(cfg, "out.nt").S3)
	assert.NotNil(t, NewLoader(cfg, "s3://bucket/out.nt").S3)

	cfg.S3.Endpoint = "http://127.0.0.1:9000"
	assert.NotNil(t, NewLoader(cfg).S3)
}

func TestNewBuilder(t *testing.T) {
	for _, engine := range []string{"", "memory", "sqlite"} {
		b, err := NewBuilder(config.StorageConfig{StorageEngine: engine, SQLiteDSN: ":memory:"})
		require.NoError(t, err, engine)
		assert.NotNil(t, b)
	}

	_, err := NewBuilder(config.StorageConfig{StorageEngine: "postgres"})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}

func TestNewReasoner(t *testing.T) {
	r, err := NewReasoner(config.ReasonerConfig{Mode: "rules"})
	require.NoError(t, err)
	assert.Equal(t, "rules", r.Name())

	r, err = NewReasoner(config.ReasonerConfig{Mode: "remote", URL: "http://127.0.0.1:1/reason", RequestTimeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &reasoner.Remote{}, r)

	_, err = NewReasoner(config.ReasonerConfig{Mode: "remote"})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))

	_, err = NewReasoner(config.ReasonerConfig{Mode: "hermit"})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}

func TestNewQueriers(t *testing.T) {
	queriers, err := NewQueriers(config.QueryConfig{
		InferredEndpoint: "http://127.0.0.1:3030/rg/sparql",
		Timeout:          time.Second,
	})
	require.NoError(t, err)
	assert.Len(t, queriers, 1)
	assert.Contains(t, queriers, storage.KindInferred)
	assert.NotContains(t, queriers, storage.KindAsserted)
}

func TestNavigationOptions(t *testing.T) {
	hierarchy, events := NavigationOptions(config.NavigationConfig{
		EventAnchor: "https://ritualgrammar.org/ontology#Rite",
		ParentChild: []string{vocab.CRMContains},
		MaxNodes:    10,
		MaxDepth:    3,
	})

	assert.Equal(t, []string{vocab.CRMContains}, hierarchy.ParentChild)
	assert.Empty(t, hierarchy.ChildParent)
	assert.Equal(t, 10, hierarchy.Bounds.MaxNodes)
	assert.Equal(t, "https://ritualgrammar.org/ontology#Rite", events.Anchor)
	assert.Equal(t, vocab.CRMEvent, events.EventClass)
	assert.Equal(t, vocab.SKOSBroader, events.Broader)
	assert.Equal(t, 3, events.Bounds.MaxDepth)
}

func TestNewNavigator_EndToEnd(t *testing.T) {
	nav, err := NewNavigator(testConfig(t))
	require.NoError(t, err)
	defer nav.Cache().Close()

	ctx := context.Background()
	view, err := nav.NavigationTree(ctx, false)
	require.NoError(t, err)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, "Wedding", view.Nodes[0].Label)
	require.Len(t, view.Nodes[0].Children, 1)
	assert.Equal(t, "Exchange of vows", view.Nodes[0].Children[0].Label)

	// The transitive closure adds Wedding -> Ring next to the stated chain.
	inferred, err := nav.NavigationTree(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, storage.KindInferred, inferred.Kind)
	require.Len(t, inferred.Nodes, 1)
	assert.Len(t, inferred.Nodes[0].Children, 2)
}

func TestNewNavigator_RejectsBadFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ontology.Format = "jsonld"

	_, err := NewNavigator(cfg)
	assert.Error(t, err)
}

func TestNewGraphPublishers(t *testing.T) {
	publishers := NewGraphPublishers(config.QueryConfig{
		AssertedGraph: "http://127.0.0.1:3030/rg/data?default",
		Timeout:       time.Second,
	})
	assert.Len(t, publishers, 1)
	assert.Contains(t, publishers, storage.KindAsserted)
}

func TestNewNavigator_QueriesSeePublishedGraph(t *testing.T) {
	var mu sync.Mutex
	var graph string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rg/data":
			data, _ := io.ReadAll(r.Body)
			mu.Lock()
			graph = string(data)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		case "/rg/sparql":
			mu.Lock()
			loaded := strings.Contains(graph, "<https://ritualgrammar.org/ontology#Wedding>")
			mu.Unlock()
			bindings := `[]`
			if loaded {
				bindings = `[{"s": {"type": "uri", "value": "https://ritualgrammar.org/ontology#Wedding"}}]`
			}
			w.Header().Set("Content-Type", "application/sparql-results+json")
			_, _ = fmt.Fprintf(w, `{"head": {"vars": ["s"]}, "results": {"bindings": %s}}`, bindings)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Query.AssertedEndpoint = srv.URL + "/rg/sparql"
	cfg.Query.AssertedGraph = srv.URL + "/rg/data?default"

	nav, err := NewNavigator(cfg)
	require.NoError(t, err)
	defer nav.Cache().Close()

	res := nav.Query(context.Background(), "SELECT ?s WHERE { ?s ?p ?o }", false)
	require.False(t, res.Failed(), res.Error)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Wedding", res.Rows[0][0].Label)
}
