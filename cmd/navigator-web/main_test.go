package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualgrammar/navigator/internal/config"
)

const ontology = `@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix crm: <http://www.cidoc-crm.org/cidoc-crm/> .
@prefix rg: <https://ritualgrammar.org/ontology#> .

rg:Wedding rdfs:label "Wedding" ;
    crm:P9_consists_of rg:Vows .
rg:Vows rdfs:label "Exchange of vows" .
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ontology.ttl")
	require.NoError(t, os.WriteFile(path, []byte(ontology), 0o600))

	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0, // random port
			ShutdownTimeout: time.Second,
			RateLimit:       100,
			RateBurst:       100,
		},
		Ontology: config.OntologyConfig{Source: path},
		Storage:  config.StorageConfig{StorageEngine: "sqlite", SQLiteDSN: ":memory:"},
		Reasoner: config.ReasonerConfig{Mode: "rules", InferenceTimeout: 10 * time.Second},
		Security: config.SecurityConfig{SecurityMode: "development"},
	}
}

func TestMainServer_Routes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := startServer(ctx, testConfig(t))
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/navigate/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// WebSocket upgrade fails via GET, but route exists (400 not 404)
	resp, err = http.Get("http://" + addr + "/ws")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
}

func TestMainServer_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	addr, err := startServer(ctx, testConfig(t))
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err != nil {
			return true
		}
		_ = resp.Body.Close()
		return false
	}, 3*time.Second, 50*time.Millisecond)
}

func TestMainServer_BadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.StorageEngine = "postgres"

	_, err := startServer(context.Background(), cfg)
	assert.Error(t, err)
}
