// Package config provides configuration management for the navigator.
// It loads settings from environment variables with the NAVIGATOR_ prefix
// and provides sensible defaults for all configuration options.
//
// An optional YAML file named by NAVIGATOR_CONFIG_FILE is applied on top of
// the defaults; environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the navigator.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Ontology   OntologyConfig   `yaml:"ontology"`
	Storage    StorageConfig    `yaml:"storage"`
	Reasoner   ReasonerConfig   `yaml:"reasoner"`
	Query      QueryConfig      `yaml:"query"`
	Navigation NavigationConfig `yaml:"navigation"`
	S3         S3Config         `yaml:"s3"`
	Security   SecurityConfig   `yaml:"security"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // Server port (default: 8000)
	Host            string        `yaml:"host"`             // Server host (default: 127.0.0.1)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Graceful shutdown window (default: 10s)
	RateLimit       float64       `yaml:"rate_limit"`       // Requests per second per client (default: 20)
	RateBurst       int           `yaml:"rate_burst"`       // Burst size per client (default: 40)
	WarmOnStart     bool          `yaml:"warm_on_start"`    // Load both stores at startup (default: true)
}

// OntologyConfig names the ontology document.
type OntologyConfig struct {
	Source string `yaml:"source"` // Path, file://, http(s):// or s3:// URL (default: ontology/ritualgrammar.ttl)
	Format string `yaml:"format"` // turtle, ntriples, rdfxml; empty detects from the extension
}

// StorageConfig selects the triple store backend.
type StorageConfig struct {
	StorageEngine string `yaml:"engine"`     // memory or sqlite (default: memory)
	SQLiteDSN     string `yaml:"sqlite_dsn"` // SQLite DSN for the sqlite engine (default: :memory:)
}

// ReasonerConfig configures inference.
type ReasonerConfig struct {
	Mode             string        `yaml:"mode"`              // rules or remote (default: rules)
	URL              string        `yaml:"url"`               // Remote reasoner endpoint
	RequestTimeout   time.Duration `yaml:"request_timeout"`   // Remote request timeout (default: 60s)
	MaxTriples       int           `yaml:"max_triples"`       // Closure size cap (default: 2000000)
	MaxIterations    int           `yaml:"max_iterations"`    // Forward-chaining rounds cap (default: 1000)
	InferenceTimeout time.Duration `yaml:"inference_timeout"` // How long a request waits for a store (default: 2m)
}

// QueryConfig configures the SPARQL endpoints behind the query console.
type QueryConfig struct {
	AssertedEndpoint string        `yaml:"asserted_endpoint"` // SPARQL endpoint over asserted triples
	InferredEndpoint string        `yaml:"inferred_endpoint"` // SPARQL endpoint over inferred triples
	Timeout          time.Duration `yaml:"timeout"`           // Per-query timeout (default: 30s)

	// Graph Store Protocol addresses that receive each loaded store, so the
	// endpoints above answer over the navigator's own triples.
	AssertedGraph string `yaml:"asserted_graph"`
	InferredGraph string `yaml:"inferred_graph"`
}

// NavigationConfig configures the tree views.
type NavigationConfig struct {
	EventAnchor string        `yaml:"event_anchor"` // Root concept of the event tree
	EventClass  string        `yaml:"event_class"`  // Class of events (default: crm:E5_Event)
	HasType     string        `yaml:"has_type"`     // Event to type predicate (default: crm:P2_has_type)
	Broader     string        `yaml:"broader"`      // Concept hierarchy predicate (default: skos:broader)
	ParentChild []string      `yaml:"parent_child"` // Predicates stored (parent, p, child)
	ChildParent []string      `yaml:"child_parent"` // Predicates stored (child, p, parent)
	MaxNodes    int           `yaml:"max_nodes"`    // Tree materialization cap (default: 200000)
	MaxDepth    int           `yaml:"max_depth"`    // Tree depth cap (default: 256)
	Timeout     time.Duration `yaml:"timeout"`      // Tree materialization timeout (default: 30s)
}

// S3Config configures access to s3:// ontology sources.
type S3Config struct {
	Region          string `yaml:"region"`   // AWS region (default: us-east-1)
	Endpoint        string `yaml:"endpoint"` // Custom endpoint for S3-compatible stores
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string `yaml:"mode"`      // Security mode: development, production (default: development)
	APIToken     string `yaml:"api_token"` // API authentication token
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // text or json (default: text)
}

// LoadConfig loads configuration from defaults, the optional YAML file and
// environment variables, in that order of increasing precedence.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.Getenv("NAVIGATOR_CONFIG_FILE"))
}

// LoadConfigFrom is LoadConfig with an explicit YAML file path. An empty
// path skips the file.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Ontology.Source == "" {
		errs = append(errs, errors.New("ontology source is required"))
	}
	switch c.Ontology.Format {
	case "", "turtle", "ntriples", "rdfxml":
	default:
		errs = append(errs, fmt.Errorf("unknown ontology format %q", c.Ontology.Format))
	}
	switch c.Storage.StorageEngine {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown storage engine %q", c.Storage.StorageEngine))
	}
	switch c.Reasoner.Mode {
	case "rules":
	case "remote":
		if c.Reasoner.URL == "" {
			errs = append(errs, errors.New("remote reasoner requires NAVIGATOR_REASONER_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown reasoner mode %q", c.Reasoner.Mode))
	}
	if c.Security.SecurityMode == "production" && c.Security.APIToken == "" {
		errs = append(errs, errors.New("production mode requires NAVIGATOR_API_TOKEN"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "127.0.0.1",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       20,
			RateBurst:       40,
			WarmOnStart:     true,
		},
		Ontology: OntologyConfig{
			Source: "ontology/ritualgrammar.ttl",
		},
		Storage: StorageConfig{
			StorageEngine: "memory",
			SQLiteDSN:     ":memory:",
		},
		Reasoner: ReasonerConfig{
			Mode:             "rules",
			RequestTimeout:   60 * time.Second,
			MaxTriples:       2000000,
			MaxIterations:    1000,
			InferenceTimeout: 2 * time.Minute,
		},
		Query: QueryConfig{
			Timeout: 30 * time.Second,
		},
		Navigation: NavigationConfig{
			EventAnchor: "https://ritualgrammar.org/ontology#Ritual",
			EventClass:  "http://www.cidoc-crm.org/cidoc-crm/E5_Event",
			HasType:     "http://www.cidoc-crm.org/cidoc-crm/P2_has_type",
			Broader:     "http://www.w3.org/2004/02/skos/core#broader",
			ParentChild: []string{
				"http://www.cidoc-crm.org/cidoc-crm/P10i_contains",
				"http://www.cidoc-crm.org/cidoc-crm/P9_consists_of",
			},
			ChildParent: []string{
				"http://www.cidoc-crm.org/cidoc-crm/P10_falls_within",
				"http://www.cidoc-crm.org/cidoc-crm/P9i_forms_part_of",
			},
			MaxNodes: 200000,
			MaxDepth: 256,
			Timeout:  30 * time.Second,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Security: SecurityConfig{
			SecurityMode: "development",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadFile overlays the YAML document at path onto c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides c with every NAVIGATOR_ variable that is set.
func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("NAVIGATOR_PORT", c.Server.Port)
	c.Server.Host = getEnv("NAVIGATOR_HOST", c.Server.Host)
	c.Server.ShutdownTimeout = getEnvDuration("NAVIGATOR_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.RateLimit = getEnvFloat("NAVIGATOR_RATE_LIMIT", c.Server.RateLimit)
	c.Server.RateBurst = getEnvInt("NAVIGATOR_RATE_BURST", c.Server.RateBurst)
	c.Server.WarmOnStart = getEnvBool("NAVIGATOR_WARM_ON_START", c.Server.WarmOnStart)

	c.Ontology.Source = getEnv("NAVIGATOR_ONTOLOGY", c.Ontology.Source)
	c.Ontology.Format = getEnv("NAVIGATOR_ONTOLOGY_FORMAT", c.Ontology.Format)

	c.Storage.StorageEngine = getEnv("NAVIGATOR_STORAGE_ENGINE", c.Storage.StorageEngine)
	c.Storage.SQLiteDSN = getEnv("NAVIGATOR_SQLITE_DSN", c.Storage.SQLiteDSN)

	c.Reasoner.Mode = getEnv("NAVIGATOR_REASONER", c.Reasoner.Mode)
	c.Reasoner.URL = getEnv("NAVIGATOR_REASONER_URL", c.Reasoner.URL)
	c.Reasoner.RequestTimeout = getEnvDuration("NAVIGATOR_REASONER_TIMEOUT", c.Reasoner.RequestTimeout)
	c.Reasoner.MaxTriples = getEnvInt("NAVIGATOR_REASONER_MAX_TRIPLES", c.Reasoner.MaxTriples)
	c.Reasoner.MaxIterations = getEnvInt("NAVIGATOR_REASONER_MAX_ITERATIONS", c.Reasoner.MaxIterations)
	c.Reasoner.InferenceTimeout = getEnvDuration("NAVIGATOR_INFERENCE_TIMEOUT", c.Reasoner.InferenceTimeout)

	c.Query.AssertedEndpoint = getEnv("NAVIGATOR_SPARQL_ASSERTED", c.Query.AssertedEndpoint)
	c.Query.InferredEndpoint = getEnv("NAVIGATOR_SPARQL_INFERRED", c.Query.InferredEndpoint)
	c.Query.Timeout = getEnvDuration("NAVIGATOR_SPARQL_TIMEOUT", c.Query.Timeout)
	c.Query.AssertedGraph = getEnv("NAVIGATOR_GRAPH_ASSERTED", c.Query.AssertedGraph)
	c.Query.InferredGraph = getEnv("NAVIGATOR_GRAPH_INFERRED", c.Query.InferredGraph)

	c.Navigation.EventAnchor = getEnv("NAVIGATOR_EVENT_ANCHOR", c.Navigation.EventAnchor)
	c.Navigation.EventClass = getEnv("NAVIGATOR_EVENT_CLASS", c.Navigation.EventClass)
	c.Navigation.HasType = getEnv("NAVIGATOR_HAS_TYPE", c.Navigation.HasType)
	c.Navigation.Broader = getEnv("NAVIGATOR_BROADER", c.Navigation.Broader)
	c.Navigation.ParentChild = getEnvList("NAVIGATOR_PARENT_CHILD", c.Navigation.ParentChild)
	c.Navigation.ChildParent = getEnvList("NAVIGATOR_CHILD_PARENT", c.Navigation.ChildParent)
	c.Navigation.MaxNodes = getEnvInt("NAVIGATOR_TREE_MAX_NODES", c.Navigation.MaxNodes)
	c.Navigation.MaxDepth = getEnvInt("NAVIGATOR_TREE_MAX_DEPTH", c.Navigation.MaxDepth)
	c.Navigation.Timeout = getEnvDuration("NAVIGATOR_TREE_TIMEOUT", c.Navigation.Timeout)

	c.S3.Region = getEnv("NAVIGATOR_S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("NAVIGATOR_S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKeyID = getEnv("NAVIGATOR_S3_ACCESS_KEY_ID", c.S3.AccessKeyID)
	c.S3.SecretAccessKey = getEnv("NAVIGATOR_S3_SECRET_ACCESS_KEY", c.S3.SecretAccessKey)
	c.S3.UsePathStyle = getEnvBool("NAVIGATOR_S3_PATH_STYLE", c.S3.UsePathStyle)

	c.Security.SecurityMode = getEnv("NAVIGATOR_SECURITY_MODE", c.Security.SecurityMode)
	c.Security.APIToken = getEnv("NAVIGATOR_API_TOKEN", c.Security.APIToken)

	c.Log.Level = getEnv("NAVIGATOR_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("NAVIGATOR_LOG_FORMAT", c.Log.Format)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration such as "90s" or "2m", or returns a
// default value when unset or unparsable.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated list, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false (case-insensitive).
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}
