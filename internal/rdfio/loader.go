package rdfio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// Loader reads ontology documents. Sources are local paths, file:// URLs,
// http(s):// URLs or s3://bucket/key objects.
type Loader struct {
	// HTTP fetches http(s) sources. Defaults to a client with a 60s timeout.
	HTTP *http.Client

	// S3 fetches s3:// sources. Optional.
	S3 S3Client
}

// NewLoader creates a Loader using the given S3 client, which may be nil.
func NewLoader(s3 S3Client) *Loader {
	return &Loader{
		HTTP: &http.Client{Timeout: 60 * time.Second},
		S3:   s3,
	}
}

// Load reads and parses source. Every failure is returned as a
// *storage.LoadError.
func (l *Loader) Load(ctx context.Context, source string, format Format) ([]types.Triple, error) {
	start := time.Now()
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, &storage.LoadError{Source: source, Err: err}
	}
	defer rc.Close()

	f := format.Resolve(source)
	triples, err := Decode(rc, f)
	if err != nil {
		return nil, &storage.LoadError{Source: source, Err: err}
	}

	slog.Info("ontology loaded",
		"source", source,
		"format", string(f),
		"triples", len(triples),
		"duration", time.Since(start))
	return triples, nil
}

// Save writes triples as N-Triples to a local path, file:// URL or s3:// object.
func (l *Loader) Save(ctx context.Context, dest string, triples []types.Triple) error {
	var buf bytes.Buffer
	if err := EncodeNTriples(&buf, triples); err != nil {
		return err
	}

	switch scheme(dest) {
	case "s3":
		if err := putS3Object(ctx, l.S3, dest, &buf); err != nil {
			return fmt.Errorf("save %s: %w", dest, err)
		}
		return nil
	case "http", "https":
		return fmt.Errorf("save %s: writing to http sources is not supported", dest)
	default:
		p, err := localPath(dest)
		if err != nil {
			return err
		}
		return os.WriteFile(p, buf.Bytes(), 0o644)
	}
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch scheme(source) {
	case "s3":
		return getS3Object(ctx, l.S3, source)
	case "http", "https":
		return l.get(ctx, source)
	default:
		p, err := localPath(source)
		if err != nil {
			return nil, err
		}
		return os.Open(p)
	}
}

func (l *Loader) get(ctx context.Context, source string) (io.ReadCloser, error) {
	client := l.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/turtle, application/n-triples, application/rdf+xml;q=0.9, */*;q=0.1")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", source, resp.Status)
	}
	return resp.Body, nil
}

func scheme(source string) string {
	i := strings.Index(source, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(source[:i])
}

func localPath(source string) (string, error) {
	if scheme(source) != "file" {
		return source, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}
