package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/internal/vocab"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// TripleStore implements storage.TripleStore using SQLite.
type TripleStore struct {
	db    *sql.DB
	kind  storage.Kind
	graph string
	count int
}

var _ storage.TripleStore = (*TripleStore)(nil)

// NewTripleStore opens a SQLite triple store for one graph kind. The graph
// is rebuilt from the ontology on every process start, so a file database
// holds no state worth recovering and no WAL repair is attempted.
func NewTripleStore(dsn string, kind storage.Kind) (*TripleStore, error) {
	store, err := openTripleStore(dsn, kind)
	if err != nil {
		return nil, fmt.Errorf("sqlite %s store: %w", kind, err)
	}
	return store, nil
}

func openTripleStore(dsn string, kind storage.Kind) (*TripleStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection also
	// keeps ":memory:" databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	store := &TripleStore{db: db, kind: kind, graph: string(kind)}
	if err := db.QueryRow("SELECT COUNT(*) FROM triples WHERE graph = ?", store.graph).Scan(&store.count); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count triples: %w", err)
	}
	return store, nil
}

// Load replaces the store's graph with triples. Duplicates are ignored,
// keeping the first occurrence.
func (s *TripleStore) Load(ctx context.Context, triples []types.Triple) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin load: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM triples WHERE graph = ?", s.graph); err != nil {
		return fmt.Errorf("sqlite: clear graph %s: %w", s.graph, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO triples
			(graph, seq, subject, predicate, object_kind, object, object_lang, object_datatype)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for i, t := range triples {
		res, err := stmt.ExecContext(ctx, s.graph, i,
			t.Subject.String(), t.Predicate.Value,
			int(t.Object.Kind), objectKey(t.Object), t.Object.Lang, t.Object.Datatype)
		if err != nil {
			return fmt.Errorf("sqlite: insert triple: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit load: %w", err)
	}
	s.count = count
	return nil
}

// Kind reports the store kind.
func (s *TripleStore) Kind() storage.Kind { return s.kind }

// Len returns the number of distinct triples in the graph.
func (s *TripleStore) Len() int { return s.count }

const selectTriple = `SELECT subject, predicate, object_kind, object, object_lang, object_datatype FROM triples`

// Triples returns every triple in insertion order.
func (s *TripleStore) Triples(ctx context.Context) ([]types.Triple, error) {
	return s.queryTriples(ctx, selectTriple+" WHERE graph = ? ORDER BY seq", s.graph)
}

// PredicateObjects returns the outgoing edges of subject.
func (s *TripleStore) PredicateObjects(ctx context.Context, subject string) ([]storage.PredicateObject, error) {
	triples, err := s.queryTriples(ctx, selectTriple+" WHERE graph = ? AND subject = ? ORDER BY seq", s.graph, subject)
	if err != nil {
		return nil, err
	}
	out := make([]storage.PredicateObject, 0, len(triples))
	for _, t := range triples {
		out = append(out, storage.PredicateObject{Predicate: t.Predicate, Object: t.Object})
	}
	return out, nil
}

// SubjectPredicates returns the incoming edges of a resource object.
func (s *TripleStore) SubjectPredicates(ctx context.Context, object string) ([]storage.SubjectPredicate, error) {
	term := types.Resource(object)
	triples, err := s.queryTriples(ctx,
		selectTriple+" WHERE graph = ? AND object = ? AND object_kind = ? ORDER BY seq",
		s.graph, objectKey(term), int(term.Kind))
	if err != nil {
		return nil, err
	}
	out := make([]storage.SubjectPredicate, 0, len(triples))
	for _, t := range triples {
		out = append(out, storage.SubjectPredicate{Subject: t.Subject, Predicate: t.Predicate})
	}
	return out, nil
}

// Objects returns the objects of (subject, predicate, ?).
func (s *TripleStore) Objects(ctx context.Context, subject, predicate string) ([]types.Term, error) {
	triples, err := s.queryTriples(ctx,
		selectTriple+" WHERE graph = ? AND subject = ? AND predicate = ? ORDER BY seq",
		s.graph, subject, predicate)
	if err != nil {
		return nil, err
	}
	var out []types.Term
	for _, t := range triples {
		out = append(out, t.Object)
	}
	return out, nil
}

// Subjects returns the subjects of (?, predicate, object) for a resource object.
func (s *TripleStore) Subjects(ctx context.Context, predicate, object string) ([]string, error) {
	term := types.Resource(object)
	rows, err := s.db.QueryContext(ctx,
		"SELECT subject FROM triples WHERE graph = ? AND predicate = ? AND object = ? AND object_kind = ? ORDER BY seq",
		s.graph, predicate, objectKey(term), int(term.Kind))
	if err != nil {
		return nil, fmt.Errorf("sqlite: query subjects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("sqlite: scan subject: %w", err)
		}
		out = append(out, subject)
	}
	return out, rows.Err()
}

// HasTriple reports whether (subj, pred, obj) is present for a resource object.
func (s *TripleStore) HasTriple(ctx context.Context, subj, pred, obj string) (bool, error) {
	term := types.Resource(obj)
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM triples WHERE graph = ? AND subject = ? AND predicate = ? AND object = ? AND object_kind = ?)",
		s.graph, subj, pred, objectKey(term), int(term.Kind)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: check triple: %w", err)
	}
	return exists, nil
}

// SubjectsOfType returns every subject typed with class via rdf:type.
func (s *TripleStore) SubjectsOfType(ctx context.Context, class string) ([]string, error) {
	return s.Subjects(ctx, vocab.RDFType, class)
}

// WithPredicates returns every triple whose predicate is one of predicates.
func (s *TripleStore) WithPredicates(ctx context.Context, predicates ...string) ([]types.Triple, error) {
	if len(predicates) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(predicates)+1)
	args = append(args, s.graph)
	for _, p := range predicates {
		args = append(args, p)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(predicates)), ",")
	return s.queryTriples(ctx,
		selectTriple+" WHERE graph = ? AND predicate IN ("+placeholders+") ORDER BY seq", args...)
}

// Close flushes the WAL into the main database file and releases resources.
func (s *TripleStore) Close() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		slog.Warn("sqlite: WAL checkpoint on close failed (non-fatal)", "error", err)
	}

	return s.db.Close()
}

func (s *TripleStore) queryTriples(ctx context.Context, query string, args ...any) ([]types.Triple, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query triples: %w", err)
	}
	defer rows.Close()

	var out []types.Triple
	for rows.Next() {
		var (
			subject, predicate, object, lang, datatype string
			kind                                       int
		)
		if err := rows.Scan(&subject, &predicate, &kind, &object, &lang, &datatype); err != nil {
			return nil, fmt.Errorf("sqlite: scan triple: %w", err)
		}
		out = append(out, types.Triple{
			Subject:   types.Resource(subject),
			Predicate: types.IRI(predicate),
			Object:    objectTerm(types.TermKind(kind), object, lang, datatype),
		})
	}
	return out, rows.Err()
}

// objectKey is the stored text of an object: Term.String for resources so
// blank nodes keep their prefix, the lexical form for literals.
func objectKey(t types.Term) string {
	if t.IsLiteral() {
		return t.Value
	}
	return t.String()
}

func objectTerm(kind types.TermKind, value, lang, datatype string) types.Term {
	switch kind {
	case types.KindBlank:
		return types.Blank(value)
	case types.KindLiteral:
		return types.Term{Kind: types.KindLiteral, Value: value, Lang: lang, Datatype: datatype}
	default:
		return types.IRI(value)
	}
}
