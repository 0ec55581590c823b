// Package sqlite provides a SQLite implementation of storage.TripleStore.
package sqlite

// Schema contains the SQL statements to create the triple table.
// Asserted and inferred triples may share one database file; the graph
// column keeps them apart and seq preserves document order within a graph.
const Schema = `
CREATE TABLE IF NOT EXISTS triples (
    graph TEXT NOT NULL,
    seq INTEGER NOT NULL,

    subject TEXT NOT NULL,
    predicate TEXT NOT NULL,

    -- Object term: kind is 1 (IRI), 2 (blank) or 3 (literal)
    object_kind INTEGER NOT NULL,
    object TEXT NOT NULL,
    object_lang TEXT NOT NULL DEFAULT '',
    object_datatype TEXT NOT NULL DEFAULT '',

    UNIQUE (graph, subject, predicate, object_kind, object, object_lang, object_datatype)
);

CREATE INDEX IF NOT EXISTS idx_triples_spo ON triples(graph, subject, predicate);
CREATE INDEX IF NOT EXISTS idx_triples_pos ON triples(graph, predicate, object);
CREATE INDEX IF NOT EXISTS idx_triples_os ON triples(graph, object, object_kind);
CREATE INDEX IF NOT EXISTS idx_triples_seq ON triples(graph, seq);
`
