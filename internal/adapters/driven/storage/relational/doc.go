// Package relational provides database/sql implementations of the corpus
// and cache stores.
//
// Two dialects share one code path:
//
//   - sqlite: modernc.org/sqlite, a pure Go SQLite implementation that requires
//     no CGO. The database lives in a single file.
//   - postgres: jackc/pgx through its database/sql driver. Placeholders are
//     rebound from ? to $n before execution.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory, one subdirectory per dialect. Applied versions are
// recorded in schema_migrations.
//
// # Embeddings
//
// Vectors are stored as little-endian float32 blobs. A blob whose length is
// not a multiple of four decodes as nil, so the course is skipped during
// scoring rather than failing the whole corpus load.
package relational
