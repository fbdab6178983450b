package relational

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/relational/migrations"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
)

// Dialect selects the SQL flavour.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store is a database-backed storage that provides the corpus and cache
// store interfaces through wrapper types. The connection is closed when the
// last wrapper handed out has been closed.
type Store struct {
	db      *sql.DB
	dialect Dialect
	path    string

	mu   sync.Mutex
	refs int
}

// OpenSQLite opens (or creates) a SQLite database at path.
// If path is empty, defaults to ~/.coursecheck/data/coursecheck.db.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".coursecheck", "data", "coursecheck.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode lets readers proceed during a write.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return newStore(db, DialectSQLite, path)
}

// OpenPostgres connects to PostgreSQL using a pgx connection string.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: empty DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return newStore(db, DialectPostgres, "")
}

func newStore(db *sql.DB, dialect Dialect, path string) (*Store, error) {
	s := &Store{db: db, dialect: dialect, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path, or "" for postgres.
func (s *Store) Path() string {
	return s.path
}

// Dialect returns the SQL flavour in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// CorpusStore returns a CorpusStore backed by this store.
func (s *Store) CorpusStore() driven.CorpusStore {
	s.acquire()
	return &corpusStore{store: s}
}

// CacheStore returns a CacheStore backed by this store.
func (s *Store) CacheStore() driven.CacheStore {
	s.acquire()
	return &cacheStore{store: s}
}

// Close closes the database connection immediately.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = 0
	return s.db.Close()
}

func (s *Store) acquire() {
	s.mu.Lock()
	s.refs++
	s.mu.Unlock()
}

func (s *Store) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == 0 {
		return nil
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to $1..$n for postgres.
// Queries in this package never contain a literal question mark.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// migrate runs all pending migrations for the store's dialect.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	dir := string(s.dialect)
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec(s.rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
		return err
	}
	return tx.Commit()
}
