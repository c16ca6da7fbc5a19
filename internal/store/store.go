package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store archives solve runs and verification outcomes in SQLite.
type Store struct {
	db    *sql.DB
	runID RunIDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithRunIDGenerator replaces the UUIDv7 run ID generator, eg. with a
// FixedGenerator for golden tests.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(s *Store) {
		s.runID = g
	}
}

// archivePragmas configure every connection of the archive.
//
// Results reference their run, so foreign keys must be enforced for the
// cascade on runs to hold. WAL lets history read while a solve writes, and
// the busy timeout covers two CLI processes sharing one archive.
var archivePragmas = []struct {
	name, value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// migration upgrades an archive whose user_version is below version.
type migration struct {
	version int
	stmt    string
}

// migrations are applied in order on Open. The last version is the current
// schema version.
var migrations = []migration{
	// Cache lookups by request hash, see FindSolved.
	{version: 1, stmt: `CREATE INDEX IF NOT EXISTS idx_runs_request_hash ON runs(request_hash, status)`},
}

// schemaVersion is the user_version of an up-to-date archive.
func schemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Open opens the archive at path, creating it if needed, and brings its
// schema up to date. Opening an archive again is harmless.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to archive %s: %w", path, err)
	}

	// One connection: pragmas are per connection and SQLite has one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare archive %s: %w", path, err)
	}

	s := &Store{db: db, runID: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the archive. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// prepare applies the pragmas, the base schema and pending migrations.
func prepare(db *sql.DB) error {
	for _, p := range archivePragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set user_version %d: %w", m.version, err)
		}
	}
	return nil
}
