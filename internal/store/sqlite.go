package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kickoff-data/pitchsync/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore is the durable ResultsStore backed by a single sqlite
// file. Each logical record is one row; saves are single upsert
// statements, so sqlite's statement atomicity gives the all-or-nothing
// contract for free.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	sessionID string
	clock     timeutil.Clock
}

// Open opens (creating if needed) the results database at path and
// applies pending schema migrations. A nil clock defaults to the real
// one. Each Open mints a fresh session id recorded on every write.
func Open(path string, clock timeutil.Clock) (*SQLiteStore, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening results db %s: %w", path, err)
	}
	s := &SQLiteStore{
		db:        db,
		path:      path,
		sessionID: uuid.NewString(),
		clock:     clock,
	}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// DB exposes the underlying handle for the debug SQL browser.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// SessionID reports the id stamped on writes from this session.
func (s *SQLiteStore) SessionID() string { return s.sessionID }

// Save replaces the record's value in one upsert.
func (s *SQLiteStore) Save(record Record, value []byte) error {
	if err := validRecord(record); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO records (name, value, session_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value      = excluded.value,
			session_id = excluded.session_id,
			updated_at = excluded.updated_at`,
		string(record), value, s.sessionID,
		s.clock.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving record %s: %w", record, err)
	}
	return nil
}

// Load returns the record's value, reporting absence without error.
func (s *SQLiteStore) Load(record Record) ([]byte, bool, error) {
	if err := validRecord(record); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.db.QueryRow(
		`SELECT value FROM records WHERE name = ?`, string(record),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading record %s: %w", record, err)
	}
	return value, true, nil
}

// Clear removes the record if present.
func (s *SQLiteStore) Clear(record Record) error {
	if err := validRecord(record); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM records WHERE name = ?`, string(record)); err != nil {
		return fmt.Errorf("clearing record %s: %w", record, err)
	}
	return nil
}

// Exists reports whether the record is present.
func (s *SQLiteStore) Exists(record Record) (bool, error) {
	if err := validRecord(record); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM records WHERE name = ?`, string(record),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking record %s: %w", record, err)
	}
	return n > 0, nil
}

// RecordInfo describes one persisted record for the operator.
type RecordInfo struct {
	Name      string `json:"name"`
	Bytes     int64  `json:"bytes"`
	SessionID string `json:"session_id"`
	UpdatedAt string `json:"updated_at"`
}

// ListRecords returns a summary of every persisted record, newest
// first.
func (s *SQLiteStore) ListRecords() ([]RecordInfo, error) {
	rows, err := s.db.Query(`
		SELECT name, LENGTH(value), session_id, updated_at
		FROM records ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []RecordInfo
	for rows.Next() {
		var info RecordInfo
		if err := rows.Scan(&info.Name, &info.Bytes, &info.SessionID, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
