package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// confirmationPrefix is prepended to every appointment confirmation id.
const confirmationPrefix = "APT-"

// SQLiteStore implements AppointmentStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ AppointmentStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS appointments (
		confirmation_id    TEXT PRIMARY KEY,
		session_id         TEXT NOT NULL,
		name               TEXT NOT NULL,
		phone              TEXT NOT NULL,
		email              TEXT NOT NULL,
		preferred_datetime TEXT NOT NULL,
		created_at         TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_appointments_session ON appointments(session_id);
	CREATE INDEX IF NOT EXISTS idx_appointments_created ON appointments(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// newConfirmationID mints an id like APT-nEHY3fMmhkhBUqKrfqHKpS.
func newConfirmationID() string {
	return confirmationPrefix + shortuuid.New()
}

// Save writes the record and returns its confirmation id.
func (s *SQLiteStore) Save(ctx context.Context, record *AppointmentRecord) (string, error) {
	if record == nil {
		return "", errors.New("nil appointment record")
	}

	id := newConfirmationID()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (confirmation_id, session_id, name, phone, email, preferred_datetime, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		record.SessionID,
		record.Name,
		record.Phone,
		record.Email,
		record.PreferredDatetime.UTC().Format(time.RFC3339),
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert appointment")
	}
	return id, nil
}

// GetByConfirmationID fetches a previously saved record.
func (s *SQLiteStore) GetByConfirmationID(ctx context.Context, confirmationID string) (*AppointmentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, name, phone, email, preferred_datetime, created_at
		FROM appointments WHERE confirmation_id = ?`, confirmationID)

	record, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("appointment not found: %s", confirmationID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query appointment")
	}
	return record, nil
}

// ListBySession returns all records saved for a session, oldest first.
func (s *SQLiteStore) ListBySession(ctx context.Context, sessionID string) ([]*AppointmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, name, phone, email, preferred_datetime, created_at
		FROM appointments WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "query appointments")
	}
	defer rows.Close()

	var records []*AppointmentRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "scan appointment")
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(scan func(dest ...any) error) (*AppointmentRecord, error) {
	var record AppointmentRecord
	var preferred, created string
	if err := scan(&record.SessionID, &record.Name, &record.Phone, &record.Email, &preferred, &created); err != nil {
		return nil, err
	}

	var err error
	if record.PreferredDatetime, err = time.Parse(time.RFC3339, preferred); err != nil {
		return nil, fmt.Errorf("parse preferred_datetime: %w", err)
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &record, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
