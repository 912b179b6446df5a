package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ft-go/internal/ft"
	"ft-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the ft.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var _ ft.Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase opens a SQLite database at path and wraps it.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:   db,
		path: "",
	}
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the record store relies on. Exported for tools and tests
// that need a raw connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// DB exposes the underlying connection for migration checks.
func (s *SQLiteDatabase) DB() *sql.DB {
	return s.db
}

func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

// Filing operations

func (s *SQLiteDatabase) CreateFilingOperation(operation, parameters string, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO filing_operations (operation, parameters, started_at, status)
		VALUES (?, ?, ?, 'running')`,
		operation, parameters, startedAt)
	if err != nil {
		return 0, fmt.Errorf("creating filing operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading filing operation id: %w", err)
	}
	return id, nil
}

func (s *SQLiteDatabase) FinishFilingOperation(id int64, status string, finishedAt time.Time) error {
	_, err := s.db.Exec(`
		UPDATE filing_operations SET status = ?, finished_at = ? WHERE id = ?`,
		status, finishedAt, id)
	if err != nil {
		return fmt.Errorf("finishing filing operation %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteDatabase) ListFilingOperations(limit int) ([]*model.FilingOperation, error) {
	rows, err := s.db.Query(`
		SELECT id, operation, parameters, started_at, finished_at, status
		FROM filing_operations
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing filing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.FilingOperation
	for rows.Next() {
		var op model.FilingOperation
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &op.FinishedAt, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning filing operation: %w", err)
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing filing operations: %w", err)
	}
	return ops, nil
}

// Log entries

func (s *SQLiteDatabase) AppendLogEntry(entry *model.LogEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO log_entries (id, operation_id, ts, job_number, artifact, source, destinations, decision, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.OperationID, entry.Timestamp, entry.JobNumber,
		entry.Artifact, entry.Source, entry.Destinations,
		entry.Decision, entry.Outcome, entry.Detail)
	if err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListLogEntries(job string, limit int) ([]*model.LogEntry, error) {
	// rowid breaks timestamp ties so entries come back in reverse
	// insertion order.
	query := `
		SELECT id, operation_id, ts, job_number, artifact, source, destinations, decision, outcome, detail
		FROM log_entries`
	args := []any{}
	if job != "" {
		query += ` WHERE job_number = ?`
		args = append(args, job)
	}
	query += ` ORDER BY ts DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing log entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(&e.ID, &e.OperationID, &e.Timestamp, &e.JobNumber,
			&e.Artifact, &e.Source, &e.Destinations, &e.Decision, &e.Outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing log entries: %w", err)
	}
	return entries, nil
}

// Emails

func (s *SQLiteDatabase) FindEmailByMessageID(messageID string) (*model.EmailRecord, error) {
	row := s.db.QueryRow(`
		SELECT message_id, job_number, direction, subject, sender, recipients, sent_at, filed_to, attachment_count, contact_name, filed_at
		FROM emails
		WHERE message_id = ?`, messageID)

	rec, err := scanEmail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding email by message id: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDatabase) CreateEmailRecord(record *model.EmailRecord) error {
	// Re-filing the same message replaces its record.
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO emails (message_id, job_number, direction, subject, sender, recipients, sent_at, filed_to, attachment_count, contact_name, filed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.MessageID, record.JobNumber, record.Direction, record.Subject,
		record.Sender, record.Recipients, record.SentAt, record.FiledTo,
		record.AttachmentCount, record.ContactName, record.FiledAt)
	if err != nil {
		return fmt.Errorf("creating email record: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListEmailRecords(job string, limit int) ([]*model.EmailRecord, error) {
	query := `
		SELECT message_id, job_number, direction, subject, sender, recipients, sent_at, filed_to, attachment_count, contact_name, filed_at
		FROM emails`
	args := []any{}
	if job != "" {
		query += ` WHERE job_number = ?`
		args = append(args, job)
	}
	query += ` ORDER BY filed_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing email records: %w", err)
	}
	defer rows.Close()

	var records []*model.EmailRecord
	for rows.Next() {
		rec, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning email record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing email records: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmail(row rowScanner) (*model.EmailRecord, error) {
	var rec model.EmailRecord
	err := row.Scan(&rec.MessageID, &rec.JobNumber, &rec.Direction, &rec.Subject,
		&rec.Sender, &rec.Recipients, &rec.SentAt, &rec.FiledTo,
		&rec.AttachmentCount, &rec.ContactName, &rec.FiledAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Contacts

func (s *SQLiteDatabase) UpsertContact(job, name string, usedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO contacts (job_number, name, last_used_at)
		VALUES (?, ?, ?)
		ON CONFLICT (job_number, name) DO UPDATE SET last_used_at = excluded.last_used_at`,
		job, name, usedAt)
	if err != nil {
		return fmt.Errorf("upserting contact: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListContacts(job string) ([]*model.Contact, error) {
	rows, err := s.db.Query(`
		SELECT job_number, name, last_used_at
		FROM contacts
		WHERE job_number = ?
		ORDER BY last_used_at DESC, name ASC`, job)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.JobNumber, &c.Name, &c.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}
