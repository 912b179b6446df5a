package model

import (
	"database/sql"
	"time"
)

// FilingOperation tracks one CLI invocation that may mutate the filesystem
// or the database. Rows are created when the invocation first commits work.
type FilingOperation struct {
	ID         int64
	Operation  string // e.g. "FileArtifacts", "FileEmail", "Watch"
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string // success | partial | error | aborted | needs-attention
}

// LogEntry is one immutable audit record for a filing decision or write.
// The log_entries table is append-only: entries are never updated or deleted.
type LogEntry struct {
	ID           string // UUID
	OperationID  int64  // Foreign key to FilingOperation
	Timestamp    time.Time
	JobNumber    string
	Artifact     string // Display name of the artifact
	Source       string // Source path, or "" for in-memory artifacts
	Destinations string // Resolved destination folders, "; "-joined
	Decision     string // proceed | skip | rename:<name> | overwrite | supersede | abort
	Outcome      string // success | failure | skipped
	Detail       string // Failure reason or extra context
}

// EmailRecord is a filed email, keyed by RFC 5322 message ID.
// Used to detect re-filing of the same message.
type EmailRecord struct {
	MessageID       string
	JobNumber       string
	Direction       string // "IN", "OUT" or "UNKNOWN"
	Subject         string
	Sender          string
	Recipients      string // comma-joined address list
	SentAt          sql.NullTime
	FiledTo         string // destination folder of the primary filing
	AttachmentCount int64
	ContactName     string
	FiledAt         time.Time
}

// Contact is a per-job contact name remembered from prior filings,
// used to offer defaults when prompting.
type Contact struct {
	JobNumber  string
	Name       string
	LastUsedAt time.Time
}
