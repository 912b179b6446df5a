package ft

import (
	"time"

	"ft-go/internal/model"
)

// Database is the filing service's view of the record store. Lookup
// methods return nil without error when no row matches.
type Database interface {
	// CreateFilingOperation inserts a new operation row and returns
	// its ID.
	CreateFilingOperation(operation, parameters string, startedAt time.Time) (int64, error)

	// FinishFilingOperation stamps an operation row with its final
	// status.
	FinishFilingOperation(id int64, status string, finishedAt time.Time) error

	// ListFilingOperations returns the most recent operations,
	// newest first.
	ListFilingOperations(limit int) ([]*model.FilingOperation, error)

	// AppendLogEntry appends one audit record. Entries are never
	// updated or deleted.
	AppendLogEntry(entry *model.LogEntry) error

	// ListLogEntries returns recent audit records, newest first.
	// An empty job returns entries for all jobs.
	ListLogEntries(job string, limit int) ([]*model.LogEntry, error)

	// FindEmailByMessageID returns the filed-email record for a
	// message ID, or nil if the message was never filed.
	FindEmailByMessageID(messageID string) (*model.EmailRecord, error)

	// CreateEmailRecord inserts a filed-email record, replacing any
	// existing record for the same message ID.
	CreateEmailRecord(record *model.EmailRecord) error

	// ListEmailRecords returns filed emails, newest first. An empty
	// job returns records for all jobs.
	ListEmailRecords(job string, limit int) ([]*model.EmailRecord, error)

	// UpsertContact records that a contact name was used for a job.
	UpsertContact(job, name string, usedAt time.Time) error

	// ListContacts returns a job's contacts, most recently used
	// first.
	ListContacts(job string) ([]*model.Contact, error)

	Close() error
}
