package ft

import (
	"fmt"

	"ft-go/internal/model"
)

// GetHistory returns the most recent filing operations, newest first.
func (s *FilingService) GetHistory(limit int) ([]*model.FilingOperation, error) {
	ops, err := s.database.ListFilingOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing filing operations: %w", err)
	}
	return ops, nil
}

// GetLog returns recent audit entries, newest first, optionally
// filtered to one job.
func (s *FilingService) GetLog(job string, limit int) ([]*model.LogEntry, error) {
	entries, err := s.database.ListLogEntries(job, limit)
	if err != nil {
		return nil, fmt.Errorf("listing log entries: %w", err)
	}
	return entries, nil
}

// GetEmails returns filed-email records, newest first, optionally
// filtered to one job.
func (s *FilingService) GetEmails(job string, limit int) ([]*model.EmailRecord, error) {
	recs, err := s.database.ListEmailRecords(job, limit)
	if err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}
	return recs, nil
}

// GetContacts returns a job's remembered contacts, most recently used
// first.
func (s *FilingService) GetContacts(job string) ([]*model.Contact, error) {
	contacts, err := s.database.ListContacts(job)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}

// RecordNeedsAttention writes an audit entry for an item that could
// not be filed unattended and was left in place for a person to deal
// with.
func (s *FilingService) RecordNeedsAttention(job, artifact, source string, reason error) error {
	opRow, err := s.database.CreateFilingOperation("Watch", "artifact="+artifact, s.clock.Now())
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	s.appendLog(opRow, job, artifact, source, "", "abort", "skipped", "needs attention: "+reason.Error())
	s.finishOperation(opRow, "needs-attention")
	s.logger.Warn("needs attention", "artifact", artifact, "reason", reason)
	return nil
}
