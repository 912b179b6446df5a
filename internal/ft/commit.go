package ft

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"ft-go/internal/model"
)

// Commit performs a plan's writes. It asks no questions and cannot be
// cancelled; every decision was settled during planning. Failures on
// individual items are collected and the rest of the batch continues.
// The plan's project is released when Commit returns.
func (s *FilingService) Commit(plan *Plan) (*BatchResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("nil plan")
	}
	if plan.released {
		return nil, fmt.Errorf("plan was already committed or abandoned")
	}
	defer func() {
		plan.released = true
		s.release(plan.ProjectRoot)
	}()

	s.logger.Info("commit started", "operation", plan.OperationID, "job", plan.Job, "items", len(plan.Batch))

	opRow, err := s.database.CreateFilingOperation(operationName(plan), operationParams(plan), s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("recording operation: %w", err)
	}

	result := &BatchResult{OperationID: plan.OperationID}

	if err := s.checkCaps(plan, opRow); err != nil {
		s.finishOperation(opRow, "aborted")
		return result, err
	}

	limit := s.settings.DestinationCap
	written := make(map[string]int)

	for _, pa := range plan.Batch {
		art := pa.Artifact
		if pa.Err != nil {
			result.Failures = append(result.Failures, FailedWrite{Artifact: art, Err: pa.Err})
			s.appendLog(opRow, plan.Job, art.Name, sourceOf(art), destSummary(pa), "abort", "failure", pa.Err.Error())
			continue
		}

		primaryOK := true
		for _, d := range pa.Destinations {
			if d.Decision == DecisionSkip {
				result.Skipped++
				s.appendLog(opRow, plan.Job, art.Name, sourceOf(art), d.Dir, "skip", "skipped", skipDetail(d))
				continue
			}
			if !primaryOK {
				s.appendLog(opRow, plan.Job, art.Name, sourceOf(art), d.Dir, decisionString(d), "skipped", "primary write failed")
				continue
			}

			if err := s.writeOne(art, d, written, limit); err != nil {
				result.Failures = append(result.Failures, FailedWrite{Artifact: art, Dest: d.Dir, Err: err})
				s.appendLog(opRow, plan.Job, art.Name, sourceOf(art), filepath.Join(d.Dir, d.FinalName), decisionString(d), "failure", err.Error())
				s.logger.Error("write failed", "artifact", art.Name, "dest", d.Dir, "error", err)
				if d.Primary {
					primaryOK = false
				}
				continue
			}

			result.Filed++
			s.appendLog(opRow, plan.Job, art.Name, sourceOf(art), filepath.Join(d.Dir, d.FinalName), decisionString(d), "success", writeDetail(d))
			for _, act := range d.Supersede {
				result.Superseded++
				s.appendLog(opRow, plan.Job, filepath.Base(act.Current), act.Current, act.Superseded, "supersede", "success", "superseded by "+d.FinalName)
			}
		}

		if pa.KeyStageDir != "" && primaryOK {
			dst, err := s.keyStageCopy(art, pa.KeyStageDir, written, limit)
			if err != nil {
				result.Failures = append(result.Failures, FailedWrite{Artifact: art, Dest: pa.KeyStageDir, Err: err})
				s.appendLog(opRow, plan.Job, art.Name, sourceOf(art), pa.KeyStageDir, "proceed", "failure", err.Error())
			} else {
				result.Filed++
				s.appendLog(opRow, plan.Job, art.Name, sourceOf(art), dst, "proceed", "success", "key-stage copy")
			}
		}
	}

	if plan.Email != nil && result.Filed > 0 {
		s.recordEmail(plan)
	}

	status := "success"
	switch {
	case result.Filed == 0 && len(result.Failures) > 0:
		status = "error"
	case len(result.Failures) > 0:
		status = "partial"
	}
	s.finishOperation(opRow, status)

	s.logger.Info("commit finished", "operation", plan.OperationID,
		"filed", result.Filed, "skipped", result.Skipped,
		"superseded", result.Superseded, "failures", len(result.Failures))
	return result, nil
}

// checkCaps totals the planned writes per destination folder and
// aborts the batch when any folder would take more than the cap. The
// abort itself is logged; nothing has been written at this point.
func (s *FilingService) checkCaps(plan *Plan, opRow int64) error {
	limit := s.settings.DestinationCap
	if limit <= 0 {
		return nil
	}
	for dir, n := range s.plannedWrites(plan) {
		if n > limit {
			capErr := &CapExceededError{Destination: dir, Planned: n, Cap: limit}
			s.appendLog(opRow, plan.Job, "", "", dir, "abort", "skipped", capErr.Error())
			s.logger.Error("batch aborted", "operation", plan.OperationID, "error", capErr)
			return capErr
		}
	}
	return nil
}

// plannedWrites counts every write the plan will make per folder:
// destination writes, supersede moves, overwrite backups and key-stage
// copies.
func (s *FilingService) plannedWrites(plan *Plan) map[string]int {
	counts := make(map[string]int)
	for _, pa := range plan.Batch {
		if pa.Err != nil {
			continue
		}
		for _, d := range pa.Destinations {
			if d.Decision == DecisionSkip {
				continue
			}
			counts[d.Dir]++
			for _, act := range d.Supersede {
				counts[filepath.Dir(act.Superseded)]++
			}
			if d.Decision == DecisionOverwrite {
				if pa.Artifact.Kind == KindDrawing {
					counts[s.supersededDirFor(d)]++
				} else {
					counts[d.Dir]++
				}
			}
		}
		if pa.KeyStageDir != "" {
			counts[pa.KeyStageDir]++
		}
	}
	return counts
}

// writeOne lands one artifact at one destination, including any backup
// of an overwritten file and the supersede protocol for drawings.
func (s *FilingService) writeOne(art *Artifact, d Destination, written map[string]int, limit int) error {
	if limit > 0 && written[d.Dir] >= limit {
		return &CapExceededError{Destination: d.Dir, Planned: written[d.Dir] + 1, Cap: limit}
	}
	if err := s.fsmgr.MkdirAll(d.Dir); err != nil {
		return &WriteError{Path: d.Dir, Op: "creating", Err: err}
	}

	final := filepath.Join(d.Dir, d.FinalName)

	if d.Decision == DecisionOverwrite {
		if err := s.backupExisting(art, d, final, written); err != nil {
			return err
		}
	}

	if len(d.Supersede) > 0 {
		if err := s.supersedeAndWrite(art, d, final, written); err != nil {
			return err
		}
	} else if err := s.writeArtifact(art, final); err != nil {
		return err
	}
	written[d.Dir]++
	return nil
}

// backupExisting preserves the file an overwrite replaces: drawings go
// to the superseded folder, documents are renamed alongside with a
// timestamp.
func (s *FilingService) backupExisting(art *Artifact, d Destination, final string, written map[string]int) error {
	exists, err := s.fsmgr.Exists(final)
	if err != nil {
		return &WriteError{Path: final, Op: "checking", Err: err}
	}
	if !exists {
		return nil
	}

	if art.Kind == KindDrawing {
		supDir := s.supersededDirFor(d)
		if err := s.fsmgr.MkdirAll(supDir); err != nil {
			return &WriteError{Path: supDir, Op: "creating", Err: err}
		}
		backup := filepath.Join(supDir, d.FinalName)
		if taken, err := s.fsmgr.Exists(backup); err == nil && taken {
			backup = filepath.Join(supDir, BackupName(d.FinalName, s.clock.Now()))
		}
		if err := s.fsmgr.MoveFile(final, backup); err != nil {
			return &WriteError{Path: final, Op: "preserving", Err: err}
		}
		written[supDir]++
		return nil
	}

	backup := filepath.Join(d.Dir, BackupName(d.FinalName, s.clock.Now()))
	if err := s.fsmgr.Rename(final, backup); err != nil {
		return &WriteError{Path: final, Op: "preserving", Err: err}
	}
	written[d.Dir]++
	return nil
}

// supersedeAndWrite stages the new revision next to its final name,
// moves the stale revisions aside, then renames the staged copy into
// place. Any failure undoes the completed moves and removes the staged
// copy, leaving the folder as it was.
func (s *FilingService) supersedeAndWrite(art *Artifact, d Destination, final string, written map[string]int) error {
	tmp := filepath.Join(d.Dir, ".tmp-"+d.FinalName)
	if err := s.writeArtifact(art, tmp); err != nil {
		return err
	}

	supDir := filepath.Dir(d.Supersede[0].Superseded)
	if err := s.fsmgr.MkdirAll(supDir); err != nil {
		s.removeStaged(tmp)
		return &SupersedeError{Drawing: art.Name, Err: err}
	}

	var moved []SupersedeAction
	for _, act := range d.Supersede {
		if err := s.fsmgr.MoveFile(act.Current, act.Superseded); err != nil {
			s.rollbackSupersede(moved, tmp)
			return &SupersedeError{Drawing: art.Name, Err: fmt.Errorf("moving %s: %w", act.Current, err)}
		}
		moved = append(moved, act)
		written[supDir]++
	}

	if err := s.fsmgr.Rename(tmp, final); err != nil {
		s.rollbackSupersede(moved, tmp)
		return &SupersedeError{Drawing: art.Name, Err: fmt.Errorf("renaming staged copy: %w", err)}
	}
	return nil
}

// rollbackSupersede returns moved revisions to the current drawings
// folder and deletes the staged copy.
func (s *FilingService) rollbackSupersede(moved []SupersedeAction, tmp string) {
	for i := len(moved) - 1; i >= 0; i-- {
		if err := s.fsmgr.MoveFile(moved[i].Superseded, moved[i].Current); err != nil {
			s.logger.Error("rollback move failed", "path", moved[i].Superseded, "error", err)
		}
	}
	s.removeStaged(tmp)
}

func (s *FilingService) removeStaged(tmp string) {
	if err := s.fsmgr.Remove(tmp); err != nil {
		s.logger.Error("removing staged copy failed", "path", tmp, "error", err)
	}
}

// writeArtifact writes the artifact's bytes to dst, from its source
// file or from memory.
func (s *FilingService) writeArtifact(art *Artifact, dst string) error {
	var err error
	if art.Source != nil {
		err = s.fsmgr.CopyFile(art.Source, dst)
	} else {
		err = s.fsmgr.WriteFile(dst, art.Data)
	}
	if err != nil {
		return &WriteError{Path: dst, Op: "writing", Err: err}
	}
	return nil
}

// keyStageCopy lands the artifact's archive copy, versioning the name
// on collision instead of prompting. Returns the path written.
func (s *FilingService) keyStageCopy(art *Artifact, dir string, written map[string]int, limit int) (string, error) {
	if limit > 0 && written[dir] >= limit {
		return "", &CapExceededError{Destination: dir, Planned: written[dir] + 1, Cap: limit}
	}
	if err := s.fsmgr.MkdirAll(dir); err != nil {
		return "", &WriteError{Path: dir, Op: "creating", Err: err}
	}
	name := art.Name
	if exists, err := s.fsmgr.Exists(filepath.Join(dir, name)); err == nil && exists {
		var vErr error
		name, vErr = NextVersionName(s.fsmgr, dir, name)
		if vErr != nil {
			return "", &WriteError{Path: dir, Op: "versioning", Err: vErr}
		}
	}
	dst := filepath.Join(dir, name)
	if err := s.writeArtifact(art, dst); err != nil {
		return "", err
	}
	written[dir]++
	return dst, nil
}

func (s *FilingService) supersededDirFor(d Destination) string {
	if len(d.Supersede) > 0 {
		return filepath.Dir(d.Supersede[0].Superseded)
	}
	return s.planner.SupersededDir(d.Dir)
}

// recordEmail persists the filed-email record and remembers the
// contact. Failures here are logged but do not fail the batch; the
// files are already in place.
func (s *FilingService) recordEmail(plan *Plan) {
	src := plan.Email
	if src.MessageID == "" {
		s.logger.Warn("email has no message id, not recording it")
	} else {
		rec := &model.EmailRecord{
			MessageID:       src.MessageID,
			JobNumber:       plan.Job,
			Direction:       src.Direction.String(),
			Subject:         src.Subject,
			Sender:          src.Sender,
			Recipients:      strings.Join(src.Recipients, ", "),
			FiledTo:         src.FiledTo,
			AttachmentCount: int64(len(plan.Batch)),
			ContactName:     src.Contact,
			FiledAt:         s.clock.Now(),
		}
		if !src.SentAt.IsZero() {
			rec.SentAt = sql.NullTime{Time: src.SentAt, Valid: true}
		}
		if err := s.database.CreateEmailRecord(rec); err != nil {
			s.logger.Error("recording email failed", "message_id", src.MessageID, "error", err)
		}
	}
	if src.Contact != "" {
		if err := s.database.UpsertContact(plan.Job, src.Contact, s.clock.Now()); err != nil {
			s.logger.Error("recording contact failed", "job", plan.Job, "error", err)
		}
	}
}

func (s *FilingService) appendLog(opRow int64, job, artifact, source, destinations, decision, outcome, detail string) {
	entry := &model.LogEntry{
		ID:           s.idgen.NewID(),
		OperationID:  opRow,
		Timestamp:    s.clock.Now(),
		JobNumber:    job,
		Artifact:     artifact,
		Source:       source,
		Destinations: destinations,
		Decision:     decision,
		Outcome:      outcome,
		Detail:       detail,
	}
	if err := s.database.AppendLogEntry(entry); err != nil {
		// The filesystem may already be mutated; a failed audit
		// write must not halt the batch.
		s.logger.Error("appending log entry failed", "artifact", artifact, "error", err)
	}
}

func (s *FilingService) finishOperation(id int64, status string) {
	if err := s.database.FinishFilingOperation(id, status, s.clock.Now()); err != nil {
		s.logger.Error("finishing operation failed", "id", id, "error", err)
	}
}

func operationName(plan *Plan) string {
	if plan.Email != nil {
		return "FileEmail"
	}
	return "FileArtifacts"
}

func operationParams(plan *Plan) string {
	return fmt.Sprintf("operation=%s job=%s items=%d", plan.OperationID, plan.Job, len(plan.Batch))
}

func sourceOf(art *Artifact) string {
	if art.Source != nil {
		return art.Source.String()
	}
	return ""
}

func destSummary(pa *PlannedArtifact) string {
	var dirs []string
	for _, d := range pa.Destinations {
		dirs = append(dirs, d.Dir)
	}
	return strings.Join(dirs, "; ")
}

func decisionString(d Destination) string {
	if d.Decision == DecisionRename {
		return "rename:" + d.FinalName
	}
	return d.Decision.String()
}

func skipDetail(d Destination) string {
	if len(d.Matches) > 0 {
		return "existing copies: " + strings.Join(d.Matches, "; ")
	}
	return ""
}

func writeDetail(d Destination) string {
	if d.StaleIncoming {
		return "newer revision already in place"
	}
	return ""
}
