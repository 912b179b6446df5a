package ft

import (
	"time"

	"ft-go/internal/rules"
)

// Decision is the resolution of a filename conflict at one destination.
type Decision int

const (
	// DecisionProceed means no conflict existed.
	DecisionProceed Decision = iota
	// DecisionSkip leaves the destination untouched. The skip is
	// still recorded in the operation log.
	DecisionSkip
	// DecisionRename writes under a versioned name instead.
	DecisionRename
	// DecisionOverwrite replaces the existing file, preserving the
	// old copy as a backup.
	DecisionOverwrite
)

func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionRename:
		return "rename"
	case DecisionOverwrite:
		return "overwrite"
	default:
		return "proceed"
	}
}

// SupersedeAction is one planned move of a stale drawing revision out
// of the current drawings folder.
type SupersedeAction struct {
	// BaseID identifies the drawing series both files belong to.
	BaseID string
	// Current is the absolute path of the stale revision as it sits
	// in the current drawings folder.
	Current string
	// Superseded is the absolute path it will be moved to,
	// preserving its filename.
	Superseded string
}

// Destination is one folder an artifact will be written into, with the
// conflict decision and any supersede work that write entails.
type Destination struct {
	// Dir is the absolute destination folder. It may not exist yet;
	// the executor creates it.
	Dir string

	// FinalName is the filename to write. Differs from the
	// artifact's name when the conflict decision was a rename.
	FinalName string

	Decision Decision

	// Primary marks the artifact's main destination. Secondary
	// copies fail independently without affecting it.
	Primary bool

	// Matches lists absolute paths elsewhere in the project tree
	// that carry the same filename, found by the conflict scan.
	Matches []string

	// Supersede lists stale revisions to move aside before this
	// write lands. Only set for drawings going into the current
	// drawings folder.
	Supersede []SupersedeAction

	// StaleIncoming is set when a newer revision of the same
	// drawing already exists at this destination, so the incoming
	// file supersedes nothing.
	StaleIncoming bool
}

// PlannedArtifact pairs an artifact with everything the executor needs
// to file it.
type PlannedArtifact struct {
	Artifact *Artifact

	// Destinations are written in order. The first is the primary.
	Destinations []Destination

	// KeyStageDir, when non-empty, is the archive folder that
	// receives an extra copy of the filed item.
	KeyStageDir string

	// Suggestions are filing rule matches that were not applied,
	// either too weak to auto-file or from paused rules. They are
	// informational only.
	Suggestions []rules.Match

	// Err marks the artifact as unfileable. The executor writes
	// nothing for it and records the failure in the operation log.
	Err error
}

// UnplannedArtifact is an item that never made it into the batch,
// with the reason it was dropped.
type UnplannedArtifact struct {
	Artifact *Artifact
	Reason   error
}

// Plan is a fully resolved filing batch, ready to commit. All prompting
// happens before a Plan exists; committing one asks no questions.
type Plan struct {
	// OperationID groups everything this batch does in the
	// operation log.
	OperationID string

	// Job is the job number the whole batch files under.
	Job string

	// JobConfidence records how the job number was obtained.
	JobConfidence Confidence

	// ProjectRoot is the absolute path of the project folder. Every
	// destination in the plan lies inside it.
	ProjectRoot string

	// Batch holds the artifacts to file, in input order.
	Batch []*PlannedArtifact

	// Unplanned holds items dropped during planning.
	Unplanned []UnplannedArtifact

	// Email carries source metadata when the batch came from an
	// email, for the email record written on commit. Nil otherwise.
	Email *EmailSource

	released bool
}

// EmailSource is the provenance recorded for batches filed from an
// email.
type EmailSource struct {
	MessageID  string
	Subject    string
	Sender     string
	Recipients []string
	SentAt     time.Time
	Direction  Direction
	Contact    string

	// FiledTo is the dated folder the email's items land in,
	// recorded on the email record for duplicate detection.
	FiledTo string
}

// FailedWrite is one item write that failed during commit.
type FailedWrite struct {
	Artifact *Artifact
	Dest     string
	Err      error
}

// BatchResult summarizes a committed plan.
type BatchResult struct {
	OperationID string
	Filed       int
	Skipped     int
	Superseded  int
	Failures    []FailedWrite
}
