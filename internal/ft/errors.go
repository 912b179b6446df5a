package ft

import (
	"errors"
	"fmt"
)

// ErrUnresolvedIdentifier is returned when no job number could be
// determined for an item and the caller declined to supply one.
var ErrUnresolvedIdentifier = errors.New("job number could not be determined")

// ErrAmbiguousDirection is returned when an email's direction could not
// be inferred and the caller declined to supply one.
var ErrAmbiguousDirection = errors.New("email direction could not be determined")

// ErrProjectBusy is returned when another filing operation already
// holds the project and a new plan cannot start.
var ErrProjectBusy = errors.New("project is busy with another filing operation")

// PathViolationError reports a destination that escapes the project
// folder it must stay inside.
type PathViolationError struct {
	Root string
	Path string
}

func (e *PathViolationError) Error() string {
	return fmt.Sprintf("destination %s escapes project folder %s", e.Path, e.Root)
}

// CapExceededError reports a destination folder whose planned write
// count exceeds the per-destination cap. The whole batch is aborted
// before any write when this is returned.
type CapExceededError struct {
	Destination string
	Planned     int
	Cap         int
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("planned %d writes into %s, cap is %d", e.Planned, e.Destination, e.Cap)
}

// WriteError reports a failed filesystem operation for a single item.
// Other items in the batch continue.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// SupersedeError reports a failure partway through the supersede
// protocol. By the time it is returned the already-moved revisions have
// been restored and the staged copy removed.
type SupersedeError struct {
	Drawing string
	Err     error
}

func (e *SupersedeError) Error() string {
	return fmt.Sprintf("superseding %s: %v", e.Drawing, e.Err)
}

func (e *SupersedeError) Unwrap() error {
	return e.Err
}
