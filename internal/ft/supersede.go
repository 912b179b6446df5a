package ft

import (
	"fmt"
	"path/filepath"

	"ft-go/internal/drawing"
)

// SupersedePlan is what the current drawings folder holds for the
// drawing being filed.
type SupersedePlan struct {
	// Stale are the older revisions to move aside, one action per
	// file.
	Stale []SupersedeAction

	// NewerExisting is set when the folder already holds a newer
	// revision, meaning the incoming file is the stale one.
	NewerExisting string

	// SameRevision lists files carrying the same revision marker
	// under a different filename. Those are filename conflicts, not
	// supersede candidates.
	SameRevision []string
}

// PlanSupersede scans the current drawings folder for other revisions
// of incoming and classifies each as stale, newer or equal. Files that
// do not parse as drawings of the same series are left alone. An
// absent folder yields an empty plan.
func PlanSupersede(fsmgr FilesystemManager, conv *drawing.Convention, currentDrawings, supersededDir string, incoming *drawing.Drawing) (SupersedePlan, error) {
	var plan SupersedePlan

	exists, err := fsmgr.Exists(currentDrawings)
	if err != nil {
		return plan, fmt.Errorf("checking %s: %w", currentDrawings, err)
	}
	if !exists {
		return plan, nil
	}

	names, err := fsmgr.ListFiles(currentDrawings)
	if err != nil {
		return plan, fmt.Errorf("scanning %s: %w", currentDrawings, err)
	}

	baseID := incoming.BaseID()
	for _, name := range names {
		if name == incoming.Filename {
			// The exact name is the conflict resolver's problem.
			continue
		}
		d, ok := conv.Parse(name, incoming.Job)
		if !ok || d.BaseID() != baseID {
			continue
		}
		existing := filepath.Join(currentDrawings, name)
		switch conv.Compare(d.Revision, incoming.Revision) {
		case -1:
			plan.Stale = append(plan.Stale, SupersedeAction{
				BaseID:     baseID,
				Current:    existing,
				Superseded: filepath.Join(supersededDir, name),
			})
		case 1:
			if plan.NewerExisting == "" || conv.Compare(d.Revision, mustParse(conv, plan.NewerExisting, incoming.Job)) == 1 {
				plan.NewerExisting = existing
			}
		default:
			plan.SameRevision = append(plan.SameRevision, existing)
		}
	}
	return plan, nil
}

// mustParse re-parses a path already known to parse.
func mustParse(conv *drawing.Convention, path, job string) drawing.Revision {
	d, _ := conv.Parse(filepath.Base(path), job)
	if d == nil {
		return drawing.Revision{}
	}
	return d.Revision
}
