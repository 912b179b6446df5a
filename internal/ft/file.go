package ft

import (
	"context"
	"fmt"
	"time"
)

// FileOptions adjust how a batch of loose files is planned.
type FileOptions struct {
	// Reference is an explicit job number or custom reference,
	// overriding resolution from filenames.
	Reference string

	// Contact and Description feed the dated folder name.
	Contact     string
	Description string

	// Direction forces the filing direction instead of prompting.
	Direction Direction

	// Dated files drawings through a dated folder as well as the
	// current drawings folder.
	Dated bool

	// Also lists extra destination folders, relative to the project
	// folder, that every item is copied into.
	Also []string

	// KeyStage, when non-empty, archives a copy of every filed item
	// under a key-stage folder of that description.
	KeyStage string

	// MinRuleScore raises the score a filing rule needs to add its
	// destination automatically. Zero uses the configured
	// threshold. The watcher passes 1 so only exact matches file
	// unattended.
	MinRuleScore float64
}

// PlanFiles resolves a batch of loose files into a committable Plan.
// The whole batch files under one job; files whose names resolve to a
// different job are set aside as unplanned. The project stays locked
// until the plan is committed or abandoned.
func (s *FilingService) PlanFiles(ctx context.Context, paths []string, opts FileOptions) (*Plan, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to plan")
	}
	s.logger.Info("planning files", "count", len(paths))

	arts := make([]*Artifact, 0, len(paths))
	for _, raw := range paths {
		p, err := s.fsmgr.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", raw, err)
		}
		if p.IsDir() {
			return nil, fmt.Errorf("%s is a directory, not a file", p)
		}
		arts = append(arts, &Artifact{
			Source: p,
			Name:   p.Base(),
			Size:   p.Info().Size(),
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.batchJob(arts, opts.Reference)
	if err != nil {
		return nil, err
	}
	proj, _ := s.index.Find(res.Job)

	// Split off files naming a different job; a batch files under
	// exactly one project.
	var batch []*Artifact
	var unplanned []UnplannedArtifact
	for _, a := range arts {
		if r := s.resolver.FromFilename(a.Name); r.Job != "" && r.Job != res.Job {
			unplanned = append(unplanned, UnplannedArtifact{
				Artifact: a,
				Reason:   fmt.Errorf("names job %s, batch files under %s", r.Job, res.Job),
			})
			continue
		}
		a.Job = res.Job
		a.JobConfidence = res.Confidence
		a.Kind = s.classifier.Kind(a.Name, res.Job)
		batch = append(batch, a)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("no files left for job %s", res.Job)
	}

	if err := s.acquire(proj.Path); err != nil {
		return nil, err
	}
	planned := false
	defer func() {
		if !planned {
			s.release(proj.Path)
		}
	}()

	// A dated folder is needed as soon as anything other than a bare
	// drawing is in the batch, and only then is direction required.
	needDated := opts.Dated || opts.Contact != "" || opts.Description != "" || opts.Direction != DirectionUnknown
	for _, a := range batch {
		if a.Kind != KindDrawing {
			needDated = true
		}
	}

	now := s.clock.Now()
	dir := opts.Direction
	var datedDir string
	if needDated {
		if dir == DirectionUnknown {
			dir, err = s.confirmDirection(DirectionQuery{})
			if err != nil {
				return nil, err
			}
		}
		datedDir, err = s.planner.DatedFolder(proj.Path, proj.Job, dir, now, opts.Contact, opts.Description)
		if err != nil {
			return nil, err
		}
	}
	for _, a := range batch {
		a.Direction = dir
	}

	bc, err := s.batchContextFor(proj.Path, proj.Job, datedDir, dir, now, opts)
	if err != nil {
		return nil, err
	}

	plannedArts, err := s.buildBatch(ctx, bc, batch)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		OperationID:   s.idgen.NewID(),
		Job:           proj.Job,
		JobConfidence: res.Confidence,
		ProjectRoot:   proj.Path,
		Batch:         plannedArts,
		Unplanned:     unplanned,
	}
	planned = true
	s.logger.Info("plan ready", "operation", plan.OperationID, "job", proj.Job, "items", len(plannedArts))
	return plan, nil
}

// batchJob settles which job the batch files under: explicit reference
// first, then the first filename that resolves, then the user.
func (s *FilingService) batchJob(arts []*Artifact, reference string) (Resolution, error) {
	res := s.resolver.FromReference(reference)
	if reference != "" && res.Job == "" {
		return s.confirmJob(IdentifierQuery{Resolved: reference, Candidates: s.index.Jobs()})
	}
	if res.Job == "" {
		for _, a := range arts {
			if r := s.resolver.FromFilename(a.Name); r.Job != "" {
				res = r
				break
			}
		}
	}
	if res.Job == "" {
		return s.confirmJob(IdentifierQuery{Artifact: arts[0], Candidates: s.index.Jobs()})
	}
	if !s.index.Has(res.Job) {
		// Resolution can name a job with no project folder yet.
		return s.confirmJob(IdentifierQuery{Artifact: arts[0], Resolved: res.Job, Candidates: s.index.Jobs()})
	}
	return res, nil
}

// batchContext carries the filing context shared by every artifact in
// one batch.
type batchContext struct {
	root         string
	job          string
	datedDir     string
	direction    Direction
	date         time.Time
	contact      string
	desc         string
	alsoDirs     []string
	keyStageDir  string
	minRuleScore float64
}

func (s *FilingService) batchContextFor(root, job, datedDir string, dir Direction, date time.Time, opts FileOptions) (batchContext, error) {
	bc := batchContext{
		root:         root,
		job:          job,
		datedDir:     datedDir,
		direction:    dir,
		date:         date,
		contact:      opts.Contact,
		desc:         opts.Description,
		minRuleScore: opts.MinRuleScore,
	}
	for _, loc := range opts.Also {
		dst, err := s.planner.ExpandLocation(root, job, loc, dir, date, opts.Contact, opts.Description)
		if err != nil {
			return bc, err
		}
		bc.alsoDirs = append(bc.alsoDirs, dst)
	}
	if opts.KeyStage != "" {
		base := ""
		if s.ruleSet != nil {
			if r, ok := s.ruleSet.KeyStage(); ok {
				base = r.Location
			}
		}
		dst, err := s.planner.KeyStageDir(root, job, base, opts.KeyStage)
		if err != nil {
			return bc, err
		}
		bc.keyStageDir = dst
	}
	return bc, nil
}

// buildBatch plans destinations, conflicts and superseding for every
// artifact in the batch.
func (s *FilingService) buildBatch(ctx context.Context, bc batchContext, arts []*Artifact) ([]*PlannedArtifact, error) {
	var cdDir, supDir string
	for _, a := range arts {
		if a.Kind == KindDrawing {
			var err error
			cdDir, err = s.planner.CurrentDrawings(bc.root)
			if err != nil {
				return nil, err
			}
			supDir = s.planner.SupersededDir(cdDir)
			break
		}
	}

	floor := bc.minRuleScore
	if floor < s.settings.AutoApplyScore {
		floor = s.settings.AutoApplyScore
	}

	planned := make([]*PlannedArtifact, 0, len(arts))
	for _, a := range arts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pa, err := s.planArtifact(bc, a, cdDir, supDir, floor)
		if err != nil {
			return nil, err
		}
		planned = append(planned, pa)
	}
	return planned, nil
}

// planArtifact works out one artifact's destinations and resolves its
// conflicts and supersede moves with the confirmer.
func (s *FilingService) planArtifact(bc batchContext, a *Artifact, cdDir, supDir string, ruleFloor float64) (*PlannedArtifact, error) {
	pa := &PlannedArtifact{Artifact: a, KeyStageDir: bc.keyStageDir}

	// Destination folders in write order. Drawings lead with the
	// current drawings folder unless the batch has a dated context,
	// which then takes the primary slot.
	var dirs []string
	switch {
	case a.Kind == KindDrawing && bc.datedDir != "":
		dirs = append(dirs, bc.datedDir, cdDir)
	case a.Kind == KindDrawing:
		dirs = append(dirs, cdDir)
	default:
		dirs = append(dirs, bc.datedDir)
	}
	dirs = append(dirs, bc.alsoDirs...)

	// The best live filing rule match adds its folder; weaker and
	// paused matches ride along as suggestions.
	if s.ruleSet != nil {
		applied := false
		for _, m := range s.ruleSet.Match(a.Name) {
			if !applied && !m.Rule.Paused && m.Score >= ruleFloor {
				dst, err := s.planner.ExpandLocation(bc.root, bc.job, m.Rule.Location, bc.direction, bc.date, bc.contact, bc.desc)
				if err != nil {
					s.logger.Warn("filing rule rejected", "keyword", m.Keyword, "location", m.Rule.Location, "error", err)
					continue
				}
				dirs = append(dirs, dst)
				applied = true
				continue
			}
			pa.Suggestions = append(pa.Suggestions, m)
		}
	}

	seen := make(map[string]bool)
	var dests []Destination
	for _, dirPath := range dirs {
		if dirPath == "" || seen[dirPath] {
			continue
		}
		seen[dirPath] = true
		if !WithinRoot(bc.root, dirPath) {
			pa.Err = &PathViolationError{Root: bc.root, Path: dirPath}
			return pa, nil
		}
		dests = append(dests, Destination{Dir: dirPath, FinalName: a.Name})
	}
	if len(dests) > 0 {
		dests[0].Primary = true
	}

	// What the current drawings folder already holds for this
	// drawing series.
	var superPlan SupersedePlan
	if a.Kind == KindDrawing && cdDir != "" {
		if d, ok := s.conv.Parse(a.Name, a.Job); ok {
			var err error
			superPlan, err = PlanSupersede(s.fsmgr, s.conv, cdDir, supDir, d)
			if err != nil {
				return nil, err
			}
		}
	}

	treeMatches, err := s.fsmgr.FindByName(bc.root, a.Name)
	if err != nil {
		return nil, fmt.Errorf("scanning for duplicates of %s: %w", a.Name, err)
	}

	for i := range dests {
		d := &dests[i]
		onCD := a.Kind == KindDrawing && d.Dir == cdDir

		matches := treeMatches
		if onCD && len(superPlan.SameRevision) > 0 {
			matches = append(append([]string(nil), matches...), superPlan.SameRevision...)
		}
		if len(matches) > 0 {
			suggestion, err := NextVersionName(s.fsmgr, d.Dir, a.Name)
			if err != nil {
				return nil, err
			}
			answer, err := s.confirm.ResolveConflict(ConflictQuery{
				Artifact:   a,
				Dir:        d.Dir,
				Matches:    matches,
				Suggestion: suggestion,
			})
			if err != nil {
				return nil, fmt.Errorf("resolving conflict: %w", err)
			}
			d.Matches = matches
			d.Decision = answer.Decision
			if answer.Decision == DecisionRename {
				d.FinalName = suggestion
				if answer.Name != "" {
					d.FinalName = answer.Name
				}
			}
		}

		if onCD && d.Decision != DecisionSkip {
			if superPlan.NewerExisting != "" {
				d.StaleIncoming = true
				s.logger.Warn("newer revision already filed", "drawing", a.Name, "existing", superPlan.NewerExisting)
			}
			if len(superPlan.Stale) > 0 {
				stale := make([]string, len(superPlan.Stale))
				for j, act := range superPlan.Stale {
					stale[j] = act.Current
				}
				ok, err := s.confirm.ConfirmSupersede(SupersedeQuery{
					Artifact:      a,
					Stale:         stale,
					NewerExisting: superPlan.NewerExisting,
				})
				if err != nil {
					return nil, fmt.Errorf("confirming supersede: %w", err)
				}
				if ok {
					d.Supersede = superPlan.Stale
				}
			}
		}
	}

	pa.Destinations = dests
	return pa, nil
}
