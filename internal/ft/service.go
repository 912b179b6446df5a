// Package ft is the filing engine: it resolves which project an item
// belongs to, plans where inside the project it should land, and
// commits the resulting writes with a full audit trail.
package ft

import (
	"fmt"
	"sync"

	"ft-go/internal/drawing"
	"ft-go/internal/project"
	"ft-go/internal/rules"
)

// FilingService is the orchestration layer that coordinates resolution,
// classification, planning and filing for the CLI and the watcher.
//
// Filing is two-phase: a Plan* method resolves every question up front,
// holding the project lock, and Commit performs the writes without
// asking anything further. A plan that is not committed must be
// abandoned to release its project.
type FilingService struct {
	database   Database
	fsmgr      FilesystemManager
	confirm    Confirmer
	renderer   Renderer
	index      *project.Index
	mapping    *project.Mapping
	ruleSet    *rules.Set
	resolver   *Resolver
	classifier *Classifier
	planner    *Planner
	conv       *drawing.Convention
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	settings   Settings

	mu   sync.Mutex
	busy map[string]bool
}

// NewFilingService creates a FilingService with the provided
// dependencies. mapping, ruleSet and renderer may be nil; a nil
// renderer disables PDF generation. confirm decides everything
// planning cannot; pass AutoPolicy for unattended use.
func NewFilingService(database Database, fsmgr FilesystemManager, confirm Confirmer, renderer Renderer, index *project.Index, mapping *project.Mapping, ruleSet *rules.Set, logger Logger, clock Clock, idgen IDGenerator, settings Settings) (*FilingService, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	if confirm == nil {
		confirm = AutoPolicy{}
	}

	resolver, err := NewResolver(index, mapping, settings.JobPattern, settings.PreferMappingOverPattern)
	if err != nil {
		return nil, err
	}
	conv, err := drawing.NewConvention(orDefault(settings.JobPattern, project.DefaultJobPattern), settings.StageOrdering)
	if err != nil {
		return nil, fmt.Errorf("compiling drawing convention: %w", err)
	}

	return &FilingService{
		database:   database,
		fsmgr:      fsmgr,
		confirm:    confirm,
		renderer:   renderer,
		index:      index,
		mapping:    mapping,
		ruleSet:    ruleSet,
		resolver:   resolver,
		classifier: NewClassifier(conv, settings.OwnAddresses),
		planner:    NewPlanner(fsmgr, settings),
		conv:       conv,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		settings:   settings,
		busy:       make(map[string]bool),
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// acquire takes the per-project lock without blocking. A project with
// an active plan stays locked until that plan is committed or
// abandoned.
func (s *FilingService) acquire(projectRoot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[projectRoot] {
		return fmt.Errorf("%s: %w", projectRoot, ErrProjectBusy)
	}
	s.busy[projectRoot] = true
	return nil
}

func (s *FilingService) release(projectRoot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, projectRoot)
}

// Abandon discards a plan without writing anything and releases its
// project. Abandoning leaves no trace: nothing is logged for a plan
// that never committed.
func (s *FilingService) Abandon(plan *Plan) {
	if plan == nil || plan.released {
		return
	}
	plan.released = true
	s.release(plan.ProjectRoot)
	s.logger.Debug("plan abandoned", "operation", plan.OperationID, "job", plan.Job)
}

// confirmJob asks for a job number until the answer names a known
// project or the caller gives up. An empty answer abandons.
func (s *FilingService) confirmJob(q IdentifierQuery) (Resolution, error) {
	for attempt := 0; attempt < 3; attempt++ {
		answer, err := s.confirm.ResolveIdentifier(q)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolving job number: %w", err)
		}
		if answer == "" {
			return Resolution{}, ErrUnresolvedIdentifier
		}
		res := s.resolver.FromReference(answer)
		if res.Job != "" && s.index.Has(res.Job) {
			return res, nil
		}
		q.Resolved = answer
	}
	return Resolution{}, ErrUnresolvedIdentifier
}

// confirmDirection asks which way the exchange flowed. An unknown
// answer abandons.
func (s *FilingService) confirmDirection(q DirectionQuery) (Direction, error) {
	d, err := s.confirm.ResolveDirection(q)
	if err != nil {
		return DirectionUnknown, fmt.Errorf("resolving direction: %w", err)
	}
	if d == DirectionUnknown {
		return DirectionUnknown, ErrAmbiguousDirection
	}
	return d, nil
}

// Project returns the indexed project for a job number.
func (s *FilingService) Project(job string) (project.Project, bool) {
	return s.index.Find(job)
}

// Settings returns the service's effective settings.
func (s *FilingService) Settings() Settings {
	return s.settings
}
