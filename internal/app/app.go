package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ft-go/internal/config"
	"ft-go/internal/database"
	"ft-go/internal/email"
	"ft-go/internal/fs"
	"ft-go/internal/ft"
	"ft-go/internal/model"
	"ft-go/internal/project"
	"ft-go/internal/rules"
)

// toolsFolderFragment marks the projects-root folder that holds the
// practice's mapping and rules CSVs.
const toolsFolderFragment = "FILING-WIDGET-TOOLS"

// FTApp is the application layer between the CLI and FilingService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the DB lifecycle on Close.
type FTApp struct {
	cfg     *config.Config
	db      ft.Database
	fsmgr   ft.FilesystemManager
	index   *project.Index
	mapping *project.Mapping
	ruleSet *rules.Set
	service *ft.FilingService
	logger  *slog.Logger
	logFile *os.File
}

// NewFTApp creates a fully wired FTApp from the given config. confirm
// decides how unresolvable questions are answered; interactive commands
// pass a terminal prompter, the watcher passes the conservative
// auto-policy. The caller must call Close when done.
func NewFTApp(cfg *config.Config, confirm ft.Confirmer) (*FTApp, error) {
	if cfg.ProjectsRoot == "" {
		return nil, fmt.Errorf("projects_root is not configured")
	}

	fsmgr := fs.NewOSFilesystemManager()

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	folders, err := fsmgr.ListDirs(cfg.ProjectsRoot)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("listing projects root: %w", err)
	}

	index, err := project.NewIndex(cfg.ProjectsRoot, folders, cfg.Filing.JobPattern)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("indexing projects: %w", err)
	}

	mapping, ruleSet := loadTools(fsmgr, cfg.ProjectsRoot, folders, logger)

	svc, err := ft.NewFilingService(db, fsmgr, confirm, nil, index, mapping, ruleSet,
		&slogAdapter{l: logger}, ft.RealClock{}, ft.UUIDGenerator{}, settingsFromConfig(cfg))
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating filing service: %w", err)
	}

	return &FTApp{
		cfg:     cfg,
		db:      db,
		fsmgr:   fsmgr,
		index:   index,
		mapping: mapping,
		ruleSet: ruleSet,
		service: svc,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// loadTools locates the tools folder among the projects root's children
// and loads the reference mapping and filing rules from it. A missing
// folder or file just means no mapping or rules; a file that fails to
// parse is logged and skipped.
func loadTools(fsmgr ft.FilesystemManager, root string, folders []string, logger *slog.Logger) (*project.Mapping, *rules.Set) {
	var toolsDir string
	for _, name := range folders {
		if strings.Contains(strings.ToUpper(name), toolsFolderFragment) {
			toolsDir = filepath.Join(root, name)
			break
		}
	}
	if toolsDir == "" {
		return nil, nil
	}

	var mapping *project.Mapping
	if f, err := fsmgr.Open(filepath.Join(toolsDir, project.MappingFileName)); err == nil {
		m, perr := project.ParseMapping(f)
		f.Close()
		if perr != nil {
			logger.Warn("ignoring reference mapping", "error", perr)
		} else {
			mapping = &m
		}
	}

	var ruleSet *rules.Set
	if f, err := fsmgr.Open(filepath.Join(toolsDir, rules.RulesFileName)); err == nil {
		set, perr := rules.ParseRules(f)
		f.Close()
		if perr != nil {
			logger.Warn("ignoring filing rules", "error", perr)
		} else {
			ruleSet = set
		}
	}

	return mapping, ruleSet
}

// settingsFromConfig merges the config file's filing and email sections
// over the built-in defaults. Zero values keep the default.
func settingsFromConfig(cfg *config.Config) ft.Settings {
	s := ft.DefaultSettings()

	if cfg.Filing.JobPattern != "" {
		s.JobPattern = cfg.Filing.JobPattern
	}
	if len(cfg.Filing.StageOrder) > 0 {
		s.StageOrdering = cfg.Filing.StageOrder
	}
	if cfg.Filing.DatedFolderRoot != "" {
		s.DatedFolderRoot = cfg.Filing.DatedFolderRoot
	}
	if cfg.Filing.DatedFolderTemplate != "" {
		s.DatedFolderTemplate = cfg.Filing.DatedFolderTemplate
	}
	if cfg.Filing.MonthGrouping != nil {
		s.MonthGrouping = *cfg.Filing.MonthGrouping
	}
	if cfg.Filing.DestinationCap != 0 {
		s.DestinationCap = cfg.Filing.DestinationCap
	}
	if cfg.Filing.AutoApplyScore != 0 {
		s.AutoApplyScore = cfg.Filing.AutoApplyScore
	}
	s.PreferMappingOverPattern = cfg.Filing.PreferMapping

	if len(cfg.Email.OwnAddresses) > 0 {
		s.OwnAddresses = cfg.Email.OwnAddresses
	}
	if cfg.Email.MinAttachmentSize != 0 {
		s.MinAttachmentSize = cfg.Email.MinAttachmentSize
	}
	if cfg.Email.MinEmbeddedImageSize != 0 {
		s.MinEmbeddedImageSize = cfg.Email.MinEmbeddedImageSize
	}

	return s
}

// PlanFiles plans a batch of loose files for filing. The project stays
// locked until the plan is committed or abandoned.
func (a *FTApp) PlanFiles(ctx context.Context, paths []string, opts ft.FileOptions) (*ft.Plan, error) {
	return a.service.PlanFiles(ctx, paths, opts)
}

// PlanEmailFile parses the email file at the given path and plans it for
// filing. A nil plan with a nil error means the message was already
// filed and refiling was declined.
func (a *FTApp) PlanEmailFile(ctx context.Context, path string, opts ft.EmailOptions) (*ft.Plan, error) {
	f, err := a.fsmgr.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening email file: %w", err)
	}
	defer f.Close()

	msg, err := email.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing email: %w", err)
	}
	return a.service.PlanEmail(ctx, msg, opts)
}

// Commit executes a plan's writes and records the outcome.
func (a *FTApp) Commit(plan *ft.Plan) (*ft.BatchResult, error) {
	return a.service.Commit(plan)
}

// Abandon releases a plan without filing anything.
func (a *FTApp) Abandon(plan *ft.Plan) {
	a.service.Abandon(plan)
}

// GetHistory returns the most recent filing operations.
func (a *FTApp) GetHistory(limit int) ([]*model.FilingOperation, error) {
	return a.service.GetHistory(limit)
}

// GetLog returns recent audit entries, optionally filtered to one job.
func (a *FTApp) GetLog(job string, limit int) ([]*model.LogEntry, error) {
	return a.service.GetLog(job, limit)
}

// GetEmails returns filed-email records, optionally filtered to one job.
func (a *FTApp) GetEmails(job string, limit int) ([]*model.EmailRecord, error) {
	return a.service.GetEmails(job, limit)
}

// GetContacts returns the contacts recorded against a job.
func (a *FTApp) GetContacts(job string) ([]*model.Contact, error) {
	return a.service.GetContacts(job)
}

// Projects returns all indexed projects, ordered by job number.
func (a *FTApp) Projects() []project.Project {
	return a.index.Projects()
}

// Config returns the config the app was built from.
func (a *FTApp) Config() *config.Config {
	return a.cfg
}

// Rules returns the loaded filing rules in file order. Empty when the
// tools folder has no rules file.
func (a *FTApp) Rules() []rules.Rule {
	if a.ruleSet == nil {
		return nil
	}
	return a.ruleSet.Rules()
}

// Close closes the database and the log file.
func (a *FTApp) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
