package ft

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Planner turns filing context into destination folders inside a
// project. It only reads the filesystem; folders it names are created
// at commit time.
type Planner struct {
	fsmgr    FilesystemManager
	settings Settings
}

// NewPlanner builds a Planner.
func NewPlanner(fsmgr FilesystemManager, settings Settings) *Planner {
	return &Planner{fsmgr: fsmgr, settings: settings}
}

// CurrentDrawings locates the project's current drawings folder,
// checking the project folder's children and grandchildren. When no
// folder matches, a default child path is returned for creation on
// commit.
func (p *Planner) CurrentDrawings(projectRoot string) (string, error) {
	dirs, err := p.fsmgr.ListDirs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("scanning project folder: %w", err)
	}
	for _, d := range dirs {
		if isCurrentDrawingsName(d) {
			return filepath.Join(projectRoot, d), nil
		}
	}
	for _, d := range dirs {
		sub, err := p.fsmgr.ListDirs(filepath.Join(projectRoot, d))
		if err != nil {
			continue
		}
		for _, s := range sub {
			if isCurrentDrawingsName(s) {
				return filepath.Join(projectRoot, d, s), nil
			}
		}
	}
	return filepath.Join(projectRoot, "Current Drawings"), nil
}

func isCurrentDrawingsName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "current") && strings.Contains(n, "drawing")
}

// SupersededDir picks the folder stale revisions move into: an
// existing child of the current drawings folder whose name mentions
// superseding, or a Superseded child to be created.
func (p *Planner) SupersededDir(currentDrawings string) string {
	if dirs, err := p.fsmgr.ListDirs(currentDrawings); err == nil {
		for _, d := range dirs {
			if strings.Contains(strings.ToLower(d), "supersede") {
				return filepath.Join(currentDrawings, d)
			}
		}
	}
	return filepath.Join(currentDrawings, "Superseded")
}

// DatedFolder builds the dated correspondence folder for one exchange.
// The imports-exports tree is discovered case-insensitively so an
// existing folder with different casing is reused.
func (p *Planner) DatedFolder(projectRoot, job string, dir Direction, date time.Time, contact, desc string) (string, error) {
	if dir == DirectionUnknown {
		return "", ErrAmbiguousDirection
	}
	rootName := strings.ReplaceAll(p.settings.DatedFolderRoot, "XXXX", job)
	if dirs, err := p.fsmgr.ListDirs(projectRoot); err == nil {
		for _, d := range dirs {
			if strings.EqualFold(d, rootName) {
				rootName = d
				break
			}
		}
	}

	segments := []string{projectRoot, rootName}
	if p.settings.MonthGrouping {
		segments = append(segments, date.Format("2006-01"))
	}
	segments = append(segments, p.expandTemplate(job, dir, date, contact, desc))
	return filepath.Join(segments...), nil
}

// expandTemplate fills the dated folder template and tidies up the
// separators empty placeholders leave behind.
func (p *Planner) expandTemplate(job string, dir Direction, date time.Time, contact, desc string) string {
	name := placeholderReplacer(job, dir, date, contact, desc).Replace(p.settings.DatedFolderTemplate)
	name = underscoreRunRe.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// ExpandLocation resolves a folder template from a filing rule or an
// extra-destination flag against the project folder. Relative paths
// are joined under the project folder; anything that lands outside it
// is rejected.
func (p *Planner) ExpandLocation(projectRoot, job, location string, dir Direction, date time.Time, contact, desc string) (string, error) {
	expanded := placeholderReplacer(job, dir, date, contact, desc).Replace(location)
	dst := expanded
	if !filepath.IsAbs(dst) {
		dst = filepath.Join(projectRoot, expanded)
	}
	dst = filepath.Clean(dst)
	if !WithinRoot(projectRoot, dst) {
		return "", &PathViolationError{Root: projectRoot, Path: dst}
	}
	return dst, nil
}

// KeyStageDir builds the archive folder for a key-stage snapshot.
// base is the archive folder template from the key-stage rule; empty
// falls back to a default under the project folder.
func (p *Planner) KeyStageDir(projectRoot, job, base, desc string) (string, error) {
	if base == "" {
		base = "XXXX_KEY-STAGES"
	}
	base = strings.ReplaceAll(base, "XXXX", job)
	name := job + "_KEYSTAGE"
	if t := SanitizeToken(desc); t != "" {
		name += "_" + t
	}
	dst := filepath.Join(projectRoot, base, name)
	if !WithinRoot(projectRoot, dst) {
		return "", &PathViolationError{Root: projectRoot, Path: dst}
	}
	return dst, nil
}

func placeholderReplacer(job string, dir Direction, date time.Time, contact, desc string) *strings.Replacer {
	return strings.NewReplacer(
		"XXXX", job,
		"DIRECTION", dir.String(),
		"DATE", date.Format("2006-01-02"),
		"MONTH", date.Format("2006-01"),
		"CONTACT", SanitizeToken(contact),
		"DESCRIPTION", SanitizeToken(desc),
	)
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	tokenStripRe    = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRunRe       = regexp.MustCompile(`-{2,}`)
	underscoreRunRe = regexp.MustCompile(`_{2,}`)
)

// SanitizeToken normalizes free text for use in a folder or file name:
// whitespace becomes dashes, anything outside letters, digits, dash
// and underscore is dropped, and the result is uppercased.
func SanitizeToken(s string) string {
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = tokenStripRe.ReplaceAllString(s, "")
	s = dashRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return strings.ToUpper(s)
}

// EmailPDFName names a PDF rendered from an email body.
func EmailPDFName(job string, date time.Time, desc string) string {
	name := fmt.Sprintf("%s_EMAIL_%s", job, date.Format("2006-01-02"))
	if t := SanitizeToken(desc); t != "" {
		name += "_" + t
	}
	return name + ".pdf"
}

// ScreenshotName names the nth embedded image saved from an outgoing
// email.
func ScreenshotName(job string, date time.Time, n int, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s_SCREENSHOT_%s_%03d.%s", job, date.Format("2006-01-02"), n, ext)
}
