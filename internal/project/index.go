package project

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DefaultJobPattern matches the practice's job numbering scheme.
const DefaultJobPattern = `\d{4,5}`

// Project is one project folder under the projects root.
type Project struct {
	Job  string // canonical job number, e.g. "2506"
	Name string // project name from the folder, e.g. "SMITH-EXTENSION"
	Path string // absolute folder path
}

// Index is the set of known projects, built from the projects root's
// direct children. It is immutable once built.
type Index struct {
	root     string
	jobRe    *regexp.Regexp
	folderRe *regexp.Regexp
	byJob    map[string]Project
	jobs     []string
}

// NewIndex builds an Index from the projects root path and the names of
// its direct child folders. Folder names must lead with a job number
// followed by a dash, en dash or underscore separator; anything else is
// skipped. The first folder wins when two share a job number.
func NewIndex(root string, folders []string, jobPattern string) (*Index, error) {
	if jobPattern == "" {
		jobPattern = DefaultJobPattern
	}
	jobRe, err := regexp.Compile(`^(?:` + jobPattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling job pattern: %w", err)
	}
	folderRe, err := regexp.Compile(`^(` + jobPattern + `)\s*[-–_]\s*(.+)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling folder pattern: %w", err)
	}

	ix := &Index{
		root:     root,
		jobRe:    jobRe,
		folderRe: folderRe,
		byJob:    make(map[string]Project),
	}

	for _, name := range folders {
		job, projName, ok := ix.parseFolderName(name)
		if !ok {
			continue
		}
		if _, exists := ix.byJob[job]; exists {
			continue
		}
		ix.byJob[job] = Project{
			Job:  job,
			Name: projName,
			Path: filepath.Join(root, name),
		}
		ix.jobs = append(ix.jobs, job)
	}
	sort.Strings(ix.jobs)

	return ix, nil
}

// parseFolderName splits a folder name into job number and project name.
func (ix *Index) parseFolderName(name string) (job, projName string, ok bool) {
	m := ix.folderRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// Root returns the projects root path the index was built from.
func (ix *Index) Root() string {
	return ix.root
}

// Find returns the project for a job number.
func (ix *Index) Find(job string) (Project, bool) {
	p, ok := ix.byJob[job]
	return p, ok
}

// Has reports whether the job number names a known project.
func (ix *Index) Has(job string) bool {
	_, ok := ix.byJob[job]
	return ok
}

// IsJobToken reports whether s matches the configured job pattern exactly.
func (ix *Index) IsJobToken(s string) bool {
	return ix.jobRe.MatchString(s)
}

// Jobs returns all known job numbers in sorted order.
func (ix *Index) Jobs() []string {
	out := make([]string, len(ix.jobs))
	copy(out, ix.jobs)
	return out
}

// Projects returns all known projects, ordered by job number.
func (ix *Index) Projects() []Project {
	out := make([]Project, 0, len(ix.jobs))
	for _, job := range ix.jobs {
		out = append(out, ix.byJob[job])
	}
	return out
}

// Len returns the number of known projects.
func (ix *Index) Len() int {
	return len(ix.jobs)
}
