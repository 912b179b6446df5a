// Package drawing recognizes architectural drawing filenames and orders
// their revision markers.
package drawing

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultStages is the stage progression used when no custom order is
// configured, oldest stage first.
var DefaultStages = []string{"F", "PL", "P", "W", "C"}

// Drawing is a single parsed drawing filename.
type Drawing struct {
	Job      string
	Number   string
	Name     string
	Revision Revision
	Filename string
}

// BaseID identifies the drawing independent of its revision. Two files
// with the same BaseID are revisions of the same drawing.
func (d *Drawing) BaseID() string {
	if d.Number != "" {
		return d.Job + "_" + d.Number
	}
	return d.Job + "_" + slugify(d.Name)
}

// Convention parses drawing filenames for one numbering scheme.
// Three layouts are recognized:
//
//	2505_012_Proposed-Elevations_C01.pdf   (stage marker)
//	2505 - 012A - Proposed Elevations.pdf  (revision letter)
//	2505_site-plan_RevB.pdf                (rev suffix)
type Convention struct {
	stages    []string
	staged    *regexp.Regexp
	dashed    *regexp.Regexp
	revSuffix *regexp.Regexp
}

// NewConvention compiles the layout patterns. jobPattern matches a bare
// job number. stages is the stage progression oldest first; pass nil for
// DefaultStages.
func NewConvention(jobPattern string, stages []string) (*Convention, error) {
	if jobPattern == "" {
		return nil, fmt.Errorf("job pattern is empty")
	}
	if len(stages) == 0 {
		stages = DefaultStages
	}

	staged, err := regexp.Compile(`^(` + jobPattern + `)_(\d{2,3})_(.+)_(` + stageAlternation(stages) + `)(\d{2})\.(?i:pdf)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling staged layout: %w", err)
	}
	dashed, err := regexp.Compile(`^(` + jobPattern + `)\s*-\s*(\d{2,3})([A-Z])?\s*-\s*(.+)\.(?i:pdf)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling dashed layout: %w", err)
	}
	revSuffix, err := regexp.Compile(`^(` + jobPattern + `)_(.+)_[Rr]ev([A-Z]+|\d+)\.(?i:pdf)$`)
	if err != nil {
		return nil, fmt.Errorf("compiling rev-suffix layout: %w", err)
	}

	return &Convention{
		stages:    append([]string(nil), stages...),
		staged:    staged,
		dashed:    dashed,
		revSuffix: revSuffix,
	}, nil
}

// Stages returns the configured stage progression, oldest first.
func (c *Convention) Stages() []string {
	return append([]string(nil), c.stages...)
}

// Parse reports whether filename is a drawing. When job is non-empty a
// drawing belonging to a different job does not match.
func (c *Convention) Parse(filename, job string) (*Drawing, bool) {
	if m := c.staged.FindStringSubmatch(filename); m != nil {
		if job != "" && m[1] != job {
			return nil, false
		}
		n, _ := strconv.Atoi(m[5])
		return &Drawing{
			Job:      m[1],
			Number:   m[2],
			Name:     m[3],
			Revision: Revision{Layout: LayoutStaged, Stage: m[4], Number: n},
			Filename: filename,
		}, true
	}

	if m := c.dashed.FindStringSubmatch(filename); m != nil {
		if job != "" && m[1] != job {
			return nil, false
		}
		return &Drawing{
			Job:      m[1],
			Number:   m[2],
			Name:     strings.TrimSpace(m[4]),
			Revision: Revision{Layout: LayoutLettered, Letter: m[3]},
			Filename: filename,
		}, true
	}

	if m := c.revSuffix.FindStringSubmatch(filename); m != nil {
		if job != "" && m[1] != job {
			return nil, false
		}
		rev := Revision{Layout: LayoutLettered, Letter: m[3]}
		if n, err := strconv.Atoi(m[3]); err == nil {
			rev = Revision{Layout: LayoutNumeric, Number: n}
		}
		return &Drawing{
			Job:      m[1],
			Name:     m[2],
			Revision: rev,
			Filename: filename,
		}, true
	}

	return nil, false
}

// Compare orders two revision markers under this convention's stage
// progression. It returns -1 when a is older than b, 0 when they are the
// same marker, and 1 when a is newer.
func (c *Convention) Compare(a, b Revision) int {
	return CompareRevisions(a, b, c.stages)
}

// stageAlternation builds a regexp alternation with longer markers
// first, so that PL is never read as P followed by a stray letter.
func stageAlternation(stages []string) string {
	quoted := make([]string, len(stages))
	for i, s := range stages {
		quoted[i] = regexp.QuoteMeta(s)
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		return len(quoted[i]) > len(quoted[j])
	})
	return strings.Join(quoted, "|")
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteRune('-')
		}
	}
	return b.String()
}
