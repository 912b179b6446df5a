package project

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// MappingFileName is the reference-mapping table's filename inside the
// tools folder.
const MappingFileName = "project_mapping.csv"

// mappingRef is one custom reference → local job pair.
type mappingRef struct {
	custom string
	job    string
}

// Mapping is the read-only reference-mapping table: external references
// (e.g. a consultant's own project numbers) mapped to local job numbers.
type Mapping struct {
	refs []mappingRef
}

// ParseMapping reads a mapping table from r. The expected format is CSV
// with the header row `custom_reference,local_job`. Rows with an empty
// reference or job are skipped.
func ParseMapping(r io.Reader) (Mapping, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Mapping{}, nil
	}
	if err != nil {
		return Mapping{}, fmt.Errorf("reading mapping header: %w", err)
	}
	if len(header) < 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "custom_reference") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "local_job") {
		return Mapping{}, fmt.Errorf("unexpected mapping header %v, want custom_reference,local_job", header)
	}

	var m Mapping
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Mapping{}, fmt.Errorf("reading mapping row: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		custom := strings.TrimSpace(rec[0])
		job := strings.TrimSpace(rec[1])
		if custom == "" || job == "" {
			continue
		}
		m.refs = append(m.refs, mappingRef{custom: custom, job: job})
	}

	return m, nil
}

// Len returns the number of mapping entries.
func (m Mapping) Len() int {
	return len(m.refs)
}

// Lookup resolves an exact custom reference, case-insensitively.
func (m Mapping) Lookup(custom string) (string, bool) {
	custom = strings.TrimSpace(custom)
	for _, ref := range m.refs {
		if strings.EqualFold(ref.custom, custom) {
			return ref.job, true
		}
	}
	return "", false
}

// MatchPrefix resolves a filename that leads with a custom reference.
// The reference must be followed by a separator (space, underscore or
// dash) or end the name outright, so "B-012" does not match "B-0123_x".
func (m Mapping) MatchPrefix(filename string) (string, bool) {
	for _, ref := range m.refs {
		re, err := regexp.Compile(`(?i)^` + regexp.QuoteMeta(ref.custom) + `(?:[\s_\-]|$)`)
		if err != nil {
			continue
		}
		if re.MatchString(filename) {
			return ref.job, true
		}
	}
	return "", false
}

// FindInText resolves the first custom reference appearing anywhere in
// the text, case-insensitively. Longer references are tried first so
// "B-0123" wins over "B-012" when both are mapped.
func (m Mapping) FindInText(text string) (string, bool) {
	lower := strings.ToLower(text)

	best := -1
	for i, ref := range m.refs {
		if !strings.Contains(lower, strings.ToLower(ref.custom)) {
			continue
		}
		if best == -1 || len(ref.custom) > len(m.refs[best].custom) {
			best = i
		}
	}
	if best == -1 {
		return "", false
	}
	return m.refs[best].job, true
}
