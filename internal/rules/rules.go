// Package rules loads the practice's filing rules and scores artifact
// names against them.
package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RulesFileName is the filing rules CSV inside the tools folder.
const RulesFileName = "filing_rules.csv"

// Rule is one row of the filing rules CSV. Keywords and Descriptors are
// stored lowercased. Location is a folder template relative to the
// project root and may contain placeholder tokens. A paused rule still
// produces suggestions but is never applied automatically.
type Rule struct {
	Keywords    []string
	Descriptors []string
	Location    string
	Type        string
	Subfolders  string
	Colour      string
	Paused      bool
}

// Set is a parsed filing rules file.
type Set struct {
	rules []Rule
}

// ParseRules reads the filing rules CSV. Columns are located by header
// name, so column order does not matter. Keywords and Folder_Location
// are required; the rest are optional.
func ParseRules(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading filing rules: %w", err)
	}
	if len(records) == 0 {
		return &Set{}, nil
	}

	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["keywords"]; !ok {
		return nil, fmt.Errorf("filing rules: missing Keywords column")
	}
	if _, ok := cols["folder_location"]; !ok {
		return nil, fmt.Errorf("filing rules: missing Folder_Location column")
	}

	field := func(row []string, names ...string) string {
		for _, name := range names {
			if i, ok := cols[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	var set Set
	for _, row := range records[1:] {
		keywords := splitList(field(row, "keywords"))
		location := field(row, "folder_location")
		if len(keywords) == 0 || location == "" {
			continue
		}
		set.rules = append(set.rules, Rule{
			Keywords:    keywords,
			Descriptors: splitList(field(row, "descriptors", "interchangeable_descriptors")),
			Location:    location,
			Type:        field(row, "folder_type"),
			Subfolders:  field(row, "subfolder_structure"),
			Colour:      field(row, "colour"),
			Paused:      truthy(field(row, "pause")),
		})
	}
	return &set, nil
}

func (s *Set) Len() int {
	return len(s.rules)
}

// Rules returns the loaded rules in file order.
func (s *Set) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// ByType returns every rule whose folder type equals t, compared
// case-insensitively.
func (s *Set) ByType(t string) []Rule {
	var out []Rule
	for _, r := range s.rules {
		if strings.EqualFold(r.Type, t) {
			out = append(out, r)
		}
	}
	return out
}

// KeyStage returns the rule naming the key-stage archive base, if the
// rules file defines one.
func (s *Set) KeyStage() (Rule, bool) {
	for _, r := range s.rules {
		if strings.EqualFold(r.Type, "key-stage") {
			return r, true
		}
	}
	return Rule{}, false
}

// splitList splits a keyword or descriptor cell on commas and pipes,
// lowercasing each entry.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|'
	}) {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
