package rules

import (
	"math"
	"strings"
	"testing"
)

func mustParse(t *testing.T, csv string) *Set {
	t.Helper()
	s, err := ParseRules(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	return s
}

func TestSet_Match_Scores(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
topographical survey,,XXXX_SURVEYS
`)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "exact phrase", text: "Topographical Survey Results.pdf", want: 1.0},
		{name: "words out of order", text: "survey of topographical features.pdf", want: 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := s.Match(tt.text)
			if len(matches) != 1 {
				t.Fatalf("Match(%q) = %d matches, want 1", tt.text, len(matches))
			}
			if matches[0].Score != tt.want {
				t.Errorf("Score = %v, want %v", matches[0].Score, tt.want)
			}
		})
	}
}

func TestSet_Match_ShortFragmentIsNotAnAcronym(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
topographical survey,,XXXX_SURVEYS
`)
	if matches := s.Match("TS site.pdf"); len(matches) != 0 {
		t.Errorf("Match(TS site.pdf) = %d matches, want 0", len(matches))
	}
}

func TestSet_Match_Acronym(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
request for information,,XXXX_CORRESPONDENCE/RFIs
`)
	matches := s.Match("RFI response 047.pdf")
	if len(matches) != 1 {
		t.Fatalf("Match() = %d matches, want 1", len(matches))
	}
	if matches[0].Score != 0.95 {
		t.Errorf("Score = %v, want 0.95", matches[0].Score)
	}
}

func TestSet_Match_SquashedKeyword(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
site plan,,XXXX_DRAWINGS
`)
	matches := s.Match("siteplan layout.pdf")
	if len(matches) != 1 {
		t.Fatalf("Match() = %d matches, want 1", len(matches))
	}
	if matches[0].Score != 0.95 {
		t.Errorf("Score = %v, want 0.95", matches[0].Score)
	}
	if matches[0].Keyword != "site plan" {
		t.Errorf("Keyword = %q, want %q", matches[0].Keyword, "site plan")
	}
}

func TestSet_Match_DescriptorBonus(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
site plan,layout,XXXX_DRAWINGS
`)
	matches := s.Match("siteplan layout.pdf")
	if len(matches) != 1 {
		t.Fatalf("Match() = %d matches, want 1", len(matches))
	}
	if matches[0].Score != 1.0 {
		t.Errorf("Score = %v, want 1.0 after descriptor bonus", matches[0].Score)
	}
}

func TestSet_Match_DescriptorAloneDoesNotMatch(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
survey,results,XXXX_SURVEYS
`)
	if matches := s.Match("results only.pdf"); len(matches) != 0 {
		t.Errorf("Match() = %d matches, want 0 for descriptor-only text", len(matches))
	}
}

func TestSet_Match_Fuzzy(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
drainage,,XXXX_SERVICES/Drainage
`)
	matches := s.Match("drainge strategy.pdf")
	if len(matches) != 1 {
		t.Fatalf("Match() = %d matches, want 1", len(matches))
	}
	if got := matches[0].Score; got < fuzzyThreshold || got >= 0.95 {
		t.Errorf("Score = %v, want a fuzzy ratio in [%v, 0.95)", got, fuzzyThreshold)
	}
}

func TestSet_Match_SortedByScore(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location
site plan,,XXXX_DRAWINGS
survey,,XXXX_SURVEYS
`)
	matches := s.Match("siteplan survey.pdf")
	if len(matches) != 2 {
		t.Fatalf("Match() = %d matches, want 2", len(matches))
	}
	if matches[0].Score != 1.0 || matches[0].Rule.Location != "XXXX_SURVEYS" {
		t.Errorf("matches[0] = %+v, want the verbatim survey match first", matches[0])
	}
	if matches[1].Score != 0.95 {
		t.Errorf("matches[1].Score = %v, want 0.95", matches[1].Score)
	}
}

func TestSet_Match_PausedRuleStillSuggested(t *testing.T) {
	s := mustParse(t, `Keywords,Descriptors,Folder_Location,Pause
survey,,XXXX_SURVEYS,yes
`)
	matches := s.Match("survey notes.pdf")
	if len(matches) != 1 {
		t.Fatalf("Match() = %d matches, want 1", len(matches))
	}
	if !matches[0].Rule.Paused {
		t.Error("Rule.Paused = false, want true")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "drainage", b: "drainage", want: 1.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
		{name: "dropped letter", a: "drainage", b: "drainge", want: 14.0 / 15.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
