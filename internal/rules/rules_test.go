package rules

import (
	"strings"
	"testing"
)

const sampleRules = `Keywords,Interchangeable_Descriptors,Folder_Location,Folder_Type,Subfolder_Structure,Colour,Pause
"Topographical Survey,topo",results,XXXX_SURVEYS/Topographical,survey,,#0ea5e9,
site plan|location plan,layout,XXXX_DRAWINGS/Site-Plans,,Drafts/Issued,#64748b,No
key stage,,XXXX_KEYSTAGE,key-stage,,,
old rule,,XXXX_OLD,,,,Yes
`

func TestParseRules(t *testing.T) {
	s, err := ParseRules(strings.NewReader(sampleRules))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}

	rules := s.Rules()

	if got := rules[0].Keywords; len(got) != 2 || got[0] != "topographical survey" || got[1] != "topo" {
		t.Errorf("rules[0].Keywords = %v, want lowercased pair", got)
	}
	if got := rules[0].Descriptors; len(got) != 1 || got[0] != "results" {
		t.Errorf("rules[0].Descriptors = %v, want [results]", got)
	}
	if rules[0].Location != "XXXX_SURVEYS/Topographical" {
		t.Errorf("rules[0].Location = %q", rules[0].Location)
	}

	// Pipe-separated keywords split like commas.
	if got := rules[1].Keywords; len(got) != 2 || got[0] != "site plan" || got[1] != "location plan" {
		t.Errorf("rules[1].Keywords = %v, want two keywords", got)
	}
	if rules[1].Subfolders != "Drafts/Issued" {
		t.Errorf("rules[1].Subfolders = %q", rules[1].Subfolders)
	}

	if !rules[3].Paused {
		t.Error("rules[3].Paused = false, want true")
	}
	if rules[0].Paused || rules[1].Paused {
		t.Error("unpaused rules reported as paused")
	}
}

func TestParseRules_MissingColumn(t *testing.T) {
	_, err := ParseRules(strings.NewReader("Names,Folder_Location\nsurvey,XXXX_SURVEYS\n"))
	if err == nil {
		t.Fatal("ParseRules() error = nil, want missing column error")
	}
	if !strings.Contains(err.Error(), "Keywords") {
		t.Errorf("error = %v, want mention of Keywords", err)
	}
}

func TestParseRules_SkipsIncompleteRows(t *testing.T) {
	csv := "Keywords,Folder_Location\nsurvey,XXXX_SURVEYS\norphan,\n,XXXX_LOST\n"
	s, err := ParseRules(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestParseRules_Empty(t *testing.T) {
	s, err := ParseRules(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestSet_KeyStage(t *testing.T) {
	s, err := ParseRules(strings.NewReader(sampleRules))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}

	ks, ok := s.KeyStage()
	if !ok {
		t.Fatal("KeyStage() = not found, want the key-stage rule")
	}
	if ks.Location != "XXXX_KEYSTAGE" {
		t.Errorf("KeyStage().Location = %q, want %q", ks.Location, "XXXX_KEYSTAGE")
	}

	none, err := ParseRules(strings.NewReader("Keywords,Folder_Location\nsurvey,XXXX_SURVEYS\n"))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if _, ok := none.KeyStage(); ok {
		t.Error("KeyStage() = found, want not found")
	}
}

func TestSet_ByType(t *testing.T) {
	s, err := ParseRules(strings.NewReader(sampleRules))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if got := s.ByType("KEY-STAGE"); len(got) != 1 {
		t.Errorf("ByType(KEY-STAGE) = %d rules, want 1", len(got))
	}
	if got := s.ByType("survey"); len(got) != 1 {
		t.Errorf("ByType(survey) = %d rules, want 1", len(got))
	}
}
