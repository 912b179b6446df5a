package project

import (
	"path/filepath"
	"testing"
)

func TestNewIndex(t *testing.T) {
	folders := []string{
		"2506 - SMITH-EXTENSION",
		"2407_JONES-HOUSE",
		"2511 – RIVERSIDE STUDIO", // en dash
		"_FILING-WIDGET-TOOLS",
		"Archive",
		"2506 - DUPLICATE JOB",
	}

	ix, err := NewIndex("/projects", folders, "")
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	if got := ix.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	tests := []struct {
		job      string
		wantName string
		wantPath string
	}{
		{job: "2506", wantName: "SMITH-EXTENSION", wantPath: filepath.Join("/projects", "2506 - SMITH-EXTENSION")},
		{job: "2407", wantName: "JONES-HOUSE", wantPath: filepath.Join("/projects", "2407_JONES-HOUSE")},
		{job: "2511", wantName: "RIVERSIDE STUDIO", wantPath: filepath.Join("/projects", "2511 – RIVERSIDE STUDIO")},
	}

	for _, tt := range tests {
		t.Run(tt.job, func(t *testing.T) {
			p, ok := ix.Find(tt.job)
			if !ok {
				t.Fatalf("Find(%q) not found", tt.job)
			}
			if p.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", p.Name, tt.wantName)
			}
			if p.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", p.Path, tt.wantPath)
			}
		})
	}

	if _, ok := ix.Find("9999"); ok {
		t.Error("Find(9999) = found, want not found")
	}
}

func TestNewIndex_FirstFolderWins(t *testing.T) {
	ix, err := NewIndex("/projects", []string{"2506 - FIRST", "2506 - SECOND"}, "")
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	p, ok := ix.Find("2506")
	if !ok {
		t.Fatal("Find(2506) not found")
	}
	if p.Name != "FIRST" {
		t.Errorf("Name = %q, want %q", p.Name, "FIRST")
	}
}

func TestIndex_IsJobToken(t *testing.T) {
	ix, err := NewIndex("/projects", nil, "")
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	tests := []struct {
		token string
		want  bool
	}{
		{token: "2506", want: true},
		{token: "25061", want: true},
		{token: "250", want: false},
		{token: "250611", want: false},
		{token: "2506a", want: false},
		{token: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := ix.IsJobToken(tt.token); got != tt.want {
				t.Errorf("IsJobToken(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestIndex_Jobs_Sorted(t *testing.T) {
	ix, err := NewIndex("/projects", []string{"2511 - B", "2407 - A", "2506 - C"}, "")
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	jobs := ix.Jobs()
	want := []string{"2407", "2506", "2511"}
	if len(jobs) != len(want) {
		t.Fatalf("Jobs() len = %d, want %d", len(jobs), len(want))
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("Jobs()[%d] = %q, want %q", i, jobs[i], want[i])
		}
	}
}

func TestNewIndex_CustomPattern(t *testing.T) {
	ix, err := NewIndex("/projects", []string{"P-101 - ALPHA", "2506 - BETA"}, `P-\d{3}`)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	if !ix.Has("P-101") {
		t.Error("Has(P-101) = false, want true")
	}
	if ix.Has("2506") {
		t.Error("Has(2506) = true, want false")
	}
}
