package drawing

import "testing"

func newTestConvention(t *testing.T) *Convention {
	t.Helper()
	c, err := NewConvention(`\d{4,5}`, nil)
	if err != nil {
		t.Fatalf("NewConvention() error = %v", err)
	}
	return c
}

func TestConvention_Parse(t *testing.T) {
	c := newTestConvention(t)

	tests := []struct {
		name     string
		filename string
		job      string
		want     *Drawing
	}{
		{
			name:     "staged layout",
			filename: "2505_012_Proposed-Elevations_C01.pdf",
			job:      "2505",
			want: &Drawing{
				Job:      "2505",
				Number:   "012",
				Name:     "Proposed-Elevations",
				Revision: Revision{Layout: LayoutStaged, Stage: "C", Number: 1},
			},
		},
		{
			name:     "staged layout two letter stage",
			filename: "2505_012_Site-Plan_PL03.pdf",
			job:      "2505",
			want: &Drawing{
				Job:      "2505",
				Number:   "012",
				Name:     "Site-Plan",
				Revision: Revision{Layout: LayoutStaged, Stage: "PL", Number: 3},
			},
		},
		{
			name:     "dashed layout without revision",
			filename: "2505 - 012 - Proposed Elevations.pdf",
			job:      "2505",
			want: &Drawing{
				Job:      "2505",
				Number:   "012",
				Name:     "Proposed Elevations",
				Revision: Revision{Layout: LayoutLettered},
			},
		},
		{
			name:     "dashed layout with revision letter",
			filename: "2505-012A-Proposed Elevations.pdf",
			job:      "2505",
			want: &Drawing{
				Job:      "2505",
				Number:   "012",
				Name:     "Proposed Elevations",
				Revision: Revision{Layout: LayoutLettered, Letter: "A"},
			},
		},
		{
			name:     "rev suffix with letter",
			filename: "2505_site-plan_RevB.pdf",
			job:      "2505",
			want: &Drawing{
				Job:      "2505",
				Name:     "site-plan",
				Revision: Revision{Layout: LayoutLettered, Letter: "B"},
			},
		},
		{
			name:     "rev suffix with number",
			filename: "2505_drainage layout_rev3.pdf",
			job:      "2505",
			want: &Drawing{
				Job:      "2505",
				Name:     "drainage layout",
				Revision: Revision{Layout: LayoutNumeric, Number: 3},
			},
		},
		{
			name:     "uppercase extension",
			filename: "2505_012_Plan_W02.PDF",
			job:      "2505",
			want: &Drawing{
				Job:      "2505",
				Number:   "012",
				Name:     "Plan",
				Revision: Revision{Layout: LayoutStaged, Stage: "W", Number: 2},
			},
		},
		{
			name:     "any job accepted when job empty",
			filename: "2507_031_Drainage_F01.pdf",
			job:      "",
			want: &Drawing{
				Job:      "2507",
				Number:   "031",
				Name:     "Drainage",
				Revision: Revision{Layout: LayoutStaged, Stage: "F", Number: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Parse(tt.filename, tt.job)
			if !ok {
				t.Fatalf("Parse(%q, %q) = not a drawing, want a drawing", tt.filename, tt.job)
			}
			if got.Job != tt.want.Job {
				t.Errorf("Job = %q, want %q", got.Job, tt.want.Job)
			}
			if got.Number != tt.want.Number {
				t.Errorf("Number = %q, want %q", got.Number, tt.want.Number)
			}
			if got.Name != tt.want.Name {
				t.Errorf("Name = %q, want %q", got.Name, tt.want.Name)
			}
			if got.Revision != tt.want.Revision {
				t.Errorf("Revision = %+v, want %+v", got.Revision, tt.want.Revision)
			}
			if got.Filename != tt.filename {
				t.Errorf("Filename = %q, want %q", got.Filename, tt.filename)
			}
		})
	}
}

func TestConvention_Parse_Rejects(t *testing.T) {
	c := newTestConvention(t)

	tests := []struct {
		name     string
		filename string
		job      string
	}{
		{name: "plain document", filename: "meeting notes.pdf", job: "2505"},
		{name: "different job", filename: "2506_012_Plan_C01.pdf", job: "2505"},
		{name: "unknown stage marker", filename: "2505_012_Plan_X01.pdf", job: "2505"},
		{name: "rev word not a marker", filename: "2505_notes_Revision.pdf", job: "2505"},
		{name: "wrong extension", filename: "2505_012_Plan_C01.dwg", job: "2505"},
		{name: "single digit sheet", filename: "2505_1_Plan_C01.pdf", job: "2505"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := c.Parse(tt.filename, tt.job); ok {
				t.Errorf("Parse(%q, %q) = %+v, want no match", tt.filename, tt.job, got)
			}
		})
	}
}

func TestDrawing_BaseID(t *testing.T) {
	c := newTestConvention(t)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "numbered staged", filename: "2505_012_Proposed-Elevations_C01.pdf", want: "2505_012"},
		{name: "numbered dashed", filename: "2505 - 012A - Proposed Elevations.pdf", want: "2505_012"},
		{name: "rev suffix", filename: "2505_site-plan_RevB.pdf", want: "2505_site-plan"},
		{name: "rev suffix spaces fold to dashes", filename: "2505_Site Plan_RevA.pdf", want: "2505_site-plan"},
		{name: "rev suffix underscores fold to dashes", filename: "2505_site_plan_rev2.pdf", want: "2505_site-plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := c.Parse(tt.filename, "2505")
			if !ok {
				t.Fatalf("Parse(%q) = not a drawing", tt.filename)
			}
			if got := d.BaseID(); got != tt.want {
				t.Errorf("BaseID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDrawing_BaseID_SameDrawingAcrossLayouts(t *testing.T) {
	c := newTestConvention(t)

	a, ok := c.Parse("2505_012_Proposed-Elevations_C02.pdf", "2505")
	if !ok {
		t.Fatal("staged filename did not parse")
	}
	b, ok := c.Parse("2505 - 012 - Proposed Elevations.pdf", "2505")
	if !ok {
		t.Fatal("dashed filename did not parse")
	}
	if a.BaseID() != b.BaseID() {
		t.Errorf("BaseID() mismatch: %q vs %q", a.BaseID(), b.BaseID())
	}
}

func TestNewConvention_CustomJobPattern(t *testing.T) {
	c, err := NewConvention(`P-\d{3}`, nil)
	if err != nil {
		t.Fatalf("NewConvention() error = %v", err)
	}
	d, ok := c.Parse("P-105_021_Layout_C01.pdf", "P-105")
	if !ok {
		t.Fatal("Parse() = not a drawing, want a drawing")
	}
	if d.Job != "P-105" {
		t.Errorf("Job = %q, want %q", d.Job, "P-105")
	}
}

func TestNewConvention_EmptyJobPattern(t *testing.T) {
	if _, err := NewConvention("", nil); err == nil {
		t.Error("NewConvention(\"\") error = nil, want error")
	}
}
