package ft_test

import (
	"errors"
	"testing"
	"time"

	"ft-go/internal/ft"
	"ft-go/internal/testutil"
)

var plannerDate = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func newPlanner(fsmgr ft.FilesystemManager) *ft.Planner {
	return ft.NewPlanner(fsmgr, ft.DefaultSettings())
}

func TestPlanner_CurrentDrawings(t *testing.T) {
	t.Run("finds direct child", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/projects/2507_HOUSE/Current Drawings")

		got, err := newPlanner(fsmgr).CurrentDrawings("/projects/2507_HOUSE")
		if err != nil {
			t.Fatalf("CurrentDrawings() error = %v", err)
		}
		if got != "/projects/2507_HOUSE/Current Drawings" {
			t.Errorf("CurrentDrawings() = %q", got)
		}
	})

	t.Run("finds grandchild", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/projects/2507_HOUSE/Drawings/2507_CURRENT-DRAWINGS")
		fsmgr.AddDirectory("/projects/2507_HOUSE/Admin")

		got, err := newPlanner(fsmgr).CurrentDrawings("/projects/2507_HOUSE")
		if err != nil {
			t.Fatalf("CurrentDrawings() error = %v", err)
		}
		if got != "/projects/2507_HOUSE/Drawings/2507_CURRENT-DRAWINGS" {
			t.Errorf("CurrentDrawings() = %q", got)
		}
	})

	t.Run("defaults when absent", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/projects/2507_HOUSE")

		got, err := newPlanner(fsmgr).CurrentDrawings("/projects/2507_HOUSE")
		if err != nil {
			t.Fatalf("CurrentDrawings() error = %v", err)
		}
		if got != "/projects/2507_HOUSE/Current Drawings" {
			t.Errorf("CurrentDrawings() = %q", got)
		}
	})
}

func TestPlanner_SupersededDir(t *testing.T) {
	t.Run("reuses existing folder", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/projects/2507_HOUSE/Current Drawings/2507_SUPERSEDED")

		got := newPlanner(fsmgr).SupersededDir("/projects/2507_HOUSE/Current Drawings")
		if got != "/projects/2507_HOUSE/Current Drawings/2507_SUPERSEDED" {
			t.Errorf("SupersededDir() = %q", got)
		}
	})

	t.Run("defaults when absent", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/projects/2507_HOUSE/Current Drawings")

		got := newPlanner(fsmgr).SupersededDir("/projects/2507_HOUSE/Current Drawings")
		if got != "/projects/2507_HOUSE/Current Drawings/Superseded" {
			t.Errorf("SupersededDir() = %q", got)
		}
	})
}

func TestPlanner_DatedFolder(t *testing.T) {
	root := "/projects/2507_HOUSE"

	t.Run("builds month-grouped folder", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory(root)

		got, err := newPlanner(fsmgr).DatedFolder(root, "2507", ft.DirectionIn, plannerDate, "Planning Office", "window quote")
		if err != nil {
			t.Fatalf("DatedFolder() error = %v", err)
		}
		want := root + "/2507_IMPORTS-EXPORTS/2026-03/2507_IN_2026-03-10_PLANNING-OFFICE_WINDOW-QUOTE"
		if got != want {
			t.Errorf("DatedFolder() = %q, want %q", got, want)
		}
	})

	t.Run("collapses empty placeholders", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory(root)

		got, err := newPlanner(fsmgr).DatedFolder(root, "2507", ft.DirectionOut, plannerDate, "", "")
		if err != nil {
			t.Fatalf("DatedFolder() error = %v", err)
		}
		want := root + "/2507_IMPORTS-EXPORTS/2026-03/2507_OUT_2026-03-10"
		if got != want {
			t.Errorf("DatedFolder() = %q, want %q", got, want)
		}
	})

	t.Run("reuses existing root with different casing", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory(root + "/2507_Imports-Exports")

		got, err := newPlanner(fsmgr).DatedFolder(root, "2507", ft.DirectionIn, plannerDate, "Builder", "")
		if err != nil {
			t.Fatalf("DatedFolder() error = %v", err)
		}
		want := root + "/2507_Imports-Exports/2026-03/2507_IN_2026-03-10_BUILDER"
		if got != want {
			t.Errorf("DatedFolder() = %q, want %q", got, want)
		}
	})

	t.Run("no month grouping", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory(root)
		settings := ft.DefaultSettings()
		settings.MonthGrouping = false

		got, err := ft.NewPlanner(fsmgr, settings).DatedFolder(root, "2507", ft.DirectionIn, plannerDate, "Builder", "")
		if err != nil {
			t.Fatalf("DatedFolder() error = %v", err)
		}
		want := root + "/2507_IMPORTS-EXPORTS/2507_IN_2026-03-10_BUILDER"
		if got != want {
			t.Errorf("DatedFolder() = %q, want %q", got, want)
		}
	})

	t.Run("unknown direction refused", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory(root)

		_, err := newPlanner(fsmgr).DatedFolder(root, "2507", ft.DirectionUnknown, plannerDate, "", "")
		if !errors.Is(err, ft.ErrAmbiguousDirection) {
			t.Errorf("DatedFolder() error = %v, want ErrAmbiguousDirection", err)
		}
	})
}

func TestPlanner_ExpandLocation(t *testing.T) {
	root := "/projects/2507_HOUSE"
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory(root)
	p := newPlanner(fsmgr)

	t.Run("joins relative location under project", func(t *testing.T) {
		got, err := p.ExpandLocation(root, "2507", "Admin/Quotes", ft.DirectionIn, plannerDate, "", "")
		if err != nil {
			t.Fatalf("ExpandLocation() error = %v", err)
		}
		if got != root+"/Admin/Quotes" {
			t.Errorf("ExpandLocation() = %q", got)
		}
	})

	t.Run("expands placeholders", func(t *testing.T) {
		got, err := p.ExpandLocation(root, "2507", "XXXX_ADMIN/MONTH", ft.DirectionIn, plannerDate, "", "")
		if err != nil {
			t.Fatalf("ExpandLocation() error = %v", err)
		}
		if got != root+"/2507_ADMIN/2026-03" {
			t.Errorf("ExpandLocation() = %q", got)
		}
	})

	t.Run("rejects escape from project folder", func(t *testing.T) {
		_, err := p.ExpandLocation(root, "2507", "../2610_OTHER/Admin", ft.DirectionIn, plannerDate, "", "")
		var pv *ft.PathViolationError
		if !errors.As(err, &pv) {
			t.Fatalf("ExpandLocation() error = %v, want PathViolationError", err)
		}
	})

	t.Run("rejects absolute path outside project", func(t *testing.T) {
		_, err := p.ExpandLocation(root, "2507", "/tmp/elsewhere", ft.DirectionIn, plannerDate, "", "")
		var pv *ft.PathViolationError
		if !errors.As(err, &pv) {
			t.Fatalf("ExpandLocation() error = %v, want PathViolationError", err)
		}
	})
}

func TestPlanner_KeyStageDir(t *testing.T) {
	root := "/projects/2507_HOUSE"
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory(root)
	p := newPlanner(fsmgr)

	t.Run("default base", func(t *testing.T) {
		got, err := p.KeyStageDir(root, "2507", "", "planning submission")
		if err != nil {
			t.Fatalf("KeyStageDir() error = %v", err)
		}
		if got != root+"/2507_KEY-STAGES/2507_KEYSTAGE_PLANNING-SUBMISSION" {
			t.Errorf("KeyStageDir() = %q", got)
		}
	})

	t.Run("base from rule", func(t *testing.T) {
		got, err := p.KeyStageDir(root, "2507", "XXXX_ARCHIVE", "tender")
		if err != nil {
			t.Fatalf("KeyStageDir() error = %v", err)
		}
		if got != root+"/2507_ARCHIVE/2507_KEYSTAGE_TENDER" {
			t.Errorf("KeyStageDir() = %q", got)
		}
	})
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Planning Office", "PLANNING-OFFICE"},
		{"  window  quote  ", "WINDOW-QUOTE"},
		{"O'Brien & Sons (Ltd)", "OBRIEN-SONS-LTD"},
		{"a--b", "A-B"},
		{"", ""},
		{"###", ""},
	}

	for _, tt := range tests {
		if got := ft.SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmailPDFName(t *testing.T) {
	got := ft.EmailPDFName("2507", plannerDate, "window quote")
	if got != "2507_EMAIL_2026-03-10_WINDOW-QUOTE.pdf" {
		t.Errorf("EmailPDFName() = %q", got)
	}

	got = ft.EmailPDFName("2507", plannerDate, "")
	if got != "2507_EMAIL_2026-03-10.pdf" {
		t.Errorf("EmailPDFName() without description = %q", got)
	}
}

func TestScreenshotName(t *testing.T) {
	got := ft.ScreenshotName("2507", plannerDate, 3, "jpg")
	if got != "2507_SCREENSHOT_2026-03-10_003.jpg" {
		t.Errorf("ScreenshotName() = %q", got)
	}

	got = ft.ScreenshotName("2507", plannerDate, 1, "")
	if got != "2507_SCREENSHOT_2026-03-10_001.png" {
		t.Errorf("ScreenshotName() with empty extension = %q", got)
	}
}
