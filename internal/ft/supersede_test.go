package ft_test

import (
	"testing"

	"ft-go/internal/drawing"
	"ft-go/internal/ft"
	"ft-go/internal/testutil"
)

const (
	testCurrentDrawings = "/projects/2507_HOUSE/Current Drawings"
	testSupersededDir   = testCurrentDrawings + "/Superseded"
)

func testConvention(t *testing.T) *drawing.Convention {
	t.Helper()
	conv, err := drawing.NewConvention(`\d{4,5}`, nil)
	if err != nil {
		t.Fatalf("NewConvention() error = %v", err)
	}
	return conv
}

func parseDrawing(t *testing.T, conv *drawing.Convention, name string) *drawing.Drawing {
	t.Helper()
	d, ok := conv.Parse(name, "")
	if !ok {
		t.Fatalf("Parse(%q) did not match", name)
	}
	return d
}

func supersedeFixture(names ...string) *testutil.MockFilesystemManager {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory(testCurrentDrawings)
	for _, n := range names {
		fsmgr.AddFile(testCurrentDrawings+"/"+n, []byte("pdf"))
	}
	return fsmgr
}

func TestPlanSupersede_StaleRevisions(t *testing.T) {
	conv := testConvention(t)
	fsmgr := supersedeFixture("2507_Site Plan_RevA.pdf", "2507_Site Plan_RevB.pdf")
	incoming := parseDrawing(t, conv, "2507_Site Plan_RevC.pdf")

	plan, err := ft.PlanSupersede(fsmgr, conv, testCurrentDrawings, testSupersededDir, incoming)
	if err != nil {
		t.Fatalf("PlanSupersede() error = %v", err)
	}

	if len(plan.Stale) != 2 {
		t.Fatalf("Stale count = %d, want 2", len(plan.Stale))
	}
	first := plan.Stale[0]
	if first.Current != testCurrentDrawings+"/2507_Site Plan_RevA.pdf" {
		t.Errorf("Stale[0].Current = %q", first.Current)
	}
	if first.Superseded != testSupersededDir+"/2507_Site Plan_RevA.pdf" {
		t.Errorf("Stale[0].Superseded = %q", first.Superseded)
	}
	if first.BaseID != "2507_site-plan" {
		t.Errorf("Stale[0].BaseID = %q", first.BaseID)
	}
	if plan.NewerExisting != "" || len(plan.SameRevision) != 0 {
		t.Errorf("unexpected NewerExisting %q / SameRevision %v", plan.NewerExisting, plan.SameRevision)
	}
}

func TestPlanSupersede_StaleStages(t *testing.T) {
	conv := testConvention(t)
	fsmgr := supersedeFixture("2507_012_Plan_P01.pdf", "2507_012_Plan_P02.pdf")
	incoming := parseDrawing(t, conv, "2507_012_Plan_C01.pdf")

	plan, err := ft.PlanSupersede(fsmgr, conv, testCurrentDrawings, testSupersededDir, incoming)
	if err != nil {
		t.Fatalf("PlanSupersede() error = %v", err)
	}
	if len(plan.Stale) != 2 {
		t.Fatalf("Stale count = %d, want 2", len(plan.Stale))
	}
	if plan.Stale[0].BaseID != "2507_012" {
		t.Errorf("Stale[0].BaseID = %q", plan.Stale[0].BaseID)
	}
}

func TestPlanSupersede_NewerExisting(t *testing.T) {
	conv := testConvention(t)
	fsmgr := supersedeFixture("2507_Site Plan_RevC.pdf", "2507_Site Plan_RevD.pdf")
	incoming := parseDrawing(t, conv, "2507_Site Plan_RevB.pdf")

	plan, err := ft.PlanSupersede(fsmgr, conv, testCurrentDrawings, testSupersededDir, incoming)
	if err != nil {
		t.Fatalf("PlanSupersede() error = %v", err)
	}
	if len(plan.Stale) != 0 {
		t.Errorf("Stale = %v, want none", plan.Stale)
	}
	if plan.NewerExisting != testCurrentDrawings+"/2507_Site Plan_RevD.pdf" {
		t.Errorf("NewerExisting = %q, want the newest revision", plan.NewerExisting)
	}
}

func TestPlanSupersede_SameRevisionDifferentName(t *testing.T) {
	conv := testConvention(t)
	fsmgr := supersedeFixture("2507_Site-Plan_RevB.pdf")
	incoming := parseDrawing(t, conv, "2507_Site Plan_RevB.pdf")

	plan, err := ft.PlanSupersede(fsmgr, conv, testCurrentDrawings, testSupersededDir, incoming)
	if err != nil {
		t.Fatalf("PlanSupersede() error = %v", err)
	}
	if len(plan.SameRevision) != 1 || plan.SameRevision[0] != testCurrentDrawings+"/2507_Site-Plan_RevB.pdf" {
		t.Errorf("SameRevision = %v", plan.SameRevision)
	}
	if len(plan.Stale) != 0 || plan.NewerExisting != "" {
		t.Errorf("unexpected Stale %v / NewerExisting %q", plan.Stale, plan.NewerExisting)
	}
}

func TestPlanSupersede_SkipsExactFilename(t *testing.T) {
	conv := testConvention(t)
	fsmgr := supersedeFixture("2507_Site Plan_RevB.pdf")
	incoming := parseDrawing(t, conv, "2507_Site Plan_RevB.pdf")

	plan, err := ft.PlanSupersede(fsmgr, conv, testCurrentDrawings, testSupersededDir, incoming)
	if err != nil {
		t.Fatalf("PlanSupersede() error = %v", err)
	}
	if len(plan.Stale) != 0 || plan.NewerExisting != "" || len(plan.SameRevision) != 0 {
		t.Errorf("plan not empty: %+v", plan)
	}
}

func TestPlanSupersede_IgnoresUnrelatedFiles(t *testing.T) {
	conv := testConvention(t)
	fsmgr := supersedeFixture(
		"2507_Ground Floor_RevA.pdf",
		"2610_Site Plan_RevA.pdf",
		"minutes.pdf",
	)
	incoming := parseDrawing(t, conv, "2507_Site Plan_RevB.pdf")

	plan, err := ft.PlanSupersede(fsmgr, conv, testCurrentDrawings, testSupersededDir, incoming)
	if err != nil {
		t.Fatalf("PlanSupersede() error = %v", err)
	}
	if len(plan.Stale) != 0 || plan.NewerExisting != "" || len(plan.SameRevision) != 0 {
		t.Errorf("plan not empty: %+v", plan)
	}
}

func TestPlanSupersede_AbsentFolder(t *testing.T) {
	conv := testConvention(t)
	fsmgr := testutil.NewMockFilesystemManager()
	incoming := parseDrawing(t, conv, "2507_Site Plan_RevB.pdf")

	plan, err := ft.PlanSupersede(fsmgr, conv, testCurrentDrawings, testSupersededDir, incoming)
	if err != nil {
		t.Fatalf("PlanSupersede() error = %v", err)
	}
	if len(plan.Stale) != 0 || plan.NewerExisting != "" || len(plan.SameRevision) != 0 {
		t.Errorf("plan not empty: %+v", plan)
	}
}
