package ft_test

import (
	"errors"
	"testing"
)

func TestFilingService_RecordNeedsAttention(t *testing.T) {
	fx := newFixture(t, fixtureParams{})

	err := fx.svc.RecordNeedsAttention("2507", "mystery.pdf", "/inbox/mystery.pdf", errors.New("no job number found"))
	if err != nil {
		t.Fatalf("RecordNeedsAttention() error = %v", err)
	}

	ops, err := fx.svc.GetHistory(5)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("operations = %d, want 1", len(ops))
	}
	op := ops[0]
	if op.Operation != "Watch" || op.Status != "needs-attention" {
		t.Errorf("operation = %q status = %q", op.Operation, op.Status)
	}
	if !op.FinishedAt.Valid {
		t.Error("operation was not finished")
	}
	if op.Parameters != "artifact=mystery.pdf" {
		t.Errorf("Parameters = %q", op.Parameters)
	}

	entries, err := fx.svc.GetLog("2507", 5)
	if err != nil {
		t.Fatalf("GetLog() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.OperationID != op.ID {
		t.Errorf("OperationID = %d, want %d", e.OperationID, op.ID)
	}
	if e.Decision != "abort" || e.Outcome != "skipped" {
		t.Errorf("entry = %q/%q", e.Decision, e.Outcome)
	}
	if e.Artifact != "mystery.pdf" || e.Source != "/inbox/mystery.pdf" {
		t.Errorf("entry artifact = %q source = %q", e.Artifact, e.Source)
	}
	if e.Detail != "needs attention: no job number found" {
		t.Errorf("Detail = %q", e.Detail)
	}
}

func TestFilingService_GetLog_FiltersByJob(t *testing.T) {
	fx := newFixture(t, fixtureParams{})

	for _, tc := range []struct{ job, artifact string }{
		{"2507", "first.pdf"},
		{"2610", "second.pdf"},
	} {
		if err := fx.svc.RecordNeedsAttention(tc.job, tc.artifact, "", errors.New("unreadable")); err != nil {
			t.Fatalf("RecordNeedsAttention(%s) error = %v", tc.job, err)
		}
	}

	entries, err := fx.svc.GetLog("2507", 10)
	if err != nil {
		t.Fatalf("GetLog() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Artifact != "first.pdf" {
		t.Errorf("entries = %+v, want first.pdf only", entries)
	}

	all, err := fx.svc.GetLog("", 10)
	if err != nil {
		t.Fatalf("GetLog() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered entries = %d, want 2", len(all))
	}
}
