package app

import (
	"testing"
	"time"
)

func TestSettleQueue(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("file comes due after the settle interval", func(t *testing.T) {
		q := newSettleQueue(2 * time.Second)
		q.Touch("/drop/a.pdf", 100, base)

		if due := q.Due(base.Add(time.Second)); len(due) != 0 {
			t.Errorf("due too early: %v", due)
		}
		due := q.Due(base.Add(2 * time.Second))
		if len(due) != 1 || due[0] != "/drop/a.pdf" {
			t.Errorf("Due() = %v, want [/drop/a.pdf]", due)
		}
	})

	t.Run("size change restarts the interval", func(t *testing.T) {
		q := newSettleQueue(2 * time.Second)
		q.Touch("/drop/a.pdf", 100, base)
		q.Touch("/drop/a.pdf", 250, base.Add(time.Second))

		if due := q.Due(base.Add(2 * time.Second)); len(due) != 0 {
			t.Errorf("due right after size change: %v", due)
		}
		if due := q.Due(base.Add(3 * time.Second)); len(due) != 1 {
			t.Errorf("Due() = %v, want 1 path", due)
		}
	})

	t.Run("same size keeps the earlier deadline", func(t *testing.T) {
		q := newSettleQueue(2 * time.Second)
		q.Touch("/drop/a.pdf", 100, base)
		q.Touch("/drop/a.pdf", 100, base.Add(time.Second))

		if due := q.Due(base.Add(2 * time.Second)); len(due) != 1 {
			t.Errorf("Due() = %v, want 1 path", due)
		}
	})

	t.Run("due is sorted and non-destructive", func(t *testing.T) {
		q := newSettleQueue(time.Second)
		q.Touch("/drop/b.pdf", 1, base)
		q.Touch("/drop/a.pdf", 1, base)

		due := q.Due(base.Add(time.Second))
		if len(due) != 2 || due[0] != "/drop/a.pdf" || due[1] != "/drop/b.pdf" {
			t.Errorf("Due() = %v", due)
		}
		if q.Len() != 2 {
			t.Errorf("Len() = %d after Due, want 2", q.Len())
		}

		q.Remove("/drop/a.pdf")
		if q.Len() != 1 {
			t.Errorf("Len() = %d after Remove, want 1", q.Len())
		}
	})

	t.Run("size returns the recorded size", func(t *testing.T) {
		q := newSettleQueue(time.Second)
		q.Touch("/drop/a.pdf", 4096, base)

		if got := q.Size("/drop/a.pdf"); got != 4096 {
			t.Errorf("Size() = %d, want 4096", got)
		}
	})
}

func TestWatchable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"2507_Site Plan_RevB.pdf", true},
		{"window schedule.docx", true},
		{"minutes.eml", true},
		{".DS_Store", false},
		{".hidden.pdf", false},
		{"~$schedule.docx", false},
		{"download.pdf.part", false},
		{"report.tmp", false},
		{"photo.jpg.crdownload", false},
		{"draft.docx~", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watchable(tt.name); got != tt.want {
				t.Errorf("watchable(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
