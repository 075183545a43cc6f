package alerts

import (
	"testing"

	"spendlens/internal/model"
)

func alertList(ids ...int64) []model.Alert {
	out := make([]model.Alert, len(ids))
	for i, id := range ids {
		out[i] = model.Alert{ID: id}
	}
	return out
}

func TestVisibleFiltersDismissedPreservingOrder(t *testing.T) {
	tr := NewTracker()
	tr.Dismiss(2)
	tr.Dismiss(5)

	got := tr.Visible(alertList(1, 2, 3, 4, 5))

	want := []int64{1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Visible returned %d alerts, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Visible[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestDismissIsIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.Dismiss(7)
	tr.Dismiss(7)
	tr.Dismiss(7)

	got := tr.Visible(alertList(7, 8))
	if len(got) != 1 || got[0].ID != 8 {
		t.Fatalf("Visible after repeated dismissal = %v, want only id 8", got)
	}
	if !tr.Dismissed(7) {
		t.Fatal("Dismissed(7) = false after dismissal")
	}
}

func TestVisibleWithEmptyTrackerReturnsInput(t *testing.T) {
	tr := NewTracker()
	in := alertList(1, 2, 3)

	got := tr.Visible(in)
	if len(got) != 3 {
		t.Fatalf("Visible returned %d alerts, want 3", len(got))
	}
}

func TestVisibleDoesNotMutateInput(t *testing.T) {
	tr := NewTracker()
	tr.Dismiss(1)
	in := alertList(1, 2)

	_ = tr.Visible(in)
	if in[0].ID != 1 || in[1].ID != 2 {
		t.Fatal("Visible mutated its input slice")
	}
}
