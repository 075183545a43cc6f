package alerts

import "spendlens/internal/model"

// Tracker remembers which alerts the user has hidden. It lives and dies with
// one view: created empty, never persisted, never reported to the backend,
// and dismissals cannot be undone within the session.
type Tracker struct {
	ids []int64
}

// NewTracker returns an empty dismissal tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Dismiss hides the alert with the given id. Dismissing the same id twice is
// harmless; filtering is by membership.
func (t *Tracker) Dismiss(id int64) {
	t.ids = append(t.ids, id)
}

// Dismissed reports whether the given id has been dismissed.
func (t *Tracker) Dismissed(id int64) bool {
	for _, d := range t.ids {
		if d == id {
			return true
		}
	}
	return false
}

// Visible returns the subsequence of in whose ids are not dismissed,
// preserving the original order. The input is never mutated.
func (t *Tracker) Visible(in []model.Alert) []model.Alert {
	if len(t.ids) == 0 {
		return in
	}

	hidden := make(map[int64]struct{}, len(t.ids))
	for _, id := range t.ids {
		hidden[id] = struct{}{}
	}

	out := make([]model.Alert, 0, len(in))
	for _, a := range in {
		if _, ok := hidden[a.ID]; !ok {
			out = append(out, a)
		}
	}
	return out
}
