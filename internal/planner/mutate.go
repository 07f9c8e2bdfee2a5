package planner

import (
	"time"

	"github.com/ritujaab/workout-planner/internal/domain"
)

// SetCompleted adds d to the completion set of w when done is true and removes
// it otherwise. It reports whether the set changed; asking for the state the
// workout is already in is a no-op.
func SetCompleted(w *domain.Workout, d Date, done bool) bool {
	return toggle(&w.CompletionDates, d, done)
}

// SetSkipped is SetCompleted for the skip set.
func SetSkipped(w *domain.Workout, d Date, skip bool) bool {
	return toggle(&w.SkippedDates, d, skip)
}

// Truncate ends the series on end. Instances after end stop occurring;
// completion and skip history is left alone.
func Truncate(w *domain.Workout, end Date) {
	t := end.Time()
	w.EndDate = &t
}

func toggle(dates *[]time.Time, d Date, want bool) bool {
	set := NewDateSet(*dates)
	if set.Has(d) == want {
		return false
	}
	if want {
		set[d] = struct{}{}
	} else {
		delete(set, d)
	}
	*dates = set.Times()
	return true
}
