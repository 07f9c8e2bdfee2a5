package planner

import (
	"github.com/ritujaab/workout-planner/internal/domain"
)

// InstanceStatus is the computed state of one workout on one date.
type InstanceStatus string

const (
	StatusNone      InstanceStatus = "none"      // Not on the schedule for that date
	StatusScheduled InstanceStatus = "scheduled" // Occurs, not done yet
	StatusCompleted InstanceStatus = "completed" // Occurs and marked done
	StatusSkipped   InstanceStatus = "skipped"   // On the schedule but hidden for that date
)

// schedule is a workout with its dates pre-parsed, so that expanding many dates
// does not rebuild the sets on every check.
type schedule struct {
	weekday   string
	validDay  bool
	added     Date
	end       Date
	hasEnd    bool
	skipped   DateSet
	completed DateSet
}

func compile(w domain.Workout) schedule {
	day, ok := ParseWeekday(w.DayOfWeek)
	s := schedule{
		weekday:   day,
		validDay:  ok,
		added:     FromTime(w.AddedDate),
		skipped:   NewDateSet(w.SkippedDates),
		completed: NewDateSet(w.CompletionDates),
	}
	if w.EndDate != nil {
		s.end = FromTime(*w.EndDate)
		s.hasEnd = true
	}
	return s
}

// onSchedule ignores the skip set: weekday and range only.
func (s schedule) onSchedule(d Date) bool {
	if !s.validDay || d.Weekday() != s.weekday {
		return false
	}
	if d.Before(s.added) {
		return false
	}
	if s.hasEnd && d.After(s.end) {
		return false
	}
	return true
}

func (s schedule) occursOn(d Date) bool {
	return s.onSchedule(d) && !s.skipped.Has(d)
}

func (s schedule) statusOn(d Date) InstanceStatus {
	switch {
	case !s.onSchedule(d):
		return StatusNone
	case s.skipped.Has(d):
		return StatusSkipped
	case s.completed.Has(d):
		return StatusCompleted
	default:
		return StatusScheduled
	}
}

// OccursOn reports whether w produces an instance on d: the weekday matches,
// d lies within [AddedDate, EndDate] and d is not skipped.
func OccursOn(w domain.Workout, d Date) bool {
	return compile(w).occursOn(d)
}

// StatusOn returns the state of w on d. A date present in both the skip and
// the completion sets is reported as skipped.
func StatusOn(w domain.Workout, d Date) InstanceStatus {
	return compile(w).statusOn(d)
}
