package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ritujaab/workout-planner/internal/domain"
	"github.com/ritujaab/workout-planner/internal/planner"
)

// WorkoutInput is the body of a create request. Numbers and dates are kept
// raw so that numeric strings and every accepted date form can be read.
type WorkoutInput struct {
	Title     string `json:"title"`
	Reps      any    `json:"reps"`
	Load      any    `json:"load"`
	DayOfWeek string `json:"dayOfWeek"`
	Notes     string `json:"notes"`
	AddedDate any    `json:"addedDate"` // Nil means today
}

// WorkoutPatch is a partial update. Only present fields are applied.
// Date together with Complete and/or Skip toggles that date's markers.
type WorkoutPatch struct {
	Title     Optional[string] `json:"title"`
	Reps      Optional[any]    `json:"reps"`
	Load      Optional[any]    `json:"load"` // null or "" clears the load
	DayOfWeek Optional[string] `json:"dayOfWeek"`
	Notes     Optional[string] `json:"notes"`
	AddedDate Optional[any]    `json:"addedDate"`
	EndDate   Optional[any]    `json:"endDate"`

	Date     Optional[any] `json:"date"`
	Complete Optional[any] `json:"complete"`
	Skip     Optional[any] `json:"skip"`
}

// hasDateOp reports whether the patch carries a per-date marker change.
func (p WorkoutPatch) hasDateOp() bool {
	return p.Complete.Present || p.Skip.Present
}

// fieldUpdate is a validated patch, ready to apply.
type fieldUpdate struct {
	title     *string
	reps      *int
	load      *float64
	clearLoad bool
	dayOfWeek *string
	notes     *string
	addedDate *planner.Date
	endDate   *planner.Date

	date     planner.Date
	complete *bool
	skip     *bool
}

func (u fieldUpdate) apply(w *domain.Workout) {
	if u.title != nil {
		w.Title = *u.title
		w.TitleKey = titleKey(*u.title)
	}
	if u.reps != nil {
		w.Reps = *u.reps
	}
	switch {
	case u.clearLoad:
		w.Load = nil
	case u.load != nil:
		load := *u.load
		w.Load = &load
	}
	if u.dayOfWeek != nil {
		w.DayOfWeek = *u.dayOfWeek
	}
	if u.notes != nil {
		w.Notes = *u.notes
	}
	if u.addedDate != nil {
		w.AddedDate = u.addedDate.Time()
	}
	if u.endDate != nil {
		planner.Truncate(w, *u.endDate)
	}
}

func (u fieldUpdate) editsFields() bool {
	return u.title != nil || u.reps != nil || u.load != nil || u.clearLoad ||
		u.dayOfWeek != nil || u.notes != nil || u.addedDate != nil || u.endDate != nil
}

// validatePatch checks every present field before anything is read or
// written, so a rejected patch never applies partially.
func validatePatch(p WorkoutPatch) (fieldUpdate, error) {
	var (
		u    fieldUpdate
		verr ValidationError
	)

	if p.Title.Present {
		if t := strings.TrimSpace(p.Title.Value); p.Title.Null || t == "" {
			verr.missing("title")
		} else {
			u.title = &t
		}
	}

	if p.Reps.Present {
		if reps, ok := parseReps(p.Reps.Value); !p.Reps.Null && ok {
			u.reps = &reps
		} else {
			verr.invalid("reps", "Reps must be a whole number of at least 1")
		}
	}

	if p.Load.Present {
		switch {
		case p.Load.Null || isBlank(p.Load.Value):
			u.clearLoad = true
		default:
			if load, ok := parseLoad(p.Load.Value); ok {
				u.load = &load
			} else {
				verr.invalid("load", "Load must be a number of at least 1")
			}
		}
	}

	if p.DayOfWeek.Present {
		if day, ok := planner.ParseWeekday(p.DayOfWeek.Value); !p.DayOfWeek.Null && ok {
			u.dayOfWeek = &day
		} else {
			verr.invalid("dayOfWeek", "Day of week must be between Sunday and Saturday")
		}
	}

	if p.Notes.Present {
		notes, ok := cleanNotes(p.Notes.Value)
		if !ok {
			verr.invalid("notes", fmt.Sprintf("Notes must be at most %d characters", domain.MaxNotesLength))
		} else {
			u.notes = &notes
		}
	}

	if p.AddedDate.Present {
		if d, err := planner.Normalize(p.AddedDate.Value); !p.AddedDate.Null && err == nil {
			u.addedDate = &d
		} else {
			verr.invalid("addedDate", "addedDate must be a valid date")
		}
	}

	if p.EndDate.Present {
		if d, err := planner.Normalize(p.EndDate.Value); !p.EndDate.Null && err == nil {
			u.endDate = &d
		} else {
			verr.invalid("endDate", "endDate must be a valid date")
		}
	}

	if p.hasDateOp() {
		if d, err := planner.Normalize(p.Date.Value); p.Date.Present && !p.Date.Null && err == nil {
			u.date = d
		} else {
			verr.invalid("date", "date must be a valid date string")
		}
		if p.Complete.Present {
			if v, ok := parseFlag(p.Complete.Value); !p.Complete.Null && ok {
				u.complete = &v
			} else {
				verr.invalid("complete", "complete must be true or false")
			}
		}
		if p.Skip.Present {
			if v, ok := parseFlag(p.Skip.Value); !p.Skip.Null && ok {
				u.skip = &v
			} else {
				verr.invalid("skip", "skip must be true or false")
			}
		}
	}

	return u, verr.orNil()
}

// newWorkout validates a create request. today fills a missing addedDate.
func newWorkout(in WorkoutInput, today planner.Date) (*domain.Workout, error) {
	var verr ValidationError
	w := &domain.Workout{
		CompletionDates: []time.Time{},
		SkippedDates:    []time.Time{},
	}

	if t := strings.TrimSpace(in.Title); t == "" {
		verr.missing("title")
	} else {
		w.Title = t
		w.TitleKey = titleKey(t)
	}

	if in.Reps == nil || isBlank(in.Reps) {
		verr.missing("reps")
	} else if reps, ok := parseReps(in.Reps); ok {
		w.Reps = reps
	} else {
		verr.invalid("reps", "Reps must be a whole number of at least 1")
	}

	if strings.TrimSpace(in.DayOfWeek) == "" {
		verr.missing("dayOfWeek")
	} else if day, ok := planner.ParseWeekday(in.DayOfWeek); ok {
		w.DayOfWeek = day
	} else {
		verr.invalid("dayOfWeek", "Day of week must be between Sunday and Saturday")
	}

	if in.Load != nil && !isBlank(in.Load) {
		if load, ok := parseLoad(in.Load); ok {
			w.Load = &load
		} else {
			verr.invalid("load", "Load must be a number of at least 1")
		}
	}

	if notes, ok := cleanNotes(in.Notes); ok {
		w.Notes = notes
	} else {
		verr.invalid("notes", fmt.Sprintf("Notes must be at most %d characters", domain.MaxNotesLength))
	}

	added := today
	if in.AddedDate != nil && !isBlank(in.AddedDate) {
		d, err := planner.Normalize(in.AddedDate)
		if err != nil {
			verr.invalid("addedDate", "addedDate must be a valid date")
		}
		added = d
	}
	w.AddedDate = added.Time()

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return w, nil
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func cleanNotes(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= domain.MaxNotesLength
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// parseNumber reads JSON numbers and numeric strings.
func parseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseReps(v any) (int, bool) {
	f, ok := parseNumber(v)
	if !ok || f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseLoad(v any) (float64, bool) {
	f, ok := parseNumber(v)
	if !ok || f < 1 {
		return 0, false
	}
	return f, true
}

// parseFlag accepts booleans and the strings "true" and "false".
func parseFlag(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func (u fieldUpdate) editsOtherThanEnd() bool {
	rest := u
	rest.endDate = nil
	return rest.editsFields()
}
