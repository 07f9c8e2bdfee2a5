package planner

import (
	"slices"

	"github.com/ritujaab/workout-planner/internal/domain"
)

// DaysPerWeek is the length of a planner week.
const DaysPerWeek = 7

// Bucket holds the workouts occurring on one date, most recently created first.
type Bucket struct {
	Date     Date
	Workouts []domain.Workout
}

// Buckets keeps the order of the dates passed to Expand.
type Buckets []Bucket

// On returns the workouts bucketed under d, or nil when d was not expanded.
func (b Buckets) On(d Date) []domain.Workout {
	for _, bucket := range b {
		if bucket.Date == d {
			return bucket.Workouts
		}
	}
	return nil
}

// Expand projects workouts onto dates. Every distinct date gets a bucket, even
// an empty one; repeated dates keep their first position. Workouts are ordered
// by CreatedAt descending, ties keep their input order.
func Expand(workouts []domain.Workout, dates []Date) Buckets {
	schedules := make([]schedule, len(workouts))
	for i, w := range workouts {
		schedules[i] = compile(w)
	}

	seen := make(map[Date]struct{}, len(dates))
	out := make(Buckets, 0, len(dates))
	for _, d := range dates {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}

		hits := make([]domain.Workout, 0)
		for i, s := range schedules {
			if s.occursOn(d) {
				hits = append(hits, workouts[i])
			}
		}
		slices.SortStableFunc(hits, func(a, b domain.Workout) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
		out = append(out, Bucket{Date: d, Workouts: hits})
	}
	return out
}

// WeekOf returns the seven dates of the Sunday-first week containing anchor.
func WeekOf(anchor Date) []Date {
	start := anchor.AddDays(-int(anchor.Time().Weekday()))
	dates := make([]Date, DaysPerWeek)
	for i := range dates {
		dates[i] = start.AddDays(i)
	}
	return dates
}

// DaySummary counts the instances of one bucket.
type DaySummary struct {
	Date      Date `json:"date"`
	Scheduled int  `json:"scheduled"`
	Completed int  `json:"completed"`
}

// WeekSummary totals DaySummary over a set of buckets.
type WeekSummary struct {
	Days      []DaySummary `json:"days"`
	Scheduled int          `json:"scheduled"`
	Completed int          `json:"completed"`
}

// Summarize counts, per bucket, how many instances occur and how many of them
// are marked completed.
func Summarize(buckets Buckets) WeekSummary {
	summary := WeekSummary{Days: make([]DaySummary, 0, len(buckets))}
	for _, b := range buckets {
		day := DaySummary{Date: b.Date, Scheduled: len(b.Workouts)}
		for _, w := range b.Workouts {
			if StatusOn(w, b.Date) == StatusCompleted {
				day.Completed++
			}
		}
		summary.Scheduled += day.Scheduled
		summary.Completed += day.Completed
		summary.Days = append(summary.Days, day)
	}
	return summary
}
