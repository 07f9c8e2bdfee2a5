package planner

import (
	"slices"
	"time"
)

// DateSet is a set of calendar days. Membership is decided on the (year, month,
// day) triple, never on the raw instant.
type DateSet map[Date]struct{}

// NewDateSet builds a set from stored instants, collapsing instants that fall
// on the same UTC day.
func NewDateSet(times []time.Time) DateSet {
	set := make(DateSet, len(times))
	for _, t := range times {
		set[FromTime(t)] = struct{}{}
	}
	return set
}

func (s DateSet) Has(d Date) bool {
	_, ok := s[d]
	return ok
}

// Dates returns the members in ascending order.
func (s DateSet) Dates() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.SortFunc(out, Date.Compare)
	return out
}

// Times returns the members as UTC midnights in ascending order. The result is
// never nil.
func (s DateSet) Times() []time.Time {
	dates := s.Dates()
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = d.Time()
	}
	return out
}
