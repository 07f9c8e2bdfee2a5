package service

import "github.com/prometheus/client_golang/prometheus"

// Mutation intents, used as the "intent" label.
const (
	intentCreate   = "create"
	intentEdit     = "edit"
	intentComplete = "complete"
	intentSkip     = "skip"
	intentTruncate = "truncate"
	intentDelete   = "delete"
)

var (
	// workoutMutations counts persisted workout changes by intent.
	workoutMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workout_mutations_total",
			Help: "Total number of persisted workout mutations.",
		},
		[]string{"intent"},
	)

	// duplicateCheckFailures counts duplicate-title checks that could not run.
	// The guarded operation went ahead each time.
	duplicateCheckFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workout_duplicate_check_failures_total",
			Help: "Duplicate title checks skipped because the store was unavailable.",
		},
	)
)

func init() {
	prometheus.MustRegister(workoutMutations, duplicateCheckFailures)
}
