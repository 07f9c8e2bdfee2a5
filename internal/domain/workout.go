package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is one recurring workout definition. Individual occurrences are never
// stored; they are computed from the weekday, the date range and the two date sets.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"` // Owner, every query is scoped by it
	Title     string             `bson:"title" json:"title"`
	TitleKey  string             `bson:"titleKey" json:"-"` // Lower-cased title, part of the uniqueness key
	Reps      int                `bson:"reps" json:"reps"`
	Load      *float64           `bson:"load,omitempty" json:"load,omitempty"`
	DayOfWeek string             `bson:"dayOfWeek" json:"dayOfWeek"` // Canonical weekday name, e.g. "Monday"
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Recurrence + tracking. All dates are UTC midnight.
	AddedDate       time.Time   `bson:"addedDate" json:"addedDate"`                 // First date an instance may appear
	EndDate         *time.Time  `bson:"endDate,omitempty" json:"endDate,omitempty"` // Nil means open-ended
	CompletionDates []time.Time `bson:"completionDates" json:"completionDates"`     // Dates marked done
	SkippedDates    []time.Time `bson:"skippedDates" json:"skippedDates"`           // Dates hidden ("delete only this day")

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// MaxNotesLength is the longest notes value a workout may carry, in characters.
const MaxNotesLength = 500
