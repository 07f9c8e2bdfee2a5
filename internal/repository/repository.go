package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ritujaab/workout-planner/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error
	// SetPassword stores a new hash and clears any pending reset token.
	SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// WorkoutRepository defines the interface for interacting with workout data.
// Every method is scoped by owner; a workout that exists but belongs to someone
// else is reported as ErrNotFound.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error)
	// ListByOwner returns the owner's workouts, newest first. An empty day
	// returns every weekday.
	ListByOwner(ctx context.Context, owner primitive.ObjectID, day string) ([]domain.Workout, error)
	// FindByTitleKey looks for another workout of the owner with the same
	// lower-cased title on day. excludeID may be NilObjectID.
	FindByTitleKey(ctx context.Context, owner primitive.ObjectID, titleKey, day string, excludeID primitive.ObjectID) (*domain.Workout, error)
	// Replace writes the whole document, last write wins.
	Replace(ctx context.Context, workout *domain.Workout) error
	// Delete removes the workout and returns what was removed.
	Delete(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error)
}
