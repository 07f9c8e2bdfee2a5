package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that owns workouts.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`    // Unique, stored lower-cased
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Password reset. Only the sha256 of the token is stored.
	ResetTokenHash string     `bson:"resetTokenHash,omitempty" json:"-"`
	ResetExpiresAt *time.Time `bson:"resetExpiresAt,omitempty" json:"-"`
}
