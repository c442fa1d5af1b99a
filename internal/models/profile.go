package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a user's public-facing identity. The id is shared
// with the auth user; the row is created at signup and mutated only by
// its owner.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	FullName  *string   `json:"full_name" db:"full_name"`
	Bio       *string   `json:"bio" db:"bio"`
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"`
	Location  *string   `json:"location" db:"location"`
	Age       *int      `json:"age" db:"age"`
	Gender    *string   `json:"gender" db:"gender"`
	Interests []string  `json:"interests" db:"interests"`
	Languages []string  `json:"languages" db:"languages"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
