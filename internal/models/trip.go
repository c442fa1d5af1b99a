package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip statuses
const (
	TripStatusPlanning  = "planning"
	TripStatusConfirmed = "confirmed"
	TripStatusCompleted = "completed"
	TripStatusCancelled = "cancelled"
)

// ValidTripStatus reports whether s is a known trip status.
func ValidTripStatus(s string) bool {
	switch s {
	case TripStatusPlanning, TripStatusConfirmed, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Trip represents a posted travel plan open for companions.
// Invariant: 1 <= current_travelers <= max_travelers (the creator counts
// as the first traveler).
type Trip struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	Title            string    `json:"title" db:"title"`
	Destination      string    `json:"destination" db:"destination"`
	Description      string    `json:"description" db:"description"`
	StartDate        time.Time `json:"start_date" db:"start_date"`
	EndDate          time.Time `json:"end_date" db:"end_date"`
	Budget           string    `json:"budget" db:"budget"`
	MaxTravelers     int       `json:"max_travelers" db:"max_travelers"`
	CurrentTravelers int       `json:"current_travelers" db:"current_travelers"`
	Interests        []string  `json:"interests" db:"interests"`
	ImageURL         *string   `json:"image_url" db:"image_url"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
