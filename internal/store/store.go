package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

// Sentinel errors surfaced to handlers. Handlers map these to HTTP statuses;
// anything else is a 500.
var (
	ErrNotFound         = errors.New("record not found")
	ErrUserExists       = errors.New("user already exists")
	ErrDuplicateRequest = errors.New("request already exists for this trip and user")
	ErrRequestClosed    = errors.New("request is no longer pending")
	ErrTripFull         = errors.New("trip has reached max travelers")
)

// Store is the persistence boundary for the domain handlers. The Postgres
// implementation lives in this package; tests substitute a mock.
type Store interface {
	// Users
	CreateUser(ctx context.Context, email, passwordHash, username string, fullName *string) (*models.User, error)
	CreateOAuthUser(ctx context.Context, email, username string, fullName, avatarURL *string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// Profiles
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error

	// Trips
	CreateTrip(ctx context.Context, t *models.Trip) error
	GetTrip(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	ListTrips(ctx context.Context) ([]models.Trip, error)
	UpdateTrip(ctx context.Context, t *models.Trip) error
	DeleteTrip(ctx context.Context, id uuid.UUID) error
	SetTripImage(ctx context.Context, id uuid.UUID, url string) error

	// Trip join requests
	CreateRequest(ctx context.Context, tripID, userID uuid.UUID, message *string) (*models.TripRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error)
	ListRequestsForTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripRequest, error)
	ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.TripRequest, error)
	ApproveRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error)
	RejectRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error)

	// Messages
	CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error)
	ListMessagesBetween(ctx context.Context, userID, partnerID uuid.UUID) ([]models.Message, error)
	ListMessagesForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, ids []uuid.UUID) error
}
