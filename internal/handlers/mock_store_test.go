package handlers

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

func jsonBody(b []byte) io.Reader {
	return bytes.NewReader(b)
}

// MockStore is a testify mock of store.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, email, passwordHash, username string, fullName *string) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash, username, fullName)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateOAuthUser(ctx context.Context, email, username string, fullName, avatarURL *string) (*models.User, error) {
	args := m.Called(ctx, email, username, fullName, avatarURL)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	args := m.Called(ctx, ids)
	if p := args.Get(0); p != nil {
		return p.([]models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateProfile(ctx context.Context, p *models.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStore) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockStore) CreateTrip(ctx context.Context, t *models.Trip) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockStore) GetTrip(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*models.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListTrips(ctx context.Context) ([]models.Trip, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.([]models.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateTrip(ctx context.Context, t *models.Trip) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockStore) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) SetTripImage(ctx context.Context, id uuid.UUID, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockStore) CreateRequest(ctx context.Context, tripID, userID uuid.UUID, message *string) (*models.TripRequest, error) {
	args := m.Called(ctx, tripID, userID, message)
	if r := args.Get(0); r != nil {
		return r.(*models.TripRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.TripRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListRequestsForTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripRequest, error) {
	args := m.Called(ctx, tripID)
	if r := args.Get(0); r != nil {
		return r.([]models.TripRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.TripRequest, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]models.TripRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ApproveRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.TripRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) RejectRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.TripRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	if msg := args.Get(0); msg != nil {
		return msg.(*models.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListMessagesBetween(ctx context.Context, userID, partnerID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, userID, partnerID)
	if msg := args.Get(0); msg != nil {
		return msg.([]models.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListMessagesForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	if msg := args.Get(0); msg != nil {
		return msg.([]models.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) MarkMessagesRead(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockNotifications is a testify mock of NotificationsService
type MockNotifications struct {
	mock.Mock
}

func (m *MockNotifications) Create(ctx context.Context, userID uuid.UUID, nType string, title string, message *string, data map[string]any, actionURL *string) error {
	args := m.Called(ctx, userID, nType, title, message, data, actionURL)
	return args.Error(0)
}
