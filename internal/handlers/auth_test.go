package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:         "test-secret",
			AccessTokenTTL: time.Hour,
		},
	}
}

func TestRegister(t *testing.T) {
	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "wanderer",
		Email:    "traveler@example.com",
		Password: "hunter22",
	})

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "traveler@example.com", CreatedAt: time.Now()}
	profile := &models.Profile{ID: userID, Username: "wanderer"}

	mockStore := new(MockStore)
	mockStore.On("CreateUser", mock.Anything, "traveler@example.com", mock.Anything, "wanderer", mock.Anything).
		Return(user, nil)
	mockStore.On("GetProfile", mock.Anything, userID).Return(profile, nil)

	h := NewAuthHandler(mockStore, testConfig())
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.AuthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "wanderer", resp.User.Username)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "wanderer",
		Email:    "taken@example.com",
		Password: "hunter22",
	})

	mockStore := new(MockStore)
	mockStore.On("CreateUser", mock.Anything, "taken@example.com", mock.Anything, "wanderer", mock.Anything).
		Return(nil, store.ErrUserExists)

	h := NewAuthHandler(mockStore, testConfig())
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterShortPasswordRejected(t *testing.T) {
	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "wanderer",
		Email:    "traveler@example.com",
		Password: "abc",
	})

	mockStore := new(MockStore)
	h := NewAuthHandler(mockStore, testConfig())
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStore.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	userID := uuid.New()
	user := &models.User{ID: userID, Email: "traveler@example.com", PasswordHash: string(hash)}

	mockStore := new(MockStore)
	mockStore.On("GetUserByEmail", mock.Anything, "traveler@example.com").Return(user, nil)
	mockStore.On("GetProfile", mock.Anything, userID).Return(&models.Profile{ID: userID, Username: "wanderer"}, nil)

	body, _ := json.Marshal(dto.LoginRequest{Email: "traveler@example.com", Password: "hunter22"})

	h := NewAuthHandler(mockStore, testConfig())
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(body)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AuthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	user := &models.User{ID: uuid.New(), Email: "traveler@example.com", PasswordHash: string(hash)}

	mockStore := new(MockStore)
	mockStore.On("GetUserByEmail", mock.Anything, "traveler@example.com").Return(user, nil)

	body, _ := json.Marshal(dto.LoginRequest{Email: "traveler@example.com", Password: "wrong"})

	h := NewAuthHandler(mockStore, testConfig())
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, store.ErrNotFound)

	body, _ := json.Marshal(dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	h := NewAuthHandler(mockStore, testConfig())
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
