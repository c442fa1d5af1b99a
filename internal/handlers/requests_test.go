package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

func newRequestsHandler(s *MockStore, n *MockNotifications) *RequestsHandler {
	return NewRequestsHandler(s, n, nil, &config.Config{})
}

func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(utils.WithUserID(req.Context(), userID))
}

func pendingRequest(tripID, userID uuid.UUID) *models.TripRequest {
	return &models.TripRequest{
		ID:     uuid.New(),
		TripID: tripID,
		UserID: userID,
		Status: models.RequestStatusPending,
	}
}

func openTrip(ownerID uuid.UUID) *models.Trip {
	return &models.Trip{
		ID:               uuid.New(),
		UserID:           ownerID,
		Title:            "Sailing the Cyclades",
		Destination:      "Greece",
		MaxTravelers:     4,
		CurrentTravelers: 1,
		Status:           models.TripStatusPlanning,
	}
}

func TestCreateRequest(t *testing.T) {
	ownerID := uuid.New()
	requesterID := uuid.New()
	trip := openTrip(ownerID)
	body, _ := json.Marshal(dto.CreateTripRequestRequest{Message: "Count me in"})

	mockStore := new(MockStore)
	mockNotifs := new(MockNotifications)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)
	mockStore.On("CreateRequest", mock.Anything, trip.ID, requesterID, mock.Anything).
		Return(pendingRequest(trip.ID, requesterID), nil)
	mockNotifs.On("Create", mock.Anything, ownerID, TypeTripRequestReceived, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	h := newRequestsHandler(mockStore, mockNotifs)
	rec := httptest.NewRecorder()
	h.CreateRequest(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/trips/%s/requests", trip.ID), body, requesterID))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.CreateTripRequestResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RequestStatusPending, resp.Request.Status)
	mockStore.AssertExpectations(t)
	mockNotifs.AssertExpectations(t)
}

func TestCreateRequestDuplicateConflicts(t *testing.T) {
	ownerID := uuid.New()
	requesterID := uuid.New()
	trip := openTrip(ownerID)
	body, _ := json.Marshal(dto.CreateTripRequestRequest{})

	mockStore := new(MockStore)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)
	mockStore.On("CreateRequest", mock.Anything, trip.ID, requesterID, mock.Anything).
		Return(nil, store.ErrDuplicateRequest)

	h := newRequestsHandler(mockStore, new(MockNotifications))
	rec := httptest.NewRecorder()
	h.CreateRequest(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/trips/%s/requests", trip.ID), body, requesterID))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateRequestOwnTripForbidden(t *testing.T) {
	ownerID := uuid.New()
	trip := openTrip(ownerID)
	body, _ := json.Marshal(dto.CreateTripRequestRequest{})

	mockStore := new(MockStore)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)

	h := newRequestsHandler(mockStore, new(MockNotifications))
	rec := httptest.NewRecorder()
	h.CreateRequest(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/trips/%s/requests", trip.ID), body, ownerID))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockStore.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveRequest(t *testing.T) {
	ownerID := uuid.New()
	requesterID := uuid.New()
	trip := openTrip(ownerID)
	request := pendingRequest(trip.ID, requesterID)
	approved := *request
	approved.Status = models.RequestStatusApproved

	mockStore := new(MockStore)
	mockNotifs := new(MockNotifications)
	mockStore.On("GetRequest", mock.Anything, request.ID).Return(request, nil)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)
	mockStore.On("ApproveRequest", mock.Anything, request.ID).Return(&approved, nil)
	mockNotifs.On("Create", mock.Anything, requesterID, TypeRequestApproved, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	h := newRequestsHandler(mockStore, mockNotifs)
	rec := httptest.NewRecorder()
	h.Approve(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", request.ID), nil, ownerID))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CreateTripRequestResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RequestStatusApproved, resp.Request.Status)
	mockNotifs.AssertExpectations(t)
}

func TestApproveRequestAlreadyResolvedConflicts(t *testing.T) {
	ownerID := uuid.New()
	trip := openTrip(ownerID)
	request := pendingRequest(trip.ID, uuid.New())
	request.Status = models.RequestStatusApproved

	mockStore := new(MockStore)
	mockStore.On("GetRequest", mock.Anything, request.ID).Return(request, nil)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)
	mockStore.On("ApproveRequest", mock.Anything, request.ID).Return(nil, store.ErrRequestClosed)

	h := newRequestsHandler(mockStore, new(MockNotifications))
	rec := httptest.NewRecorder()
	h.Approve(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", request.ID), nil, ownerID))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApproveRequestFullTripConflicts(t *testing.T) {
	ownerID := uuid.New()
	trip := openTrip(ownerID)
	trip.CurrentTravelers = trip.MaxTravelers
	request := pendingRequest(trip.ID, uuid.New())

	mockStore := new(MockStore)
	mockStore.On("GetRequest", mock.Anything, request.ID).Return(request, nil)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)
	mockStore.On("ApproveRequest", mock.Anything, request.ID).Return(nil, store.ErrTripFull)

	h := newRequestsHandler(mockStore, new(MockNotifications))
	rec := httptest.NewRecorder()
	h.Approve(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", request.ID), nil, ownerID))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Trip is full", resp.Error)
}

func TestApproveRequestNonOwnerForbidden(t *testing.T) {
	ownerID := uuid.New()
	trip := openTrip(ownerID)
	request := pendingRequest(trip.ID, uuid.New())

	mockStore := new(MockStore)
	mockStore.On("GetRequest", mock.Anything, request.ID).Return(request, nil)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)

	h := newRequestsHandler(mockStore, new(MockNotifications))
	rec := httptest.NewRecorder()
	h.Approve(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", request.ID), nil, uuid.New()))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockStore.AssertNotCalled(t, "ApproveRequest", mock.Anything, mock.Anything)
}

func TestRejectRequest(t *testing.T) {
	ownerID := uuid.New()
	requesterID := uuid.New()
	trip := openTrip(ownerID)
	request := pendingRequest(trip.ID, requesterID)
	rejected := *request
	rejected.Status = models.RequestStatusRejected

	mockStore := new(MockStore)
	mockNotifs := new(MockNotifications)
	mockStore.On("GetRequest", mock.Anything, request.ID).Return(request, nil)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)
	mockStore.On("RejectRequest", mock.Anything, request.ID).Return(&rejected, nil)
	mockNotifs.On("Create", mock.Anything, requesterID, TypeRequestRejected, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	h := newRequestsHandler(mockStore, mockNotifs)
	rec := httptest.NewRecorder()
	h.Reject(rec, authedRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/reject", request.ID), nil, ownerID))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CreateTripRequestResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RequestStatusRejected, resp.Request.Status)
	mockStore.AssertNotCalled(t, "ApproveRequest", mock.Anything, mock.Anything)
}
