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

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

func newTripsHandler(s *MockStore) *TripsHandler {
	return NewTripsHandler(s, &config.Config{})
}

func TestCreateTripHandler(t *testing.T) {
	userID := uuid.New()
	body, _ := json.Marshal(dto.CreateTripRequest{
		Title:        "Kyoto in autumn",
		Destination:  "Kyoto, Japan",
		StartDate:    "2027-11-01",
		EndDate:      "2027-11-10",
		Budget:       "Mid-range",
		MaxTravelers: 3,
		Interests:    []string{"Culture", "Cuisine"},
	})

	mockStore := new(MockStore)
	mockStore.On("CreateTrip", mock.Anything, mock.MatchedBy(func(trip *models.Trip) bool {
		return trip.UserID == userID &&
			trip.Title == "Kyoto in autumn" &&
			trip.CurrentTravelers == 1 &&
			trip.Status == models.TripStatusPlanning
	})).Return(nil)

	h := newTripsHandler(mockStore)
	rec := httptest.NewRecorder()
	h.CreateTrip(rec, authedRequest(http.MethodPost, "/api/trips", body, userID))

	assert.Equal(t, http.StatusCreated, rec.Code)
	mockStore.AssertExpectations(t)
}

func TestCreateTripRejectsBackwardDates(t *testing.T) {
	userID := uuid.New()
	body, _ := json.Marshal(dto.CreateTripRequest{
		Title:        "Backwards",
		Destination:  "Nowhere",
		StartDate:    "2027-11-10",
		EndDate:      "2027-11-01",
		MaxTravelers: 2,
	})

	mockStore := new(MockStore)
	h := newTripsHandler(mockStore)
	rec := httptest.NewRecorder()
	h.CreateTrip(rec, authedRequest(http.MethodPost, "/api/trips", body, userID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStore.AssertNotCalled(t, "CreateTrip", mock.Anything, mock.Anything)
}

func TestListTripsAppliesFilters(t *testing.T) {
	soon := time.Now().AddDate(0, 0, 14)
	later := time.Now().AddDate(0, 8, 0)

	trips := []models.Trip{
		{ID: uuid.New(), Title: "Bali retreat", Destination: "Bali", Budget: "Budget", StartDate: soon, EndDate: soon.AddDate(0, 0, 7)},
		{ID: uuid.New(), Title: "Alps ski week", Destination: "Austria", Budget: "Luxury", StartDate: later, EndDate: later.AddDate(0, 0, 7)},
	}

	mockStore := new(MockStore)
	mockStore.On("ListTrips", mock.Anything).Return(trips, nil)

	h := newTripsHandler(mockStore)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trips?destination=bali&period=next-month", nil)
	h.ListTrips(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TripListResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Pagination.Total)
	if assert.Len(t, resp.Trips, 1) {
		assert.Equal(t, "Bali retreat", resp.Trips[0].Title)
	}
}

func TestListTripsPaginates(t *testing.T) {
	start := time.Now().AddDate(0, 1, 0)
	trips := make([]models.Trip, 5)
	for i := range trips {
		trips[i] = models.Trip{ID: uuid.New(), Title: "Trip", Destination: "Anywhere", StartDate: start, EndDate: start}
	}

	mockStore := new(MockStore)
	mockStore.On("ListTrips", mock.Anything).Return(trips, nil)

	h := newTripsHandler(mockStore)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trips?limit=2&offset=4", nil)
	h.ListTrips(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TripListResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Pagination.Total)
	assert.Len(t, resp.Trips, 1)
}

func TestUpdateTripNonOwnerForbidden(t *testing.T) {
	ownerID := uuid.New()
	trip := openTrip(ownerID)
	title := "Hijacked"
	body, _ := json.Marshal(dto.UpdateTripRequest{Title: &title})

	mockStore := new(MockStore)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)

	h := newTripsHandler(mockStore)
	rec := httptest.NewRecorder()
	h.UpdateTrip(rec, authedRequest(http.MethodPut, "/api/trips/"+trip.ID.String(), body, uuid.New()))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockStore.AssertNotCalled(t, "UpdateTrip", mock.Anything, mock.Anything)
}

func TestUpdateTripMaxTravelersBelowCurrentRejected(t *testing.T) {
	ownerID := uuid.New()
	trip := openTrip(ownerID)
	trip.CurrentTravelers = 3
	maxTravelers := 2
	body, _ := json.Marshal(dto.UpdateTripRequest{MaxTravelers: &maxTravelers})

	mockStore := new(MockStore)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)

	h := newTripsHandler(mockStore)
	rec := httptest.NewRecorder()
	h.UpdateTrip(rec, authedRequest(http.MethodPut, "/api/trips/"+trip.ID.String(), body, ownerID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStore.AssertNotCalled(t, "UpdateTrip", mock.Anything, mock.Anything)
}

func TestDeleteTripOwnerOnly(t *testing.T) {
	ownerID := uuid.New()
	trip := openTrip(ownerID)

	mockStore := new(MockStore)
	mockStore.On("GetTrip", mock.Anything, trip.ID).Return(trip, nil)
	mockStore.On("DeleteTrip", mock.Anything, trip.ID).Return(nil)

	h := newTripsHandler(mockStore)
	rec := httptest.NewRecorder()
	h.DeleteTrip(rec, authedRequest(http.MethodDelete, "/api/trips/"+trip.ID.String(), nil, ownerID))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	mockStore.AssertExpectations(t)
}
