package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
	"github.com/sahil06012005/globe-trotter-match/internal/tripsearch"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

// TripsHandler manages trip-related endpoints
type TripsHandler struct {
	store  store.Store
	config *config.Config
}

// NewTripsHandler creates a new TripsHandler
func NewTripsHandler(s store.Store, cfg *config.Config) *TripsHandler {
	return &TripsHandler{store: s, config: cfg}
}

// Trips dispatches by HTTP method for /api/trips and /api/trips/{id}
func (h *TripsHandler) Trips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateTrip(w, r)
	case http.MethodGet:
		// If path has an ID suffix, treat as detail
		if strings.HasPrefix(r.URL.Path, "/api/trips/") && len(r.URL.Path) > len("/api/trips/") {
			h.TripDetail(w, r)
			return
		}
		h.ListTrips(w, r)
	case http.MethodPut, http.MethodPatch:
		h.UpdateTrip(w, r)
	case http.MethodDelete:
		h.DeleteTrip(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CreateTrip handles POST /api/trips
// @Summary Create a new trip
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTripRequest true "Trip payload"
// @Success 201 {object} dto.CreateTripResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [post]
func (h *TripsHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.CreateTripRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	// Basic validation
	req.Title = strings.TrimSpace(req.Title)
	req.Destination = strings.TrimSpace(req.Destination)
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if req.Title == "" || req.Destination == "" || req.StartDate == "" || req.EndDate == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "title, destination, start_date, end_date are required")
		return
	}
	if req.Status == "" {
		req.Status = models.TripStatusPlanning
	}
	if !models.ValidTripStatus(req.Status) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "status must be planning, confirmed, completed, or cancelled")
		return
	}
	if req.MaxTravelers < 2 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "max_travelers must be at least 2")
		return
	}

	// Parse dates (ISO 8601 format: YYYY-MM-DD or RFC3339)
	startAt, err := utils.ParseDate(req.StartDate)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "start_date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
		return
	}
	endAt, err := utils.ParseDate(req.EndDate)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
		return
	}
	if endAt.Before(startAt) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date cannot be before start_date")
		return
	}

	now := time.Now()
	trip := &models.Trip{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            req.Title,
		Destination:      req.Destination,
		Description:      strings.TrimSpace(req.Description),
		StartDate:        startAt,
		EndDate:          endAt,
		Budget:           req.Budget,
		MaxTravelers:     req.MaxTravelers,
		CurrentTravelers: 1, // the creator travels too
		Interests:        req.Interests,
		Status:           req.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.store.CreateTrip(r.Context(), trip); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.CreateTripResponse{Trip: tripToResponse(trip)})
}

// ListTrips handles GET /api/trips with optional search filters
// @Summary List trips
// @Description List trips, optionally filtered by destination, period, budget and interests
// @Tags trips
// @Produce json
// @Param destination query string false "Substring matched against destination and title"
// @Param period query string false "next-month | next-3-months | next-6-months | this-year | flexible"
// @Param budget query string false "Exact budget category"
// @Param interests query string false "Comma-separated interests (match any)"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.TripListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [get]
func (h *TripsHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.store.ListTrips(r.Context())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	filter := filterFromQuery(r)
	matched := tripsearch.Apply(trips, filter, time.Now())

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	total := len(matched)
	page := matched
	if offset >= total {
		page = nil
	} else {
		end := offset + limit
		if end > total {
			end = total
		}
		page = matched[offset:end]
	}

	out := make([]dto.TripResponse, 0, len(page))
	for i := range page {
		out = append(out, tripToResponse(&page[i]))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TripListResponse{
		Trips: out,
		Pagination: dto.Pagination{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// TripDetail handles GET /api/trips/{id}
// @Summary Get one trip
// @Tags trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} dto.CreateTripResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{id} [get]
func (h *TripsHandler) TripDetail(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r.URL.Path, "/api/trips/")
	if !ok {
		return
	}

	trip, err := h.store.GetTrip(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Trip not found", "No trip with this id")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.CreateTripResponse{Trip: tripToResponse(trip)})
}

// UpdateTrip handles PUT /api/trips/{id}. Only the owner may update.
// @Summary Update a trip
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Param payload body dto.UpdateTripRequest true "Fields to update"
// @Success 200 {object} dto.CreateTripResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{id} [put]
func (h *TripsHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	tripID, ok := pathUUID(w, r.URL.Path, "/api/trips/")
	if !ok {
		return
	}

	var req dto.UpdateTripRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	trip, err := h.store.GetTrip(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Trip not found", "No trip with this id")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	if trip.UserID != userID {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the trip creator can update this trip")
		return
	}

	if req.Title != nil {
		trip.Title = strings.TrimSpace(*req.Title)
	}
	if req.Destination != nil {
		trip.Destination = strings.TrimSpace(*req.Destination)
	}
	if req.Description != nil {
		trip.Description = strings.TrimSpace(*req.Description)
	}
	if req.StartDate != nil {
		startAt, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "start_date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
			return
		}
		trip.StartDate = startAt
	}
	if req.EndDate != nil {
		endAt, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
			return
		}
		trip.EndDate = endAt
	}
	if trip.EndDate.Before(trip.StartDate) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date cannot be before start_date")
		return
	}
	if req.Budget != nil {
		trip.Budget = *req.Budget
	}
	if req.MaxTravelers != nil {
		if *req.MaxTravelers < 2 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "max_travelers must be at least 2")
			return
		}
		if *req.MaxTravelers < trip.CurrentTravelers {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "max_travelers cannot be below the current traveler count")
			return
		}
		trip.MaxTravelers = *req.MaxTravelers
	}
	if req.Interests != nil {
		trip.Interests = *req.Interests
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !models.ValidTripStatus(status) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "status must be planning, confirmed, completed, or cancelled")
			return
		}
		trip.Status = status
	}
	if trip.Title == "" || trip.Destination == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "title and destination cannot be empty")
		return
	}

	if err := h.store.UpdateTrip(r.Context(), trip); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.CreateTripResponse{Trip: tripToResponse(trip)})
}

// DeleteTrip handles DELETE /api/trips/{id}. Only the owner may delete.
// @Summary Delete a trip
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{id} [delete]
func (h *TripsHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	tripID, ok := pathUUID(w, r.URL.Path, "/api/trips/")
	if !ok {
		return
	}

	trip, err := h.store.GetTrip(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Trip not found", "No trip with this id")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	if trip.UserID != userID {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the trip creator can delete this trip")
		return
	}

	if err := h.store.DeleteTrip(r.Context(), tripID); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func filterFromQuery(r *http.Request) tripsearch.Filter {
	q := r.URL.Query()
	f := tripsearch.Filter{
		Destination: strings.TrimSpace(q.Get("destination")),
		Period:      tripsearch.Period(strings.TrimSpace(q.Get("period"))),
		Budget:      strings.TrimSpace(q.Get("budget")),
	}
	if raw := q.Get("interests"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				f.Interests = append(f.Interests, p)
			}
		}
	}
	return f
}

func queryInt(r *http.Request, key string, def int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

// pathUUID extracts the UUID path segment following prefix. On failure it
// writes a 400 and returns false.
func pathUUID(w http.ResponseWriter, path, prefix string) (uuid.UUID, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid id", "Path must contain a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func tripToResponse(t *models.Trip) dto.TripResponse {
	return dto.TripResponse{
		ID:               t.ID.String(),
		UserID:           t.UserID.String(),
		Title:            t.Title,
		Destination:      t.Destination,
		Description:      t.Description,
		StartDate:        utils.FormatDate(t.StartDate),
		EndDate:          utils.FormatDate(t.EndDate),
		Budget:           t.Budget,
		MaxTravelers:     t.MaxTravelers,
		CurrentTravelers: t.CurrentTravelers,
		Interests:        t.Interests,
		ImageURL:         t.ImageURL,
		Status:           t.Status,
		CreatedAt:        utils.FormatTimestamp(t.CreatedAt),
		UpdatedAt:        utils.FormatTimestamp(t.UpdatedAt),
	}
}
