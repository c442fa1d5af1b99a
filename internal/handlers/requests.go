package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
	"github.com/sahil06012005/globe-trotter-match/internal/realtime"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

// RequestsHandler manages trip join requests: creation by interested
// travelers and approval or rejection by the trip creator.
type RequestsHandler struct {
	store         store.Store
	notifications NotificationsService
	hub           *realtime.Hub
	config        *config.Config
}

// NewRequestsHandler creates a new RequestsHandler
func NewRequestsHandler(s store.Store, n NotificationsService, hub *realtime.Hub, cfg *config.Config) *RequestsHandler {
	return &RequestsHandler{store: s, notifications: n, hub: hub, config: cfg}
}

// TripRequests dispatches /api/trips/{id}/requests
func (h *RequestsHandler) TripRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateRequest(w, r)
	case http.MethodGet:
		h.ListForTrip(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CreateRequest handles POST /api/trips/{id}/requests
// @Summary Request to join a trip
// @Description Create a pending join request. Each user may hold at most one request per trip.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Param payload body dto.CreateTripRequestRequest true "Optional message to the trip creator"
// @Success 201 {object} dto.CreateTripRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{id}/requests [post]
func (h *RequestsHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	tripID, ok := pathUUID(w, r.URL.Path, "/api/trips/")
	if !ok {
		return
	}

	var req dto.CreateTripRequestRequest
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
	if trip.UserID == userID {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "You cannot request to join your own trip")
		return
	}

	var message *string
	if m := strings.TrimSpace(req.Message); m != "" {
		message = &m
	}

	request, err := h.store.CreateRequest(r.Context(), tripID, userID, message)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateRequest) {
			utils.WriteErrorResponse(w, http.StatusConflict, "Request already exists", "You have already requested to join this trip")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	h.notifyOwner(r, trip, userID)

	utils.WriteJSONResponse(w, http.StatusCreated, dto.CreateTripRequestResponse{
		Request: requestToResponse(request, nil, nil),
	})
}

// ListForTrip handles GET /api/trips/{id}/requests. Only the trip creator
// can see incoming requests; requester profiles are joined in.
// @Summary List join requests for a trip
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Success 200 {object} dto.TripRequestListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{id}/requests [get]
func (h *RequestsHandler) ListForTrip(w http.ResponseWriter, r *http.Request) {
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
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the trip creator can view its join requests")
		return
	}

	requests, err := h.store.ListRequestsForTrip(r.Context(), tripID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	profiles := h.profilesFor(r, requesterIDs(requests))

	out := make([]dto.TripRequestResponse, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		out = append(out, requestToResponse(req, profiles[req.UserID], nil))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TripRequestListResponse{Requests: out})
}

// ListMine handles GET /api/requests: requests the authenticated user has
// made, each with its trip embedded.
// @Summary List my join requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TripRequestListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/requests [get]
func (h *RequestsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	requests, err := h.store.ListRequestsByUser(r.Context(), userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	out := make([]dto.TripRequestResponse, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		var trip *models.Trip
		if t, err := h.store.GetTrip(r.Context(), req.TripID); err == nil {
			trip = t
		}
		out = append(out, requestToResponse(req, nil, trip))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TripRequestListResponse{Requests: out})
}

// Approve handles POST /api/requests/{id}/approve
// @Summary Approve a join request
// @Description Approve a pending request and add the requester to the trip's traveler count. Fails when the trip is already full or the request is not pending.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.CreateTripRequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/requests/{id}/approve [post]
func (h *RequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// Reject handles POST /api/requests/{id}/reject
// @Summary Reject a join request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.CreateTripRequestResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/requests/{id}/reject [post]
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

// resolve moves a pending request to its terminal state. The store enforces
// atomicity: the pending check, the status flip and (on approval) the
// traveler counter all commit or roll back together.
func (h *RequestsHandler) resolve(w http.ResponseWriter, r *http.Request, approve bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	requestID, ok := pathUUID(w, r.URL.Path, "/api/requests/")
	if !ok {
		return
	}

	request, err := h.store.GetRequest(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Request not found", "No join request with this id")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	trip, err := h.store.GetTrip(r.Context(), request.TripID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	if trip.UserID != userID {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the trip creator can resolve join requests")
		return
	}

	var resolved *models.TripRequest
	if approve {
		resolved, err = h.store.ApproveRequest(r.Context(), requestID)
	} else {
		resolved, err = h.store.RejectRequest(r.Context(), requestID)
	}
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRequestClosed):
			utils.WriteErrorResponse(w, http.StatusConflict, "Request already resolved", "This request has already been approved or rejected")
		case errors.Is(err, store.ErrTripFull):
			utils.WriteErrorResponse(w, http.StatusConflict, "Trip is full", "The trip has reached its maximum number of travelers")
		case errors.Is(err, store.ErrNotFound):
			utils.WriteErrorResponse(w, http.StatusNotFound, "Request not found", "No join request with this id")
		default:
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		}
		return
	}

	h.notifyRequester(r, trip, resolved)

	utils.WriteJSONResponse(w, http.StatusOK, dto.CreateTripRequestResponse{
		Request: requestToResponse(resolved, nil, nil),
	})
}

// notifyOwner records a notification for the trip creator about a new
// incoming request. Failures are logged; the request itself already
// succeeded.
func (h *RequestsHandler) notifyOwner(r *http.Request, trip *models.Trip, requesterID uuid.UUID) {
	title := fmt.Sprintf("New join request for %s", trip.Title)
	actionURL := fmt.Sprintf("/trips/%s/requests", trip.ID)
	data := map[string]any{
		"trip_id":      trip.ID.String(),
		"requester_id": requesterID.String(),
	}
	if err := h.notifications.Create(r.Context(), trip.UserID, TypeTripRequestReceived, title, nil, data, &actionURL); err != nil {
		log.Printf("requests: notify owner: %v", err)
	}
}

// notifyRequester records a notification and pushes a realtime event to the
// requester after their request is resolved.
func (h *RequestsHandler) notifyRequester(r *http.Request, trip *models.Trip, request *models.TripRequest) {
	nType := TypeRequestApproved
	title := fmt.Sprintf("Your request to join %s was approved", trip.Title)
	if request.Status == models.RequestStatusRejected {
		nType = TypeRequestRejected
		title = fmt.Sprintf("Your request to join %s was rejected", trip.Title)
	}
	actionURL := fmt.Sprintf("/trips/%s", trip.ID)
	data := map[string]any{"trip_id": trip.ID.String()}
	if err := h.notifications.Create(r.Context(), request.UserID, nType, title, nil, data, &actionURL); err != nil {
		log.Printf("requests: notify requester: %v", err)
	}

	if h.hub != nil {
		ev := realtime.Event{
			Type:    realtime.EventRequestUpdate,
			UserID:  request.UserID,
			Request: request,
		}
		if err := h.hub.Publish(r.Context(), ev); err != nil {
			log.Printf("requests: publish event: %v", err)
		}
	}
}

func (h *RequestsHandler) profilesFor(r *http.Request, ids []uuid.UUID) map[uuid.UUID]*models.Profile {
	out := make(map[uuid.UUID]*models.Profile, len(ids))
	if len(ids) == 0 {
		return out
	}
	profiles, err := h.store.GetProfilesByIDs(r.Context(), ids)
	if err != nil {
		log.Printf("requests: load requester profiles: %v", err)
		return out
	}
	for i := range profiles {
		out[profiles[i].ID] = &profiles[i]
	}
	return out
}

func requesterIDs(requests []models.TripRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(requests))
	seen := make(map[uuid.UUID]bool, len(requests))
	for _, req := range requests {
		if !seen[req.UserID] {
			seen[req.UserID] = true
			ids = append(ids, req.UserID)
		}
	}
	return ids
}

func requestToResponse(req *models.TripRequest, requester *models.Profile, trip *models.Trip) dto.TripRequestResponse {
	resp := dto.TripRequestResponse{
		ID:        req.ID.String(),
		TripID:    req.TripID.String(),
		UserID:    req.UserID.String(),
		Message:   req.Message,
		Status:    req.Status,
		CreatedAt: utils.FormatTimestamp(req.CreatedAt),
		UpdatedAt: utils.FormatTimestamp(req.UpdatedAt),
	}
	if requester != nil {
		p := profileToResponse(requester)
		resp.Requester = &p
	}
	if trip != nil {
		t := tripToResponse(trip)
		resp.Trip = &t
	}
	return resp
}
