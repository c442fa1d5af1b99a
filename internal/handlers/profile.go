package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

// ProfileHandler manages public profiles
type ProfileHandler struct {
	store store.Store
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(s store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// Profiles dispatches /api/profiles/me and /api/profiles/{id}
func (h *ProfileHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/me") {
		switch r.Method {
		case http.MethodGet:
			h.GetMe(w, r)
		case http.MethodPut, http.MethodPatch:
			h.UpdateMe(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.GetByID(w, r)
}

// GetMe handles GET /api/profiles/me
// @Summary Get my profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileEnvelope
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/profiles/me [get]
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}
	h.respondProfile(w, r, userID)
}

// GetByID handles GET /api/profiles/{id}
// @Summary Get a user's public profile
// @Tags profiles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.ProfileEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/profiles/{id} [get]
func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r.URL.Path, "/api/profiles/")
	if !ok {
		return
	}
	h.respondProfile(w, r, id)
}

// UpdateMe handles PUT /api/profiles/me. Only provided fields change.
// @Summary Update my profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} dto.ProfileEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/profiles/me [put]
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.UpdateProfileRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	profile, err := h.store.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Profile not found", "No profile for this user")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < 3 || len(username) > 50 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "Username must be between 3 and 50 characters")
			return
		}
		profile.Username = username
	}
	if req.FullName != nil {
		profile.FullName = req.FullName
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Location != nil {
		profile.Location = req.Location
	}
	if req.Age != nil {
		if *req.Age < 0 || *req.Age > 150 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "age must be between 0 and 150")
			return
		}
		profile.Age = req.Age
	}
	if req.Gender != nil {
		profile.Gender = req.Gender
	}
	if req.Interests != nil {
		profile.Interests = *req.Interests
	}
	if req.Languages != nil {
		profile.Languages = *req.Languages
	}

	if err := h.store.UpdateProfile(r.Context(), profile); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			utils.WriteErrorResponse(w, http.StatusConflict, "Username taken", "This username is already in use")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ProfileEnvelope{Profile: profileToResponse(profile)})
}

func (h *ProfileHandler) respondProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	profile, err := h.store.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Profile not found", "No profile for this user")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ProfileEnvelope{Profile: profileToResponse(profile)})
}

func profileToResponse(p *models.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        p.ID.String(),
		Username:  p.Username,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Location:  p.Location,
		Age:       p.Age,
		Gender:    p.Gender,
		Interests: p.Interests,
		Languages: p.Languages,
		CreatedAt: utils.FormatTimestamp(p.CreatedAt),
	}
}
