package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

// UploadsHandler stores trip cover images and profile avatars on disk
type UploadsHandler struct {
	store  store.Store
	config *config.Config
}

// NewUploadsHandler creates a new UploadsHandler
func NewUploadsHandler(s store.Store, cfg *config.Config) *UploadsHandler {
	return &UploadsHandler{store: s, config: cfg}
}

// TripImage handles POST /api/trips/{id}/image. Only the owner may set the
// cover image. The image is re-encoded and bounded to 1600px wide.
// @Summary Upload a trip cover image
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Param image formData file true "Image file"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{id}/image [post]
func (h *UploadsHandler) TripImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

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
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the trip creator can set its image")
		return
	}

	url, ok := h.saveImage(w, r, "trips", 1600, 0)
	if !ok {
		return
	}

	if err := h.store.SetTripImage(r.Context(), tripID, url); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.UploadResponse{URL: url})
}

// Avatar handles POST /api/profiles/me/avatar. Avatars are cropped to a
// 512px square.
// @Summary Upload my avatar
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/profiles/me/avatar [post]
func (h *UploadsHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	url, ok := h.saveImage(w, r, "avatars", 512, 512)
	if !ok {
		return
	}

	if err := h.store.SetAvatarURL(r.Context(), userID, url); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.UploadResponse{URL: url})
}

// saveImage reads the "image" form file, re-encodes it as JPEG and writes
// it under the upload directory. Height 0 means fit to width preserving
// aspect ratio; both set means center-crop fill. On failure it writes the
// error response and returns false.
func (h *UploadsHandler) saveImage(w http.ResponseWriter, r *http.Request, subdir string, width, height int) (string, bool) {
	if err := r.ParseMultipartForm(h.config.Storage.MaxUploadSize); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "Could not parse multipart form")
		return "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "An image file is required under the 'image' field")
		return "", false
	}
	defer file.Close()

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", "File is not a supported image format")
		return "", false
	}

	if height > 0 {
		img = imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	} else if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	dir := filepath.Join(h.config.Storage.Dir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Storage error", err.Error())
		return "", false
	}

	fileName := uuid.New().String() + ".jpg"
	path := filepath.Join(dir, fileName)
	if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Storage error", err.Error())
		return "", false
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(h.config.Storage.BaseURL, "/"), subdir, fileName)
	return url, true
}
