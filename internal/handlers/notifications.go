package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

// Notification types
const (
	TypeTripRequestReceived = "trip_request_received"
	TypeRequestApproved     = "request_approved"
	TypeRequestRejected     = "request_rejected"
	TypeNewMessage          = "new_message"
)

func validNotificationType(t string) bool {
	switch t {
	case TypeTripRequestReceived, TypeRequestApproved, TypeRequestRejected, TypeNewMessage:
		return true
	}
	return false
}

// NotificationsService records in-app notifications for a user
type NotificationsService interface {
	Create(ctx context.Context, userID uuid.UUID, nType string, title string, message *string, data map[string]any, actionURL *string) error
}

type notificationsService struct {
	db *pgxpool.Pool
}

func NewNotificationsService(db *pgxpool.Pool) NotificationsService {
	return &notificationsService{db: db}
}

func (s *notificationsService) Create(
	ctx context.Context,
	userID uuid.UUID,
	nType string,
	title string,
	message *string,
	data map[string]any,
	actionURL *string,
) error {
	if userID == uuid.Nil {
		return errors.New("user_id cannot be nil")
	}
	if strings.TrimSpace(title) == "" {
		return errors.New("notification title is required")
	}
	if !validNotificationType(nType) {
		log.Printf("Warning: unknown notification type %q (user_id=%s)", nType, userID)
	}

	var dataJSON any
	if len(data) > 0 {
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = string(jsonBytes)
	}

	insertCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cmdTag, err := s.db.Exec(insertCtx, `
		INSERT INTO notifications (user_id, type, title, message, data, action_url)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
	`, userID, nType, title, message, dataJSON, actionURL)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	if cmdTag.RowsAffected() != 1 {
		return errors.New("unexpected number of rows affected")
	}
	return nil
}

// NotificationsHandler: HTTP endpoints (list/mark read/mark all read)
type NotificationsHandler struct {
	db  *pgxpool.Pool
	svc NotificationsService
}

func NewNotificationsHandler(db *pgxpool.Pool) *NotificationsHandler {
	return &NotificationsHandler{
		db:  db,
		svc: NewNotificationsService(db),
	}
}

func (h *NotificationsHandler) Service() NotificationsService { return h.svc }

// ListNotifications handles GET /api/notifications
// @Summary List notifications
// @Description List user notifications with filters and pagination.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread_only query bool false "true|false (default false)"
// @Param type query string false "filter by type"
// @Param limit query int false "default 20 (max 100)"
// @Param offset query int false "default 0"
// @Success 200 {object} dto.NotificationListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications [get]
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	unreadOnly := strings.EqualFold(q.Get("unread_only"), "true")
	typ := strings.TrimSpace(q.Get("type"))

	limit := 20
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 100 {
				n = 100
			}
			limit = n
		} else {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		} else {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid offset", "offset must be a non-negative integer")
			return
		}
	}
	if typ != "" && !validNotificationType(typ) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid type", "invalid notification type")
		return
	}

	var unreadCount int
	if err := h.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM notifications WHERE user_id=$1 AND read=false`, userID,
	).Scan(&unreadCount); err != nil {
		log.Printf("Error counting unread notifications: %v (user_id=%s)", err, userID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to count unread notifications")
		return
	}

	args := []any{userID}
	where := `WHERE user_id=$1`
	argNum := 2
	if unreadOnly {
		where += " AND read=false"
	}
	if typ != "" {
		where += fmt.Sprintf(" AND type=$%d", argNum)
		args = append(args, typ)
		argNum++
	}

	var total int
	if err := h.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(1) FROM notifications %s`, where), args...,
	).Scan(&total); err != nil {
		log.Printf("Error counting notifications: %v (user_id=%s)", err, userID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to count notifications")
		return
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, type, title, message, data, action_url, read, created_at
		FROM notifications %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argNum, argNum+1)

	rows, err := h.db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error querying notifications: %v (user_id=%s)", err, userID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to fetch notifications")
		return
	}
	defer rows.Close()

	items := make([]dto.NotificationItem, 0, limit)
	for rows.Next() {
		var (
			id        uuid.UUID
			typStr    string
			title     string
			message   *string
			dataRaw   []byte
			actionURL *string
			read      bool
			createdAt time.Time
		)
		if err := rows.Scan(&id, &typStr, &title, &message, &dataRaw, &actionURL, &read, &createdAt); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to process notification data")
			return
		}

		var data map[string]any
		if len(dataRaw) > 0 && string(dataRaw) != "null" {
			if err := json.Unmarshal(dataRaw, &data); err != nil {
				log.Printf("Warning: failed to unmarshal notification data: %v (notification_id=%s)", err, id)
				data = nil
			}
		}

		items = append(items, dto.NotificationItem{
			ID:        id.String(),
			Type:      typStr,
			Title:     title,
			Message:   message,
			Data:      data,
			ActionURL: actionURL,
			Read:      read,
			CreatedAt: utils.FormatTimestamp(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to process notifications")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.NotificationListResponse{
		Notifications: items,
		Pagination: dto.NotificationListPagination{
			Total:       total,
			UnreadCount: unreadCount,
			Limit:       limit,
			Offset:      offset,
		},
	})
}

// MarkRead handles POST /api/notifications/{id}/read
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications/{id}/read [post]
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	if !strings.HasSuffix(r.URL.Path, "/read") {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid path", "missing or invalid notification id")
		return
	}
	nID, ok := pathUUID(w, r.URL.Path, "/api/notifications/")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// Users can only mark their own notifications as read
	cmd, err := h.db.Exec(ctx,
		`UPDATE notifications SET read=true WHERE id=$1 AND user_id=$2 AND read=false`,
		nID, userID,
	)
	if err != nil {
		log.Printf("Error marking notification as read: %v (notification_id=%s, user_id=%s)", err, nID, userID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to update notification")
		return
	}
	if cmd.RowsAffected() == 0 {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Notification not found or already marked as read")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Notification marked as read",
	})
}

// MarkAllRead handles POST /api/notifications/read-all
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications/read-all [post]
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cmd, err := h.db.Exec(ctx,
		`UPDATE notifications SET read=true WHERE user_id=$1 AND read=false`, userID,
	)
	if err != nil {
		log.Printf("Error marking all notifications as read: %v (user_id=%s)", err, userID)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", "Failed to update notifications")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"message":       "All notifications marked as read",
		"updated_count": cmd.RowsAffected(),
	})
}
