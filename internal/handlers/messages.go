package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
	"github.com/sahil06012005/globe-trotter-match/internal/realtime"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

// MessagesHandler manages direct messages and the derived conversation list
type MessagesHandler struct {
	store         store.Store
	notifications NotificationsService
	hub           *realtime.Hub
}

// NewMessagesHandler creates a new MessagesHandler
func NewMessagesHandler(s store.Store, n NotificationsService, hub *realtime.Hub) *MessagesHandler {
	return &MessagesHandler{store: s, notifications: n, hub: hub}
}

// conversationSummary is one derived conversation: the counterpart, the
// latest message and how many incoming messages are still unread.
type conversationSummary struct {
	PartnerID       uuid.UUID
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
}

// buildConversations groups a user's messages by counterpart. Conversations
// are not stored; they are derived from the flat message list, newest
// activity first. messages must be ordered newest first.
func buildConversations(messages []models.Message, userID uuid.UUID) []conversationSummary {
	order := make([]uuid.UUID, 0)
	byPartner := make(map[uuid.UUID]*conversationSummary)

	for _, m := range messages {
		partnerID := m.SenderID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}

		summary, ok := byPartner[partnerID]
		if !ok {
			// First hit is the newest message of this conversation
			summary = &conversationSummary{
				PartnerID:       partnerID,
				LastMessage:     m.Content,
				LastMessageTime: m.CreatedAt,
			}
			byPartner[partnerID] = summary
			order = append(order, partnerID)
		}
		if m.ReceiverID == userID && !m.Read {
			summary.UnreadCount++
		}
	}

	out := make([]conversationSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byPartner[id])
	}
	return out
}

// Conversations handles GET /api/conversations
// @Summary List conversations
// @Description Conversations derived from the user's messages, newest activity first, with partner profiles and unread counts.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ConversationListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/conversations [get]
func (h *MessagesHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	messages, err := h.store.ListMessagesForUser(r.Context(), userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	summaries := buildConversations(messages, userID)

	partnerIDs := make([]uuid.UUID, 0, len(summaries))
	for _, s := range summaries {
		partnerIDs = append(partnerIDs, s.PartnerID)
	}
	profiles := make(map[uuid.UUID]*models.Profile, len(partnerIDs))
	if len(partnerIDs) > 0 {
		loaded, err := h.store.GetProfilesByIDs(r.Context(), partnerIDs)
		if err != nil {
			log.Printf("messages: load partner profiles: %v", err)
		}
		for i := range loaded {
			profiles[loaded[i].ID] = &loaded[i]
		}
	}

	out := make([]dto.ConversationItem, 0, len(summaries))
	for _, s := range summaries {
		item := dto.ConversationItem{
			PartnerID:       s.PartnerID.String(),
			LastMessage:     s.LastMessage,
			LastMessageTime: utils.FormatTimestamp(s.LastMessageTime),
			UnreadCount:     s.UnreadCount,
		}
		if p, ok := profiles[s.PartnerID]; ok {
			pr := profileToResponse(p)
			item.Partner = &pr
		}
		out = append(out, item)
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ConversationListResponse{Conversations: out})
}

// History handles GET /api/messages/{partnerID}: the full ordered exchange
// with one counterpart. Opening a conversation marks its incoming unread
// messages as read.
// @Summary Get conversation history
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param partnerID path string true "Partner user ID"
// @Success 200 {object} dto.ConversationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/messages/{partnerID} [get]
func (h *MessagesHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	partnerID, ok := pathUUID(w, r.URL.Path, "/api/messages/")
	if !ok {
		return
	}

	messages, err := h.store.ListMessagesBetween(r.Context(), userID, partnerID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	// Bulk mark-read on open
	unread := make([]uuid.UUID, 0)
	for _, m := range messages {
		if m.ReceiverID == userID && !m.Read {
			unread = append(unread, m.ID)
		}
	}
	if len(unread) > 0 {
		if err := h.store.MarkMessagesRead(r.Context(), unread); err != nil {
			log.Printf("messages: mark read: %v", err)
		} else {
			for i := range messages {
				if messages[i].ReceiverID == userID {
					messages[i].Read = true
				}
			}
		}
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, messageToResponse(&messages[i]))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ConversationResponse{Messages: out})
}

// Send handles POST /api/messages
// @Summary Send a direct message
// @Description Store a message and push it to the receiver's open websocket connections.
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SendMessageRequest true "Message payload"
// @Success 201 {object} dto.SendMessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/messages [post]
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.SendMessageRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "receiver_id must be a valid UUID")
		return
	}
	if receiverID == userID {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "Cannot send a message to yourself")
		return
	}

	// Whitespace-only content never reaches the store
	content := strings.TrimSpace(req.Content)
	if content == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "Message content cannot be empty")
		return
	}

	if _, err := h.store.GetProfile(r.Context(), receiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Receiver not found", "No user with this id")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	message, err := h.store.CreateMessage(r.Context(), userID, receiverID, content)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	if h.hub != nil {
		ev := realtime.Event{
			Type:    realtime.EventNewMessage,
			UserID:  receiverID,
			Message: message,
		}
		if err := h.hub.Publish(r.Context(), ev); err != nil {
			log.Printf("messages: publish event: %v", err)
		}
	}

	preview := content
	if len(preview) > 120 {
		preview = preview[:120]
	}
	actionURL := "/messages/" + userID.String()
	if err := h.notifications.Create(r.Context(), receiverID, TypeNewMessage, "New message", &preview, map[string]any{"sender_id": userID.String()}, &actionURL); err != nil {
		log.Printf("messages: notify receiver: %v", err)
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.SendMessageResponse{Message: messageToResponse(message)})
}

func messageToResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  utils.FormatTimestamp(m.CreatedAt),
	}
}
