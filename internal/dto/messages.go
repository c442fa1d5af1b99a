package dto

// SendMessageRequest represents the payload to send a direct message
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// MessageResponse represents a message in responses
type MessageResponse struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"created_at"`
}

// SendMessageResponse envelope
type SendMessageResponse struct {
	Message MessageResponse `json:"message"`
}

// ConversationItem is one entry in the conversation list: the counterpart,
// the last message preview and the unread count.
type ConversationItem struct {
	PartnerID       string           `json:"partner_id"`
	Partner         *ProfileResponse `json:"partner,omitempty"`
	LastMessage     string           `json:"last_message"`
	LastMessageTime string           `json:"last_message_time"`
	UnreadCount     int              `json:"unread_count"`
}

// ConversationListResponse envelope
type ConversationListResponse struct {
	Conversations []ConversationItem `json:"conversations"`
}

// ConversationResponse is the full ordered history with one counterpart
type ConversationResponse struct {
	Messages []MessageResponse `json:"messages"`
}
