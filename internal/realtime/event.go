package realtime

import (
	"github.com/google/uuid"

	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

// Event types pushed to connected clients.
const (
	EventNewMessage    = "new_message"
	EventRequestUpdate = "request_update"
)

// Event is a realtime notification addressed to a single user. Message
// events carry the canonical stored message (including its id) so clients
// can reconcile optimistic copies instead of duplicating them.
type Event struct {
	Type    string              `json:"type"`
	UserID  uuid.UUID           `json:"user_id"`
	Message *models.Message     `json:"message,omitempty"`
	Request *models.TripRequest `json:"request,omitempty"`
}
