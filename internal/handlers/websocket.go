package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/middleware"
	"github.com/sahil06012005/globe-trotter-match/internal/realtime"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketHandler upgrades authenticated connections and attaches them to
// the realtime hub.
type WebsocketHandler struct {
	hub    *realtime.Hub
	config *config.Config
}

// NewWebsocketHandler creates a new WebsocketHandler
func NewWebsocketHandler(hub *realtime.Hub, cfg *config.Config) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, config: cfg}
}

// Serve handles GET /ws. Browsers cannot set headers on websocket
// connections, so the JWT is also accepted as a query parameter.
func (h *WebsocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Token required")
		return
	}

	claims, err := middleware.ValidateToken(tokenString, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}

	client := realtime.NewClient(claims.UserID, conn)
	h.hub.RegisterClient(client)

	go client.WritePump()
	go client.ReadPump(h.hub)
}
