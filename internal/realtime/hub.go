package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub tracks connected websocket clients per user and fans events out to
// them. With a Redis client configured, events travel through a pub/sub
// channel so every instance delivers to its own sockets; without one the
// hub dispatches in-process.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan Event

	rdb     *redis.Client
	channel string
}

// NewHub creates a hub. rdb may be nil for single-instance deployments.
func NewHub(rdb *redis.Client, channel string) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
		rdb:        rdb,
		channel:    channel,
	}
}

// Run owns the client registry and dispatch loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.listenRedis(ctx)
	}

	for {
		select {
		case client := <-h.register:
			conns, ok := h.clients[client.UserID]
			if !ok {
				conns = make(map[*Client]bool)
				h.clients[client.UserID] = conns
			}
			conns[client] = true
			log.Printf("realtime: client connected (user_id=%s)", client.UserID)

		case client := <-h.unregister:
			if conns, ok := h.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.Send)
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
					log.Printf("realtime: client disconnected (user_id=%s)", client.UserID)
				}
			}

		case ev := <-h.events:
			h.dispatch(ev)

		case <-ctx.Done():
			for _, conns := range h.clients {
				for client := range conns {
					close(client.Send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			return
		}
	}
}

// Publish sends an event toward its recipient. It never blocks the caller
// on delivery; failures are reported so callers can log and move on.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	if h.rdb != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return h.rdb.Publish(ctx, h.channel, payload).Err()
	}

	select {
	case h.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterClient attaches a connected client to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient detaches a client. Safe to call from deferred teardown.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

func (h *Hub) dispatch(ev Event) {
	conns, ok := h.clients[ev.UserID]
	if !ok {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("realtime: marshal event: %v", err)
		return
	}

	for client := range conns {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer: drop it rather than stall the loop.
			delete(conns, client)
			close(client.Send)
		}
	}
	if len(conns) == 0 {
		delete(h.clients, ev.UserID)
	}
}

func (h *Hub) listenRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("realtime: bad event payload: %v", err)
				continue
			}
			select {
			case h.events <- ev:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
