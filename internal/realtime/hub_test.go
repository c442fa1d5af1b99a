package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

func receive(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHubDeliversToRecipientOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, "")
	go hub.Run(ctx)

	alice := uuid.New()
	bob := uuid.New()

	aliceClient := &Client{UserID: alice, Send: make(chan []byte, 4)}
	bobClient := &Client{UserID: bob, Send: make(chan []byte, 4)}
	hub.RegisterClient(aliceClient)
	hub.RegisterClient(bobClient)

	message := &models.Message{ID: uuid.New(), SenderID: bob, ReceiverID: alice, Content: "hey"}
	err := hub.Publish(ctx, Event{Type: EventNewMessage, UserID: alice, Message: message})
	assert.NoError(t, err)

	payload := receive(t, aliceClient.Send)

	var got Event
	assert.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, EventNewMessage, got.Type)
	assert.Equal(t, message.ID, got.Message.ID)
	assert.Equal(t, "hey", got.Message.Content)

	// Bob gets nothing
	select {
	case <-bobClient.Send:
		t.Fatal("event delivered to the wrong user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFansOutToAllConnectionsOfUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, "")
	go hub.Run(ctx)

	alice := uuid.New()
	first := &Client{UserID: alice, Send: make(chan []byte, 4)}
	second := &Client{UserID: alice, Send: make(chan []byte, 4)}
	hub.RegisterClient(first)
	hub.RegisterClient(second)

	err := hub.Publish(ctx, Event{Type: EventRequestUpdate, UserID: alice})
	assert.NoError(t, err)

	receive(t, first.Send)
	receive(t, second.Send)
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, "")
	go hub.Run(ctx)

	alice := uuid.New()
	client := &Client{UserID: alice, Send: make(chan []byte, 4)}
	hub.RegisterClient(client)
	hub.UnregisterClient(client)

	// Send channel is closed by the hub on unregister
	_, open := <-client.Send
	assert.False(t, open)

	// Publishing afterwards must not panic or block
	err := hub.Publish(ctx, Event{Type: EventNewMessage, UserID: alice})
	assert.NoError(t, err)
}
