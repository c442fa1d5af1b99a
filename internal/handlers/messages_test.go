package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sahil06012005/globe-trotter-match/internal/dto"
	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

var messagesBase = time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

func msg(sender, receiver uuid.UUID, content string, minutesAgo int, read bool) models.Message {
	return models.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		Read:       read,
		CreatedAt:  messagesBase.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

func TestBuildConversations(t *testing.T) {
	me := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	// Newest first, matching the store ordering
	messages := []models.Message{
		msg(alice, me, "see you there", 1, false),
		msg(me, bob, "booked the hostel", 5, true),
		msg(alice, me, "sounds great", 10, false),
		msg(bob, me, "what about Lisbon?", 20, true),
		msg(me, alice, "let's plan the route", 30, true),
	}

	convs := buildConversations(messages, me)

	assert.Len(t, convs, 2)

	// Ordered by latest activity
	assert.Equal(t, alice, convs[0].PartnerID)
	assert.Equal(t, "see you there", convs[0].LastMessage)
	assert.Equal(t, 2, convs[0].UnreadCount)

	assert.Equal(t, bob, convs[1].PartnerID)
	assert.Equal(t, "booked the hostel", convs[1].LastMessage)
	assert.Equal(t, 0, convs[1].UnreadCount)
}

func TestBuildConversationsEmpty(t *testing.T) {
	convs := buildConversations(nil, uuid.New())
	assert.Empty(t, convs)
}

func TestBuildConversationsOwnMessagesNotCountedUnread(t *testing.T) {
	me := uuid.New()
	alice := uuid.New()

	messages := []models.Message{
		msg(me, alice, "hello?", 1, false),
	}

	convs := buildConversations(messages, me)
	assert.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].UnreadCount)
}

func TestSendMessageWhitespaceOnlyRejected(t *testing.T) {
	me := uuid.New()
	receiver := uuid.New()
	body, _ := json.Marshal(dto.SendMessageRequest{ReceiverID: receiver.String(), Content: "   \n\t  "})

	mockStore := new(MockStore)
	h := NewMessagesHandler(mockStore, new(MockNotifications), nil)

	rec := httptest.NewRecorder()
	h.Send(rec, authedRequest(http.MethodPost, "/api/messages", body, me))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStore.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageToSelfRejected(t *testing.T) {
	me := uuid.New()
	body, _ := json.Marshal(dto.SendMessageRequest{ReceiverID: me.String(), Content: "hi me"})

	mockStore := new(MockStore)
	h := NewMessagesHandler(mockStore, new(MockNotifications), nil)

	rec := httptest.NewRecorder()
	h.Send(rec, authedRequest(http.MethodPost, "/api/messages", body, me))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStore.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageTrimsContent(t *testing.T) {
	me := uuid.New()
	receiver := uuid.New()
	stored := msg(me, receiver, "hello from the road", 0, false)
	body, _ := json.Marshal(dto.SendMessageRequest{ReceiverID: receiver.String(), Content: "  hello from the road  "})

	mockStore := new(MockStore)
	mockNotifs := new(MockNotifications)
	mockStore.On("GetProfile", mock.Anything, receiver).Return(&models.Profile{ID: receiver, Username: "wanderer"}, nil)
	mockStore.On("CreateMessage", mock.Anything, me, receiver, "hello from the road").Return(&stored, nil)
	mockNotifs.On("Create", mock.Anything, receiver, TypeNewMessage, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	h := NewMessagesHandler(mockStore, mockNotifs, nil)
	rec := httptest.NewRecorder()
	h.Send(rec, authedRequest(http.MethodPost, "/api/messages", body, me))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.SendMessageResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello from the road", resp.Message.Content)
	mockStore.AssertExpectations(t)
}

func TestHistoryMarksIncomingUnread(t *testing.T) {
	me := uuid.New()
	alice := uuid.New()

	unreadIncoming := msg(alice, me, "are you around?", 2, false)
	readIncoming := msg(alice, me, "hey", 20, true)
	outgoing := msg(me, alice, "yes!", 1, false)

	// Ascending order, as the store returns history
	history := []models.Message{readIncoming, unreadIncoming, outgoing}

	mockStore := new(MockStore)
	mockStore.On("ListMessagesBetween", mock.Anything, me, alice).Return(history, nil)
	mockStore.On("MarkMessagesRead", mock.Anything, []uuid.UUID{unreadIncoming.ID}).Return(nil)

	h := NewMessagesHandler(mockStore, new(MockNotifications), nil)
	rec := httptest.NewRecorder()
	h.History(rec, authedRequest(http.MethodGet, "/api/messages/"+alice.String(), nil, me))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ConversationResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Messages, 3)
	for _, m := range resp.Messages {
		if m.ReceiverID == me.String() {
			assert.True(t, m.Read)
		}
	}
	mockStore.AssertExpectations(t)
}

func TestConversationsEndpoint(t *testing.T) {
	me := uuid.New()
	alice := uuid.New()

	mockStore := new(MockStore)
	mockStore.On("ListMessagesForUser", mock.Anything, me).Return([]models.Message{
		msg(alice, me, "ready when you are", 1, false),
	}, nil)
	mockStore.On("GetProfilesByIDs", mock.Anything, []uuid.UUID{alice}).Return([]models.Profile{
		{ID: alice, Username: "alice"},
	}, nil)

	h := NewMessagesHandler(mockStore, new(MockNotifications), nil)
	rec := httptest.NewRecorder()
	h.Conversations(rec, authedRequest(http.MethodGet, "/api/conversations", nil, me))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ConversationListResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Conversations, 1)
	assert.Equal(t, alice.String(), resp.Conversations[0].PartnerID)
	assert.Equal(t, "ready when you are", resp.Conversations[0].LastMessage)
	assert.Equal(t, 1, resp.Conversations[0].UnreadCount)
	if assert.NotNil(t, resp.Conversations[0].Partner) {
		assert.Equal(t, "alice", resp.Conversations[0].Partner.Username)
	}
}
