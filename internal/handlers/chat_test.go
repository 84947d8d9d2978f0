package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/services/chatbot"
)

type fakeChatStore struct {
	sessions map[string]*models.ChatSession
	messages map[int64][]models.ChatMessage
	created  int
	nextID   int64
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		sessions: make(map[string]*models.ChatSession),
		messages: make(map[int64][]models.ChatMessage),
	}
}

func (f *fakeChatStore) GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	return f.sessions[sessionID], nil
}

func (f *fakeChatStore) GetOrCreateSession(ctx context.Context, sessionID string, userID *int64, role, contextType string) (*models.ChatSession, error) {
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	f.created++
	f.nextID++
	s := &models.ChatSession{ID: f.nextID, SessionID: sessionID, UserID: userID, Role: role, ContextType: contextType}
	f.sessions[sessionID] = s
	return s, nil
}

func (f *fakeChatStore) AddMessage(ctx context.Context, m *models.ChatMessage) error {
	f.messages[m.SessionID] = append(f.messages[m.SessionID], *m)
	return nil
}

func (f *fakeChatStore) RecentMessages(ctx context.Context, sessionID int64, limit int) ([]models.ChatMessage, error) {
	msgs := f.messages[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func newChatRouter(store *fakeChatStore) *gin.Engine {
	router := gin.New()
	handler := NewChatHandler(store, chatbot.NewService(nil))
	router.POST("/api/v1/ai/chatbot/message", handler.Message)
	router.GET("/api/v1/ai/chatbot/history/:session_id", handler.History)
	return router
}

func TestChatHistoryUnknownSession(t *testing.T) {
	store := newFakeChatStore()
	router := newChatRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/ai/chatbot/history/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, store.created, "a history read must not create a session")
}

func TestChatHistoryReturnsMessages(t *testing.T) {
	store := newFakeChatStore()
	session, err := store.GetOrCreateSession(context.Background(), "abc123", nil, "", "chatbot")
	require.NoError(t, err)
	store.AddMessage(context.Background(), &models.ChatMessage{SessionID: session.ID, Sender: "user", Message: "hello"})
	store.AddMessage(context.Background(), &models.ChatMessage{SessionID: session.ID, Sender: "assistant", Message: "hi"})

	router := newChatRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/ai/chatbot/history/abc123", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string               `json:"session_id"`
		Messages  []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp.SessionID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "hello", resp.Messages[0].Message)
}

func TestChatMessagePersistsBothTurns(t *testing.T) {
	store := newFakeChatStore()
	router := newChatRouter(store)

	body := `{"message": "I want to create a new ticket", "session_id": "abc123"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/ai/chatbot/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var reply chatbot.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "abc123", reply.SessionID)
	assert.NotEmpty(t, reply.Response)

	session := store.sessions["abc123"]
	require.NotNil(t, session)
	require.Len(t, store.messages[session.ID], 2)
	assert.Equal(t, "user", store.messages[session.ID][0].Sender)
	assert.Equal(t, "assistant", store.messages[session.ID][1].Sender)
}
