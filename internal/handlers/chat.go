package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldserve/fieldserve/internal/middleware"
	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/services/chatbot"
)

// ChatStore persists chat sessions and their messages.
type ChatStore interface {
	GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error)
	GetOrCreateSession(ctx context.Context, sessionID string, userID *int64, role, contextType string) (*models.ChatSession, error)
	AddMessage(ctx context.Context, m *models.ChatMessage) error
	RecentMessages(ctx context.Context, sessionID int64, limit int) ([]models.ChatMessage, error)
}

// ChatHandler handles chatbot conversations with persisted history
type ChatHandler struct {
	sessions ChatStore
	bot      *chatbot.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(sessions ChatStore, bot *chatbot.Service) *ChatHandler {
	return &ChatHandler{sessions: sessions, bot: bot}
}

type chatMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
	TicketID  *int64 `json:"ticket_id"`
}

// Message processes one chatbot turn. A missing session ID starts a new
// session; both the user message and the reply are persisted to it.
func (h *ChatHandler) Message(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.SessionID == "" {
		req.SessionID = strings.ReplaceAll(uuid.New().String(), "-", "")
	}

	ctx := c.Request.Context()
	var userID *int64
	if id, ok := middleware.GetUserID(c); ok {
		userID = &id
	}

	session, err := h.sessions.GetOrCreateSession(ctx, req.SessionID, userID, middleware.GetRole(c), "chatbot")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open chat session"})
		return
	}

	recent, err := h.sessions.RecentMessages(ctx, session.ID, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	history := make([]chatbot.Message, 0, len(recent))
	for _, m := range recent {
		history = append(history, chatbot.Message{Sender: m.Sender, Text: m.Message})
	}

	reply := h.bot.ProcessMessage(ctx, chatbot.Input{
		Message:   req.Message,
		SessionID: req.SessionID,
		Language:  req.Language,
		TicketID:  req.TicketID,
		History:   history,
	})

	h.sessions.AddMessage(ctx, &models.ChatMessage{SessionID: session.ID, Sender: "user", Message: req.Message})
	h.sessions.AddMessage(ctx, &models.ChatMessage{SessionID: session.ID, Sender: "assistant", Message: reply.Response})

	c.JSON(http.StatusOK, reply)
}

// History returns a session's recent messages in chronological order
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	ctx := c.Request.Context()
	session, err := h.sessions.GetSession(ctx, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat session"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	messages, err := h.sessions.RecentMessages(ctx, session.ID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": messages})
}
