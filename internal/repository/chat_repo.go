package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldserve/fieldserve/internal/models"
)

// ChatRepository handles chat session database operations
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetSession finds a chat session by its external ID, returning nil when it
// does not exist
func (r *ChatRepository) GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, role, context_type, created_at, updated_at
		 FROM chat_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&s.ID, &s.SessionID, &s.UserID, &s.Role, &s.ContextType, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &s, nil
}

// GetOrCreateSession finds a chat session by its external ID or creates it
func (r *ChatRepository) GetOrCreateSession(ctx context.Context, sessionID string, userID *int64, role, contextType string) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, role, context_type, created_at, updated_at
		 FROM chat_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&s.ID, &s.SessionID, &s.UserID, &s.Role, &s.ContextType, &s.CreatedAt, &s.UpdatedAt)

	if err == nil {
		return &s, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	now := time.Now()
	s = models.ChatSession{
		SessionID:   sessionID,
		UserID:      userID,
		Role:        role,
		ContextType: contextType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO chat_sessions (session_id, user_id, role, context_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		s.SessionID, s.UserID, s.Role, s.ContextType, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return &s, nil
}

// AddMessage appends a message to a session and touches its updated_at
func (r *ChatRepository) AddMessage(ctx context.Context, m *models.ChatMessage) error {
	m.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO chat_messages (session_id, sender, message, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		m.SessionID, m.Sender, m.Message, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = $1 WHERE id = $2`,
		m.CreatedAt, m.SessionID,
	)
	return err
}

// RecentMessages returns the last limit messages of a session in
// chronological order
func (r *ChatRepository) RecentMessages(ctx context.Context, sessionID int64, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, sender, message, created_at
		 FROM chat_messages WHERE session_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
