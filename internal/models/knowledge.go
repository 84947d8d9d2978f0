package models

import (
	"time"
)

// KnowledgeEntry is a knowledge base document used for retrieval
type KnowledgeEntry struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Tags      []string  `json:"tags" db:"-"`
	Role      *string   `json:"role,omitempty" db:"role"`
	Source    string    `json:"source" db:"source"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ChatSession is a persisted conversation with the chatbot or role assistant
type ChatSession struct {
	ID          int64     `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	UserID      *int64    `json:"user_id,omitempty" db:"user_id"`
	Role        string    `json:"role" db:"role"`
	ContextType string    `json:"context_type" db:"context_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ChatMessage is a single message within a chat session
type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	SessionID int64     `json:"session_id" db:"session_id"`
	Sender    string    `json:"sender" db:"sender"` // user, assistant, system
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
