// Package notification delivers in-app notifications over Redis-backed
// per-user feeds with in-process subscriptions, and escalates critical events
// to the on-call Slack channel.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/slack-go/slack"

	"github.com/fieldserve/fieldserve/internal/config"
)

const (
	feedLength       = 100
	subscriberBuffer = 16
)

// Notification is one message delivered to a user.
type Notification struct {
	ID        uuid.UUID       `json:"id"`
	UserID    int64           `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// Service fans notifications out to subscribers and persists recent history.
type Service struct {
	redis        *redis.Client
	slack        *slack.Client
	slackChannel string

	mu          sync.RWMutex
	subscribers map[int64][]chan Notification
}

// NewService wires the notification service. Redis and Slack are both
// optional: without Redis history is dropped, without a Slack token
// escalations only log.
func NewService(cfg *config.Config) *Service {
	svc := &Service{
		subscribers: make(map[int64][]chan Notification),
	}
	if cfg == nil {
		return svc
	}

	if cfg.RedisURL != "" {
		svc.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}
	if cfg.SlackToken != "" {
		svc.slack = slack.New(cfg.SlackToken)
		svc.slackChannel = cfg.SlackChannel
	}
	return svc
}

// Subscribe registers for a user's notifications. The returned cleanup must
// be called when the consumer goes away. Slow consumers miss messages rather
// than stalling delivery.
func (s *Service) Subscribe(userID int64) (<-chan Notification, func()) {
	ch := make(chan Notification, subscriberBuffer)

	s.mu.Lock()
	s.subscribers[userID] = append(s.subscribers[userID], ch)
	s.mu.Unlock()

	cleanup := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[userID]
		for i, sub := range subs {
			if sub == ch {
				s.subscribers[userID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}
	return ch, cleanup
}

// Notify stores a notification in the user's feed and delivers it to live
// subscribers.
func (s *Service) Notify(ctx context.Context, userID int64, notificationType, title, message string, data interface{}) error {
	var dataJSON json.RawMessage
	if data != nil {
		var err error
		dataJSON, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("notification: marshal data: %w", err)
		}
	}

	n := Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		Data:      dataJSON,
		CreatedAt: time.Now(),
	}

	if s.redis != nil {
		key := feedKey(userID)
		payload, _ := json.Marshal(n)
		if err := s.redis.LPush(ctx, key, payload).Err(); err != nil {
			log.Printf("notification: redis push: %v", err)
		}
		s.redis.LTrim(ctx, key, 0, feedLength-1)
	}

	s.deliver(n)
	return nil
}

func (s *Service) deliver(n Notification) {
	s.mu.RLock()
	subs := s.subscribers[n.UserID]
	s.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Recent returns the newest notifications for a user, most recent first.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if s.redis == nil {
		return []Notification{}, nil
	}
	if limit <= 0 {
		limit = feedLength
	}

	items, err := s.redis.LRange(ctx, feedKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("notification: fetch feed: %w", err)
	}

	notifications := make([]Notification, 0, len(items))
	for _, item := range items {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// EscalateToSlack posts an escalation message to the configured channel.
// Without a Slack client it logs and succeeds, so callers need no branches.
func (s *Service) EscalateToSlack(text string) error {
	if s.slack == nil || s.slackChannel == "" {
		log.Printf("notification: slack not configured, escalation: %s", text)
		return nil
	}
	_, _, err := s.slack.PostMessage(s.slackChannel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notification: slack post: %w", err)
	}
	return nil
}

func feedKey(userID int64) string {
	return fmt.Sprintf("notifications:%d", userID)
}
