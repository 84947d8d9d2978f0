// Package chatbot implements the multilingual support chatbot. It answers in
// English or Hindi, detects intent, and emits follow-up actions the caller can
// execute, such as creating a ticket or fetching ticket status.
package chatbot

import (
	"context"
	"log"
	"strings"

	"github.com/fieldserve/fieldserve/internal/services/llm"
)

const modelVersion = "v1.0"

// SupportedLanguages lists the language codes the chatbot replies in.
var SupportedLanguages = []string{"en", "hi"}

// Message is one turn of conversation history.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Action is a follow-up the caller should execute on behalf of the user.
type Action struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// Reply is the chatbot's response to a single message.
type Reply struct {
	Response   string         `json:"response"`
	Intent     string         `json:"intent"`
	Entities   map[string]any `json:"entities"`
	Actions    []Action       `json:"actions"`
	Language   string         `json:"language"`
	SessionID  string         `json:"session_id"`
	Confidence float64        `json:"confidence,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Input carries one inbound chat message with its conversation context.
type Input struct {
	Message   string
	SessionID string
	Language  string
	TicketID  *int64
	History   []Message
}

// Service is the chatbot engine.
type Service struct {
	llm llm.Completer
}

// NewService creates a chatbot. The completer may be nil or disabled; replies
// then come from the template tables.
func NewService(completer llm.Completer) *Service {
	return &Service{llm: completer}
}

var responses = map[string]map[string]string{
	"en": {
		"create_ticket":   "I can help you create a repair ticket. Please describe the issue with your device.",
		"check_status":    "Let me check the status of your ticket. One moment...",
		"reschedule":      "I can help you reschedule your service visit. What date and time would work for you?",
		"troubleshooting": "I can help troubleshoot your issue. Let me provide some steps...",
		"general_inquiry": "How can I assist you today?",
	},
	"hi": {
		"create_ticket":   "मैं आपकी मरम्मत टिकट बनाने में मदद कर सकता हूं। कृपया अपने उपकरण की समस्या का वर्णन करें।",
		"check_status":    "मैं आपकी टिकट की स्थिति जांच रहा हूं। एक क्षण...",
		"reschedule":      "मैं आपकी सेवा यात्रा को पुनर्निर्धारित करने में मदद कर सकता हूं। आपके लिए कौन सी तारीख और समय काम करेगा?",
		"troubleshooting": "मैं आपकी समस्या का निवारण करने में मदद कर सकता हूं। मुझे कुछ चरण प्रदान करने दें...",
		"general_inquiry": "मैं आज आपकी कैसे सहायता कर सकता हूं?",
	},
}

var errorMessages = map[string]string{
	"en": "I'm sorry, I didn't understand that. Could you please rephrase?",
	"hi": "मुझे खेद है, मैं समझ नहीं पाया। क्या आप कृपया इसे फिर से कह सकते हैं?",
}

// ProcessMessage handles one inbound message. It never fails: any internal
// problem degrades to a polite error reply in the caller's language.
func (s *Service) ProcessMessage(ctx context.Context, in Input) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chatbot: recovered: %v", r)
			reply = Reply{
				Response: errorMessage(in.Language),
				Intent:   "error",
				Entities: map[string]any{},
				Actions:  []Action{},
				Language: in.Language,
				Error:    "internal error",
			}
		}
	}()

	intent := detectIntent(in.Message, in.Language)
	entities := extractEntities(in.Message, in.Language)
	response, intent := s.generateResponse(ctx, intent, in)

	return Reply{
		Response:   response,
		Intent:     intent,
		Entities:   entities,
		Actions:    determineActions(intent, entities, in.TicketID),
		Language:   in.Language,
		SessionID:  in.SessionID,
		Confidence: 0.85,
	}
}

// detectIntent classifies the user's message.
// TODO: replace with the trained intent classifier once the labeled chat
// transcript export is available.
func detectIntent(message, language string) string {
	return "general_inquiry"
}

// extractEntities pulls structured fields out of the message. The keys are
// stable so downstream action parameters keep their shape as extraction
// improves.
func extractEntities(message, language string) map[string]any {
	return map[string]any{
		"device_type": nil,
		"issue":       nil,
		"date":        nil,
		"time":        nil,
	}
}

// generateResponse produces the reply text. It may upgrade the intent based on
// recent history, so the possibly-adjusted intent is returned alongside.
func (s *Service) generateResponse(ctx context.Context, intent string, in Input) (string, string) {
	if s.llm != nil && s.llm.Enabled() {
		if reply, err := s.llm.Complete(ctx, "You are a helpful support chatbot.", buildPrompt(in)); err == nil {
			return reply, intent
		} else {
			log.Printf("chatbot: llm fallback: %v", err)
		}
	}

	if len(in.History) > 0 {
		start := len(in.History) - 3
		if start < 0 {
			start = 0
		}
		recent := make([]string, 0, 3)
		for _, m := range in.History[start:] {
			recent = append(recent, m.Text)
		}
		if strings.Contains(strings.ToLower(strings.Join(recent, " ")), "status") && intent == "general_inquiry" {
			intent = "check_status"
		}
	}

	table, ok := responses[in.Language]
	if !ok {
		table = responses["en"]
	}
	if text, ok := table[intent]; ok {
		return text, intent
	}
	return responses["en"]["general_inquiry"], intent
}

// buildPrompt flattens the last turns of history plus the new message into a
// single completion prompt.
func buildPrompt(in Input) string {
	var b strings.Builder
	start := len(in.History) - 6
	if start < 0 {
		start = 0
	}
	for _, m := range in.History[start:] {
		sender := "user"
		if m.Sender == "assistant" {
			sender = "assistant"
		}
		b.WriteString(sender + ": " + m.Text + "\n")
	}
	b.WriteString("user: " + in.Message + "\n")
	b.WriteString("Respond to the latest user message.")
	return b.String()
}

func determineActions(intent string, entities map[string]any, ticketID *int64) []Action {
	actions := []Action{}

	switch intent {
	case "create_ticket":
		actions = append(actions, Action{Type: "create_ticket", Params: entities})
	case "check_status":
		if ticketID != nil {
			actions = append(actions, Action{
				Type:   "fetch_ticket_status",
				Params: map[string]any{"ticket_id": *ticketID},
			})
		}
	}

	return actions
}

func errorMessage(language string) string {
	if msg, ok := errorMessages[language]; ok {
		return msg
	}
	return errorMessages["en"]
}
