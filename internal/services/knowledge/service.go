// Package knowledge answers repair questions by retrieving knowledge base
// documents with bag-of-words cosine similarity and optionally summarizing
// them through an LLM.
package knowledge

import (
	"context"
	"log"

	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/services/llm"
)

const (
	modelVersion  = "v1.0"
	retrieveLimit = 4
	contextLimit  = 600
)

// Store is the knowledge base lookup used for retrieval. A role filter keeps
// role-scoped documents away from other roles; entries with no role are
// visible to everyone.
type Store interface {
	ActiveEntries(ctx context.Context, role string) ([]models.KnowledgeEntry, error)
}

// Source identifies a document an answer was grounded on.
type Source struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Answer is the assistant's response to a query.
type Answer struct {
	Answer       string   `json:"answer"`
	Steps        []string `json:"steps"`
	Sources      []Source `json:"sources"`
	Confidence   float64  `json:"confidence"`
	Language     string   `json:"language"`
	ModelVersion string   `json:"model_version"`
	Error        string   `json:"error,omitempty"`
}

// Service is the knowledge assistant.
type Service struct {
	store Store
	llm   llm.Completer
}

// NewService creates a knowledge assistant over the given store. The LLM
// completer may be disabled; answers then come from retrieved context alone.
func NewService(store Store, completer llm.Completer) *Service {
	return &Service{store: store, llm: completer}
}

// AnswerQuery answers a natural-language repair question. It never fails:
// retrieval or generation problems degrade to a static reply.
func (s *Service) AnswerQuery(ctx context.Context, query, deviceCategory, deviceModel, language, role string) (answer Answer) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("knowledge: recovered: %v", r)
			answer = Answer{
				Answer:       "I'm sorry, I couldn't process your query. Please try rephrasing.",
				Steps:        []string{},
				Sources:      []Source{},
				Language:     language,
				ModelVersion: modelVersion,
				Error:        "internal error",
			}
		}
	}()

	var docs []ScoredEntry
	if s.store != nil {
		entries, err := s.store.ActiveEntries(ctx, role)
		if err != nil {
			log.Printf("knowledge: retrieval failed: %v", err)
		} else {
			docs = rankEntries(query, entries, retrieveLimit)
		}
	}

	sources := make([]Source, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, Source{Title: d.Entry.Title, Source: d.Entry.Source})
	}

	return Answer{
		Answer:       s.generateAnswer(ctx, query, docs),
		Steps:        []string{},
		Sources:      sources,
		Confidence:   0.85,
		Language:     language,
		ModelVersion: modelVersion,
	}
}

// Search returns the best-matching active knowledge base entries for a query.
func (s *Service) Search(ctx context.Context, query, role string, limit int) ([]ScoredEntry, error) {
	if limit <= 0 {
		limit = 5
	}
	entries, err := s.store.ActiveEntries(ctx, role)
	if err != nil {
		return nil, err
	}
	return rankEntries(query, entries, limit), nil
}

func (s *Service) generateAnswer(ctx context.Context, query string, docs []ScoredEntry) string {
	docContext := buildContext(docs)

	if s.llm != nil && s.llm.Enabled() {
		system := "You are a helpful repair assistant. Use the provided context.\n\nContext:\n" + docContext
		reply, err := s.llm.Complete(ctx, system, query)
		if err == nil {
			return reply
		}
		log.Printf("knowledge: llm fallback: %v", err)
	}

	if docContext != "" {
		if len(docContext) > contextLimit {
			docContext = docContext[:contextLimit]
		}
		return "Based on our knowledge base:\n" + docContext
	}
	return "I couldn't find relevant knowledge base entries yet."
}

func buildContext(docs []ScoredEntry) string {
	out := ""
	for i, d := range docs {
		if i > 0 {
			out += "\n\n"
		}
		out += d.Entry.Title + "\n" + d.Entry.Content
	}
	return out
}
