package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve/internal/models"
)

type fakeStore struct {
	entries []models.KnowledgeEntry
	err     error
}

func (f *fakeStore) ActiveEntries(_ context.Context, _ string) ([]models.KnowledgeEntry, error) {
	return f.entries, f.err
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Enabled() bool { return true }
func (f *fakeLLM) Complete(_ context.Context, _, _ string) (string, error) {
	return f.reply, f.err
}

func kbEntry(id int64, title, content string) models.KnowledgeEntry {
	return models.KnowledgeEntry{ID: id, Title: title, Content: content, IsActive: true}
}

func TestVectorizeAndCosine(t *testing.T) {
	t.Run("identical text scores 1", func(t *testing.T) {
		v := vectorize("compressor not starting")
		assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
	})

	t.Run("disjoint text scores 0", func(t *testing.T) {
		a := vectorize("compressor failure")
		b := vectorize("remote buttons")
		assert.Equal(t, 0.0, cosineSimilarity(a, b))
	})

	t.Run("empty vectors score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, cosineSimilarity(vectorize(""), vectorize("anything")))
	})

	t.Run("tokens are lowercase alphanumeric", func(t *testing.T) {
		v := vectorize("AC-Unit... ERROR_404!")
		assert.Equal(t, 1.0, v["ac"])
		assert.Equal(t, 1.0, v["404"])
	})
}

func TestRankEntries(t *testing.T) {
	entries := []models.KnowledgeEntry{
		kbEntry(1, "Washing machine drain guide", "how to clear a clogged drain pump"),
		kbEntry(2, "AC cooling checklist", "compressor refrigerant airflow filter"),
		kbEntry(3, "TV mounting", "wall bracket installation"),
	}

	ranked := rankEntries("ac compressor not cooling", entries, 4)

	require.NotEmpty(t, ranked)
	assert.Equal(t, int64(2), ranked[0].Entry.ID)
	for _, r := range ranked {
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestRankEntriesLimit(t *testing.T) {
	entries := []models.KnowledgeEntry{
		kbEntry(1, "drain one", "drain"),
		kbEntry(2, "drain two", "drain"),
		kbEntry(3, "drain three", "drain"),
	}
	ranked := rankEntries("drain", entries, 2)
	assert.Len(t, ranked, 2)
	// Equal scores keep input order.
	assert.Equal(t, int64(1), ranked[0].Entry.ID)
	assert.Equal(t, int64(2), ranked[1].Entry.ID)
}

func TestAnswerQueryFromKnowledgeBase(t *testing.T) {
	store := &fakeStore{entries: []models.KnowledgeEntry{
		kbEntry(1, "AC cooling checklist", "check refrigerant and airflow"),
	}}
	svc := NewService(store, nil)

	answer := svc.AnswerQuery(context.Background(), "ac cooling problem", "", "", "en", "customer")

	assert.Contains(t, answer.Answer, "Based on our knowledge base:")
	assert.Contains(t, answer.Answer, "AC cooling checklist")
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "AC cooling checklist", answer.Sources[0].Title)
	assert.Equal(t, "en", answer.Language)
}

func TestAnswerQueryNoMatches(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)
	answer := svc.AnswerQuery(context.Background(), "quantum flux", "", "", "en", "")
	assert.Equal(t, "I couldn't find relevant knowledge base entries yet.", answer.Answer)
	assert.Empty(t, answer.Sources)
}

func TestAnswerQueryLLMFallback(t *testing.T) {
	store := &fakeStore{entries: []models.KnowledgeEntry{
		kbEntry(1, "AC cooling checklist", "check refrigerant and airflow"),
	}}

	t.Run("llm reply used when available", func(t *testing.T) {
		svc := NewService(store, &fakeLLM{reply: "Check the refrigerant first."})
		answer := svc.AnswerQuery(context.Background(), "ac cooling problem", "", "", "en", "")
		assert.Equal(t, "Check the refrigerant first.", answer.Answer)
	})

	t.Run("llm failure falls back to context", func(t *testing.T) {
		svc := NewService(store, &fakeLLM{err: errors.New("timeout")})
		answer := svc.AnswerQuery(context.Background(), "ac cooling problem", "", "", "en", "")
		assert.Contains(t, answer.Answer, "Based on our knowledge base:")
	})
}

func TestAnswerQueryStoreErrorDegrades(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("db down")}, nil)
	answer := svc.AnswerQuery(context.Background(), "anything", "", "", "hi", "")
	assert.Equal(t, "I couldn't find relevant knowledge base entries yet.", answer.Answer)
	assert.Equal(t, "hi", answer.Language)
}

func TestSearch(t *testing.T) {
	store := &fakeStore{entries: []models.KnowledgeEntry{
		kbEntry(1, "Washing machine drain guide", "clogged drain pump"),
		kbEntry(2, "TV mounting", "wall bracket"),
	}}
	svc := NewService(store, nil)

	results, err := svc.Search(context.Background(), "drain pump", "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Entry.ID)
}
