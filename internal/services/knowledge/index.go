package knowledge

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/fieldserve/fieldserve/internal/models"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// vectorize builds a term-frequency vector over lowercase alphanumeric
// tokens. This is deliberately a bag-of-words model, not an embedding.
func vectorize(text string) map[string]float64 {
	tf := make(map[string]float64)
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		tf[token]++
	}
	return tf
}

func cosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	dot := 0.0
	for term, av := range a {
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0.0
	}

	normA := 0.0
	for _, v := range a {
		normA += v * v
	}
	normB := 0.0
	for _, v := range b {
		normB += v * v
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ScoredEntry pairs a knowledge base document with its query similarity.
type ScoredEntry struct {
	Entry models.KnowledgeEntry `json:"entry"`
	Score float64               `json:"score"`
}

// rankEntries scores documents against the query and returns the top matches
// with positive similarity, most similar first. Equal scores keep input order.
func rankEntries(query string, entries []models.KnowledgeEntry, limit int) []ScoredEntry {
	queryVec := vectorize(query)

	scored := make([]ScoredEntry, 0, len(entries))
	for _, entry := range entries {
		docVec := vectorize(entry.Title + " " + entry.Content)
		scored = append(scored, ScoredEntry{Entry: entry, Score: cosineSimilarity(queryVec, docVec)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	result := make([]ScoredEntry, 0, limit)
	for _, s := range scored {
		if len(result) == limit {
			break
		}
		if s.Score > 0 {
			result = append(result, s)
		}
	}
	return result
}
