package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSentimentNeutralBaseline(t *testing.T) {
	svc := NewService()

	result := svc.AnalyzeSentiment("the visit was fine", "en")

	assert.Equal(t, 0.0, result.SentimentScore)
	assert.Equal(t, "neutral", result.SentimentLabel)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, "v1.0", result.ModelVersion)
	assert.Empty(t, result.KeyPhrases)
	assert.Empty(t, result.Topics)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		label string
	}{
		{0.5, "positive"},
		{0.21, "positive"},
		{0.2, "neutral"},
		{0.0, "neutral"},
		{-0.2, "neutral"},
		{-0.21, "negative"},
		{-0.9, "negative"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, classify(tt.score), "score %v", tt.score)
	}
}

func TestAnalyzeFeedbackBlendsRating(t *testing.T) {
	svc := NewService()

	t.Run("five stars pulls positive", func(t *testing.T) {
		rating := 5
		result := svc.AnalyzeFeedback("engineer arrived on time", &rating, "en")
		// text 0.0 * 0.6 + ((5-3)/2) * 0.4 = 0.4
		assert.InDelta(t, 0.4, result.SentimentScore, 1e-9)
		assert.Equal(t, "positive", result.SentimentLabel)
	})

	t.Run("one star pulls negative", func(t *testing.T) {
		rating := 1
		result := svc.AnalyzeFeedback("took forever", &rating, "hi")
		assert.InDelta(t, -0.4, result.SentimentScore, 1e-9)
		assert.Equal(t, "negative", result.SentimentLabel)
		assert.Equal(t, "hi", result.Language)
	})

	t.Run("three stars stays neutral", func(t *testing.T) {
		rating := 3
		result := svc.AnalyzeFeedback("it was okay", &rating, "en")
		assert.Equal(t, 0.0, result.SentimentScore)
		assert.Equal(t, "neutral", result.SentimentLabel)
	})

	t.Run("no rating leaves text score untouched", func(t *testing.T) {
		result := svc.AnalyzeFeedback("it was okay", nil, "en")
		assert.Equal(t, 0.0, result.SentimentScore)
		assert.Equal(t, "neutral", result.SentimentLabel)
	})
}
