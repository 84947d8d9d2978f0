// Package sentiment scores customer feedback and chat text. The lexical model
// is a stub pending a trained classifier; rating-weighted blending and the
// label thresholds are final.
package sentiment

import (
	"log"
	"math"
)

const modelVersion = "v1.0"

// Result is a sentiment analysis outcome.
type Result struct {
	SentimentScore float64  `json:"sentiment_score"`
	SentimentLabel string   `json:"sentiment_label"`
	Confidence     float64  `json:"confidence"`
	KeyPhrases     []string `json:"key_phrases"`
	Topics         []string `json:"topics"`
	Language       string   `json:"language"`
	ModelVersion   string   `json:"model_version"`
	Error          string   `json:"error,omitempty"`
}

// Service analyzes text sentiment.
type Service struct{}

// NewService returns a sentiment analyzer.
func NewService() *Service {
	return &Service{}
}

// AnalyzeSentiment scores a piece of text. Confidence is the absolute score:
// stronger polarity means higher confidence. It never fails; internal errors
// degrade to a neutral result.
func (s *Service) AnalyzeSentiment(text, language string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("sentiment: recovered: %v", r)
			result = Result{
				SentimentLabel: "neutral",
				KeyPhrases:     []string{},
				Topics:         []string{},
				Error:          "internal error",
			}
		}
	}()

	score := calculateScore(text, language)
	return Result{
		SentimentScore: score,
		SentimentLabel: classify(score),
		Confidence:     math.Abs(score),
		KeyPhrases:     extractKeyPhrases(text, language),
		Topics:         extractTopics(text, language),
		Language:       language,
		ModelVersion:   modelVersion,
	}
}

// AnalyzeFeedback scores post-service feedback, blending in the star rating
// when present: 60% text sentiment, 40% rating mapped from 1..5 to -1..1.
func (s *Service) AnalyzeFeedback(feedbackText string, rating *int, language string) Result {
	result := s.AnalyzeSentiment(feedbackText, language)

	if rating != nil {
		ratingSentiment := (float64(*rating) - 3) / 2.0
		result.SentimentScore = result.SentimentScore*0.6 + ratingSentiment*0.4
		result.SentimentLabel = classify(result.SentimentScore)
	}

	return result
}

// calculateScore returns a polarity score in -1..1.
// TODO: swap in the fine-tuned multilingual sentiment model once the feedback
// corpus labeling finishes.
func calculateScore(text, language string) float64 {
	return 0.0
}

func classify(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}

func extractKeyPhrases(text, language string) []string {
	return []string{}
}

func extractTopics(text, language string) []string {
	return []string{}
}
