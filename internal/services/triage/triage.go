// Package triage classifies reported issues into a category, a priority
// level, and a confidence score using static keyword tables.
package triage

import (
	"log"
	"math"
	"strings"

	"github.com/fieldserve/fieldserve/internal/models"
)

const modelVersion = "v1.0"

// Input is a single triage request.
type Input struct {
	IssueDescription string   `json:"issue_description"`
	IssuePhotos      []string `json:"issue_photos,omitempty"`
	DeviceCategory   string   `json:"device_category,omitempty"`
	DeviceModel      string   `json:"device_model,omitempty"`
}

// Result is the advisory triage output for a ticket.
type Result struct {
	SuggestedCategory string                `json:"suggested_category"`
	SuggestedPriority models.TicketPriority `json:"suggested_priority"`
	ConfidenceScore   float64               `json:"confidence_score"`
	SuggestedParts    []string              `json:"suggested_parts"`
	KeySymptoms       []string              `json:"key_symptoms"`
	Summary           string                `json:"summary"`
	ModelVersion      string                `json:"model_version"`
	ProcessingTimeMs  int64                 `json:"processing_time_ms"`
}

// Service performs ticket triage. It holds no per-request state; the keyword
// tables it reads are process-wide and immutable, so concurrent use is safe.
type Service struct{}

// NewService creates a triage service.
func NewService() *Service {
	return &Service{}
}

// Triage analyzes an issue report and returns a category, priority, and
// confidence. It never fails: any internal panic is logged and replaced with
// a safe default result.
func (s *Service) Triage(in Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("triage: recovered: %v", r)
			result = defaultResult()
		}
	}()

	textResult := analyzeText(in.IssueDescription, in.DeviceCategory)

	var imageResult ImageAnalysis
	if len(in.IssuePhotos) > 0 {
		imageResult = analyzeImages(in.IssuePhotos)
	}

	category := mergeCategory(textResult, imageResult)
	priority := determinePriority(in.IssueDescription, category, textResult.Confidence)

	return Result{
		SuggestedCategory: category,
		SuggestedPriority: priority,
		ConfidenceScore:   combineConfidence(textResult, imageResult),
		SuggestedParts:    suggestParts(category, in.DeviceCategory, in.DeviceModel),
		KeySymptoms:       extractKeySymptoms(in.IssueDescription),
		Summary:           buildSummary(in.IssueDescription, category, priority),
		ModelVersion:      modelVersion,
	}
}

func defaultResult() Result {
	return Result{
		SuggestedCategory: "general",
		SuggestedPriority: models.PriorityMedium,
		ConfidenceScore:   0.5,
		SuggestedParts:    []string{},
		KeySymptoms:       []string{},
		Summary:           "General issue reported.",
		ModelVersion:      modelVersion,
	}
}

// mergeCategory combines text and image classification, preferring the text
// category whenever it carries reasonable confidence.
func mergeCategory(text TextAnalysis, image ImageAnalysis) string {
	if text.Category != "" && text.Confidence > 0.3 {
		return text.Category
	}
	if image.Category != "" && image.Confidence > text.Confidence {
		return image.Category
	}
	if text.Category != "" {
		return text.Category
	}
	if image.Category != "" {
		return image.Category
	}
	return "general"
}

// combineConfidence blends text and image confidences into a single score
// capped at 0.95.
func combineConfidence(text TextAnalysis, image ImageAnalysis) float64 {
	conf := text.Confidence
	if conf == 0 {
		conf = 0.3
	}

	if text.KeywordsFound > 0 {
		boost := math.Min(float64(text.KeywordsFound)*0.1, 0.3)
		conf = math.Min(conf+boost, 0.95)
	}

	if image.Confidence > 0 {
		return math.Min(conf*0.7+image.Confidence*0.3, 0.95)
	}
	return math.Min(conf, 0.95)
}

// extractKeySymptoms returns up to five symptom phrases found in the text.
func extractKeySymptoms(text string) []string {
	lower := strings.ToLower(text)
	symptoms := []string{}
	for _, kw := range table.Symptoms {
		if strings.Contains(lower, kw) {
			symptoms = append(symptoms, kw)
			if len(symptoms) == 5 {
				break
			}
		}
	}
	return symptoms
}

func buildSummary(text, category string, priority models.TicketPriority) string {
	trimmed := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	if runes := []rune(trimmed); len(runes) > 160 {
		trimmed = string(runes[:160]) + "..."
	}
	return "Category: " + category + ". Priority: " + string(priority) + ". Summary: " + trimmed
}

// TODO: rank parts from recorded part-usage history per category.
func suggestParts(category, deviceCategory, deviceModel string) []string {
	return []string{}
}
