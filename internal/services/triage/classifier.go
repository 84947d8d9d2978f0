package triage

import (
	"math"
	"strings"
	"unicode/utf8"
)

// TextAnalysis is the output of the lexical classifier.
type TextAnalysis struct {
	Category      string  `json:"category"`
	Confidence    float64 `json:"confidence"`
	KeywordsFound int     `json:"keywords_found"`
}

// ImageAnalysis is the output of photo classification. The classifier itself
// is a placeholder that reports zero confidence, but downstream scoring still
// honors the contract.
type ImageAnalysis struct {
	Category       string  `json:"category"`
	Confidence     float64 `json:"confidence"`
	DamageDetected bool    `json:"damage_detected"`
}

// analyzeText maps a free-text issue description to a category. The winner is
// the category with the most trigger-phrase matches; ties go to the higher
// computed confidence, not table order.
func analyzeText(text, deviceCategory string) TextAnalysis {
	lower := strings.ToLower(text)

	detected := ""
	confidence := 0.0
	keywordsFound := 0
	bestMatches := 0

	for _, entry := range table.Categories {
		matches := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		keywordsFound += matches

		matchRatio := math.Min(float64(matches)/float64(len(entry.Keywords)), 1.0)
		lengthFactor := math.Min(float64(utf8.RuneCountInString(lower))/100, 0.3)
		categoryConfidence := math.Min(matchRatio*0.7+lengthFactor+0.1, 0.9)

		if matches > bestMatches || (matches == bestMatches && categoryConfidence > confidence) {
			bestMatches = matches
			confidence = categoryConfidence
			detected = entry.Name
		}
	}

	if detected == "" {
		switch {
		case deviceCategory != "":
			detected = strings.ReplaceAll(strings.ToLower(deviceCategory), " ", "_")
			confidence = 0.4
		default:
			if inferred := inferCategory(lower); inferred != "" {
				detected = inferred
				confidence = 0.5
			} else {
				detected = "general"
				confidence = 0.3
			}
		}
	}

	return TextAnalysis{
		Category:      detected,
		Confidence:    confidence,
		KeywordsFound: keywordsFound,
	}
}

// inferCategory tries a small set of common appliance words when no category
// keyword matched at all.
func inferCategory(lower string) string {
	for _, entry := range table.Inference {
		for _, word := range entry.Words {
			if strings.Contains(lower, word) {
				return entry.Category
			}
		}
	}
	return ""
}

// analyzeImages classifies issue photos. Placeholder until a vision model is
// wired in: always reports no category and zero confidence.
func analyzeImages(urls []string) ImageAnalysis {
	_ = urls
	return ImageAnalysis{}
}
