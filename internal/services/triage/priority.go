package triage

import (
	"strings"

	"github.com/fieldserve/fieldserve/internal/models"
)

// determinePriority maps the classified category and the original text to one
// of the four priority levels. The rule order is deliberate: uncertain input
// defaults to medium and is never silently escalated.
func determinePriority(text, category string, confidence float64) models.TicketPriority {
	lower := strings.ToLower(text)

	// Low-confidence general issues get a conservative default before any
	// keyword tier is consulted.
	if confidence < 0.3 && category == "general" {
		return models.PriorityMedium
	}

	if len(lower) > 5 {
		switch {
		case containsAny(lower, table.UrgentKeywords):
			return models.PriorityUrgent
		case containsAny(lower, table.HighKeywords):
			return models.PriorityHigh
		case containsAny(lower, table.FunctionalKeywords):
			return models.PriorityHigh
		case containsAny(lower, table.LowKeywords):
			return models.PriorityLow
		}
	}

	if confidence > 0.3 {
		switch category {
		case "power", "cooling", "heating", "water":
			return models.PriorityHigh
		case "noise", "display", "washing", "refrigeration":
			return models.PriorityMedium
		case "maintenance", "installation", "filter":
			return models.PriorityLow
		}
	}

	return models.PriorityMedium
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
