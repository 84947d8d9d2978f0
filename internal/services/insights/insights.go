// Package insights derives heuristic ticket intelligence: summaries, repair
// checklists, parts suggestions, SLA and satisfaction risk scores, and
// auto-generated resolution notes.
package insights

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fieldserve/fieldserve/internal/models"
)

// Summary condenses a ticket for list views and notifications.
type Summary struct {
	Summary       string   `json:"summary"`
	Highlights    []string `json:"highlights"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	SLABreachRisk *float64 `json:"sla_breach_risk"`
}

// Checklist is a category-aware repair checklist for the engineer.
type Checklist struct {
	IssueCategory string   `json:"issue_category"`
	DeviceModel   string   `json:"device_model,omitempty"`
	Steps         []string `json:"steps"`
}

// PartRef is a lightweight alternative-part reference.
type PartRef struct {
	PartID     string  `json:"part_id"`
	Confidence float64 `json:"confidence"`
}

// PartSuggestion ranks a recommended part with up to two alternatives.
type PartSuggestion struct {
	PartID       string    `json:"part_id"`
	Confidence   float64   `json:"confidence"`
	Alternatives []PartRef `json:"alternatives"`
}

// PartsSuggestions is the full suggestion payload for a ticket.
type PartsSuggestions struct {
	Suggestions []PartSuggestion `json:"suggestions"`
	Note        string           `json:"note"`
}

// SLARiskExplanation pairs a risk score with human-readable reasons.
type SLARiskExplanation struct {
	SLABreachRisk float64  `json:"sla_breach_risk"`
	Reasons       []string `json:"reasons"`
}

// SatisfactionRisk estimates the chance the customer ends up unhappy.
type SatisfactionRisk struct {
	RiskScore float64  `json:"risk_score"`
	Reasons   []string `json:"reasons"`
}

var satisfactionKeywords = []string{"delay", "late", "not resolved", "angry", "complaint"}

var defaultChecklist = []string{
	"Confirm device model and warranty status",
	"Verify reported symptoms with customer",
	"Inspect power source and connectors",
	"Run basic diagnostics",
	"Capture photos before and after repair",
}

// Service computes ticket insights. The clock is injectable for tests.
type Service struct {
	now func() time.Time
}

// NewService returns an insights service using the wall clock.
func NewService() *Service {
	return &Service{now: time.Now}
}

// BuildTicketSummary condenses the ticket state into one line plus highlights.
func (s *Service) BuildTicketSummary(ticket *models.Ticket) Summary {
	highlights := []string{}
	if ticket.SLABreachRisk != nil && *ticket.SLABreachRisk >= 0.7 {
		highlights = append(highlights, "High SLA breach risk")
	}
	if ticket.WarrantyStatus == "in_warranty" {
		highlights = append(highlights, "Covered by warranty")
	}
	if ticket.ParentTicketID != nil {
		highlights = append(highlights, "Follow-up ticket")
	}
	if ticket.EngineerETAStart != nil && ticket.EngineerETAEnd != nil {
		highlights = append(highlights, "ETA shared by engineer")
	}

	category := ticket.IssueCategory
	if category == "" {
		category = "general"
	}
	summary := fmt.Sprintf("Ticket %s is %s with priority %s. Issue: %s.",
		ticket.TicketNumber, ticket.Status, ticket.Priority, category)
	if ticket.IssueDescription != "" {
		desc := ticket.IssueDescription
		if len(desc) > 160 {
			desc = desc[:160]
		}
		summary += " " + desc
	}

	return Summary{
		Summary:       strings.TrimSpace(summary),
		Highlights:    highlights,
		Status:        string(ticket.Status),
		Priority:      string(ticket.Priority),
		SLABreachRisk: ticket.SLABreachRisk,
	}
}

// BuildChecklist picks the repair checklist matching the reported issue.
// Power problems take precedence, then display, noise, leak, and cooling.
func (s *Service) BuildChecklist(ticket *models.Ticket, device *models.Device) Checklist {
	issueText := strings.ToLower(ticket.IssueDescription)
	category := strings.ToLower(ticket.IssueCategory)

	steps := defaultChecklist
	switch {
	case strings.Contains(issueText, "no power") || strings.Contains(category, "power"):
		steps = []string{
			"Check power cable and outlet",
			"Inspect fuse/adapter for damage",
			"Test power button response",
			"Check internal power module",
			"Replace faulty power component",
		}
	case strings.Contains(issueText, "screen") || strings.Contains(category, "display"):
		steps = []string{
			"Inspect screen for physical damage",
			"Check display cable connections",
			"Run display diagnostic test",
			"Replace display module if needed",
			"Verify brightness and touch response",
		}
	case strings.Contains(issueText, "noise"):
		steps = []string{
			"Identify noise source",
			"Check for loose parts",
			"Inspect fan/motor bearings",
			"Tighten or replace faulty part",
			"Run noise test after fix",
		}
	case strings.Contains(issueText, "leak"):
		steps = []string{
			"Locate leak source",
			"Inspect seals and hoses",
			"Check drainage path",
			"Replace damaged components",
			"Run leak test after repair",
		}
	case strings.Contains(category, "cooling") || strings.Contains(issueText, "cool"):
		steps = []string{
			"Check thermostat settings",
			"Inspect airflow and filters",
			"Check refrigerant pressure",
			"Inspect compressor operation",
			"Confirm cooling performance",
		}
	}

	checklist := Checklist{IssueCategory: ticket.IssueCategory, Steps: steps}
	if device != nil {
		checklist.DeviceModel = device.ModelNumber
	}
	return checklist
}

// BuildPartsSuggestions ranks the triage-suggested parts. Confidence decays
// 0.1 per position with a 0.3 floor, and each suggestion lists up to two of
// the other suggested parts as alternatives.
func (s *Service) BuildPartsSuggestions(ticket *models.Ticket) PartsSuggestions {
	suggestions := []PartSuggestion{}
	for idx, part := range ticket.SuggestedParts {
		confidence := 0.7 - float64(idx)*0.1
		confidence = round2(math.Max(confidence, 0.3))
		suggestions = append(suggestions, PartSuggestion{PartID: part, Confidence: confidence})
	}

	for i := range suggestions {
		alternatives := []PartRef{}
		for j, other := range suggestions {
			if j == i || len(alternatives) == 2 {
				continue
			}
			alternatives = append(alternatives, PartRef{PartID: other.PartID, Confidence: other.Confidence})
		}
		suggestions[i].Alternatives = alternatives
	}

	note := "No suggestions available yet"
	if len(suggestions) > 0 {
		note = "Suggestions based on triage history"
	}
	return PartsSuggestions{Suggestions: suggestions, Note: note}
}

// ComputeSLARisk scores breach risk from priority, lifecycle state, and time
// remaining. The score is capped at 0.99.
func (s *Service) ComputeSLARisk(ticket *models.Ticket) float64 {
	risk := 0.1
	if ticket.Priority == models.PriorityHigh || ticket.Priority == models.PriorityUrgent {
		risk += 0.2
	}
	if ticket.Status == models.StatusCreated || ticket.Status == models.StatusAssigned {
		risk += 0.2
	}
	if ticket.SLADeadline != nil {
		remaining := ticket.SLADeadline.Sub(s.now()).Hours()
		if remaining <= 4 {
			risk += 0.4
		} else if remaining <= 24 {
			risk += 0.2
		}
	}
	return round2(math.Min(risk, 0.99))
}

// BuildSLARiskExplanation explains the breach risk score. A risk already
// persisted on the ticket is reported as-is; otherwise it is computed fresh.
func (s *Service) BuildSLARiskExplanation(ticket *models.Ticket) SLARiskExplanation {
	reasons := []string{}
	if ticket.SLADeadline != nil {
		remaining := ticket.SLADeadline.Sub(s.now()).Hours()
		if remaining < 4 {
			reasons = append(reasons, "SLA deadline is within 4 hours")
		} else if remaining < 24 {
			reasons = append(reasons, "SLA deadline is within 24 hours")
		}
	}
	if ticket.Priority == models.PriorityHigh || ticket.Priority == models.PriorityUrgent {
		reasons = append(reasons, "High/urgent priority")
	}
	if ticket.Status == models.StatusCreated || ticket.Status == models.StatusAssigned {
		reasons = append(reasons, "Ticket not started yet")
	}

	risk := s.ComputeSLARisk(ticket)
	if ticket.SLABreachRisk != nil {
		risk = *ticket.SLABreachRisk
	}
	return SLARiskExplanation{SLABreachRisk: risk, Reasons: reasons}
}

// PredictSatisfactionRisk estimates dissatisfaction risk from ratings,
// sentiment, disputes, risky wording, and follow-up status.
func (s *Service) PredictSatisfactionRisk(ticket *models.Ticket) SatisfactionRisk {
	reasons := []string{}
	risk := 0.1
	text := strings.ToLower(ticket.IssueDescription)

	if ticket.CustomerRating != nil && *ticket.CustomerRating <= 2 {
		risk += 0.6
		reasons = append(reasons, "Low customer rating")
	}
	if ticket.SentimentScore != nil && *ticket.SentimentScore < -0.2 {
		risk += 0.4
		reasons = append(reasons, "Negative sentiment detected")
	}
	if len(ticket.CustomerDisputeTags) > 0 {
		risk += 0.3
		reasons = append(reasons, "Customer dispute tags present")
	}
	for _, word := range satisfactionKeywords {
		if strings.Contains(text, word) {
			risk += 0.2
			reasons = append(reasons, "Risky keywords in description")
			break
		}
	}
	if ticket.ParentTicketID != nil {
		risk += 0.2
		reasons = append(reasons, "Follow-up ticket")
	}

	return SatisfactionRisk{RiskScore: round2(math.Min(risk, 0.99)), Reasons: reasons}
}

// GenerateAutoNotes drafts resolution notes from recorded ticket facts.
func (s *Service) GenerateAutoNotes(ticket *models.Ticket, device *models.Device) string {
	lines := []string{}
	if device != nil {
		lines = append(lines, fmt.Sprintf("Device: %s %s (SN: %s)", device.Brand, device.ModelNumber, device.SerialNumber))
	}
	lines = append(lines, "Issue: "+ticket.IssueDescription)
	if ticket.ArrivalConfirmedAt != nil {
		lines = append(lines, "Arrival confirmed at "+ticket.ArrivalConfirmedAt.Format(time.RFC3339))
	}
	if len(ticket.PartsUsed) > 0 {
		lines = append(lines, "Parts used: "+strings.Join(ticket.PartsUsed, ", "))
	}
	if len(ticket.ResolutionPhotos) > 0 {
		lines = append(lines, fmt.Sprintf("Resolution photos attached: %d", len(ticket.ResolutionPhotos)))
	}
	if ticket.WarrantyStatus != "" {
		lines = append(lines, "Warranty: "+ticket.WarrantyStatus)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
