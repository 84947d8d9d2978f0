package insights

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldserve/internal/models"
)

func fixedService(now time.Time) *Service {
	s := NewService()
	s.now = func() time.Time { return now }
	return s
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }

func baseTicket() *models.Ticket {
	return &models.Ticket{
		TicketNumber:     "TKT-1001",
		Status:           models.StatusInProgress,
		Priority:         models.PriorityMedium,
		IssueCategory:    "cooling",
		IssueDescription: "AC not cooling the bedroom",
	}
}

func TestBuildTicketSummary(t *testing.T) {
	svc := NewService()

	t.Run("basic summary", func(t *testing.T) {
		got := svc.BuildTicketSummary(baseTicket())
		assert.Equal(t, "Ticket TKT-1001 is in_progress with priority medium. Issue: cooling. AC not cooling the bedroom", got.Summary)
		assert.Empty(t, got.Highlights)
		assert.Equal(t, "in_progress", got.Status)
		assert.Equal(t, "medium", got.Priority)
	})

	t.Run("highlights", func(t *testing.T) {
		ticket := baseTicket()
		ticket.SLABreachRisk = floatPtr(0.8)
		ticket.WarrantyStatus = "in_warranty"
		ticket.ParentTicketID = int64Ptr(7)
		eta := time.Now()
		ticket.EngineerETAStart = &eta
		ticket.EngineerETAEnd = &eta

		got := svc.BuildTicketSummary(ticket)
		assert.Equal(t, []string{
			"High SLA breach risk",
			"Covered by warranty",
			"Follow-up ticket",
			"ETA shared by engineer",
		}, got.Highlights)
	})

	t.Run("empty category falls back to general", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueCategory = ""
		ticket.IssueDescription = ""
		got := svc.BuildTicketSummary(ticket)
		assert.Contains(t, got.Summary, "Issue: general.")
	})

	t.Run("long description truncated to 160", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueDescription = strings.Repeat("x", 300)
		got := svc.BuildTicketSummary(ticket)
		assert.Contains(t, got.Summary, strings.Repeat("x", 160))
		assert.NotContains(t, got.Summary, strings.Repeat("x", 161))
	})
}

func TestBuildChecklist(t *testing.T) {
	svc := NewService()

	t.Run("default steps", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueCategory = "other"
		ticket.IssueDescription = "strange behavior"
		got := svc.BuildChecklist(ticket, nil)
		assert.Equal(t, defaultChecklist, got.Steps)
	})

	t.Run("power override wins", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueDescription = "no power at all and some noise"
		got := svc.BuildChecklist(ticket, nil)
		assert.Equal(t, "Check power cable and outlet", got.Steps[0])
	})

	t.Run("display from category", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueCategory = "display"
		ticket.IssueDescription = "flickering"
		got := svc.BuildChecklist(ticket, nil)
		assert.Equal(t, "Inspect screen for physical damage", got.Steps[0])
	})

	t.Run("noise steps", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueCategory = "other"
		ticket.IssueDescription = "loud noise when spinning"
		got := svc.BuildChecklist(ticket, nil)
		assert.Equal(t, "Identify noise source", got.Steps[0])
	})

	t.Run("leak steps", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueCategory = "other"
		ticket.IssueDescription = "water leak under the unit"
		got := svc.BuildChecklist(ticket, nil)
		assert.Equal(t, "Locate leak source", got.Steps[0])
	})

	t.Run("cooling steps with device model", func(t *testing.T) {
		got := svc.BuildChecklist(baseTicket(), &models.Device{ModelNumber: "AC-500"})
		assert.Equal(t, "Check thermostat settings", got.Steps[0])
		assert.Equal(t, "AC-500", got.DeviceModel)
	})
}

func TestBuildPartsSuggestions(t *testing.T) {
	svc := NewService()

	t.Run("empty", func(t *testing.T) {
		got := svc.BuildPartsSuggestions(baseTicket())
		assert.Empty(t, got.Suggestions)
		assert.Equal(t, "No suggestions available yet", got.Note)
	})

	t.Run("decaying confidence with floor", func(t *testing.T) {
		ticket := baseTicket()
		ticket.SuggestedParts = []string{"compressor", "filter", "fan", "thermostat", "relay", "capacitor"}
		got := svc.BuildPartsSuggestions(ticket)

		require.Len(t, got.Suggestions, 6)
		assert.Equal(t, 0.7, got.Suggestions[0].Confidence)
		assert.Equal(t, 0.6, got.Suggestions[1].Confidence)
		assert.Equal(t, 0.3, got.Suggestions[4].Confidence)
		assert.Equal(t, 0.3, got.Suggestions[5].Confidence)
		assert.Equal(t, "Suggestions based on triage history", got.Note)
	})

	t.Run("alternatives exclude self and cap at two", func(t *testing.T) {
		ticket := baseTicket()
		ticket.SuggestedParts = []string{"compressor", "filter", "fan"}
		got := svc.BuildPartsSuggestions(ticket)

		require.Len(t, got.Suggestions[0].Alternatives, 2)
		assert.Equal(t, "filter", got.Suggestions[0].Alternatives[0].PartID)
		assert.Equal(t, "fan", got.Suggestions[0].Alternatives[1].PartID)
		assert.Equal(t, "compressor", got.Suggestions[1].Alternatives[0].PartID)
	})
}

func TestComputeSLARisk(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := fixedService(now)

	t.Run("baseline", func(t *testing.T) {
		ticket := baseTicket()
		assert.Equal(t, 0.1, svc.ComputeSLARisk(ticket))
	})

	t.Run("urgent unstarted near deadline", func(t *testing.T) {
		deadline := now.Add(2 * time.Hour)
		ticket := baseTicket()
		ticket.Priority = models.PriorityUrgent
		ticket.Status = models.StatusCreated
		ticket.SLADeadline = &deadline
		assert.Equal(t, 0.9, svc.ComputeSLARisk(ticket))
	})

	t.Run("deadline within a day", func(t *testing.T) {
		deadline := now.Add(10 * time.Hour)
		ticket := baseTicket()
		ticket.SLADeadline = &deadline
		assert.Equal(t, 0.3, svc.ComputeSLARisk(ticket))
	})

	t.Run("ample time adds nothing", func(t *testing.T) {
		deadline := now.Add(72 * time.Hour)
		ticket := baseTicket()
		ticket.SLADeadline = &deadline
		assert.Equal(t, 0.1, svc.ComputeSLARisk(ticket))
	})
}

func TestBuildSLARiskExplanation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := fixedService(now)

	deadline := now.Add(2 * time.Hour)
	ticket := baseTicket()
	ticket.Priority = models.PriorityHigh
	ticket.Status = models.StatusAssigned
	ticket.SLADeadline = &deadline

	got := svc.BuildSLARiskExplanation(ticket)
	assert.Equal(t, []string{
		"SLA deadline is within 4 hours",
		"High/urgent priority",
		"Ticket not started yet",
	}, got.Reasons)
	assert.Equal(t, 0.9, got.SLABreachRisk)

	t.Run("persisted risk preferred", func(t *testing.T) {
		ticket.SLABreachRisk = floatPtr(0.55)
		got := svc.BuildSLARiskExplanation(ticket)
		assert.Equal(t, 0.55, got.SLABreachRisk)
	})
}

func TestPredictSatisfactionRisk(t *testing.T) {
	svc := NewService()

	t.Run("baseline", func(t *testing.T) {
		got := svc.PredictSatisfactionRisk(baseTicket())
		assert.Equal(t, 0.1, got.RiskScore)
		assert.Empty(t, got.Reasons)
	})

	t.Run("all factors cap at 0.99", func(t *testing.T) {
		ticket := baseTicket()
		ticket.CustomerRating = intPtr(1)
		ticket.SentimentScore = floatPtr(-0.5)
		ticket.CustomerDisputeTags = []string{"billing"}
		ticket.IssueDescription = "still not resolved, filing a complaint"
		ticket.ParentTicketID = int64Ptr(3)

		got := svc.PredictSatisfactionRisk(ticket)
		assert.Equal(t, 0.99, got.RiskScore)
		assert.Equal(t, []string{
			"Low customer rating",
			"Negative sentiment detected",
			"Customer dispute tags present",
			"Risky keywords in description",
			"Follow-up ticket",
		}, got.Reasons)
	})

	t.Run("keyword counted once", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IssueDescription = "delay after delay, very late"
		got := svc.PredictSatisfactionRisk(ticket)
		assert.Equal(t, 0.3, got.RiskScore)
	})
}

func TestGenerateAutoNotes(t *testing.T) {
	svc := NewService()
	arrived := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	ticket := baseTicket()
	ticket.ArrivalConfirmedAt = &arrived
	ticket.PartsUsed = []string{"filter", "capacitor"}
	ticket.ResolutionPhotos = []string{"a.jpg", "b.jpg"}
	ticket.WarrantyStatus = "in_warranty"

	notes := svc.GenerateAutoNotes(ticket, &models.Device{Brand: "CoolTech", ModelNumber: "AC-500", SerialNumber: "SN123"})

	lines := strings.Split(notes, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Device: CoolTech AC-500 (SN: SN123)", lines[0])
	assert.Equal(t, "Issue: AC not cooling the bedroom", lines[1])
	assert.Equal(t, "Arrival confirmed at 2026-03-01T09:30:00Z", lines[2])
	assert.Equal(t, "Parts used: filter, capacitor", lines[3])
	assert.Equal(t, "Resolution photos attached: 2", lines[4])
	assert.Equal(t, "Warranty: in_warranty", lines[5])
}
