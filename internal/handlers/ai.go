package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve/internal/middleware"
	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/repository"
	"github.com/fieldserve/fieldserve/internal/services/diagnosis"
	"github.com/fieldserve/fieldserve/internal/services/dispatch"
	"github.com/fieldserve/fieldserve/internal/services/forecast"
	"github.com/fieldserve/fieldserve/internal/services/insights"
	"github.com/fieldserve/fieldserve/internal/services/photos"
	"github.com/fieldserve/fieldserve/internal/services/sentiment"
	"github.com/fieldserve/fieldserve/internal/services/slarisk"
	"github.com/fieldserve/fieldserve/internal/services/triage"
	"github.com/fieldserve/fieldserve/pkg/geo"
)

// AIHandler exposes the AI services over HTTP
type AIHandler struct {
	tickets   *repository.TicketRepository
	engineers *repository.EngineerRepository

	triage    *triage.Service
	slarisk   *slarisk.Predictor
	balancer  *dispatch.Balancer
	planner   *dispatch.Planner
	forecast  *forecast.Service
	sentiment *sentiment.Service
	diagnosis *diagnosis.Service
	insights  *insights.Service
	quality   *photos.QualityChecker
}

// NewAIHandler creates a new AI handler
func NewAIHandler(tickets *repository.TicketRepository, engineers *repository.EngineerRepository) *AIHandler {
	return &AIHandler{
		tickets:   tickets,
		engineers: engineers,
		triage:    triage.NewService(),
		slarisk:   slarisk.NewPredictor(),
		balancer:  dispatch.NewBalancer(),
		planner:   dispatch.NewPlanner(),
		forecast:  forecast.NewService(),
		sentiment: sentiment.NewService(),
		diagnosis: diagnosis.NewService(),
		insights:  insights.NewService(),
		quality:   photos.NewQualityChecker(),
	}
}

// Triage classifies an issue description on demand
func (h *AIHandler) Triage(c *gin.Context) {
	var req triage.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.IssueDescription == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_description is required"})
		return
	}

	start := time.Now()
	result := h.triage.Triage(req)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	c.JSON(http.StatusOK, result)
}

// PredictSLA scores breach risk for a ticket and persists the score
func (h *AIHandler) PredictSLA(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	if ticket.SLADeadline == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket has no SLA deadline"})
		return
	}

	result := h.slarisk.PredictBreachRisk(slarisk.Input{
		TicketID:    ticket.ID,
		Status:      ticket.Status,
		SLADeadline: *ticket.SLADeadline,
		CreatedAt:   ticket.CreatedAt,
		AssignedAt:  ticket.AssignedAt,
	})

	if result.Error == "" {
		if err := h.tickets.UpdateSLARisk(c.Request.Context(), ticket.ID, result.BreachRisk); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist risk"})
			return
		}
	}
	c.JSON(http.StatusOK, result)
}

type balanceRequest struct {
	CityID         *int64   `json:"city_id"`
	RequiredSkills []string `json:"required_skills"`
	TicketIDs      []int64  `json:"ticket_ids" binding:"required"`
}

// BalanceWorkload distributes pending tickets across the city's engineers
func (h *AIHandler) BalanceWorkload(c *gin.Context) {
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cityID := int64(0)
	if req.CityID != nil {
		cityID = *req.CityID
	}
	engineers, err := h.engineers.ListByCity(ctx, cityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list engineers"})
		return
	}

	candidates := make([]dispatch.Candidate, 0, len(engineers))
	for _, e := range engineers {
		candidate := dispatch.Candidate{
			ID:                    e.ID,
			CityID:                e.CityID,
			Skills:                e.Skills,
			IsAvailable:           e.IsAvailable,
			ActiveTickets:         e.ActiveTickets,
			HighPriorityTickets:   e.HighPriorityTickets,
			MediumPriorityTickets: e.MediumPriorityTickets,
			LowPriorityTickets:    e.LowPriorityTickets,
		}
		if e.Latitude != nil && e.Longitude != nil {
			candidate.Location = &geo.Point{Lat: *e.Latitude, Lng: *e.Longitude}
		}
		candidates = append(candidates, candidate)
	}

	pending := make([]dispatch.PendingTicket, 0, len(req.TicketIDs))
	for _, id := range req.TicketIDs {
		ticket, err := h.tickets.GetByID(ctx, id)
		if err != nil || ticket == nil {
			continue
		}
		p := dispatch.PendingTicket{
			ID:            ticket.ID,
			Priority:      ticket.Priority,
			IssueCategory: ticket.IssueCategory,
		}
		if ticket.ServiceLatitude != nil && ticket.ServiceLongitude != nil {
			p.Location = &geo.Point{Lat: *ticket.ServiceLatitude, Lng: *ticket.ServiceLongitude}
		}
		pending = append(pending, p)
	}

	result := h.balancer.BalanceWorkload(candidates, pending, &dispatch.Constraints{
		RequiredCityID: req.CityID,
		RequiredSkills: req.RequiredSkills,
	})
	c.JSON(http.StatusOK, result)
}

type routeRequest struct {
	EngineerID int64   `json:"engineer_id" binding:"required"`
	StartLat   float64 `json:"start_latitude"`
	StartLng   float64 `json:"start_longitude"`
	TicketIDs  []int64 `json:"ticket_ids" binding:"required"`
}

// OptimizeRoute orders an engineer's assigned visits nearest-first
func (h *AIHandler) OptimizeRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	stops := make([]dispatch.Stop, 0, len(req.TicketIDs))
	for _, id := range req.TicketIDs {
		ticket, err := h.tickets.GetByID(ctx, id)
		if err != nil || ticket == nil {
			continue
		}
		if ticket.ServiceLatitude == nil || ticket.ServiceLongitude == nil {
			continue
		}
		stops = append(stops, dispatch.Stop{
			TicketID: ticket.ID,
			Location: geo.Point{Lat: *ticket.ServiceLatitude, Lng: *ticket.ServiceLongitude},
		})
	}

	result := h.planner.OptimizeRoute(req.EngineerID, geo.Point{Lat: req.StartLat, Lng: req.StartLng}, stops)
	c.JSON(http.StatusOK, result)
}

// Forecast predicts parts demand
func (h *AIHandler) Forecast(c *gin.Context) {
	var req forecast.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.forecast.ForecastDemand(req))
}

type sentimentRequest struct {
	Text     string `json:"text" binding:"required"`
	Rating   *int   `json:"rating"`
	Language string `json:"language"`
}

// AnalyzeSentiment scores a piece of customer text
func (h *AIHandler) AnalyzeSentiment(c *gin.Context) {
	var req sentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	c.JSON(http.StatusOK, h.sentiment.AnalyzeFeedback(req.Text, req.Rating, req.Language))
}

// DiagnosisQuestions returns the guided self-diagnosis question set
func (h *AIHandler) DiagnosisQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.diagnosis.Questions(c.Query("device_category"))})
}

type diagnosisRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// DiagnosisAssess evaluates self-diagnosis answers
func (h *AIHandler) DiagnosisAssess(c *gin.Context) {
	var req diagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assessment := h.diagnosis.Assess(req.Answers)
	c.JSON(http.StatusOK, gin.H{
		"assessment":      assessment,
		"suggested_parts": h.diagnosis.SuggestParts(assessment.Signals),
	})
}

// TicketSummary returns the heuristic summary for a ticket
func (h *AIHandler) TicketSummary(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	c.JSON(http.StatusOK, h.insights.BuildTicketSummary(ticket))
}

// TicketChecklist returns the repair checklist for a ticket
func (h *AIHandler) TicketChecklist(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	c.JSON(http.StatusOK, h.insights.BuildChecklist(ticket, h.loadDevice(c, ticket)))
}

// TicketParts returns ranked parts suggestions for a ticket
func (h *AIHandler) TicketParts(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	c.JSON(http.StatusOK, h.insights.BuildPartsSuggestions(ticket))
}

// TicketSLARisk explains the heuristic SLA breach risk for a ticket
func (h *AIHandler) TicketSLARisk(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	c.JSON(http.StatusOK, h.insights.BuildSLARiskExplanation(ticket))
}

// TicketSatisfactionRisk estimates customer dissatisfaction risk
func (h *AIHandler) TicketSatisfactionRisk(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	c.JSON(http.StatusOK, h.insights.PredictSatisfactionRisk(ticket))
}

// TicketAutoNotes drafts resolution notes from recorded ticket facts
func (h *AIHandler) TicketAutoNotes(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": h.insights.GenerateAutoNotes(ticket, h.loadDevice(c, ticket))})
}

type photoQualityRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// PhotoQuality grades uploaded photo URLs by metadata
func (h *AIHandler) PhotoQuality(c *gin.Context) {
	var req photoQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.quality.CheckPhotoQuality(req.URLs))
}

func (h *AIHandler) loadTicket(c *gin.Context) *models.Ticket {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket ID"})
		return nil
	}

	ticket, err := h.tickets.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get ticket"})
		return nil
	}
	if ticket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return nil
	}

	if orgID, ok := middleware.GetOrganizationID(c); ok && ticket.OrganizationID != orgID {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return nil
	}
	return ticket
}

func (h *AIHandler) loadDevice(c *gin.Context, ticket *models.Ticket) *models.Device {
	if ticket.DeviceID == nil {
		return nil
	}
	device, err := h.tickets.GetDevice(c.Request.Context(), *ticket.DeviceID)
	if err != nil {
		return nil
	}
	return device
}
