package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldserve/fieldserve/internal/middleware"
	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/repository"
	"github.com/fieldserve/fieldserve/internal/services/notification"
	"github.com/fieldserve/fieldserve/internal/services/photos"
	"github.com/fieldserve/fieldserve/internal/services/sentiment"
	"github.com/fieldserve/fieldserve/internal/services/triage"
)

// slaHours maps ticket priority to resolution deadline in hours.
var slaHours = map[models.TicketPriority]time.Duration{
	models.PriorityUrgent: 4 * time.Hour,
	models.PriorityHigh:   24 * time.Hour,
	models.PriorityMedium: 48 * time.Hour,
	models.PriorityLow:    72 * time.Hour,
}

// TicketHandler handles ticket lifecycle requests
type TicketHandler struct {
	tickets   *repository.TicketRepository
	triage    *triage.Service
	sentiment *sentiment.Service
	notifier  *notification.Service
	storage   *photos.Storage
}

// NewTicketHandler creates a new ticket handler. Storage may be nil when no
// object store is configured; photo endpoints then return 503.
func NewTicketHandler(tickets *repository.TicketRepository, triageSvc *triage.Service, sentimentSvc *sentiment.Service, notifier *notification.Service, storage *photos.Storage) *TicketHandler {
	return &TicketHandler{
		tickets:   tickets,
		triage:    triageSvc,
		sentiment: sentimentSvc,
		notifier:  notifier,
		storage:   storage,
	}
}

type createTicketRequest struct {
	DeviceID         *int64   `json:"device_id"`
	IssueDescription string   `json:"issue_description" binding:"required"`
	IssuePhotos      []string `json:"issue_photos"`
	Priority         string   `json:"priority"`
	ServiceAddress   string   `json:"service_address"`
	ServiceLatitude  *float64 `json:"service_latitude"`
	ServiceLongitude *float64 `json:"service_longitude"`
	CityID           *int64   `json:"city_id"`
	ParentTicketID   *int64   `json:"parent_ticket_id"`
}

// Create opens a new ticket. The issue runs through triage and the result is
// persisted alongside the ticket; the triage category and priority fill in
// anything the caller left blank.
func (h *TicketHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	orgID, _ := middleware.GetOrganizationID(c)

	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var device *models.Device
	if req.DeviceID != nil {
		var err error
		device, err = h.tickets.GetDevice(c.Request.Context(), *req.DeviceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up device"})
			return
		}
		if device == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
	}

	deviceCategory := ""
	if device != nil {
		deviceCategory = device.Category
	}
	triageResult := h.triage.Triage(triage.Input{
		IssueDescription: req.IssueDescription,
		IssuePhotos:      req.IssuePhotos,
		DeviceCategory:   deviceCategory,
	})

	priority := models.TicketPriority(req.Priority)
	if !priority.Valid() {
		priority = triageResult.SuggestedPriority
	}

	deadline := time.Now().Add(slaHours[priority])
	customerID := &userID
	if middleware.GetRole(c) != string(models.RoleCustomer) {
		customerID = nil
	}

	ticket := &models.Ticket{
		TicketNumber:     newTicketNumber(),
		OrganizationID:   orgID,
		CustomerID:       customerID,
		DeviceID:         req.DeviceID,
		CreatedByID:      &userID,
		ParentTicketID:   req.ParentTicketID,
		CityID:           req.CityID,
		ServiceAddress:   req.ServiceAddress,
		ServiceLatitude:  req.ServiceLatitude,
		ServiceLongitude: req.ServiceLongitude,
		IssueCategory:    triageResult.SuggestedCategory,
		IssueDescription: req.IssueDescription,
		IssuePhotos:      req.IssuePhotos,
		Status:           models.StatusCreated,
		Priority:         priority,
		TriageCategory:   &triageResult.SuggestedCategory,
		TriageConfidence: &triageResult.ConfidenceScore,
		SuggestedParts:   triageResult.SuggestedParts,
		SLADeadline:      &deadline,
	}

	if err := h.tickets.Create(c.Request.Context(), ticket); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
		return
	}

	h.notifier.Notify(c.Request.Context(), userID, "ticket_created", "Ticket created",
		fmt.Sprintf("Your ticket %s has been created.", ticket.TicketNumber), nil)

	c.JSON(http.StatusCreated, gin.H{
		"ticket":    ticket,
		"ai_triage": triageResult,
	})
}

// Get returns one ticket
func (h *TicketHandler) Get(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// List returns the organization's tickets, optionally filtered by status
func (h *TicketHandler) List(c *gin.Context) {
	orgID, ok := middleware.GetOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tickets, err := h.tickets.ListByOrganization(c.Request.Context(), orgID, c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus transitions a ticket's lifecycle state
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.TicketStatus(req.Status)
	switch status {
	case models.StatusCreated, models.StatusAssigned, models.StatusInProgress,
		models.StatusWaitingParts, models.StatusResolved, models.StatusClosed,
		models.StatusCancelled, models.StatusEscalated:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := h.tickets.UpdateStatus(c.Request.Context(), ticket.ID, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": ticket.ID, "status": status})
}

type assignRequest struct {
	EngineerID int64 `json:"engineer_id" binding:"required"`
}

// Assign hands a ticket to an engineer
func (h *TicketHandler) Assign(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tickets.AssignEngineer(c.Request.Context(), ticket.ID, req.EngineerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign engineer"})
		return
	}

	h.notifier.Notify(c.Request.Context(), req.EngineerID, "ticket_assigned", "New assignment",
		fmt.Sprintf("Ticket %s has been assigned to you.", ticket.TicketNumber), nil)

	c.JSON(http.StatusOK, gin.H{"id": ticket.ID, "assigned_engineer_id": req.EngineerID})
}

type resolutionRequest struct {
	Notes     string   `json:"notes"`
	Photos    []string `json:"photos"`
	PartsUsed []string `json:"parts_used"`
}

// Resolve records resolution details and marks the ticket resolved
func (h *TicketHandler) Resolve(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	var req resolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.tickets.UpdateResolution(ctx, ticket.ID, req.Notes, req.Photos, req.PartsUsed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save resolution"})
		return
	}
	if err := h.tickets.UpdateStatus(ctx, ticket.ID, models.StatusResolved); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	if ticket.CustomerID != nil {
		h.notifier.Notify(ctx, *ticket.CustomerID, "ticket_resolved", "Ticket resolved",
			fmt.Sprintf("Your ticket %s has been resolved.", ticket.TicketNumber), nil)
	}

	c.JSON(http.StatusOK, gin.H{"id": ticket.ID, "status": models.StatusResolved})
}

type feedbackRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

// Feedback records the customer's rating; the feedback text is scored for
// sentiment with the rating blended in.
func (h *TicketHandler) Feedback(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.sentiment.AnalyzeFeedback(req.Feedback, &req.Rating, "en")
	if err := h.tickets.UpdateFeedback(c.Request.Context(), ticket.ID, req.Rating, req.Feedback, result.SentimentScore); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": ticket.ID, "sentiment": result})
}

type commentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// AddComment appends a comment to a ticket
func (h *TicketHandler) AddComment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &models.TicketComment{
		TicketID: ticket.ID,
		UserID:   userID,
		Comment:  req.Comment,
	}
	if err := h.tickets.AddComment(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add comment"})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments returns a ticket's comments oldest first
func (h *TicketHandler) ListComments(c *gin.Context) {
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	comments, err := h.tickets.ListComments(c.Request.Context(), ticket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// UploadPhoto stores an issue photo in object storage and records its key on
// the ticket
func (h *TicketHandler) UploadPhoto(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage not configured"})
		return
	}
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read photo"})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	stored, err := h.storage.Upload(ctx, ticket.ID, file, fileHeader.Size, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tickets.AddIssuePhoto(ctx, ticket.ID, stored.StorageKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record photo"})
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// PhotoURL returns a short-lived download link for a photo attached to the
// ticket. The key must belong to the ticket's issue or resolution photos.
func (h *TicketHandler) PhotoURL(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage not configured"})
		return
	}
	ticket := h.loadTicket(c)
	if ticket == nil {
		return
	}

	key := c.Query("key")
	if !ticketHasPhoto(ticket, key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	url, err := h.storage.PresignedURL(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate download link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func ticketHasPhoto(t *models.Ticket, key string) bool {
	if key == "" {
		return false
	}
	for _, p := range t.IssuePhotos {
		if p == key {
			return true
		}
	}
	for _, p := range t.ResolutionPhotos {
		if p == key {
			return true
		}
	}
	return false
}

// loadTicket fetches the ticket in the :id param, scoped to the caller's
// organization. It writes the error response itself and returns nil on any
// failure.
func (h *TicketHandler) loadTicket(c *gin.Context) *models.Ticket {
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

func newTicketNumber() string {
	return fmt.Sprintf("TKT-%s-%s", time.Now().UTC().Format("20060102"), uuid.New().String()[:8])
}
