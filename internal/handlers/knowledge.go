package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve/internal/middleware"
	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/repository"
	"github.com/fieldserve/fieldserve/internal/services/knowledge"
)

// KnowledgeHandler handles knowledge base management and assistant queries
type KnowledgeHandler struct {
	entries   *repository.KnowledgeRepository
	assistant *knowledge.Service
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(entries *repository.KnowledgeRepository, assistant *knowledge.Service) *KnowledgeHandler {
	return &KnowledgeHandler{entries: entries, assistant: assistant}
}

type copilotQueryRequest struct {
	Query          string `json:"query" binding:"required"`
	DeviceCategory string `json:"device_category"`
	DeviceModel    string `json:"device_model"`
	Language       string `json:"language"`
}

// Query answers a natural-language repair question from the knowledge base
func (h *KnowledgeHandler) Query(c *gin.Context) {
	var req copilotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	answer := h.assistant.AnswerQuery(c.Request.Context(), req.Query, req.DeviceCategory, req.DeviceModel, req.Language, middleware.GetRole(c))
	c.JSON(http.StatusOK, answer)
}

// Search returns the best-matching knowledge base entries for a query
func (h *KnowledgeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	results, err := h.assistant.Search(c.Request.Context(), query, middleware.GetRole(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type knowledgeEntryRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
	Role    *string  `json:"role"`
	Source  string   `json:"source"`
}

// CreateEntry adds a knowledge base document
func (h *KnowledgeHandler) CreateEntry(c *gin.Context) {
	var req knowledgeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := &models.KnowledgeEntry{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Role:     req.Role,
		Source:   req.Source,
		IsActive: true,
	}
	if err := h.entries.Create(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create entry"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateEntry modifies a knowledge base document
func (h *KnowledgeHandler) UpdateEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry ID"})
		return
	}

	entry, err := h.entries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get entry"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	var req knowledgeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry.Title = req.Title
	entry.Content = req.Content
	entry.Tags = req.Tags
	entry.Role = req.Role
	entry.Source = req.Source
	if err := h.entries.Update(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update entry"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry soft-deletes a knowledge base document
func (h *KnowledgeHandler) DeleteEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry ID"})
		return
	}
	if err := h.entries.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": false})
}

// ListEntries returns the active entries visible to the caller's role
func (h *KnowledgeHandler) ListEntries(c *gin.Context) {
	entries, err := h.entries.ActiveEntries(c.Request.Context(), middleware.GetRole(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
