package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve/internal/repository"
)

// EngineerHandler handles engineer management requests
type EngineerHandler struct {
	engineers *repository.EngineerRepository
}

// NewEngineerHandler creates a new engineer handler
func NewEngineerHandler(engineers *repository.EngineerRepository) *EngineerHandler {
	return &EngineerHandler{engineers: engineers}
}

// List returns engineers with live workload counters, optionally by city
func (h *EngineerHandler) List(c *gin.Context) {
	cityID, _ := strconv.ParseInt(c.DefaultQuery("city_id", "0"), 10, 64)

	engineers, err := h.engineers.ListByCity(c.Request.Context(), cityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list engineers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"engineers": engineers})
}

// Get returns one engineer with live workload counters
func (h *EngineerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid engineer ID"})
		return
	}

	engineer, err := h.engineers.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get engineer"})
		return
	}
	if engineer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "engineer not found"})
		return
	}
	c.JSON(http.StatusOK, engineer)
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SetAvailability toggles whether an engineer accepts new assignments
func (h *EngineerHandler) SetAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid engineer ID"})
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engineers.SetAvailability(c.Request.Context(), id, *req.IsAvailable); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update availability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_available": *req.IsAvailable})
}

type locationRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

// UpdateLocation records the engineer's last reported position
func (h *EngineerHandler) UpdateLocation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid engineer ID"})
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engineers.UpdateLocation(c.Request.Context(), id, req.Latitude, req.Longitude); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update location"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "latitude": req.Latitude, "longitude": req.Longitude})
}
