package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve/internal/middleware"
	"github.com/fieldserve/fieldserve/internal/services/notification"
)

// NotificationHandler serves a user's notification feed
type NotificationHandler struct {
	notifier *notification.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifier *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// List returns the caller's recent notifications, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	notifications, err := h.notifier.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
