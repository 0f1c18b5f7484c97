package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/faceattend/internal/storage"
	"github.com/your-org/faceattend/pkg/dto"
)

type NotificationHandler struct {
	db *storage.PostgresStore
}

func NewNotificationHandler(db *storage.PostgresStore) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List returns the most recent notification feed entries, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.db.ListNotifications(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, dto.NotificationResponse{
			ID:         n.ID,
			EmployeeID: n.EmployeeID,
			Action:     n.Action,
			Message:    n.Message,
			CreatedAt:  n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": resp, "total": len(resp)})
}
