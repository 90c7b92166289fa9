package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/models"
	"gorm.io/datatypes"
)

type AuditLogEntry struct {
	ID        uint           `json:"id"`
	UserID    uint           `json:"user_id"`
	UserName  string         `json:"user_name"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  uint           `json:"entity_id"`
	Details   datatypes.JSON `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListAuditLogs returns the most recent admin mutations, newest first.
func ListAuditLogs(ctx *gin.Context) {
	var logs []models.AuditLog

	if err := db.DB.Preload("User").
		Order("created_at DESC").
		Limit(100).
		Find(&logs).Error; err != nil {
		log.Printf("Failed to list audit logs: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	response := make([]AuditLogEntry, 0, len(logs))
	for _, entry := range logs {
		response = append(response, AuditLogEntry{
			ID:        entry.ID,
			UserID:    entry.UserID,
			UserName:  entry.User.Name,
			Action:    entry.Action,
			Entity:    entry.Entity,
			EntityID:  entry.EntityID,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
