package services

import (
	"encoding/json"
	"fmt"

	"github.com/pedago-dev/portal/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordAudit writes one audit row. It takes the caller's tx so the log is
// part of the same atomic operation as the mutation it records; a rolled
// back mutation leaves no log behind.
func RecordAudit(tx *gorm.DB, actorID uint, action, entity string, entityID uint, details interface{}) error {
	var payload datatypes.JSON

	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		payload = datatypes.JSON(raw)
	}

	entry := models.AuditLog{
		UserID:   actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  payload,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}
