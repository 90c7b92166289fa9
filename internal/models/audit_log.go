package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records one admin mutation. Rows are written inside the same
// transaction as the mutation they describe.
type AuditLog struct {
	gorm.Model

	UserID   uint   `gorm:"not null;index"`
	Action   string `gorm:"not null"` // "create", "update", "delete"
	Entity   string `gorm:"not null"` // "user", "sector", "dashboard", "kpi", "kpi_value"
	EntityID uint
	Details  datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
