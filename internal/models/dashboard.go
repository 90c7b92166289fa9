package models

import "gorm.io/gorm"

// Dashboard references an externally hosted report, scoped to exactly one
// sector.
type Dashboard struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	ExternalURL string `gorm:"not null"`
	SectorID    uint   `gorm:"not null;index"`

	// Relationships. KPIs are RESTRICT on delete: a dashboard holding KPIs
	// cannot be removed until they are deleted.
	Sector Sector `gorm:"foreignKey:SectorID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
	KPIs   []KPI  `gorm:"foreignKey:DashboardID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
}
