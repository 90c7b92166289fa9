package models

import "gorm.io/gorm"

// Sector is the organizational unit that gates dashboard visibility.
// Names are intentionally not unique; two sectors may share a name.
type Sector struct {
	gorm.Model

	Name string `gorm:"not null"`

	// Relationships. Dashboards are RESTRICT on delete: a sector holding
	// dashboards cannot be removed until they are reassigned or deleted.
	UserAssignments []UserSector `gorm:"foreignKey:SectorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Dashboards      []Dashboard  `gorm:"foreignKey:SectorID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
}
