package models

import "gorm.io/gorm"

// UserSector assigns a user to a sector. The composite unique index closes
// the race between the duplicate pre-check and the insert under concurrent
// requests; it is scoped to live rows so a removed assignment can be
// re-added. Handlers also remove join rows with Unscoped, assignments carry
// no history worth keeping.
type UserSector struct {
	gorm.Model

	UserID   uint `gorm:"not null;uniqueIndex:idx_user_sector,where:deleted_at IS NULL"`
	SectorID uint `gorm:"not null;uniqueIndex:idx_user_sector"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Sector Sector `gorm:"foreignKey:SectorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
