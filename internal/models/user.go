package models

import "gorm.io/gorm"

// Portal roles. Every user carries exactly one of these; VIEWER is the
// default for newly created accounts.
const (
	RoleViewer  = "VIEWER"
	RoleManager = "MANAGER"
	RoleAnalyst = "ANALYST"
	RoleAdmin   = "ADMIN"
)

// ValidRole reports whether role is one of the four portal roles.
func ValidRole(role string) bool {
	switch role {
	case RoleViewer, RoleManager, RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}

// User is a portal account. The email index is partial so soft-deleted rows
// do not block reuse of the address.
type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex:idx_users_email,where:deleted_at IS NULL;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'VIEWER'"`

	// Relationships
	SectorAssignments []UserSector `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AuditLogs         []AuditLog   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
