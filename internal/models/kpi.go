package models

import "gorm.io/gorm"

type KPI struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Unit        string
	DashboardID uint `gorm:"not null;index"`

	// Relationships. Values die with the KPI.
	Dashboard Dashboard  `gorm:"foreignKey:DashboardID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT" json:"-"`
	Values    []KPIValue `gorm:"foreignKey:KPIID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
