package models

import (
	"time"

	"gorm.io/gorm"
)

// KPIValue is one timestamped observation of a KPI. The series is
// append-only: there is no update or delete endpoint, values only go away
// when their KPI does.
type KPIValue struct {
	gorm.Model

	KPIID      uint      `gorm:"column:kpi_id;not null;index"`
	Value      float64   `gorm:"not null"`
	MeasuredAt time.Time `gorm:"not null;index"`

	// Relationships
	KPI KPI `gorm:"foreignKey:KPIID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
