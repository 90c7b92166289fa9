package types

import "time"

// Shared response shapes. Passwords and hashes never appear here.

type UserResponse struct {
	ID      uint             `json:"id"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Role    string           `json:"role"`
	Sectors []SectorResponse `json:"sectors,omitempty"`
}

type SectorResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type KPIValuePoint struct {
	ID         uint      `json:"id"`
	Value      float64   `json:"value"`
	MeasuredAt time.Time `json:"measured_at"`
}
