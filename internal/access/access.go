// Package access holds the sector-scoping rules deciding what an
// authenticated principal may read. The functions here are pure: the
// decision depends only on the actor and the entity passed in, never on
// ambient state.
package access

import "github.com/pedago-dev/portal/internal/models"

// Actor is the authenticated principal a request runs as. SectorIDs must be
// resolved fresh from storage for every request; assignments can change
// between calls, so they are never cached across requests.
type Actor struct {
	ID        uint
	Name      string
	Email     string
	Role      string
	SectorIDs []uint
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// HasSector reports whether the actor is assigned to the given sector.
func (a Actor) HasSector(sectorID uint) bool {
	for _, id := range a.SectorIDs {
		if id == sectorID {
			return true
		}
	}
	return false
}

// CanAccessDashboard decides whether the actor may read the dashboard.
// Admins see every dashboard; everyone else only those in their assigned
// sectors.
func CanAccessDashboard(actor Actor, dashboard models.Dashboard) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.HasSector(dashboard.SectorID)
}

// CanUseSectorFilter decides whether the actor may narrow a listing to the
// given sector.
func CanUseSectorFilter(actor Actor, sectorID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.HasSector(sectorID)
}
