package access

import (
	"testing"

	"github.com/pedago-dev/portal/internal/models"
	"github.com/stretchr/testify/assert"
)

func dashboardInSector(sectorID uint) models.Dashboard {
	d := models.Dashboard{SectorID: sectorID}
	d.ID = 1
	return d
}

func TestCanAccessDashboard_AdminSeesEverything(t *testing.T) {
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	assert.True(t, CanAccessDashboard(admin, dashboardInSector(7)))
	assert.True(t, CanAccessDashboard(admin, dashboardInSector(99)))
}

func TestCanAccessDashboard_ScopedByAssignedSectors(t *testing.T) {
	viewer := Actor{ID: 2, Role: models.RoleViewer, SectorIDs: []uint{3, 5}}

	assert.True(t, CanAccessDashboard(viewer, dashboardInSector(3)))
	assert.True(t, CanAccessDashboard(viewer, dashboardInSector(5)))
	assert.False(t, CanAccessDashboard(viewer, dashboardInSector(7)))
}

func TestCanAccessDashboard_NoAssignments(t *testing.T) {
	tests := []struct {
		name string
		role string
	}{
		{"viewer", models.RoleViewer},
		{"manager", models.RoleManager},
		{"analyst", models.RoleAnalyst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := Actor{ID: 2, Role: tt.role}
			assert.False(t, CanAccessDashboard(actor, dashboardInSector(1)))
		})
	}
}

func TestCanUseSectorFilter(t *testing.T) {
	admin := Actor{ID: 1, Role: models.RoleAdmin}
	analyst := Actor{ID: 2, Role: models.RoleAnalyst, SectorIDs: []uint{4}}

	assert.True(t, CanUseSectorFilter(admin, 4))
	assert.True(t, CanUseSectorFilter(admin, 12))
	assert.True(t, CanUseSectorFilter(analyst, 4))
	assert.False(t, CanUseSectorFilter(analyst, 12))
}

func TestHasSector(t *testing.T) {
	actor := Actor{SectorIDs: []uint{1, 2}}

	assert.True(t, actor.HasSector(1))
	assert.False(t, actor.HasSector(3))
	assert.False(t, Actor{}.HasSector(1))
}
