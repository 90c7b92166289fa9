package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/access"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDashboard(t *testing.T, sectorName, title string) (models.Sector, models.Dashboard) {
	t.Helper()

	sector := models.Sector{Name: sectorName}
	require.NoError(t, db.DB.Create(&sector).Error)
	dashboard := models.Dashboard{
		Title:       title,
		ExternalURL: "https://bi.example.com/" + title,
		SectorID:    sector.ID,
	}
	require.NoError(t, db.DB.Create(&dashboard).Error)

	return sector, dashboard
}

func TestDeleteDashboardBlockedByKPIs(t *testing.T) {
	actor := setupTestDB(t)
	router := newTestRouter(actor)

	_, dashboard := seedDashboard(t, "Ventes", "ca-mensuel")
	kpi := models.KPI{Name: "Chiffre d'affaires", Unit: "EUR", DashboardID: dashboard.ID}
	require.NoError(t, db.DB.Create(&kpi).Error)

	resp := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/dashboards/%d", dashboard.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "still contains KPIs")

	resp = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/kpis/%d", kpi.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/dashboards/%d", dashboard.ID), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestListDashboardsScopedToAssignments(t *testing.T) {
	setupTestDB(t)

	_, dashA := seedDashboard(t, "Commerce", "commerce-kpis")
	sectorB, _ := seedDashboard(t, "Production", "production-kpis")

	viewer := access.Actor{ID: 42, Name: "Viewer", Role: models.RoleViewer, SectorIDs: []uint{dashA.SectorID}}
	viewerRouter := newTestRouter(viewer)

	resp := doRequest(t, viewerRouter, http.MethodGet, "/dashboards", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var listed []DashboardSummary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, dashA.ID, listed[0].ID)

	// Filtering on an unassigned sector is refused, not silently widened.
	resp = doRequest(t, viewerRouter, http.MethodGet, fmt.Sprintf("/dashboards?sector_id=%d", sectorB.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	adminRouter := newTestRouter(access.Actor{ID: 1, Role: models.RoleAdmin})
	resp = doRequest(t, adminRouter, http.MethodGet, "/dashboards", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)

	// No assignments means an empty list, not an error.
	emptyRouter := newTestRouter(access.Actor{ID: 43, Role: models.RoleAnalyst})
	resp = doRequest(t, emptyRouter, http.MethodGet, "/dashboards", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	assert.Empty(t, listed)
}

func TestGetDashboardOutsideScope(t *testing.T) {
	setupTestDB(t)

	_, dashA := seedDashboard(t, "Commerce", "commerce-kpis")
	_, dashB := seedDashboard(t, "Production", "production-kpis")

	viewer := access.Actor{ID: 42, Role: models.RoleViewer, SectorIDs: []uint{dashA.SectorID}}
	router := newTestRouter(viewer)

	resp := doRequest(t, router, http.MethodGet, fmt.Sprintf("/dashboards/%d", dashA.ID), nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodGet, fmt.Sprintf("/dashboards/%d", dashB.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Access to this dashboard is not allowed")

	resp = doRequest(t, router, http.MethodGet, "/dashboards/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListDashboardsValueLoadFailure(t *testing.T) {
	actor := setupTestDB(t)
	router := newTestRouter(actor)

	_, dashboard := seedDashboard(t, "Ventes", "ca-mensuel")
	kpi := models.KPI{Name: "Commandes", DashboardID: dashboard.ID}
	require.NoError(t, db.DB.Create(&kpi).Error)

	// A storage failure while embedding values must surface as an error,
	// not as a quietly shorter list.
	require.NoError(t, db.DB.Migrator().DropTable(&models.KPIValue{}))

	resp := doRequest(t, router, http.MethodGet, "/dashboards", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "Failed to retrieve dashboards")

	resp = doRequest(t, router, http.MethodGet, "/kpis", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "Failed to retrieve KPIs")
}
