package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeleteSectorBlockedByDashboards(t *testing.T) {
	actor := setupTestDB(t)
	router := newTestRouter(actor)

	sector := models.Sector{Name: "Production"}
	require.NoError(t, db.DB.Create(&sector).Error)
	dashboard := models.Dashboard{Title: "Rendement", ExternalURL: "https://bi.example.com/1", SectorID: sector.ID}
	require.NoError(t, db.DB.Create(&dashboard).Error)

	resp := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/sectors/%d", sector.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "still contains dashboards")

	var reloaded models.Sector
	require.NoError(t, db.DB.First(&reloaded, sector.ID).Error)

	resp = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/dashboards/%d", dashboard.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/sectors/%d", sector.ID), nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	err := db.DB.First(&reloaded, sector.ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteSectorRemovesAssignments(t *testing.T) {
	actor := setupTestDB(t)
	router := newTestRouter(actor)

	user := models.User{Name: "Grace", Email: "grace@example.com", PasswordHash: "hash", Role: models.RoleViewer}
	require.NoError(t, db.DB.Create(&user).Error)
	sector := models.Sector{Name: "Qualité"}
	require.NoError(t, db.DB.Create(&sector).Error)

	resp := doRequest(t, router, http.MethodPost, fmt.Sprintf("/users/%d/sectors", user.ID), gin.H{"sector_id": sector.ID})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/sectors/%d", sector.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// Assignment rows are gone for real, not just hidden behind the
	// default scope.
	var count int64
	require.NoError(t, db.DB.Unscoped().Model(&models.UserSector{}).
		Where("sector_id = ?", sector.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
