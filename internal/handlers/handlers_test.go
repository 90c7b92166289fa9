package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/access"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-level connection at a fresh in-memory
// database and seeds the acting administrator.
func setupTestDB(t *testing.T) access.Actor {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// A second pooled connection would see its own empty :memory: database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Sector{},
		&models.UserSector{},
		&models.Dashboard{},
		&models.KPI{},
		&models.KPIValue{},
		&models.AuditLog{},
	))

	db.DB = conn

	admin := models.User{
		Name:         "Portal Admin",
		Email:        "admin@pedago.com",
		PasswordHash: "seeded-hash",
		Role:         models.RoleAdmin,
	}
	require.NoError(t, db.DB.Create(&admin).Error)

	return access.Actor{ID: admin.ID, Name: admin.Name, Email: admin.Email, Role: admin.Role}
}

// newTestRouter wires the handlers behind a stand-in for the auth middleware
// that injects the given actor directly.
func newTestRouter(actor access.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set(types.ContextActorKey, actor)
	})

	router.GET("/users", ListUsers)
	router.POST("/users", CreateUser)
	router.PUT("/users/:user_id", UpdateUser)
	router.DELETE("/users/:user_id", DeleteUser)
	router.GET("/users/:user_id/sectors", ListUserSectors)
	router.POST("/users/:user_id/sectors", AddUserSector)
	router.DELETE("/users/:user_id/sectors", RemoveUserSector)
	router.DELETE("/sectors/:sector_id", DeleteSector)
	router.GET("/dashboards", ListDashboards)
	router.GET("/dashboards/:dashboard_id", GetDashboard)
	router.DELETE("/dashboards/:dashboard_id", DeleteDashboard)
	router.GET("/kpis", ListKPIs)
	router.DELETE("/kpis/:kpi_id", DeleteKPI)
	router.GET("/kpis/:kpi_id/values", ListKPIValues)
	router.POST("/kpis/:kpi_id/values", AddKPIValue)

	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload := []byte(nil)
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}
