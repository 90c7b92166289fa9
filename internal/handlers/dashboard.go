package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/access"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/services"
	"github.com/pedago-dev/portal/internal/types"
	"github.com/pedago-dev/portal/internal/utils"
	"gorm.io/gorm"
)

type DashboardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ExternalURL string `json:"external_url" binding:"required"`
	SectorID    uint   `json:"sector_id" binding:"required"`
}

type KPISummary struct {
	ID     uint                  `json:"id"`
	Name   string                `json:"name"`
	Unit   string                `json:"unit,omitempty"`
	Values []types.KPIValuePoint `json:"values"`
}

type DashboardSummary struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	ExternalURL string               `json:"external_url"`
	Sector      types.SectorResponse `json:"sector"`
	KPIs        []KPISummary         `json:"kpis"`
}

// recentValues loads the newest observations of one KPI, latest first.
func recentValues(kpiID uint, limit int) ([]types.KPIValuePoint, error) {
	var values []models.KPIValue

	if err := db.DB.Where("kpi_id = ?", kpiID).
		Order("measured_at DESC").
		Limit(limit).
		Find(&values).Error; err != nil {
		return nil, err
	}

	points := make([]types.KPIValuePoint, 0, len(values))
	for _, value := range values {
		points = append(points, types.KPIValuePoint{
			ID:         value.ID,
			Value:      value.Value,
			MeasuredAt: value.MeasuredAt,
		})
	}

	return points, nil
}

func buildDashboardSummary(dashboard models.Dashboard, valuesPerKPI int) (DashboardSummary, error) {
	var kpis []models.KPI

	if err := db.DB.Where("dashboard_id = ?", dashboard.ID).Find(&kpis).Error; err != nil {
		return DashboardSummary{}, err
	}

	summaries := make([]KPISummary, 0, len(kpis))
	for _, kpi := range kpis {
		points, err := recentValues(kpi.ID, valuesPerKPI)
		if err != nil {
			return DashboardSummary{}, err
		}
		summaries = append(summaries, KPISummary{
			ID:     kpi.ID,
			Name:   kpi.Name,
			Unit:   kpi.Unit,
			Values: points,
		})
	}

	return DashboardSummary{
		ID:          dashboard.ID,
		Title:       dashboard.Title,
		Description: dashboard.Description,
		ExternalURL: dashboard.ExternalURL,
		Sector:      types.SectorResponse{ID: dashboard.Sector.ID, Name: dashboard.Sector.Name},
		KPIs:        summaries,
	}, nil
}

func ListDashboards(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Preload("Sector")

	if sectorFilter := ctx.Query("sector_id"); sectorFilter != "" {
		sectorID, err := strconv.ParseUint(sectorFilter, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
			return
		}

		if !access.CanUseSectorFilter(actor, uint(sectorID)) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Access to this sector is not allowed"})
			return
		}

		query = query.Where("sector_id = ?", sectorID)
	} else if !actor.IsAdmin() {
		if len(actor.SectorIDs) == 0 {
			ctx.JSON(http.StatusOK, []DashboardSummary{})
			return
		}
		query = query.Where("sector_id IN ?", actor.SectorIDs)
	}

	var dashboards []models.Dashboard

	if err := query.Find(&dashboards).Error; err != nil {
		log.Printf("Failed to list dashboards: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboards"})
		return
	}

	response := make([]DashboardSummary, 0, len(dashboards))
	for _, dashboard := range dashboards {
		summary, err := buildDashboardSummary(dashboard, 1)
		if err != nil {
			log.Printf("Failed to build summary for dashboard %d: %v", dashboard.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboards"})
			return
		}
		response = append(response, summary)
	}

	ctx.JSON(http.StatusOK, response)
}

func GetDashboard(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dashboardID, err := utils.GetParamID(ctx, "dashboard_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dashboard ID"})
		return
	}

	var dashboard models.Dashboard

	if err := db.DB.Preload("Sector").First(&dashboard, dashboardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Dashboard not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		}
		return
	}

	// Re-checked on every fetch, independently of any earlier listing.
	if !access.CanAccessDashboard(actor, dashboard) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access to this dashboard is not allowed"})
		return
	}

	summary, err := buildDashboardSummary(dashboard, 10)

	if err != nil {
		log.Printf("Failed to build summary for dashboard %d: %v", dashboard.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func CreateDashboard(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req DashboardRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title, external URL and sector are required"})
		return
	}

	var sector models.Sector

	// Surfaced as a validation failure rather than letting the FK insert
	// blow up.
	if err := db.DB.First(&sector, req.SectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Referenced sector does not exist"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector"})
		}
		return
	}

	dashboard := models.Dashboard{
		Title:       req.Title,
		Description: req.Description,
		ExternalURL: req.ExternalURL,
		SectorID:    req.SectorID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dashboard).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "create", "dashboard", dashboard.ID, gin.H{
			"title":     dashboard.Title,
			"sector_id": dashboard.SectorID,
		})
	})

	if err != nil {
		log.Printf("Failed to create dashboard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dashboard"})
		return
	}

	dashboard.Sector = sector

	summary, err := buildDashboardSummary(dashboard, 1)

	if err != nil {
		log.Printf("Failed to build summary for dashboard %d: %v", dashboard.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		return
	}

	ctx.JSON(http.StatusCreated, summary)
}

func UpdateDashboard(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dashboardID, err := utils.GetParamID(ctx, "dashboard_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dashboard ID"})
		return
	}

	var req DashboardRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title, external URL and sector are required"})
		return
	}

	var dashboard models.Dashboard

	if err := db.DB.First(&dashboard, dashboardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Dashboard not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		}
		return
	}

	var sector models.Sector

	if err := db.DB.First(&sector, req.SectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Referenced sector does not exist"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector"})
		}
		return
	}

	dashboard.Title = req.Title
	dashboard.Description = req.Description
	dashboard.ExternalURL = req.ExternalURL
	dashboard.SectorID = req.SectorID

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&dashboard).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "update", "dashboard", dashboard.ID, gin.H{
			"title":     dashboard.Title,
			"sector_id": dashboard.SectorID,
		})
	})

	if err != nil {
		log.Printf("Failed to update dashboard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dashboard"})
		return
	}

	dashboard.Sector = sector

	summary, err := buildDashboardSummary(dashboard, 1)

	if err != nil {
		log.Printf("Failed to build summary for dashboard %d: %v", dashboard.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func DeleteDashboard(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dashboardID, err := utils.GetParamID(ctx, "dashboard_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dashboard ID"})
		return
	}

	var dashboard models.Dashboard

	if err := db.DB.First(&dashboard, dashboardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Dashboard not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		}
		return
	}

	var kpiCount int64

	if err := db.DB.Model(&models.KPI{}).Where("dashboard_id = ?", dashboardID).Count(&kpiCount).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check dashboard KPIs"})
		return
	}

	if kpiCount > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Cannot delete this dashboard because it still contains KPIs"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&dashboard).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "delete", "dashboard", dashboard.ID, gin.H{
			"title": dashboard.Title,
		})
	})

	if err != nil {
		log.Printf("Failed to delete dashboard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Dashboard deleted successfully"})
}
