package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/access"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/services"
	"github.com/pedago-dev/portal/internal/types"
	"github.com/pedago-dev/portal/internal/utils"
	"gorm.io/gorm"
)

type CreateKPIRequest struct {
	Name        string `json:"name" binding:"required"`
	Unit        string `json:"unit"`
	DashboardID uint   `json:"dashboard_id" binding:"required"`
}

type AddKPIValueRequest struct {
	Value      interface{} `json:"value" binding:"required"`
	MeasuredAt *time.Time  `json:"measured_at"`
}

type KPIDetail struct {
	ID          uint                  `json:"id"`
	Name        string                `json:"name"`
	Unit        string                `json:"unit,omitempty"`
	DashboardID uint                  `json:"dashboard_id"`
	Values      []types.KPIValuePoint `json:"values"`
}

// parseNumericValue coerces a JSON value field to float64. Clients send
// numbers as well as numeric strings; anything else is rejected.
func parseNumericValue(v interface{}) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case json.Number:
		return value.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", value)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("value must be a number")
	}
}

// parsePeriodDays reads the period query parameter, in days. Empty means
// the 30-day default.
func parsePeriodDays(raw string) (int, error) {
	if raw == "" {
		return 30, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("period must be a positive number of days")
	}

	return days, nil
}

func ListKPIs(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Model(&models.KPI{}).
		Joins("JOIN dashboards ON dashboards.id = kpis.dashboard_id")

	if dashboardFilter := ctx.Query("dashboard_id"); dashboardFilter != "" {
		dashboardID, err := strconv.ParseUint(dashboardFilter, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dashboard ID"})
			return
		}
		query = query.Where("kpis.dashboard_id = ?", dashboardID)
	}

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

		query = query.Where("dashboards.sector_id = ?", sectorID)
	}

	if !actor.IsAdmin() {
		if len(actor.SectorIDs) == 0 {
			ctx.JSON(http.StatusOK, []KPIDetail{})
			return
		}
		query = query.Where("dashboards.sector_id IN ?", actor.SectorIDs)
	}

	var kpis []models.KPI

	if err := query.Find(&kpis).Error; err != nil {
		log.Printf("Failed to list KPIs: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve KPIs"})
		return
	}

	response := make([]KPIDetail, 0, len(kpis))
	for _, kpi := range kpis {
		points, err := recentValues(kpi.ID, 10)
		if err != nil {
			log.Printf("Failed to load values for KPI %d: %v", kpi.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve KPIs"})
			return
		}
		response = append(response, KPIDetail{
			ID:          kpi.ID,
			Name:        kpi.Name,
			Unit:        kpi.Unit,
			DashboardID: kpi.DashboardID,
			Values:      points,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateKPI(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateKPIRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name and dashboard are required"})
		return
	}

	var dashboard models.Dashboard

	if err := db.DB.First(&dashboard, req.DashboardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Referenced dashboard does not exist"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		}
		return
	}

	kpi := models.KPI{
		Name:        req.Name,
		Unit:        req.Unit,
		DashboardID: req.DashboardID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&kpi).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "create", "kpi", kpi.ID, gin.H{
			"name":         kpi.Name,
			"dashboard_id": kpi.DashboardID,
		})
	})

	if err != nil {
		log.Printf("Failed to create KPI: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create KPI"})
		return
	}

	ctx.JSON(http.StatusCreated, KPIDetail{
		ID:          kpi.ID,
		Name:        kpi.Name,
		Unit:        kpi.Unit,
		DashboardID: kpi.DashboardID,
		Values:      []types.KPIValuePoint{},
	})
}

func DeleteKPI(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	kpiID, err := utils.GetParamID(ctx, "kpi_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid KPI ID"})
		return
	}

	var kpi models.KPI

	if err := db.DB.First(&kpi, kpiID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "KPI not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve KPI"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// The value series dies with its KPI.
		if err := tx.Where("kpi_id = ?", kpi.ID).Delete(&models.KPIValue{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&kpi).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "delete", "kpi", kpi.ID, gin.H{
			"name": kpi.Name,
		})
	})

	if err != nil {
		log.Printf("Failed to delete KPI: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "KPI deleted successfully"})
}

func ListKPIValues(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	kpiID, err := utils.GetParamID(ctx, "kpi_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid KPI ID"})
		return
	}

	days, err := parsePeriodDays(ctx.Query("period"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var kpi models.KPI

	if err := db.DB.First(&kpi, kpiID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "KPI not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve KPI"})
		}
		return
	}

	var dashboard models.Dashboard

	if err := db.DB.First(&dashboard, kpi.DashboardID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		return
	}

	// Scoped through the owning dashboard's sector.
	if !access.CanAccessDashboard(actor, dashboard) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access to this KPI is not allowed"})
		return
	}

	since := time.Now().AddDate(0, 0, -days)

	var values []models.KPIValue

	if err := db.DB.Where("kpi_id = ? AND measured_at >= ?", kpiID, since).
		Order("measured_at ASC").
		Find(&values).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve KPI values"})
		return
	}

	points := make([]types.KPIValuePoint, 0, len(values))
	for _, value := range values {
		points = append(points, types.KPIValuePoint{
			ID:         value.ID,
			Value:      value.Value,
			MeasuredAt: value.MeasuredAt,
		})
	}

	ctx.JSON(http.StatusOK, points)
}

func AddKPIValue(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	kpiID, err := utils.GetParamID(ctx, "kpi_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid KPI ID"})
		return
	}

	var req AddKPIValueRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
		return
	}

	value, err := parseNumericValue(req.Value)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var kpi models.KPI

	if err := db.DB.First(&kpi, kpiID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "KPI not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve KPI"})
		}
		return
	}

	var dashboard models.Dashboard

	if err := db.DB.First(&dashboard, kpi.DashboardID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard"})
		return
	}

	measuredAt := time.Now()
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	kpiValue := models.KPIValue{
		KPIID:      kpiID,
		Value:      value,
		MeasuredAt: measuredAt,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&kpiValue).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "create", "kpi_value", kpiValue.ID, gin.H{
			"kpi_id": kpiID,
			"value":  value,
		})
	})

	if err != nil {
		log.Printf("Failed to create KPI value: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create KPI value"})
		return
	}

	liveHub.Broadcast(dashboard.SectorID, gin.H{
		"type":         "kpi_value.created",
		"kpi_id":       kpiID,
		"dashboard_id": dashboard.ID,
		"sector_id":    dashboard.SectorID,
		"value":        value,
		"measured_at":  measuredAt.Format(time.RFC3339),
	})

	ctx.JSON(http.StatusCreated, types.KPIValuePoint{
		ID:         kpiValue.ID,
		Value:      kpiValue.Value,
		MeasuredAt: kpiValue.MeasuredAt,
	})
}
