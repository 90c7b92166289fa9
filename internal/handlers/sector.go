package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/services"
	"github.com/pedago-dev/portal/internal/types"
	"github.com/pedago-dev/portal/internal/utils"
	"gorm.io/gorm"
)

type SectorRequest struct {
	Name string `json:"name" binding:"required"`
}

type SectorDetail struct {
	ID    uint                 `json:"id"`
	Name  string               `json:"name"`
	Users []types.UserResponse `json:"users"`
}

func buildSectorDetail(sector models.Sector) SectorDetail {
	users := make([]types.UserResponse, 0, len(sector.UserAssignments))

	for _, assignment := range sector.UserAssignments {
		users = append(users, types.UserResponse{
			ID:    assignment.User.ID,
			Name:  assignment.User.Name,
			Email: assignment.User.Email,
			Role:  assignment.User.Role,
		})
	}

	return SectorDetail{
		ID:    sector.ID,
		Name:  sector.Name,
		Users: users,
	}
}

func ListSectors(ctx *gin.Context) {
	var sectors []models.Sector

	if err := db.DB.Preload("UserAssignments.User").Find(&sectors).Error; err != nil {
		log.Printf("Failed to list sectors: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sectors"})
		return
	}

	response := make([]SectorDetail, 0, len(sectors))
	for _, sector := range sectors {
		response = append(response, buildSectorDetail(sector))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetSector(ctx *gin.Context) {
	sectorID, err := utils.GetParamID(ctx, "sector_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
		return
	}

	var sector models.Sector

	if err := db.DB.Preload("UserAssignments.User").First(&sector, sectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Sector not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector"})
		}
		return
	}

	ctx.JSON(http.StatusOK, buildSectorDetail(sector))
}

func CreateSector(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SectorRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Sector name is required"})
		return
	}

	sector := models.Sector{Name: req.Name}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sector).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "create", "sector", sector.ID, gin.H{
			"name": sector.Name,
		})
	})

	if err != nil {
		log.Printf("Failed to create sector: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sector"})
		return
	}

	ctx.JSON(http.StatusCreated, types.SectorResponse{ID: sector.ID, Name: sector.Name})
}

func UpdateSector(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sectorID, err := utils.GetParamID(ctx, "sector_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
		return
	}

	var req SectorRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Sector name is required"})
		return
	}

	var sector models.Sector

	if err := db.DB.First(&sector, sectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Sector not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector"})
		}
		return
	}

	sector.Name = req.Name

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&sector).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "update", "sector", sector.ID, gin.H{
			"name": sector.Name,
		})
	})

	if err != nil {
		log.Printf("Failed to update sector: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sector"})
		return
	}

	ctx.JSON(http.StatusOK, types.SectorResponse{ID: sector.ID, Name: sector.Name})
}

func DeleteSector(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sectorID, err := utils.GetParamID(ctx, "sector_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
		return
	}

	var sector models.Sector

	if err := db.DB.First(&sector, sectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Sector not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector"})
		}
		return
	}

	var dashboardCount int64

	if err := db.DB.Model(&models.Dashboard{}).Where("sector_id = ?", sectorID).Count(&dashboardCount).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check sector dashboards"})
		return
	}

	if dashboardCount > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Cannot delete this sector because it still contains dashboards"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Assignments go with the sector. Hard delete, same reasoning as in
		// DeleteUser: soft-deleted rows would block re-assignment.
		if err := tx.Unscoped().Where("sector_id = ?", sector.ID).Delete(&models.UserSector{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&sector).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "delete", "sector", sector.ID, gin.H{
			"name": sector.Name,
		})
	})

	if err != nil {
		log.Printf("Failed to delete sector: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sector deleted successfully"})
}
