package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/services"
	"github.com/pedago-dev/portal/internal/types"
	"github.com/pedago-dev/portal/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type AddUserSectorRequest struct {
	SectorID uint `json:"sector_id" binding:"required"`
}

func buildUserResponse(user models.User) types.UserResponse {
	sectors := make([]types.SectorResponse, 0, len(user.SectorAssignments))

	for _, assignment := range user.SectorAssignments {
		sectors = append(sectors, types.SectorResponse{
			ID:   assignment.Sector.ID,
			Name: assignment.Sector.Name,
		})
	}

	return types.UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Sectors: sectors,
	}
}

func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Preload("SectorAssignments.Sector").Find(&users).Error; err != nil {
		log.Printf("Failed to list users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]types.UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, buildUserResponse(user))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetUser(ctx *gin.Context) {
	userID, err := utils.GetParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User

	if err := db.DB.Preload("SectorAssignments.Sector").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	ctx.JSON(http.StatusOK, buildUserResponse(user))
}

func CreateUser(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and password are required"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}

	if !models.ValidRole(role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User

	err = db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "create", "user", newUser.ID, gin.H{
			"email": newUser.Email,
			"role":  newUser.Role,
		})
	})

	if err != nil {
		// The unique index closes the race between the pre-check and the
		// insert; a duplicate surfacing here is still a conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		}
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, buildUserResponse(newUser))
}

func UpdateUser(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	var req UpdateUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}

	if req.Email != "" {
		newEmail := strings.ToLower(strings.TrimSpace(req.Email))

		if newEmail != user.Email {
			var existingUser models.User
			err := db.DB.Where("email = ? AND id != ?", newEmail, user.ID).First(&existingUser).Error
			if err == nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Database error when checking existing email: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
		}

		updates["email"] = newEmail
	}

	if req.Role != "" {
		if !models.ValidRole(req.Role) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		updates["role"] = req.Role
	}

	// A blank password means "keep the current hash".
	if strings.TrimSpace(req.Password) != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "update", "user", user.ID, gin.H{
			"fields": fieldNames(updates),
		})
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		}
		log.Printf("Failed to update user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Preload("SectorAssignments.Sector").First(&user, user.ID).Error; err != nil {
		log.Printf("Failed to refresh user data: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, buildUserResponse(user))
}

func DeleteUser(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// Self-deletion is rejected unconditionally, even when other admins
	// exist.
	if userID == actor.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Sector assignments go with the user. Hard delete: a soft-deleted
		// join row would still occupy the composite unique index.
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.UserSector{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "delete", "user", user.ID, gin.H{
			"email": user.Email,
		})
	})

	if err != nil {
		log.Printf("Failed to delete user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func ListUserSectors(ctx *gin.Context) {
	userID, err := utils.GetParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	var assignments []models.UserSector

	if err := db.DB.Preload("Sector").Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector assignments"})
		return
	}

	sectors := make([]types.SectorResponse, 0, len(assignments))
	for _, assignment := range assignments {
		sectors = append(sectors, types.SectorResponse{
			ID:   assignment.Sector.ID,
			Name: assignment.Sector.Name,
		})
	}

	ctx.JSON(http.StatusOK, sectors)
}

func AddUserSector(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req AddUserSectorRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Sector ID is required"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	var sector models.Sector

	if err := db.DB.First(&sector, req.SectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Sector not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector"})
		}
		return
	}

	var existing models.UserSector

	err = db.DB.Where("user_id = ? AND sector_id = ?", userID, req.SectorID).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "This sector is already assigned to the user"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing assignment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	assignment := models.UserSector{
		UserID:   userID,
		SectorID: req.SectorID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "create", "user_sector", assignment.ID, gin.H{
			"user_id":   userID,
			"sector_id": req.SectorID,
		})
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "This sector is already assigned to the user"})
			return
		}
		log.Printf("Failed to create sector assignment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":     assignment.ID,
		"sector": types.SectorResponse{ID: sector.ID, Name: sector.Name},
	})
}

func RemoveUserSector(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	sectorIDStr := ctx.Query("sector_id")

	if sectorIDStr == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Sector ID is required"})
		return
	}

	sectorID, err := strconv.ParseUint(sectorIDStr, 10, 64)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
		return
	}

	var assignment models.UserSector

	if err := db.DB.Where("user_id = ? AND sector_id = ?", userID, sectorID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Sector assignment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sector assignment"})
		}
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Hard delete so re-adding the same pair later does not trip the
		// composite unique index.
		if err := tx.Unscoped().Delete(&assignment).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, actor.ID, "delete", "user_sector", assignment.ID, gin.H{
			"user_id":   assignment.UserID,
			"sector_id": assignment.SectorID,
		})
	})

	if err != nil {
		log.Printf("Failed to remove sector assignment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sector removed from user successfully"})
}

func fieldNames(updates map[string]interface{}) []string {
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	return names
}
