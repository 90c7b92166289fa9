package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/access"
	"github.com/pedago-dev/portal/internal/auth"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/types"
	"github.com/pedago-dev/portal/internal/utils"
)

// AuthMiddleware resolves the acting principal. The user row and sector
// assignments are reloaded from the database on every request so role or
// assignment changes take effect immediately.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		token, err := auth.VerifyJWT(tokenString)

		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token claims"})
			return
		}

		userID := uint(userIDFloat)

		var user models.User

		if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var sectorIDs []uint

		if user.Role != models.RoleAdmin {
			if err := db.DB.Model(&models.UserSector{}).
				Where("user_id = ?", user.ID).
				Pluck("sector_id", &sectorIDs).Error; err != nil {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve sector assignments"})
				return
			}
		}

		ctx.Set(types.ContextActorKey, access.Actor{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			SectorIDs: sectorIDs,
		})
		ctx.Next()
	}
}

// RequireAdmin gates the management endpoints. Run it after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, err := utils.GetCurrentActor(ctx)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if !actor.IsAdmin() {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
			return
		}

		ctx.Next()
	}
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the auth cookie set at login and, for websocket upgrades, to the
// token query parameter.
func extractToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := ctx.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}

	return ctx.Query("token")
}
