package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/internal/handlers"
	"github.com/pedago-dev/portal/internal/middleware"
	"github.com/pedago-dev/portal/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		// Reads scoped by sector for non-admins.
		scoped := api.Group("", middleware.AuthMiddleware())
		{
			scoped.GET("/dashboards", handlers.ListDashboards)
			scoped.GET("/dashboards/:dashboard_id", handlers.GetDashboard)
			scoped.GET("/kpis", handlers.ListKPIs)
			scoped.GET("/kpis/:kpi_id/values", handlers.ListKPIValues)
		}

		// Management surface, admin only.
		admin := api.Group("", middleware.AuthMiddleware(), middleware.RequireAdmin())
		{
			admin.GET("/users", handlers.ListUsers)
			admin.POST("/users", handlers.CreateUser)
			admin.GET("/users/:user_id", handlers.GetUser)
			admin.PUT("/users/:user_id", handlers.UpdateUser)
			admin.DELETE("/users/:user_id", handlers.DeleteUser)
			admin.GET("/users/:user_id/sectors", handlers.ListUserSectors)
			admin.POST("/users/:user_id/sectors", handlers.AddUserSector)
			admin.DELETE("/users/:user_id/sectors", handlers.RemoveUserSector)

			admin.GET("/sectors", handlers.ListSectors)
			admin.POST("/sectors", handlers.CreateSector)
			admin.GET("/sectors/:sector_id", handlers.GetSector)
			admin.PUT("/sectors/:sector_id", handlers.UpdateSector)
			admin.DELETE("/sectors/:sector_id", handlers.DeleteSector)

			admin.POST("/dashboards", handlers.CreateDashboard)
			admin.PUT("/dashboards/:dashboard_id", handlers.UpdateDashboard)
			admin.DELETE("/dashboards/:dashboard_id", handlers.DeleteDashboard)

			admin.POST("/kpis", handlers.CreateKPI)
			admin.DELETE("/kpis/:kpi_id", handlers.DeleteKPI)
			admin.POST("/kpis/:kpi_id/values", handlers.AddKPIValue)

			admin.GET("/audit-logs", handlers.ListAuditLogs)
		}
	}

	return r
}
