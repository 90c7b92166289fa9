package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pedago-dev/portal/db"
	"github.com/pedago-dev/portal/internal/auth"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/router"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seedAdminUser()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "8080"
		log.Println("PORT not set, defaulting to 8080")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// seedAdminUser creates the initial administrator account when the users
// table is empty, so a fresh deployment can be logged into.
func seedAdminUser() {
	var userCount int64

	if err := db.DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}

	if userCount > 0 {
		return
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@pedago.com"
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("ADMIN_PASSWORD not set, using the default; change it after first login")
	}

	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}

	if err := db.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	log.Printf("Seeded initial admin user %s", admin.Email)
}
