package db

import (
	"github.com/pedago-dev/portal/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError lets handlers map unique-index violations to
	// gorm.ErrDuplicatedKey instead of driver-specific errors.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Sector{},
		&models.UserSector{},
		&models.Dashboard{},
		&models.KPI{},
		&models.KPIValue{},
		&models.AuditLog{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
