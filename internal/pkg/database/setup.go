package database

import (
	"fmt"
	"log"
	"time"

	"github.com/rachitpednekar/cloudshare/app/models"
	"github.com/rachitpednekar/cloudshare/internal/pkg/env"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

const maxRetries = 5
const retryDelay = 5 * time.Second

func SetupDatabase() {
	var err error
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                      dsn,
			DefaultStringSize:        256,
			DisableDatetimePrecision: true,
		}), &gorm.Config{})
		if err == nil {
			if migrateErr := DB.AutoMigrate(
				&models.Profile{},
				&models.UserCredits{},
				&models.PaymentTransaction{},
				&models.WebhookEvent{},
			); migrateErr != nil {
				panic(migrateErr)
			}
			return
		}
		log.Printf("Database connection failed (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(retryDelay)
	}
	panic(err)
}

// GetDB returns the shared database handle
func GetDB() *gorm.DB {
	return DB
}
