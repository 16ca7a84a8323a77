package config

import (
	"log"
	"os"
	"time"

	"restaurant-booking-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret signs session tokens — populated by Load
var JWTSecret []byte

const (
	// SessionTTL is how long a login token stays valid.
	SessionTTL = time.Hour
	// ResetTokenTTL is how long a password-reset token stays valid.
	ResetTokenTTL = 15 * time.Minute
)

// Load reads .env (if present) and populates derived settings.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	JWTSecret = []byte(GetEnv("JWT_SECRET", "table_booking_dev_secret_2025"))
}

// GetEnv returns the env value for key, or fallback when unset.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	OpenDB(GetEnv("DATABASE_PATH", "restaurant_booking.db"))
}

// OpenDB connects to the given sqlite path and migrates all models.
// Tests pass ":memory:" here.
func OpenDB(path string) {
	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.User{},
		&models.ManagerRequest{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Review{},
		&models.Booking{},
		&models.PreOrderItem{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated successfully")
}
