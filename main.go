package main

import (
	"log"
	"net/http"

	"restaurant-booking-api/cache"
	"restaurant-booking-api/config"
	"restaurant-booking-api/models"
	"restaurant-booking-api/routes"
	"restaurant-booking-api/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// seedAdmin is an idempotent bootstrap: it creates the admin account on
// first start and does nothing when it already exists.
func seedAdmin() {
	email := config.GetEnv("ADMIN_EMAIL", "")
	password := config.GetEnv("ADMIN_PASSWORD", "")
	if email == "" || password == "" {
		log.Println("Admin bootstrap skipped (ADMIN_EMAIL/ADMIN_PASSWORD not set)")
		return
	}

	var existing models.User
	if result := config.DB.Where("email = ?", email).First(&existing); result.Error == nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin account:", err)
	}
	log.Println("Admin account created:", email)
}

func main() {
	config.Load()
	config.InitDB()
	storage.Init()
	cache.Init()
	seedAdmin()

	r := gin.Default()

	// CORS for the SPA frontend; credentials are required for the session cookie
	origin := config.GetEnv("FRONTEND_ORIGIN", "http://localhost:3000")
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Restaurant Booking API",
			"version": "1.0.0",
		})
	})

	routes.SetupRoutes(r)

	port := config.GetEnv("PORT", "8080")
	log.Printf("Server running on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
