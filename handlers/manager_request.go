package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"restaurant-booking-api/config"
	"restaurant-booking-api/models"
	"restaurant-booking-api/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const maxRestaurantImages = 5

// parseAddress accepts either a structured JSON object or a plain string,
// which is wrapped into the street field.
func parseAddress(raw string) models.Address {
	var addr models.Address
	if json.Unmarshal([]byte(raw), &addr) == nil && addr != (models.Address{}) {
		return addr
	}
	return models.Address{Street: raw}
}

// SubmitManagerRequest files a partner application (multipart form). The
// password is hashed now so approval never sees a plaintext credential.
func SubmitManagerRequest(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	restaurantName := c.PostForm("restaurant_name")
	location := c.PostForm("location")
	phone := c.PostForm("phone")

	required := []struct{ field, value string }{
		{"name", name}, {"email", email}, {"password", password},
		{"restaurant_name", restaurantName}, {"location", location}, {"phone", phone},
	}
	for _, r := range required {
		if r.value == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: " + r.field})
			return
		}
	}

	capacity, err := strconv.Atoi(c.DefaultPostForm("capacity", "1"))
	if err != nil || capacity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be at least 1"})
		return
	}

	// At most one outstanding application per email
	var existing models.ManagerRequest
	if result := config.DB.Where("email = ?", email).First(&existing); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A request already exists for this email"})
		return
	}
	var existingUser models.User
	if result := config.DB.Where("email = ?", email).First(&existingUser); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account already exists for this email"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var imageURLs []string
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["images"]
		if len(files) > maxRestaurantImages {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At most 5 images are allowed"})
			return
		}
		for _, fh := range files {
			url, err := storage.SaveImage(c.Request.Context(), fh, "requests")
			if err != nil {
				log.Println("request image upload failed:", err)
				c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
				return
			}
			imageURLs = append(imageURLs, url)
		}
	}

	request := models.ManagerRequest{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Status:         models.RequestPending,
		RestaurantName: restaurantName,
		Description:    c.PostForm("description"),
		Address:        parseAddress(location),
		Phone:          phone,
		Capacity:       capacity,
		Cuisine:        c.PostForm("cuisine"),
		OpeningHours:   c.PostForm("opening_hours"),
		MenuJSON:       c.PostForm("menu"),
		Images:         imageURLs,
	}

	if err := config.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Application submitted, you will be notified once reviewed",
		"request": gin.H{"id": request.ID, "status": request.Status},
	})
}
