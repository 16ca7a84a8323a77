package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"restaurant-booking-api/cache"
	"restaurant-booking-api/config"
	"restaurant-booking-api/middleware"
	"restaurant-booking-api/models"
	"restaurant-booking-api/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxMenuItemImages = 3

// errMenuItemOwnership marks a menu update referencing an item that belongs
// to a different restaurant. Surfaced to the client as a 400, not a 500.
var errMenuItemOwnership = errors.New("does not belong to this restaurant")

// menuItemPayload is a menu entry submitted alongside the multipart form.
// ID is zero for new items. Uploaded item images arrive as form files named
// "menu_image_<index>", where index is the item's position in the array —
// multipart cannot nest files inside JSON, so the field name carries the
// association.
type menuItemPayload struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
}

// uploadMenuImages resolves "menu_image_<i>" files for item i and appends
// their URLs, enforcing the per-item cap.
func uploadMenuImages(c *gin.Context, form *multipart.Form, index int, existing []string) ([]string, error) {
	files := form.File[fmt.Sprintf("menu_image_%d", index)]
	if len(existing)+len(files) > maxMenuItemImages {
		return nil, fmt.Errorf("menu item %d: at most %d images are allowed", index, maxMenuItemImages)
	}
	urls := existing
	for _, fh := range files {
		url, err := storage.SaveImage(c.Request.Context(), fh, "menu")
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// CreateRestaurant lets a manager create a restaurant listing (multipart)
func CreateRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	name := c.PostForm("name")
	location := c.PostForm("location")
	cuisine := c.PostForm("cuisine")
	openingHours := c.PostForm("opening_hours")
	contactPhone := c.PostForm("contact_phone")

	required := []struct{ field, value string }{
		{"name", name}, {"location", location}, {"cuisine", cuisine},
		{"opening_hours", openingHours}, {"contact_phone", contactPhone},
	}
	for _, r := range required {
		if r.value == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: " + r.field})
			return
		}
	}

	capacity, err := strconv.Atoi(c.DefaultPostForm("capacity", "0"))
	if err != nil || capacity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be at least 1"})
		return
	}

	form, _ := c.MultipartForm()

	var imageURLs []string
	if form != nil {
		files := form.File["images"]
		if len(files) > maxRestaurantImages {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At most 5 images are allowed"})
			return
		}
		for _, fh := range files {
			url, err := storage.SaveImage(c.Request.Context(), fh, "restaurants")
			if err != nil {
				log.Println("restaurant image upload failed:", err)
				c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
				return
			}
			imageURLs = append(imageURLs, url)
		}
	}

	var menuItems []models.MenuItem
	if raw := c.PostForm("menu_items"); raw != "" {
		var payload []menuItemPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "menu_items must be a JSON array"})
			return
		}
		for i, m := range payload {
			if m.Name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("menu item %d: name is required", i)})
				return
			}
			if m.Price < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("menu item %d: price must not be negative", i)})
				return
			}
			images := []string{}
			if form != nil {
				images, err = uploadMenuImages(c, form, i, nil)
				if err != nil {
					log.Println("menu image upload failed:", err)
					c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
					return
				}
			}
			menuItems = append(menuItems, models.MenuItem{
				Name:        m.Name,
				Category:    m.Category,
				Description: m.Description,
				Price:       m.Price,
				Images:      images,
			})
		}
	}

	restaurant := models.Restaurant{
		OwnerID:      ownerID,
		Name:         name,
		Cuisine:      cuisine,
		Address:      parseAddress(location),
		Description:  c.PostForm("description"),
		Capacity:     capacity,
		OpeningHours: openingHours,
		ContactPhone: contactPhone,
		Images:       imageURLs,
		MenuItems:    menuItems,
	}
	if err := config.DB.Create(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create restaurant"})
		return
	}

	cache.InvalidateRestaurant(c.Request.Context(), restaurant.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
}

// ListMyRestaurants returns all restaurants owned by the caller
func ListMyRestaurants(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var restaurants []models.Restaurant
	config.DB.Preload("MenuItems").Where("owner_id = ?", ownerID).Find(&restaurants)
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// GetMyRestaurant returns one owned restaurant with menu and reviews
func GetMyRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var restaurant models.Restaurant
	if err := config.DB.Preload("MenuItems").Preload("Reviews").
		First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if restaurant.OwnerID != ownerID && middleware.GetRole(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this restaurant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// UpdateRestaurant replaces a restaurant's mutable fields and reconciles its
// image set and menu: images absent from the client's keep-list are dropped,
// menu items in deleted_menu_items are removed, payload items with an id are
// updated, the rest are created, and untouched items are preserved.
func UpdateRestaurant(c *gin.Context) {
	requesterID := middleware.GetUserID(c)

	var restaurant models.Restaurant
	if err := config.DB.Preload("MenuItems").First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if restaurant.OwnerID != requesterID && middleware.GetRole(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this restaurant"})
		return
	}

	// Scalar fields fall back to stored values when omitted
	if v := c.PostForm("name"); v != "" {
		restaurant.Name = v
	}
	if v := c.PostForm("cuisine"); v != "" {
		restaurant.Cuisine = v
	}
	if v := c.PostForm("location"); v != "" {
		restaurant.Address = parseAddress(v)
	}
	if v := c.PostForm("description"); v != "" {
		restaurant.Description = v
	}
	if v := c.PostForm("opening_hours"); v != "" {
		restaurant.OpeningHours = v
	}
	if v := c.PostForm("contact_phone"); v != "" {
		restaurant.ContactPhone = v
	}
	if v := c.PostForm("capacity"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil || capacity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be at least 1"})
			return
		}
		restaurant.Capacity = capacity
	}

	form, _ := c.MultipartForm()

	// Image merge: keep-list from the client plus any new uploads
	images := restaurant.Images
	if raw := c.PostForm("existing_images"); raw != "" {
		var kept []string
		if err := json.Unmarshal([]byte(raw), &kept); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "existing_images must be a JSON array"})
			return
		}
		images = kept
	}
	if form != nil {
		files := form.File["images"]
		if len(images)+len(files) > maxRestaurantImages {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At most 5 images are allowed"})
			return
		}
		for _, fh := range files {
			url, err := storage.SaveImage(c.Request.Context(), fh, "restaurants")
			if err != nil {
				log.Println("restaurant image upload failed:", err)
				c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
				return
			}
			images = append(images, url)
		}
	}
	restaurant.Images = images

	// Menu reconciliation
	var deletedIDs []uint
	if raw := c.PostForm("deleted_menu_items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &deletedIDs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deleted_menu_items must be a JSON array of ids"})
			return
		}
	}

	var payload []menuItemPayload
	if raw := c.PostForm("menu_items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "menu_items must be a JSON array"})
			return
		}
	}
	for i, m := range payload {
		if m.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("menu item %d: name is required", i)})
			return
		}
		if m.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("menu item %d: price must not be negative", i)})
			return
		}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if len(deletedIDs) > 0 {
			if err := tx.Where("restaurant_id = ? AND id IN ?", restaurant.ID, deletedIDs).
				Delete(&models.MenuItem{}).Error; err != nil {
				return err
			}
		}

		for i, m := range payload {
			images := m.Images
			if form != nil {
				uploaded, err := uploadMenuImages(c, form, i, m.Images)
				if err != nil {
					return err
				}
				images = uploaded
			}
			if m.ID != 0 {
				item := models.MenuItem{}
				if err := tx.Where("id = ? AND restaurant_id = ?", m.ID, restaurant.ID).
					First(&item).Error; err != nil {
					return fmt.Errorf("menu item %d: %w", m.ID, errMenuItemOwnership)
				}
				item.Name = m.Name
				item.Category = m.Category
				item.Description = m.Description
				item.Price = m.Price
				item.Images = images
				if err := tx.Save(&item).Error; err != nil {
					return err
				}
			} else {
				item := models.MenuItem{
					RestaurantID: restaurant.ID,
					Name:         m.Name,
					Category:     m.Category,
					Description:  m.Description,
					Price:        m.Price,
					Images:       images,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
		}

		restaurant.MenuItems = nil // relation is managed above, skip re-save
		return tx.Omit("MenuItems", "Reviews", "Owner").Save(&restaurant).Error
	})
	if err != nil {
		if errors.Is(err, errMenuItemOwnership) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Println("restaurant update failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update restaurant"})
		return
	}

	config.DB.Preload("MenuItems").First(&restaurant, restaurant.ID)
	cache.InvalidateRestaurant(c.Request.Context(), restaurant.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}

// DeleteRestaurant removes a restaurant and its menu. Bookings that
// reference it are left untouched — they keep their restaurant name
// snapshot and stay visible to their users.
func DeleteRestaurant(c *gin.Context) {
	requesterID := middleware.GetUserID(c)

	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if restaurant.OwnerID != requesterID && middleware.GetRole(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this restaurant"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&restaurant).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete restaurant"})
		return
	}

	cache.InvalidateRestaurant(c.Request.Context(), restaurant.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted"})
}
