package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"restaurant-booking-api/config"
	"restaurant-booking-api/mailer"
	"restaurant-booking-api/middleware"
	"restaurant-booking-api/models"
	"restaurant-booking-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminGetAllUsers returns all users — admin only
func AdminGetAllUsers(c *gin.Context) {
	var users []models.User
	query := config.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	query.Find(&users)

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, publicProfile(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "users": out})
}

// AdminDeleteUser removes a user account
func AdminDeleteUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Role == models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin accounts cannot be deleted"})
		return
	}
	if err := config.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// AdminGetAllRequests lists manager applications, optionally by status
func AdminGetAllRequests(c *gin.Context) {
	var requests []models.ManagerRequest
	query := config.DB
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&requests)
	c.JSON(http.StatusOK, gin.H{"count": len(requests), "requests": requests})
}

// requestMenuItem is the shape of menu entries submitted with an application
type requestMenuItem struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ApproveManagerRequest provisions a manager account and its bootstrap
// restaurant in a single transaction, then notifies the applicant.
// The notification is best-effort: a mail failure never rolls back the
// already-committed account.
func ApproveManagerRequest(c *gin.Context) {
	var request models.ManagerRequest
	if err := config.DB.First(&request, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}

	// Prevents double-provisioning on repeated approval
	var existing models.User
	if result := config.DB.Where("email = ?", request.Email).First(&existing); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}

	var manager models.User
	var restaurant models.Restaurant
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		manager = models.User{
			Name:         request.Name,
			Email:        request.Email,
			PasswordHash: request.PasswordHash, // already hashed at submission
			Role:         models.RoleManager,
		}
		if err := tx.Create(&manager).Error; err != nil {
			return err
		}

		var menuItems []models.MenuItem
		if request.MenuJSON != "" {
			var submitted []requestMenuItem
			if err := json.Unmarshal([]byte(request.MenuJSON), &submitted); err == nil {
				for _, m := range submitted {
					if m.Name == "" || m.Price < 0 {
						continue
					}
					menuItems = append(menuItems, models.MenuItem{
						Name:        m.Name,
						Category:    m.Category,
						Description: m.Description,
						Price:       m.Price,
					})
				}
			}
		}

		capacity := request.Capacity
		if capacity < 1 {
			capacity = 1
		}
		restaurant = models.Restaurant{
			OwnerID:      manager.ID,
			Name:         request.RestaurantName,
			Cuisine:      request.Cuisine,
			Address:      request.Address,
			Description:  request.Description,
			Capacity:     capacity,
			OpeningHours: request.OpeningHours,
			ContactPhone: request.Phone,
			Images:       request.Images,
			MenuItems:    menuItems,
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}

		return tx.Model(&request).Update("status", models.RequestApproved).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve request"})
		return
	}

	if err := mailer.SendManagerApproval(manager.Email, manager.Name, restaurant.Name); err != nil {
		log.Println("approval mail failed:", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Request approved, manager account provisioned",
		"user":       publicProfile(&manager),
		"restaurant": gin.H{"id": restaurant.ID, "name": restaurant.Name},
	})
}

// RejectManagerRequest marks the application rejected. The record is kept so
// re-applications with the same email surface the earlier decision; admins
// can purge records with AdminDeleteRequest.
func RejectManagerRequest(c *gin.Context) {
	var request models.ManagerRequest
	if err := config.DB.First(&request, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}
	if request.Status != models.RequestPending {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Request has already been " + string(request.Status)})
		return
	}
	if err := config.DB.Model(&request).Update("status", models.RequestRejected).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
}

// AdminDeleteRequest removes an application record outright
func AdminDeleteRequest(c *gin.Context) {
	var request models.ManagerRequest
	if err := config.DB.First(&request, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}
	if err := config.DB.Delete(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}

// AdminForceBookingStatus lets admin override a booking state (emergency
// use). The target state must still exist in the transition table so
// terminal states stay terminal.
func AdminForceBookingStatus(c *gin.Context) {
	adminID := middleware.GetUserID(c)

	var req struct {
		Status models.BookingStatus `json:"status" binding:"required"`
		Reason string               `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var booking models.Booking
	if err := config.DB.First(&booking, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	if err := statemachine.CanTransition(booking.Status, req.Status, statemachine.ActorAdmin); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Invalid state transition",
			"current_status": booking.Status,
			"reason":         err.Error(),
		})
		return
	}

	prevStatus := booking.Status
	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.StatusCancelled {
		now := time.Now()
		updates["cancelled_at"] = &now
		updates["cancellation_reason"] = "[ADMIN OVERRIDE] " + req.Reason
	}
	config.DB.Model(&booking).Updates(updates)

	log.Printf("admin %d forced booking %d: %s -> %s (%s)", adminID, booking.ID, prevStatus, req.Status, req.Reason)
	c.JSON(http.StatusOK, gin.H{
		"message":         "Booking status force-updated by admin",
		"booking_id":      booking.ID,
		"previous_status": prevStatus,
		"new_status":      req.Status,
	})
}
