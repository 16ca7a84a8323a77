package handlers

import (
	"net/http"
	"time"

	"restaurant-booking-api/config"
	"restaurant-booking-api/middleware"
	"restaurant-booking-api/models"
	"restaurant-booking-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetRestaurantBookings returns all bookings for the manager's restaurants
func GetRestaurantBookings(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	var restaurantIDs []uint
	config.DB.Model(&models.Restaurant{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &restaurantIDs)
	if len(restaurantIDs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No restaurant found for your account"})
		return
	}

	var bookings []models.Booking
	query := config.DB.Preload("PreOrders").Where("restaurant_id IN ?", restaurantIDs)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	query.Order("created_at desc").Find(&bookings)

	// Dashboard summary: booking counts by status
	summary := map[string]int{}
	for _, b := range bookings {
		summary[string(b.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"booking_summary": summary,
		"count":           len(bookings),
		"bookings":        bookings,
	})
}

type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
	Reason string               `json:"reason"`
}

// UpdateBookingStatus handles manager-driven transitions. The target state
// is validated against the transition table; free-form statuses are not
// accepted.
func UpdateBookingStatus(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	var booking models.Booking
	if err := config.DB.First(&booking, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	// Requester must own the restaurant the booking references
	var restaurant models.Restaurant
	if err := config.DB.Where("id = ? AND owner_id = ?", booking.RestaurantID, ownerID).
		First(&restaurant).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "This booking does not belong to your restaurant"})
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := statemachine.CanTransition(booking.Status, req.Status, statemachine.ActorManager); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    booking.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(booking.Status),
		})
		return
	}
	if req.Status == models.StatusCancelled {
		if err := statemachine.CanCancel(&booking); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Cannot cancel booking",
				"reason": err.Error(),
			})
			return
		}
	}

	prevStatus := booking.Status
	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.StatusCancelled {
		now := time.Now()
		updates["cancelled_at"] = &now
		updates["cancellation_reason"] = req.Reason
	}

	// Guarded update: a concurrent transition on the same booking loses
	// cleanly instead of clobbering
	res := config.DB.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, prevStatus).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking was modified concurrently, reload and retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Booking status updated",
		"booking_id":      booking.ID,
		"previous_status": prevStatus,
		"current_status":  req.Status,
	})
}
