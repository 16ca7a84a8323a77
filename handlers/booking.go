package handlers

import (
	"net/http"
	"time"

	"restaurant-booking-api/config"
	"restaurant-booking-api/middleware"
	"restaurant-booking-api/models"
	"restaurant-booking-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PreOrderRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

type CreateBookingRequest struct {
	RestaurantID    uint              `json:"restaurant_id" binding:"required"`
	Date            string            `json:"date" binding:"required"`
	Time            string            `json:"time" binding:"required"`
	Guests          int               `json:"guests" binding:"required,min=1"`
	Phone           string            `json:"phone" binding:"required"`
	SpecialRequests string            `json:"special_requests"`
	PreOrders       []PreOrderRequest `json:"pre_orders"`
}

// buildPreOrders resolves requested menu items against the restaurant and
// snapshots name and price.
func buildPreOrders(restaurantID uint, reqs []PreOrderRequest) ([]models.PreOrderItem, string) {
	var items []models.PreOrderItem
	for _, r := range reqs {
		var menuItem models.MenuItem
		if err := config.DB.First(&menuItem, r.MenuItemID).Error; err != nil {
			return nil, "Menu item not found"
		}
		if menuItem.RestaurantID != restaurantID {
			return nil, "Menu item '" + menuItem.Name + "' does not belong to this restaurant"
		}
		items = append(items, models.PreOrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   r.Quantity,
		})
	}
	return items, ""
}

// CreateBooking places a new reservation, status pending
func CreateBooking(c *gin.Context) {
	user := middleware.GetCurrentUser(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	preOrders, msg := buildPreOrders(restaurant.ID, req.PreOrders)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	booking := models.Booking{
		UserID:          user.ID,
		UserName:        user.Name,
		UserAvatar:      user.Avatar,
		RestaurantID:    restaurant.ID,
		RestaurantName:  restaurant.Name,
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		Phone:           req.Phone,
		SpecialRequests: req.SpecialRequests,
		PreOrders:       preOrders,
		Status:          models.StatusPending,
	}
	if err := config.DB.Create(&booking).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Booking requested", "booking": booking})
}

// GetMyBookings returns all bookings for the logged-in user, newest first
func GetMyBookings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var bookings []models.Booking
	config.DB.Preload("PreOrders").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings)
	c.JSON(http.StatusOK, gin.H{"count": len(bookings), "bookings": bookings})
}

// loadOwnBooking fetches a booking and enforces that the caller owns it.
// Writes the error response itself and returns nil on failure.
func loadOwnBooking(c *gin.Context) *models.Booking {
	userID := middleware.GetUserID(c)
	var booking models.Booking
	if err := config.DB.Preload("PreOrders").First(&booking, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return nil
	}
	if booking.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This booking does not belong to you"})
		return nil
	}
	return &booking
}

// GetBooking returns a single booking (owner only)
func GetBooking(c *gin.Context) {
	booking := loadOwnBooking(c)
	if booking == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

type UpdateBookingRequest struct {
	Date            string             `json:"date"`
	Time            string             `json:"time"`
	Guests          int                `json:"guests"`
	Phone           string             `json:"phone"`
	SpecialRequests *string            `json:"special_requests"`
	PreOrders       *[]PreOrderRequest `json:"pre_orders"`
}

// UpdateBooking edits a pending booking; omitted fields keep stored values
func UpdateBooking(c *gin.Context) {
	booking := loadOwnBooking(c)
	if booking == nil {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Guests < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guests must be at least 1"})
		return
	}

	// updated_at is always touched so the guarded update below reports
	// whether the status predicate matched even when no scalar changed
	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Date != "" {
		updates["date"] = req.Date
	}
	if req.Time != "" {
		updates["time"] = req.Time
	}
	if req.Guests > 0 {
		updates["guests"] = req.Guests
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.SpecialRequests != nil {
		updates["special_requests"] = *req.SpecialRequests
	}

	var newPreOrders []models.PreOrderItem
	if req.PreOrders != nil {
		var msg string
		newPreOrders, msg = buildPreOrders(booking.RestaurantID, *req.PreOrders)
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}

	var changed int64
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		// Guarded update: loses cleanly if a manager transition landed first
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, models.StatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected
		if changed == 0 || req.PreOrders == nil {
			return nil
		}
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.PreOrderItem{}).Error; err != nil {
			return err
		}
		for i := range newPreOrders {
			newPreOrders[i].BookingID = booking.ID
		}
		if len(newPreOrders) == 0 {
			return nil
		}
		return tx.Create(&newPreOrders).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}
	if changed == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Only pending bookings can be edited",
			"current_status": booking.Status,
		})
		return
	}

	config.DB.Preload("PreOrders").First(booking, booking.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated", "booking": booking})
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking cancels a pending or confirmed, unpaid booking
func CancelBooking(c *gin.Context) {
	booking := loadOwnBooking(c)
	if booking == nil {
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	if err := statemachine.CanCancel(booking); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Cannot cancel booking",
			"reason":         err.Error(),
			"current_status": booking.Status,
		})
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.Booking{}).
		Where("id = ? AND status IN ? AND is_paid = ?",
			booking.ID, []models.BookingStatus{models.StatusPending, models.StatusConfirmed}, false).
		Updates(map[string]interface{}{
			"status":              models.StatusCancelled,
			"cancelled_at":        &now,
			"cancellation_reason": req.Reason,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Booking state changed, cancellation no longer allowed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking_id": booking.ID})
}

// DeleteBooking removes a pending booking outright
func DeleteBooking(c *gin.Context) {
	booking := loadOwnBooking(c)
	if booking == nil {
		return
	}
	if booking.Status != models.StatusPending {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Only pending bookings can be deleted; cancel instead",
			"current_status": booking.Status,
		})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.PreOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND status = ?", booking.ID, models.StatusPending).
			Delete(&models.Booking{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

type PayBookingRequest struct {
	PaymentMethod string         `json:"payment_method" binding:"required"`
	PaymentResult map[string]any `json:"payment_result"`
}

// PayBooking records payment for a confirmed booking. Payment acceptance is
// stubbed: the supplied result snapshot is stored as-is, no gateway is
// contacted. isPaid transitions false -> true at most once.
func PayBooking(c *gin.Context) {
	booking := loadOwnBooking(c)
	if booking == nil {
		return
	}

	var req PayBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := statemachine.CanPay(booking); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Cannot pay for booking",
			"reason":         err.Error(),
			"current_status": booking.Status,
		})
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.Booking{}).
		Where("id = ? AND status = ? AND is_paid = ?", booking.ID, models.StatusConfirmed, false).
		Select("is_paid", "paid_at", "payment_method", "payment_result").
		Updates(&models.Booking{
			IsPaid:        true,
			PaidAt:        &now,
			PaymentMethod: req.PaymentMethod,
			PaymentResult: req.PaymentResult,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Booking state changed, payment no longer allowed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment recorded", "booking_id": booking.ID, "paid_at": now})
}
