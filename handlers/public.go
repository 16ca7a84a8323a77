package handlers

import (
	"net/http"

	"restaurant-booking-api/cache"
	"restaurant-booking-api/config"
	"restaurant-booking-api/models"
	"restaurant-booking-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListRestaurants returns all restaurants (public). An empty collection
// returns an empty list, not 404 — see DESIGN.md.
func ListRestaurants(c *gin.Context) {
	ctx := c.Request.Context()
	cuisine := c.Query("cuisine")
	search := c.Query("search")

	// Only the unfiltered listing is cached
	if cuisine == "" && search == "" {
		var cached []models.Restaurant
		if cache.GetJSON(ctx, cache.RestaurantListKey, &cached) {
			c.JSON(http.StatusOK, gin.H{"count": len(cached), "restaurants": cached})
			return
		}
	}

	var restaurants []models.Restaurant
	query := config.DB.Preload("MenuItems")
	if cuisine != "" {
		query = query.Where("cuisine LIKE ?", "%"+cuisine+"%")
	}
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	query.Find(&restaurants)

	if cuisine == "" && search == "" {
		cache.SetJSON(ctx, cache.RestaurantListKey, restaurants)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetRestaurant returns a single restaurant with menu and reviews
func GetRestaurant(c *gin.Context) {
	ctx := c.Request.Context()
	var restaurant models.Restaurant

	if id, ok := parseID(c, "id"); ok {
		if cache.GetJSON(ctx, cache.RestaurantKey(id), &restaurant) {
			c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
			return
		}
	}

	if err := config.DB.Preload("MenuItems").Preload("Reviews").
		First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	cache.SetJSON(ctx, cache.RestaurantKey(restaurant.ID), restaurant)
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// ListReviews returns a restaurant's reviews newest first, plus the current
// aggregate rating
func ListReviews(c *gin.Context) {
	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var reviews []models.Review
	config.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("created_at desc").
		Find(&reviews)

	c.JSON(http.StatusOK, gin.H{
		"count":   len(reviews),
		"rating":  restaurant.Rating,
		"reviews": reviews,
	})
}

// GetStateMachineInfo returns the booking lifecycle for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	var info []gin.H
	for _, t := range statemachine.GetAllTransitions() {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": []string{string(models.StatusCancelled), string(models.StatusCompleted)},
		"description":     "Table Booking Lifecycle State Machine",
	})
}
