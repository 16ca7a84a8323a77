package handlers

import (
	"math"
	"strconv"

	"restaurant-booking-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// parseID reads a numeric path param; ok is false on malformed input.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// recomputeRating sets restaurant.rating to the mean of its review ratings
// rounded to one decimal, or 0 when no reviews remain. Runs inside the same
// transaction as the review mutation so concurrent writers cannot interleave
// a stale recompute.
func recomputeRating(tx *gorm.DB, restaurantID uint) error {
	var ratings []int
	if err := tx.Model(&models.Review{}).
		Where("restaurant_id = ?", restaurantID).
		Pluck("rating", &ratings).Error; err != nil {
		return err
	}

	var rating float64
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		rating = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	}
	return tx.Model(&models.Restaurant{}).
		Where("id = ?", restaurantID).
		Update("rating", rating).Error
}
