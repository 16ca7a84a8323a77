package handlers

import (
	"errors"
	"net/http"

	"restaurant-booking-api/cache"
	"restaurant-booking-api/config"
	"restaurant-booking-api/middleware"
	"restaurant-booking-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// AddOrUpdateReview upserts the caller's review for a restaurant. A user
// holds at most one review per restaurant: a second submission overwrites
// the first in place.
func AddOrUpdateReview(c *gin.Context) {
	user := middleware.GetCurrentUser(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var review models.Review
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("restaurant_id = ? AND user_id = ?", restaurant.ID, user.ID).
			First(&review).Error
		switch {
		case err == nil:
			// Same identity, new content, refreshed snapshot
			review.Rating = req.Rating
			review.Comment = req.Comment
			review.UserName = user.Name
			review.UserAvatar = user.Avatar
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{
				RestaurantID: restaurant.ID,
				UserID:       user.ID,
				UserName:     user.Name,
				UserAvatar:   user.Avatar,
				Rating:       req.Rating,
				Comment:      req.Comment,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return recomputeRating(tx, restaurant.ID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	cache.InvalidateRestaurant(c.Request.Context(), restaurant.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Review saved", "review": review})
}

// UpdateReview edits an existing review. The review must match both the
// review id and the caller — the lookup doubles as the authorization check.
func UpdateReview(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var review models.Review
	if err := config.DB.Where("id = ? AND restaurant_id = ? AND user_id = ?",
		c.Param("reviewId"), c.Param("id"), userID).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		review.Rating = req.Rating
		review.Comment = req.Comment
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.RestaurantID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}

	cache.InvalidateRestaurant(c.Request.Context(), review.RestaurantID)
	c.JSON(http.StatusOK, gin.H{"message": "Review updated", "review": review})
}

// DeleteReview removes the caller's review and recomputes the rating
func DeleteReview(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var review models.Review
	if err := config.DB.Where("id = ? AND restaurant_id = ?",
		c.Param("reviewId"), c.Param("id")).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if review.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own review"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.RestaurantID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	cache.InvalidateRestaurant(c.Request.Context(), review.RestaurantID)
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
