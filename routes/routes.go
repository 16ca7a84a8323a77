package routes

import (
	"restaurant-booking-api/handlers"
	"restaurant-booking-api/middleware"
	"restaurant-booking-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func SetupRoutes(r *gin.Engine) {
	// Credential endpoints get a per-IP limiter
	authLimit := middleware.RateLimit(rate.Limit(1), 10)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", authLimit, handlers.Register)
		public.POST("/auth/login", authLimit, handlers.Login)
		public.POST("/auth/logout", handlers.Logout)
		public.POST("/auth/forgot-password", authLimit, handlers.ForgotPassword)
		public.POST("/auth/reset-password", handlers.ResetPassword)

		// Restaurants & reviews (no auth needed)
		public.GET("/restaurants", handlers.ListRestaurants)
		public.GET("/restaurants/:id", handlers.GetRestaurant)
		public.GET("/restaurants/:id/reviews", handlers.ListReviews)

		// Partner applications (unauthenticated multipart form)
		public.POST("/manager-requests", handlers.SubmitManagerRequest)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/users/profile", handlers.GetProfile)
		auth.PUT("/users/avatar", handlers.UpdateAvatar)
		auth.PUT("/users/password", handlers.ChangePassword)

		// Reviews (one per user per restaurant)
		auth.POST("/restaurants/:id/reviews", handlers.AddOrUpdateReview)
		auth.PUT("/restaurants/:id/reviews/:reviewId", handlers.UpdateReview)
		auth.DELETE("/restaurants/:id/reviews/:reviewId", handlers.DeleteReview)

		// User-side booking lifecycle
		auth.POST("/bookings", handlers.CreateBooking)
		auth.GET("/bookings", handlers.GetMyBookings)
		auth.GET("/user-bookings/:id", handlers.GetBooking)
		auth.PUT("/user-bookings/:id", handlers.UpdateBooking)
		auth.DELETE("/user-bookings/:id", handlers.DeleteBooking)
		auth.PUT("/user-bookings/:id/cancel", handlers.CancelBooking)
		auth.POST("/user-bookings/:id/pay", handlers.PayBooking)
	}

	// ── Manager routes ─────────────────────────────────────────────
	manager := r.Group("/api/manager")
	manager.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleManager, models.RoleAdmin))
	{
		// Restaurant management
		manager.POST("/restaurants", handlers.CreateRestaurant)
		manager.GET("/restaurants", handlers.ListMyRestaurants)
		manager.GET("/restaurants/:id", handlers.GetMyRestaurant)
		manager.PUT("/restaurants/:id", handlers.UpdateRestaurant)
		manager.DELETE("/restaurants/:id", handlers.DeleteRestaurant)

		// Booking management
		manager.GET("/bookings", handlers.GetRestaurantBookings)
		manager.PATCH("/bookings/:id", handlers.UpdateBookingStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", handlers.AdminGetAllUsers)
		admin.DELETE("/users/:id", handlers.AdminDeleteUser)
		admin.GET("/requests", handlers.AdminGetAllRequests)
		admin.PATCH("/requests/approve/:id", handlers.ApproveManagerRequest)
		admin.PATCH("/requests/reject/:id", handlers.RejectManagerRequest)
		admin.DELETE("/requests/delete/:id", handlers.AdminDeleteRequest)
		admin.PATCH("/bookings/:id/status", handlers.AdminForceBookingStatus)
	}
}
