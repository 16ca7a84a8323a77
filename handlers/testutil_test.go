package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"restaurant-booking-api/config"
	"restaurant-booking-api/mailer"
	"restaurant-booking-api/middleware"
	"restaurant-booking-api/models"
	"restaurant-booking-api/routes"
	"restaurant-booking-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubUploader records keys instead of talking to object storage
type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	io.Copy(io.Discard, body)
	return "https://cdn.test/" + key, nil
}

// setupTest gives each test a fresh in-memory database and router. Outbound
// mail is captured into the returned slice.
func setupTest(t *testing.T) (*gin.Engine, *[]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Load()
	config.OpenDB(":memory:")
	storage.Active = stubUploader{}

	var sent []string
	prev := mailer.Send
	mailer.Send = func(to, subject, body string) error {
		sent = append(sent, to+"|"+subject+"|"+body)
		return nil
	}
	t.Cleanup(func() { mailer.Send = prev })

	r := gin.New()
	routes.SetupRoutes(r)
	return r, &sent
}

func createUser(t *testing.T, name, email, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, config.DB.Create(&user).Error)
	return &user
}

func authHeader(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user)
	require.NoError(t, err)
	return "Bearer " + token
}

// doJSON performs a JSON request, optionally authenticated
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doForm performs a multipart form request
func doForm(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func seedRestaurant(t *testing.T, ownerID uint, name string) *models.Restaurant {
	t.Helper()
	restaurant := models.Restaurant{
		OwnerID:      ownerID,
		Name:         name,
		Cuisine:      "italian",
		Address:      models.Address{Street: "1 Main St", City: "Springfield"},
		Capacity:     12,
		OpeningHours: "10:00-22:00",
		ContactPhone: "555-0100",
		MenuItems: []models.MenuItem{
			{Name: "Margherita", Category: "pizza", Price: 9.5},
			{Name: "Tiramisu", Category: "dessert", Price: 5},
		},
	}
	require.NoError(t, config.DB.Create(&restaurant).Error)
	return &restaurant
}

func seedBooking(t *testing.T, user *models.User, restaurant *models.Restaurant, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := models.Booking{
		UserID:         user.ID,
		UserName:       user.Name,
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		Date:           "2026-09-10",
		Time:           "19:30",
		Guests:         2,
		Phone:          "555-0101",
		Status:         status,
	}
	require.NoError(t, config.DB.Create(&booking).Error)
	return &booking
}

func bookingStatus(t *testing.T, id uint) models.BookingStatus {
	t.Helper()
	var booking models.Booking
	require.NoError(t, config.DB.First(&booking, id).Error)
	return booking.Status
}

func restaurantRating(t *testing.T, id uint) float64 {
	t.Helper()
	var restaurant models.Restaurant
	require.NoError(t, config.DB.First(&restaurant, id).Error)
	return restaurant.Rating
}
