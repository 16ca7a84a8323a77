package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"restaurant-booking-api/config"
	"restaurant-booking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestForm(email string) map[string]string {
	return map[string]string{
		"name":            "Bob",
		"email":           email,
		"password":        "pw1secret",
		"restaurant_name": "Bob's Bistro",
		"location":        `{"street":"9 High St","city":"Shelbyville"}`,
		"phone":           "555-0200",
		"capacity":        "8",
		"cuisine":         "french",
		"opening_hours":   "11:00-23:00",
		"menu":            `[{"name":"Onion Soup","category":"starters","price":6}]`,
	}
}

func TestSubmitManagerRequest(t *testing.T) {
	r, _ := setupTest(t)

	w := doForm(t, r, http.MethodPost, "/api/manager-requests", requestForm("bob@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	var request models.ManagerRequest
	require.NoError(t, config.DB.Where("email = ?", "bob@x.com").First(&request).Error)
	assert.Equal(t, models.RequestPending, request.Status)
	// Password is hashed at submission time
	assert.NotEqual(t, "pw1secret", request.PasswordHash)
	assert.Contains(t, request.PasswordHash, "$2a$")

	// Duplicate application for the same email
	w = doForm(t, r, http.MethodPost, "/api/manager-requests", requestForm("bob@x.com"), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Missing required field names the field
	fields := requestForm("carol@x.com")
	delete(fields, "phone")
	w = doForm(t, r, http.MethodPost, "/api/manager-requests", fields, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "phone")
}

func TestApproveManagerRequestProvisionsAccountAndRestaurant(t *testing.T) {
	r, sent := setupTest(t)
	admin := createUser(t, "Root", "root@x.com", "pw1secret", models.RoleAdmin)

	w := doForm(t, r, http.MethodPost, "/api/manager-requests", requestForm("bob@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var request models.ManagerRequest
	require.NoError(t, config.DB.Where("email = ?", "bob@x.com").First(&request).Error)

	approvePath := fmt.Sprintf("/api/admin/requests/approve/%d", request.ID)
	w = doJSON(t, r, http.MethodPatch, approvePath, nil, authHeader(t, admin))
	require.Equal(t, http.StatusOK, w.Code)

	// Manager account with the submitted (already-hashed) password
	var manager models.User
	require.NoError(t, config.DB.Where("email = ?", "bob@x.com").First(&manager).Error)
	assert.Equal(t, models.RoleManager, manager.Role)
	assert.Equal(t, request.PasswordHash, manager.PasswordHash)

	// Bootstrap restaurant owned by the new manager, with submitted menu
	var restaurant models.Restaurant
	require.NoError(t, config.DB.Preload("MenuItems").Where("owner_id = ?", manager.ID).First(&restaurant).Error)
	assert.Equal(t, "Bob's Bistro", restaurant.Name)
	assert.Equal(t, 8, restaurant.Capacity)
	require.Len(t, restaurant.MenuItems, 1)
	assert.Equal(t, "Onion Soup", restaurant.MenuItems[0].Name)

	// Request marked approved and applicant notified
	require.NoError(t, config.DB.First(&request, request.ID).Error)
	assert.Equal(t, models.RequestApproved, request.Status)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0], "bob@x.com")

	// The new manager can log in with the original password
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "bob@x.com", "password": "pw1secret",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Second approval fails and provisions nothing new
	w = doJSON(t, r, http.MethodPatch, approvePath, nil, authHeader(t, admin))
	assert.Equal(t, http.StatusConflict, w.Code)
	var users, restaurants int64
	config.DB.Model(&models.User{}).Where("email = ?", "bob@x.com").Count(&users)
	config.DB.Model(&models.Restaurant{}).Where("owner_id = ?", manager.ID).Count(&restaurants)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), restaurants)
}

func TestRejectManagerRequestRetainsRecord(t *testing.T) {
	r, _ := setupTest(t)
	admin := createUser(t, "Root", "root@x.com", "pw1secret", models.RoleAdmin)

	w := doForm(t, r, http.MethodPost, "/api/manager-requests", requestForm("bob@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var request models.ManagerRequest
	require.NoError(t, config.DB.Where("email = ?", "bob@x.com").First(&request).Error)

	rejectPath := fmt.Sprintf("/api/admin/requests/reject/%d", request.ID)
	w = doJSON(t, r, http.MethodPatch, rejectPath, nil, authHeader(t, admin))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, config.DB.First(&request, request.ID).Error)
	assert.Equal(t, models.RequestRejected, request.Status)

	// A decided request cannot be re-decided
	w = doJSON(t, r, http.MethodPatch, rejectPath, nil, authHeader(t, admin))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// No manager account was created
	var count int64
	config.DB.Model(&models.User{}).Where("email = ?", "bob@x.com").Count(&count)
	assert.Equal(t, int64(0), count)

	// Outright delete still works
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/requests/delete/%d", request.ID), nil, authHeader(t, admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminUserModeration(t *testing.T) {
	r, _ := setupTest(t)
	admin := createUser(t, "Root", "root@x.com", "pw1secret", models.RoleAdmin)
	alice := createUser(t, "Alice", "alice@x.com", "pw1secret", models.RoleUser)
	createUser(t, "Marco", "marco@x.com", "pw1secret", models.RoleManager)

	w := doJSON(t, r, http.MethodGet, "/api/admin/users?role=manager", nil, authHeader(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeBody(t, w)["count"])

	// Non-admin is rejected
	w = doJSON(t, r, http.MethodGet, "/api/admin/users", nil, authHeader(t, alice))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", alice.ID), nil, authHeader(t, admin))
	assert.Equal(t, http.StatusOK, w.Code)

	// Admin accounts cannot be deleted
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", admin.ID), nil, authHeader(t, admin))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminForceBookingStatus(t *testing.T) {
	r, _ := setupTest(t)
	admin := createUser(t, "Root", "root@x.com", "pw1secret", models.RoleAdmin)
	owner := createUser(t, "Marco", "marco@x.com", "pw1secret", models.RoleManager)
	restaurant := seedRestaurant(t, owner.ID, "Trattoria")
	alice := createUser(t, "Alice", "alice@x.com", "pw1secret", models.RoleUser)
	booking := seedBooking(t, alice, restaurant, models.StatusConfirmed)
	path := fmt.Sprintf("/api/admin/bookings/%d/status", booking.ID)

	// Terminal states stay terminal even for admins
	require.NoError(t, config.DB.Model(booking).Update("status", models.StatusCompleted).Error)
	w := doJSON(t, r, http.MethodPatch, path, map[string]any{"status": "pending"}, authHeader(t, admin))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.NoError(t, config.DB.Model(booking).Update("status", models.StatusConfirmed).Error)
	w = doJSON(t, r, http.MethodPatch, path, map[string]any{
		"status": "cancelled", "reason": "venue flooded",
	}, authHeader(t, admin))
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Booking
	require.NoError(t, config.DB.First(&reloaded, booking.ID).Error)
	assert.Equal(t, models.StatusCancelled, reloaded.Status)
	assert.Contains(t, reloaded.CancellationReason, "venue flooded")
	assert.NotNil(t, reloaded.CancelledAt)
}
