package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-booking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerBookingDashboard(t *testing.T) {
	r, _ := setupTest(t)
	owner := createUser(t, "Marco", "marco@x.com", "pw1secret", models.RoleManager)
	trattoria := seedRestaurant(t, owner.ID, "Trattoria")
	osteria := seedRestaurant(t, owner.ID, "Osteria")
	alice := createUser(t, "Alice", "alice@x.com", "pw1secret", models.RoleUser)

	seedBooking(t, alice, trattoria, models.StatusPending)
	seedBooking(t, alice, trattoria, models.StatusConfirmed)
	seedBooking(t, alice, osteria, models.StatusPending)

	w := doJSON(t, r, http.MethodGet, "/api/manager/bookings", nil, authHeader(t, owner))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 3.0, body["count"])
	summary := body["booking_summary"].(map[string]any)
	assert.Equal(t, 2.0, summary["pending"])
	assert.Equal(t, 1.0, summary["confirmed"])

	// Filter by status
	w = doJSON(t, r, http.MethodGet, "/api/manager/bookings?status=confirmed", nil, authHeader(t, owner))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeBody(t, w)["count"])

	// A manager with no restaurant gets a 404
	idle := createUser(t, "Idle", "idle@x.com", "pw1secret", models.RoleManager)
	w = doJSON(t, r, http.MethodGet, "/api/manager/bookings", nil, authHeader(t, idle))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionCookieTransport(t *testing.T) {
	r, _ := setupTest(t)
	createUser(t, "Alice", "alice@x.com", "pw1secret", models.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "alice@x.com", "password": "pw1secret",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Profile is reachable with the cookie alone, no Authorization header
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Logout clears the cookie
	w = doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=;")
}
