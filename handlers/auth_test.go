package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"restaurant-booking-api/config"
	"restaurant-booking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Alice", "email": "alice@x.com", "password": "pw1secret",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, w.Body.String(), "password")

	// Session cookie is set on register
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")

	// Duplicate email
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Alice2", "email": "alice@x.com", "password": "pw2secret",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login succeeds
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "alice@x.com", "password": "pw1secret",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Wrong password fails with the same generic message
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "alice@x.com", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestProfileRequiresSession(t *testing.T) {
	r, _ := setupTest(t)

	w := doJSON(t, r, http.MethodGet, "/api/users/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	alice := createUser(t, "Alice", "alice@x.com", "pw1secret", models.RoleUser)
	w = doJSON(t, r, http.MethodGet, "/api/users/profile", nil, authHeader(t, alice))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "alice@x.com", body["user"].(map[string]any)["email"])
}

func TestSessionResolvesCurrentRecord(t *testing.T) {
	r, _ := setupTest(t)
	alice := createUser(t, "Alice", "alice@x.com", "pw1secret", models.RoleUser)
	header := authHeader(t, alice)

	// Role change takes effect immediately, without token re-issue
	require.NoError(t, config.DB.Model(alice).Update("role", models.RoleManager).Error)
	w := doJSON(t, r, http.MethodGet, "/api/manager/restaurants", nil, header)
	assert.Equal(t, http.StatusOK, w.Code)

	// Deleted account fails closed
	require.NoError(t, config.DB.Delete(alice).Error)
	w = doJSON(t, r, http.MethodGet, "/api/users/profile", nil, header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	r, _ := setupTest(t)
	alice := createUser(t, "Alice", "alice@x.com", "oldsecret", models.RoleUser)

	w := doJSON(t, r, http.MethodPut, "/api/users/password", map[string]any{
		"old_password": "wrong", "new_password": "newsecret",
	}, authHeader(t, alice))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/users/password", map[string]any{
		"old_password": "oldsecret", "new_password": "newsecret",
	}, authHeader(t, alice))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "alice@x.com", "password": "newsecret",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	r, sent := setupTest(t)
	alice := createUser(t, "Alice", "alice@x.com", "oldsecret", models.RoleUser)

	// Unknown email
	w := doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", map[string]any{
		"email": "nobody@x.com",
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", map[string]any{
		"email": "alice@x.com",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, *sent, 1)
	assert.True(t, strings.HasPrefix((*sent)[0], "alice@x.com|"))

	require.NoError(t, config.DB.First(alice, alice.ID).Error)
	require.NotEmpty(t, alice.ResetToken)

	// Wrong token
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", map[string]any{
		"token": "bogus", "new_password": "newsecret",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid token
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", map[string]any{
		"token": alice.ResetToken, "new_password": "newsecret",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Token is single-use
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", map[string]any{
		"token": alice.ResetToken, "new_password": "another1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "alice@x.com", "password": "newsecret",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	r, _ := setupTest(t)
	alice := createUser(t, "Alice", "alice@x.com", "oldsecret", models.RoleUser)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, config.DB.Model(alice).Updates(map[string]interface{}{
		"reset_token":        "expired-token",
		"reset_token_expiry": &expired,
	}).Error)

	w := doJSON(t, r, http.MethodPost, "/api/auth/reset-password", map[string]any{
		"token": "expired-token", "new_password": "newsecret",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}
