package booking_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestBookingLifecycle walks the happy path end to end: two users register,
// one books a slot, the other collides with it, the public view shows the
// busy instant, and the owner cancels in time.
func TestBookingLifecycle(t *testing.T) {
	baseURL, cleanup := setupBookingContainer(t)
	defer cleanup()

	_, aliceToken := registerAndLogin(t, baseURL, "Alice", "alice@example.com", "Sup3r$ecret")
	_, bobToken := registerAndLogin(t, baseURL, "Bob", "bob@example.com", "An0ther$ecret")

	start := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	code, body := call(t, http.MethodPost, baseURL+"/appointments", aliceToken, map[string]any{
		"name":       "Haircut",
		"start_time": start,
	})
	require.Equal(t, http.StatusCreated, code, "book failed: %s", body)
	booked := unmarshal[struct {
		ID        string    `json:"id"`
		StartTime time.Time `json:"start_time"`
	}](t, body)

	// Second booking of the same instant loses.
	code, _ = call(t, http.MethodPost, baseURL+"/appointments", bobToken, map[string]any{
		"name":       "Beard trim",
		"start_time": start,
	})
	require.Equal(t, http.StatusConflict, code)

	// Everyone can see the busy instant, nobody sees who booked it.
	code, body = call(t, http.MethodGet, baseURL+"/appointments/public", "", nil)
	require.Equal(t, http.StatusOK, code)
	slots := unmarshal[[]struct {
		StartTime time.Time `json:"start_time"`
	}](t, body)
	require.Len(t, slots, 1)
	require.True(t, slots[0].StartTime.Equal(booked.StartTime))
	require.NotContains(t, string(body), "user_id")

	// Only the owner's list carries the appointment.
	code, body = call(t, http.MethodGet, baseURL+"/appointments/me", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, unmarshal[[]struct {
		ID string `json:"id"`
	}](t, body))

	code, _ = call(t, http.MethodDelete, baseURL+"/appointments/"+booked.ID, bobToken, nil)
	require.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, http.MethodDelete, baseURL+"/appointments/"+booked.ID, aliceToken, nil)
	require.Equal(t, http.StatusNoContent, code)
}

// TestAuthenticationBoundary verifies the protected surface answers with one
// uniform 401 and that credentials are actually checked.
func TestAuthenticationBoundary(t *testing.T) {
	baseURL, cleanup := setupBookingContainer(t)
	defer cleanup()

	code, _ := call(t, http.MethodGet, baseURL+"/appointments/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, http.MethodGet, baseURL+"/appointments/me", "bogus-token", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	registerAndLogin(t, baseURL, "Alice", "alice@example.com", "Sup3r$ecret")
	code, _ = call(t, http.MethodPost, baseURL+"/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, code)
}

// TestLoginRateLimit confirms the strict limit kicks in on repeated failed
// logins for one account.
func TestLoginRateLimit(t *testing.T) {
	baseURL, cleanup := setupBookingContainer(t)
	defer cleanup()

	registerAndLogin(t, baseURL, "Alice", "alice@example.com", "Sup3r$ecret")

	limited := false
	for range 10 {
		code, _ := call(t, http.MethodPost, baseURL+"/auth/login", "", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		if code == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusUnauthorized, code)
	}
	require.True(t, limited, "expected a 429 after repeated failed logins")
}
