package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/notify"
	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/internal/booking/store/drivers/sqlite"
	"github.com/szalonlabs/booking-api/pkg/cryptox"
	"github.com/szalonlabs/booking-api/pkg/idx"
)

type discardMailer struct{}

func (discardMailer) Send(notify.Message) error { return nil }

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := notify.NewDispatcher(discardMailer{}, logger, 16)
	dispatcher.Start()
	t.Cleanup(dispatcher.Stop)

	local, err := time.LoadLocation("Europe/Budapest")
	require.NoError(t, err)

	tokens := &service.TokenService{
		SessionSecret: []byte("session-test-secret"),
		ResetSecret:   []byte("reset-test-secret"),
		Issuer:        "booking-test",
		SessionTTL:    service.DefaultSessionTTL,
		ResetTTL:      service.DefaultResetTTL,
	}

	r := NewRouter("test", st, logger)
	r.TokenService = tokens
	r.UserService = &service.UserService{
		Store:        st,
		Tokens:       tokens,
		Mail:         dispatcher,
		ResetURLBase: "https://booking.test/reset?token=",
	}
	r.AppointmentService = &service.AppointmentService{
		Store:        st,
		Mail:         dispatcher,
		Local:        local,
		CancelWindow: service.DefaultCancelWindow,
		NotifyEmail:  "technician@booking.test",
	}
	r.ApplyRoutes()
	return r
}

func (r *Router) seedUser(t *testing.T, email string, admin bool) (domain.User, string) {
	t.Helper()

	hash, err := cryptox.HashPassword("Sup3r$ecret")
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		IsSuperuser:  admin,
	}
	require.NoError(t, r.store.Users().CreateUser(context.Background(), u))

	token, err := r.TokenService.IssueSession(u.ID)
	require.NoError(t, err)
	return u, token
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[userResponse](t, rec)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "alice@example.com", created.Email)
	require.False(t, created.IsSuperuser)

	// Duplicate email.
	rec = doJSON(t, r, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Imposter",
		"email":    "alice@example.com",
		"password": "An0ther$ecret",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Weak password reports every violated rule at once.
	rec = doJSON(t, r, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "8 characters")
	require.Contains(t, rec.Body.String(), "uppercase")
	require.Contains(t, rec.Body.String(), "digit")
	require.Contains(t, rec.Body.String(), "special")

	rec = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeBody[domain.SessionToken](t, rec)
	require.NotEmpty(t, session.AccessToken)
	require.Equal(t, "bearer", session.TokenType)

	rec = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	r := newTestRouter(t)

	// Missing, malformed, and orphaned tokens all read identically.
	noToken := doJSON(t, r, http.MethodGet, "/appointments/me", "", nil)
	garbage := doJSON(t, r, http.MethodGet, "/appointments/me", "not-a-jwt", nil)

	ghost, ghostToken := r.seedUser(t, "ghost@example.com", false)
	require.NoError(t, r.store.Users().DeleteUser(context.Background(), ghost.ID))
	orphaned := doJSON(t, r, http.MethodGet, "/appointments/me", ghostToken, nil)

	for _, rec := range []*httptest.ResponseRecorder{noToken, garbage, orphaned} {
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, noToken.Body.String(), rec.Body.String())
	}
}

func TestAppointmentEndpoints(t *testing.T) {
	r := newTestRouter(t)
	_, aliceToken := r.seedUser(t, "alice@example.com", false)
	_, bobToken := r.seedUser(t, "bob@example.com", false)

	farStart := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	rec := doJSON(t, r, http.MethodPost, "/appointments", aliceToken, map[string]any{
		"name":       "Haircut",
		"start_time": farStart,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	booked := decodeBody[appointmentResponse](t, rec)
	require.Equal(t, "Haircut", booked.Name)

	// Same slot again, regardless of who asks.
	rec = doJSON(t, r, http.MethodPost, "/appointments", bobToken, map[string]any{
		"name":       "Beard trim",
		"start_time": farStart,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/appointments", aliceToken, map[string]any{
		"name":       "Haircut",
		"start_time": "whenever",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Public view carries start times only.
	rec = doJSON(t, r, http.MethodGet, "/appointments/public", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decodeBody[[]publicSlot](t, rec)
	require.Len(t, slots, 1)
	require.NotContains(t, rec.Body.String(), "user_id")

	rec = doJSON(t, r, http.MethodGet, "/appointments/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeBody[[]appointmentResponse](t, rec)
	require.Len(t, mine, 1)

	rec = doJSON(t, r, http.MethodGet, "/appointments/me", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody[[]appointmentResponse](t, rec))

	// A stranger cannot cancel it, the owner can.
	rec = doJSON(t, r, http.MethodDelete, "/appointments/"+booked.ID, bobToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, r, http.MethodDelete, "/appointments/"+booked.ID, aliceToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCancelWindowOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	alice, aliceToken := r.seedUser(t, "alice@example.com", false)
	_, adminToken := r.seedUser(t, "admin@example.com", true)

	near := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	rec := doJSON(t, r, http.MethodPost, "/appointments", aliceToken, map[string]any{
		"name":       "Too soon",
		"start_time": near,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	booked := decodeBody[appointmentResponse](t, rec)
	require.Equal(t, alice.ID, booked.UserID)

	rec = doJSON(t, r, http.MethodDelete, "/appointments/"+booked.ID, aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "too_close_to_start")

	// The admin is exempt from the window.
	rec = doJSON(t, r, http.MethodDelete, "/appointments/"+booked.ID, adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	r := newTestRouter(t)
	alice, aliceToken := r.seedUser(t, "alice@example.com", false)
	bob, bobToken := r.seedUser(t, "bob@example.com", false)
	admin, adminToken := r.seedUser(t, "admin@example.com", true)

	rec := doJSON(t, r, http.MethodPatch, "/auth/users/"+alice.ID, aliceToken, map[string]any{
		"name": "Alice Cooper",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Alice Cooper", decodeBody[userResponse](t, rec).Name)

	rec = doJSON(t, r, http.MethodPatch, "/auth/users/"+alice.ID, bobToken, map[string]any{
		"name": "Hijacked",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/auth/users/"+alice.ID+"/password", aliceToken, map[string]any{
		"current_password": "Sup3r$ecret",
		"new_password":     "N3w$ecretPw",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "N3w$ecretPw",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Admins cannot remove themselves; anyone else is fair game.
	rec = doJSON(t, r, http.MethodDelete, "/auth/users/"+admin.ID, adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "admin_self_delete")

	rec = doJSON(t, r, http.MethodDelete, "/auth/users/"+bob.ID, adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestForgotPasswordIsNeutral(t *testing.T) {
	r := newTestRouter(t)
	r.seedUser(t, "alice@example.com", false)

	known := doJSON(t, r, http.MethodPost, "/auth/forgot-password", "", map[string]any{
		"email": "alice@example.com",
	})
	unknown := doJSON(t, r, http.MethodPost, "/auth/forgot-password", "", map[string]any{
		"email": "nobody@example.com",
	})

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	require.JSONEq(t, known.Body.String(), unknown.Body.String())
}

func TestResetPasswordRejectsBadToken(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/auth/reset-password", "", map[string]any{
		"token":        "not-a-real-token",
		"new_password": "N3w$ecretPw",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_reset_token")
}

func TestSystemEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Welcome")

	rec = doJSON(t, r, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"database":"ok"`)
}
