package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/notify"
	"github.com/szalonlabs/booking-api/internal/booking/store"
	"github.com/szalonlabs/booking-api/internal/booking/store/drivers/sqlite"
	"github.com/szalonlabs/booking-api/pkg/cryptox"
	"github.com/szalonlabs/booking-api/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestTokens() *TokenService {
	return &TokenService{
		SessionSecret: []byte("session-test-secret"),
		ResetSecret:   []byte("reset-test-secret"),
		Issuer:        "booking-test",
		SessionTTL:    DefaultSessionTTL,
		ResetTTL:      DefaultResetTTL,
	}
}

// captureMailer records outgoing messages instead of delivering them.
type captureMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *captureMailer) Send(msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func newTestDispatcher(t *testing.T) (*notify.Dispatcher, *captureMailer) {
	t.Helper()

	mailer := &captureMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := notify.NewDispatcher(mailer, logger, 16)
	d.Start()
	t.Cleanup(d.Stop)
	return d, mailer
}

// seedUser inserts a user directly through the store, bypassing the service,
// so scheduling tests do not depend on registration.
func seedUser(t *testing.T, st store.Store, email, password string, admin bool) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		IsSuperuser:  admin,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))

	stored, err := st.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	return stored
}

// futureStart formats a timestamp the given duration from now as RFC 3339 so
// tests stay valid regardless of when they run.
func futureStart(d time.Duration) string {
	return time.Now().Add(d).UTC().Format(time.RFC3339)
}
