package store

import (
	"context"
	"errors"
	"time"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	Appointments() Appointments

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A nil return commits, any
	// error rolls back. This is the recommended way to run multi-step
	// mutations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and password reset.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is a ULID provided by the app).
	// A duplicate email surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile applies the non-nil fields and bumps updated_at. An
	// email collision with another user surfaces as ErrAlreadyExists.
	UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to the user's appointments (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Appointments interface {
	// CreateAppointment inserts a new appointment. The UNIQUE constraint on
	// start_time is the sole conflict arbiter; a taken slot surfaces as
	// ErrAlreadyExists.
	CreateAppointment(ctx context.Context, a domain.Appointment) error

	// GetAppointmentByID returns an appointment by id.
	GetAppointmentByID(ctx context.Context, id string) (domain.Appointment, error)

	// DeleteAppointment removes an appointment by id.
	DeleteAppointment(ctx context.Context, id string) error

	// ListStartTimes returns every booked start time ascending. It
	// deliberately returns instants only, for the public busy/free view.
	ListStartTimes(ctx context.Context) ([]time.Time, error)

	// ListByUser returns a user's appointments ascending by start time.
	ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error)
}
