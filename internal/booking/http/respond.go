package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/pkg/httpx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type appointmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		Name:      a.Name,
		StartTime: a.StartTime,
		UserID:    a.UserID,
		CreatedAt: a.CreatedAt,
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(dst)
}

func writeBadRequest(w http.ResponseWriter, code, description string) {
	httpx.WriteError(w, http.StatusBadRequest, code, description)
}

// writeServiceError maps service sentinels onto the error envelope. Anything
// unrecognised is an internal error and gets logged with detail that never
// leaves the process.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_credentials", "Incorrect email or password.")
	case errors.Is(err, service.ErrInvalidToken):
		writeUnauthorized(w)
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden,
			"forbidden", "You are not allowed to perform this action.")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound,
			"not_found", "The requested resource does not exist.")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict,
			"email_taken", "An account with this email already exists.")
	case errors.Is(err, service.ErrSlotTaken):
		httpx.WriteError(w, http.StatusConflict,
			"slot_taken", "This time slot is already booked.")
	case errors.Is(err, service.ErrTooCloseToStart):
		writeBadRequest(w, "too_close_to_start",
			"The cancellation window for this appointment has closed.")
	case errors.Is(err, service.ErrAdminSelfDelete):
		writeBadRequest(w, "admin_self_delete",
			"Administrators cannot delete their own account.")
	case errors.Is(err, service.ErrBadCurrentPassword):
		writeBadRequest(w, "bad_current_password",
			"The current password is incorrect.")
	case errors.Is(err, service.ErrInvalidResetToken):
		writeBadRequest(w, "invalid_reset_token",
			"The reset token is invalid or has expired.")
	case errors.Is(err, service.ErrInvalidStartTime):
		writeBadRequest(w, "invalid_start_time",
			"start_time must be RFC 3339 or YYYY-MM-DDTHH:MM:SS.")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "An internal error occurred.")
	}
}
