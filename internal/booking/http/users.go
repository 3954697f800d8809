package http

import (
	"net/http"
	"strings"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/pkg/httpx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

// UsersHandler covers the account administration endpoints. Each operation
// reads the acting user from the request context and leaves the permission
// decision to the service.
type UsersHandler struct {
	Users *service.UserService
}

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

// HandleUpdate serves PATCH /auth/users/{id}. Absent fields stay untouched.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid_request", "Malformed JSON body.")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeBadRequest(w, "invalid_request", "name cannot be empty")
		return
	}
	if req.Email != nil && !validEmail(*req.Email) {
		writeBadRequest(w, "invalid_request", "a valid email is required")
		return
	}

	updated, err := h.Users.UpdateProfile(r.Context(), actor, r.PathValue("id"), domain.ProfileUpdate{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword serves PUT /auth/users/{id}/password. Admins acting on
// another account may omit current_password.
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid_request", "Malformed JSON body.")
		return
	}
	if desc := checkPassword(req.NewPassword); desc != "" {
		writeBadRequest(w, "weak_password", desc)
		return
	}

	err := h.Users.ChangePassword(r.Context(), actor, r.PathValue("id"),
		req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete serves DELETE /auth/users/{id}.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	targetID := r.PathValue("id")
	if err := h.Users.Delete(r.Context(), actor, targetID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user deleted",
		"user_id", targetID, "actor_id", actor.ID)
	w.WriteHeader(http.StatusNoContent)
}
