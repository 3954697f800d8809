package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/service"
	"github.com/szalonlabs/booking-api/pkg/httpx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

type RegisterHandler struct {
	Users *service.UserService
}

type registerRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Password    string  `json:"password"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid_request", "Malformed JSON body.")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Name == "":
		writeBadRequest(w, "invalid_request", "name is required")
		return
	case !validEmail(req.Email):
		writeBadRequest(w, "invalid_request", "a valid email is required")
		return
	}
	if desc := checkPassword(req.Password); desc != "" {
		writeBadRequest(w, "weak_password", desc)
		return
	}

	user, err := h.Users.Register(r.Context(), req.Name, req.Email, req.PhoneNumber, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user registered", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

type LoginHandler struct {
	Users  *service.UserService
	Tokens *service.TokenService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid_request", "Malformed JSON body.")
		return
	}

	user, err := h.Users.Authenticate(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	access, err := h.Tokens.IssueSession(user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, domain.SessionToken{
		AccessToken: access,
		TokenType:   "bearer",
	})
}

type ForgotPasswordHandler struct {
	Users *service.UserService
}

// ServeHTTP accepts a reset request. The response is identical whether or
// not the address belongs to an account.
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid_request", "Malformed JSON body.")
		return
	}

	if err := h.Users.RequestPasswordReset(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "If the address belongs to an account, a reset link has been sent.",
	})
}

type ResetPasswordHandler struct {
	Users *service.UserService
}

func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid_request", "Malformed JSON body.")
		return
	}
	if desc := checkPassword(req.NewPassword); desc != "" {
		writeBadRequest(w, "weak_password", desc)
		return
	}

	if err := h.Users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		// An unknown account behind a structurally valid token reveals as
		// much as a bad signature would; collapse the two.
		if errors.Is(err, service.ErrNotFound) {
			err = service.ErrInvalidResetToken
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "Password updated."})
}
