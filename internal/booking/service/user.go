package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/notify"
	"github.com/szalonlabs/booking-api/internal/booking/store"
	"github.com/szalonlabs/booking-api/pkg/cryptox"
	"github.com/szalonlabs/booking-api/pkg/idx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

// UserService owns registration, authentication and account administration.
// Every operation takes the resolved actor explicitly; nothing is read from
// ambient request state.
type UserService struct {
	Store  store.Store
	Tokens *TokenService
	Mail   *notify.Dispatcher

	// ResetURLBase is prepended to reset tokens in the password-reset mail,
	// e.g. "https://app.example.com/reset-password?token=".
	ResetURLBase string
}

// Register creates a new account. The plaintext password is hashed before it
// touches the store; a duplicate email fails with ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, name, email string, phone *string, password string) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, u.ID)
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both return ErrInvalidCredentials so accounts cannot be
// enumerated.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if cryptox.VerifyPassword(password, u.PasswordHash) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// UpdateProfile applies a partial profile update. Only the target user or an
// admin may mutate; an email change that collides with another account fails
// with ErrEmailTaken.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.User, targetID string, upd domain.ProfileUpdate) (domain.User, error) {
	var updated domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.IsSuperuser && actor.ID != target.ID {
			return ErrForbidden
		}

		if err := tx.Users().UpdateProfile(ctx, target.ID, upd); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		updated, err = tx.Users().GetUserByID(ctx, target.ID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return updated, nil
}

// ChangePassword sets a new password. Non-admin actors must prove the
// current password; admins bypass that check.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.User, targetID, currentPassword, newPassword string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.IsSuperuser && actor.ID != target.ID {
			return ErrForbidden
		}
		if !actor.IsSuperuser {
			if cryptox.VerifyPassword(currentPassword, target.PasswordHash) != nil {
				return ErrBadCurrentPassword
			}
		}

		hash, err := cryptox.HashPassword(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return tx.Users().UpdatePasswordHash(ctx, target.ID, hash)
	})
}

// Delete removes an account and, via the schema cascade, all of its
// appointments. Admins may not delete themselves; regular users may.
func (s *UserService) Delete(ctx context.Context, actor domain.User, targetID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		isSelf := actor.ID == target.ID
		if !actor.IsSuperuser && !isSelf {
			return ErrForbidden
		}
		if actor.IsSuperuser && isSelf {
			return ErrAdminSelfDelete
		}

		return tx.Users().DeleteUser(ctx, target.ID)
	})
}

// RequestPasswordReset mints a reset token and mails it when the address is
// known. The caller always sees success so addresses cannot be probed.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.Tokens.IssueReset(u.Email, cryptox.Fingerprint(u.PasswordHash))
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	s.Mail.Enqueue(notify.Message{
		To:      u.Email,
		Subject: "Password reset request",
		Body: fmt.Sprintf(
			"Hi %s,\n\nUse the link below to choose a new password. The link expires in %s.\n\n%s%s\n",
			u.Name, s.Tokens.ResetTTL, s.ResetURLBase, token,
		),
	})
	log.Info("password reset requested", "user_id", u.ID)
	return nil
}

// ResetPassword redeems a reset token. The token must verify against the
// reset secret and still match the account's current password hash, so a
// token dies the moment the password changes.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, fingerprint, ok := s.Tokens.VerifyReset(token)
	if !ok {
		return ErrInvalidResetToken
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if cryptox.Fingerprint(u.PasswordHash) != fingerprint {
			return ErrInvalidResetToken
		}

		hash, err := cryptox.HashPassword(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return tx.Users().UpdatePasswordHash(ctx, u.ID, hash)
	})
}
