package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSessionTTL is how long a login session token stays valid.
	DefaultSessionTTL = 60 * time.Minute
	// DefaultResetTTL is how long a password-reset token stays valid.
	DefaultResetTTL = 15 * time.Minute
)

// TokenService issues and validates the two token categories: bearer session
// tokens (subject = user id) and password-reset tokens (subject = email).
// Each category has its own signing secret so a leaked reset token can never
// be replayed as a session token, nor the other way around.
type TokenService struct {
	SessionSecret []byte
	ResetSecret   []byte
	Issuer        string
	SessionTTL    time.Duration
	ResetTTL      time.Duration
}

type resetClaims struct {
	// PasswordFingerprint binds the token to the credential it was issued
	// against; once the password changes the token stops verifying.
	PasswordFingerprint string `json:"fph"`
	jwt.RegisteredClaims
}

// IssueSession returns a signed session token for userID.
func (s *TokenService) IssueSession(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.SessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.SessionSecret)
}

// VerifySession validates a session token and returns its subject user id.
// Every failure collapses to ErrInvalidToken.
func (s *TokenService) VerifySession(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		// Block alg confusion.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.SessionSecret, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IssueReset returns a signed password-reset token for email, bound to the
// fingerprint of the account's current password hash.
func (s *TokenService) IssueReset(email, passwordFingerprint string) (string, error) {
	now := time.Now()
	claims := resetClaims{
		PasswordFingerprint: passwordFingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ResetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.ResetSecret)
}

// VerifyReset validates a reset token. It reports ok=false on any failure
// instead of an error; callers cannot distinguish invalid from expired.
func (s *TokenService) VerifyReset(raw string) (email, passwordFingerprint string, ok bool) {
	claims := &resetClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.ResetSecret, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return "", "", false
	}
	return claims.Subject, claims.PasswordFingerprint, true
}
