package domain

import "time"

// User is an account that can book appointments. Superusers administer other
// users and are exempt from the cancellation window.
type User struct {
	ID           string
	Name         string
	Email        string
	PhoneNumber  *string // optional
	PasswordHash string  // argon2id encoded, never the plaintext
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileUpdate carries the optional profile fields of a PATCH; nil means
// leave unchanged.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	PhoneNumber *string
}
