package domain

import "time"

// Appointment is a single reserved slot. StartTime is always UTC and is
// globally unique across all users; appointments are never updated in place.
type Appointment struct {
	ID        string
	Name      string // free-form label supplied by the booker
	StartTime time.Time
	UserID    string
	CreatedAt time.Time
}
