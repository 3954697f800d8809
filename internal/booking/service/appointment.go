package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
	"github.com/szalonlabs/booking-api/internal/booking/notify"
	"github.com/szalonlabs/booking-api/internal/booking/store"
	"github.com/szalonlabs/booking-api/pkg/idx"
	"github.com/szalonlabs/booking-api/pkg/slogx"
)

// DefaultCancelWindow is how far before the start time a non-admin owner may
// still cancel.
const DefaultCancelWindow = 24 * time.Hour

// naiveTimeLayout accepts timestamps without zone information; they are
// interpreted in the Local location before conversion to UTC.
const naiveTimeLayout = "2006-01-02T15:04:05"

// AppointmentService owns the scheduling ledger: slot booking, cancellation
// and the two listing views.
type AppointmentService struct {
	Store store.Store
	Mail  *notify.Dispatcher

	// Local is the reference zone for naive booking times (Europe/Budapest
	// in production).
	Local *time.Location

	// CancelWindow is the minimum lead time a non-admin owner needs to
	// cancel. Admins are exempt.
	CancelWindow time.Duration

	// NotifyEmail receives the new-booking notices (the technician).
	NotifyEmail string
}

// NormalizeStartTime parses a raw client timestamp into UTC. RFC 3339 input
// carries its own zone and converts directly; a naive timestamp is taken to
// be wall time in Local. Sub-second precision is dropped, matching storage.
func (s *AppointmentService) NormalizeStartTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	if t, err := time.ParseInLocation(naiveTimeLayout, raw, s.Local); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	return time.Time{}, ErrInvalidStartTime
}

// Book reserves a slot for the actor. The UNIQUE constraint on start_time is
// the sole conflict arbiter; there is deliberately no read-before-write
// check, so concurrent bookings of one instant leave exactly one winner. The
// notification is enqueued only after the transaction commits and can never
// fail the booking.
func (s *AppointmentService) Book(ctx context.Context, actor domain.User, name, rawStart string) (domain.Appointment, error) {
	startUTC, err := s.NormalizeStartTime(rawStart)
	if err != nil {
		return domain.Appointment{}, err
	}

	appt := domain.Appointment{
		ID:        idx.New().String(),
		Name:      name,
		StartTime: startUTC,
		UserID:    actor.ID,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Appointments().CreateAppointment(ctx, appt)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Appointment{}, ErrSlotTaken
		}
		return domain.Appointment{}, err
	}

	stored, err := s.Store.Appointments().GetAppointmentByID(ctx, appt.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	s.enqueueBookingNotice(ctx, actor, stored)
	return stored, nil
}

func (s *AppointmentService) enqueueBookingNotice(ctx context.Context, actor domain.User, appt domain.Appointment) {
	if s.Mail == nil || s.NotifyEmail == "" {
		return
	}

	phone := "-"
	if actor.PhoneNumber != nil {
		phone = *actor.PhoneNumber
	}

	s.Mail.Enqueue(notify.Message{
		To:      s.NotifyEmail,
		Subject: fmt.Sprintf("New booking: %s", appt.Name),
		Body: fmt.Sprintf(
			"A new appointment was booked:\n\nName: %s\nTime: %s\nBooked by: %s (%s, phone: %s)\n",
			appt.Name,
			appt.StartTime.In(s.Local).Format("2006-01-02 15:04"),
			actor.Name, actor.Email, phone,
		),
	})
	slogx.FromContext(ctx).Info("booking notice enqueued",
		slog.String("appointment_id", appt.ID),
	)
}

// Cancel deletes an appointment. Owners may cancel up to CancelWindow before
// the start; admins may cancel anything at any time, including their own
// last-minute bookings.
func (s *AppointmentService) Cancel(ctx context.Context, actor domain.User, appointmentID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		appt, err := tx.Appointments().GetAppointmentByID(ctx, appointmentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		isOwner := appt.UserID == actor.ID
		if !isOwner && !actor.IsSuperuser {
			return ErrForbidden
		}

		// The window binds plain owners only.
		if isOwner && !actor.IsSuperuser {
			if appt.StartTime.Sub(time.Now().UTC()) < s.CancelWindow {
				return ErrTooCloseToStart
			}
		}

		return tx.Appointments().DeleteAppointment(ctx, appt.ID)
	})
}

// ListPublic returns every booked instant ascending. It exposes start times
// only; who booked what stays private.
func (s *AppointmentService) ListPublic(ctx context.Context) ([]time.Time, error) {
	return s.Store.Appointments().ListStartTimes(ctx)
}

// ListOwn returns the actor's appointments ascending by start time.
func (s *AppointmentService) ListOwn(ctx context.Context, actor domain.User) ([]domain.Appointment, error) {
	return s.Store.Appointments().ListByUser(ctx, actor.ID)
}
