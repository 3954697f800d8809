package sqlite

import (
	"context"
	"time"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
)

type appointmentsRepo struct {
	q querier
}

func (r *appointmentsRepo) CreateAppointment(ctx context.Context, a domain.Appointment) error {
	// No pre-check: the UNIQUE(start_time) constraint decides conflicts
	// atomically, so concurrent bookers cannot both pass a read.
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO appointments (id, name, start_time, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.StartTime.UTC().Unix(), a.UserID, time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *appointmentsRepo) GetAppointmentByID(ctx context.Context, id string) (domain.Appointment, error) {
	var a domain.Appointment
	var startUnix int64
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, start_time, user_id, created_at
		 FROM appointments WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &startUnix, &a.UserID, &a.CreatedAt)
	if err != nil {
		return domain.Appointment{}, mapNotFound(err)
	}
	a.StartTime = time.Unix(startUnix, 0).UTC()
	return a, nil
}

func (r *appointmentsRepo) DeleteAppointment(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *appointmentsRepo) ListStartTimes(ctx context.Context) ([]time.Time, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT start_time FROM appointments ORDER BY start_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var startUnix int64
		if err := rows.Scan(&startUnix); err != nil {
			return nil, err
		}
		out = append(out, time.Unix(startUnix, 0).UTC())
	}
	return out, rows.Err()
}

func (r *appointmentsRepo) ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, start_time, user_id, created_at
		 FROM appointments WHERE user_id = ? ORDER BY start_time ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		var startUnix int64
		if err := rows.Scan(&a.ID, &a.Name, &startUnix, &a.UserID, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.StartTime = time.Unix(startUnix, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
