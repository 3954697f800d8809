package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/szalonlabs/booking-api/internal/booking/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, name, email, phone_number, password_hash, is_superuser, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, name, email, phone_number, password_hash, is_superuser, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, mapOptionalString(u.PhoneNumber), u.PasswordHash, u.IsSuperuser, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) error {
	// COALESCE keeps the stored value when the caller left a field nil.
	res, err := r.q.ExecContext(ctx,
		`UPDATE users
		 SET name         = COALESCE(?, name),
		     email        = COALESCE(?, email),
		     phone_number = COALESCE(?, phone_number),
		     updated_at   = ?
		 WHERE id = ?`,
		mapOptionalString(upd.Name),
		mapOptionalString(upd.Email),
		mapOptionalString(upd.PhoneNumber),
		time.Now().UTC(),
		userID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRowAffected(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var phone sql.NullString
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &phone, &u.PasswordHash,
		&u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.PhoneNumber = mapNullString(phone)
	return u, nil
}
