package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const uniqueViolation = "23505"

const selectColumns = `
SELECT uid, email, is_admin, is_active, provider, password_hash, created_at, last_login_at, updated_at
FROM users`

func (r *PGRepo) Create(ctx context.Context, p Profile) error {
	const query = `
INSERT INTO users (uid, email, is_admin, is_active, provider, password_hash, created_at, last_login_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		p.UID,
		p.Email,
		p.IsAdmin,
		p.IsActive,
		p.Provider,
		nullableString(p.PasswordHash),
		p.CreatedAt,
		nullableTime(p.LastLoginAt),
		nullableTime(p.UpdatedAt),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) Get(ctx context.Context, uid string) (Profile, error) {
	return scanOne(r.DB.QueryRowContext(ctx, selectColumns+`
WHERE uid = $1
LIMIT 1`, uid))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (Profile, error) {
	return scanOne(r.DB.QueryRowContext(ctx, selectColumns+`
WHERE lower(email) = lower($1)
LIMIT 1`, email))
}

func (r *PGRepo) Update(ctx context.Context, p Profile) error {
	const query = `
UPDATE users
SET email = $1,
    is_admin = $2,
    is_active = $3,
    provider = $4,
    password_hash = $5,
    last_login_at = $6,
    updated_at = $7
WHERE uid = $8`
	res, err := r.DB.ExecContext(ctx, query,
		p.Email,
		p.IsAdmin,
		p.IsActive,
		p.Provider,
		nullableString(p.PasswordHash),
		nullableTime(p.LastLoginAt),
		nullableTime(p.UpdatedAt),
		p.UID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.DB.QueryContext(ctx, selectColumns+`
ORDER BY created_at DESC, uid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func scanProfile(s scanner) (Profile, error) {
	var p Profile
	var passwordHash sql.NullString
	var lastLogin, updatedAt sql.NullTime
	if err := s.Scan(
		&p.UID,
		&p.Email,
		&p.IsAdmin,
		&p.IsActive,
		&p.Provider,
		&passwordHash,
		&p.CreatedAt,
		&lastLogin,
		&updatedAt,
	); err != nil {
		return Profile{}, err
	}
	if passwordHash.Valid {
		p.PasswordHash = passwordHash.String
	}
	if lastLogin.Valid {
		p.LastLoginAt = lastLogin.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ Repo = (*PGRepo)(nil)
