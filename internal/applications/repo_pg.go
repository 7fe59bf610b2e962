package applications

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT id, user_id, job_title, company, date_applied, location, salary, status, notes,
       job_url, resume_id, resume_name, resume_url, created_at, updated_at
FROM applications`

// Create inserts a new application.
func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (
    id,
    user_id,
    job_title,
    company,
    date_applied,
    location,
    salary,
    status,
    notes,
    job_url,
    resume_id,
    resume_name,
    resume_url,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	resumeID, resumeName, resumeURL := resumeColumns(app.Resume)
	_, err := r.DB.ExecContext(
		ctx,
		query,
		app.ID,
		app.UserID,
		app.JobTitle,
		app.Company,
		app.DateApplied,
		app.Location,
		app.Salary,
		string(app.Status),
		app.Notes,
		nullString(app.JobURL),
		resumeID,
		resumeName,
		resumeURL,
		app.CreatedAt,
		app.UpdatedAt,
	)
	return err
}

// GetByID fetches one application.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Application, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+`
WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return app, nil
}

// Update writes every mutable column. user_id is not part of the statement.
func (r *PGRepo) Update(ctx context.Context, app Application) error {
	const query = `
UPDATE applications
SET job_title = $1,
    company = $2,
    date_applied = $3,
    location = $4,
    salary = $5,
    status = $6,
    notes = $7,
    job_url = $8,
    resume_id = $9,
    resume_name = $10,
    resume_url = $11,
    updated_at = $12
WHERE id = $13`

	resumeID, resumeName, resumeURL := resumeColumns(app.Resume)
	res, err := r.DB.ExecContext(
		ctx,
		query,
		app.JobTitle,
		app.Company,
		app.DateApplied,
		app.Location,
		app.Salary,
		string(app.Status),
		app.Notes,
		nullString(app.JobURL),
		resumeID,
		resumeName,
		resumeURL,
		app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes one application.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM applications WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListByUser lists a user's applications, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, selectColumns+`
WHERE user_id = $1
ORDER BY date_applied DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListAll lists every application, newest first.
func (r *PGRepo) ListAll(ctx context.Context) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, selectColumns+`
ORDER BY date_applied DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(s scanner) (Application, error) {
	var app Application
	var status string
	var jobURL, resumeID, resumeName, resumeURL sql.NullString
	if err := s.Scan(
		&app.ID,
		&app.UserID,
		&app.JobTitle,
		&app.Company,
		&app.DateApplied,
		&app.Location,
		&app.Salary,
		&status,
		&app.Notes,
		&jobURL,
		&resumeID,
		&resumeName,
		&resumeURL,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return Application{}, err
	}
	app.Status = Status(status)
	if jobURL.Valid {
		app.JobURL = jobURL.String
	}
	if resumeID.Valid && resumeID.String != "" {
		app.Resume = &ResumeRef{ID: resumeID.String, Name: resumeName.String, URL: resumeURL.String}
	}
	return app, nil
}

func collect(rows *sql.Rows) ([]Application, error) {
	defer rows.Close()
	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func resumeColumns(ref *ResumeRef) (sql.NullString, sql.NullString, sql.NullString) {
	if ref == nil || ref.ID == "" {
		return sql.NullString{}, sql.NullString{}, sql.NullString{}
	}
	return nullString(ref.ID), nullString(ref.Name), nullString(ref.URL)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
