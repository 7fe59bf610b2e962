package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. Tags are stored as a JSON array.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT id, user_id, file_name, display_name, file_url, storage_key, file_size, file_type,
       page_count, tags, is_default, upload_date
FROM resumes`

func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    file_name,
    display_name,
    file_url,
    storage_key,
    file_size,
    file_type,
    page_count,
    tags,
    is_default,
    upload_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	tags, err := encodeTags(res.Tags)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.FileName,
		res.DisplayName,
		res.FileURL,
		res.StorageKey,
		res.FileSize,
		res.FileType,
		res.PageCount,
		tags,
		res.IsDefault,
		res.UploadDate,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Resume, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+`
WHERE id = $1`, id)
	res, err := scanResume(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// Update writes the mutable metadata.
func (r *PGRepo) Update(ctx context.Context, res Resume) error {
	const query = `
UPDATE resumes
SET display_name = $1,
    tags = $2,
    is_default = $3
WHERE id = $4`
	tags, err := encodeTags(res.Tags)
	if err != nil {
		return err
	}
	result, err := r.DB.ExecContext(ctx, query, res.DisplayName, tags, res.IsDefault, res.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	rows, err := r.DB.QueryContext(ctx, selectColumns+`
WHERE user_id = $1
ORDER BY upload_date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PGRepo) ClearDefault(ctx context.Context, userID string) error {
	const query = `UPDATE resumes SET is_default = FALSE WHERE user_id = $1 AND is_default`
	_, err := r.DB.ExecContext(ctx, query, userID)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResume(s scanner) (Resume, error) {
	var res Resume
	var tags string
	if err := s.Scan(
		&res.ID,
		&res.UserID,
		&res.FileName,
		&res.DisplayName,
		&res.FileURL,
		&res.StorageKey,
		&res.FileSize,
		&res.FileType,
		&res.PageCount,
		&tags,
		&res.IsDefault,
		&res.UploadDate,
	); err != nil {
		return Resume{}, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &res.Tags); err != nil {
			return Resume{}, fmt.Errorf("decode tags for resume %s: %w", res.ID, err)
		}
	}
	return res, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
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

var _ Repo = (*PGRepo)(nil)
