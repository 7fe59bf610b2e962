package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var profileColumns = []string{
	"uid", "email", "is_admin", "is_active", "provider", "password_hash", "created_at", "last_login_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	p := Profile{UID: "u1", Email: "a@example.com", IsActive: true, Provider: ProviderGoogle, CreatedAt: now}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "a@example.com", false, true, ProviderGoogle, nil, now, nil, nil).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.Create(context.Background(), p); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByEmailIsCaseInsensitive(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("WHERE lower\\(email\\) = lower\\(\\$1\\)").
		WithArgs("A@Example.com").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("u1", "a@example.com", true, true, "password", "hash", now, now, nil))

	p, err := repo.GetByEmail(context.Background(), "A@Example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if !p.IsAdmin || p.PasswordHash != "hash" || !p.UpdatedAt.IsZero() {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("WHERE uid = \\$1").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateAndList(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE users").
		WithArgs("a@example.com", true, false, "password", nil, nil, now, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("u2", "b@example.com", false, true, "google", nil, now, nil, nil).
			AddRow("u1", "a@example.com", true, false, "password", nil, now.Add(-time.Hour), nil, now))

	err := repo.Update(context.Background(), Profile{
		UID: "u1", Email: "a@example.com", IsAdmin: true, Provider: "password", UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].UID != "u2" || list[1].IsActive {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
