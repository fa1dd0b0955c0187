package user

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, password_hash, handle, created_at FROM users WHERE id = \\$1").
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "handle", "created_at"}).AddRow("a", "$2a$hash", "tourist", created))

	repo := NewPostgresRepository(db)
	u, err := repo.GetByID("a")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Handle != "tourist" || u.CreatedAt != "2024-03-01T00:00:00Z" {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("FROM users").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "handle", "created_at"}))

	if _, err := NewPostgresRepository(db).GetByID("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresCreateDuplicate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").WithArgs("a", "hash", "a").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := NewPostgresRepository(db).Create(User{ID: "a", Password: "hash", Handle: "a"}); !errors.Is(err, ErrIDExists) {
		t.Fatalf("expected ErrIDExists, got %v", err)
	}
}

func TestPostgresUpdateHandle(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("UPDATE users SET handle = \\$1 WHERE id = \\$2").WithArgs("new", "a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "handle", "created_at"}).AddRow("a", "h", "new", nil))

	u, err := NewPostgresRepository(db).UpdateHandle("a", "new")
	if err != nil {
		t.Fatalf("UpdateHandle: %v", err)
	}
	if u.Handle != "new" {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
