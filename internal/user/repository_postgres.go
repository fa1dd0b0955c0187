package user

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT id, password_hash, handle, created_at
		FROM users
		WHERE id = $1
	`
	insertUserQuery = `
		INSERT INTO users (id, password_hash, handle)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	updateHandleQuery = `
		UPDATE users
		SET handle = $1
		WHERE id = $2
		RETURNING id, password_hash, handle, created_at
	`
)

const uniqueViolation = "23505"

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id string) (User, error) {
	user, err := scanUser(r.db.QueryRow(getUserByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(user User) (User, error) {
	var createdAt time.Time
	err := r.db.QueryRow(insertUserQuery, user.ID, user.Password, user.Handle).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrIDExists
		}
		return User{}, err
	}

	user.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return user, nil
}

func (r *PostgresRepository) UpdateHandle(id, handle string) (User, error) {
	user, err := scanUser(r.db.QueryRow(updateHandleQuery, handle, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var handle sql.NullString
	var createdAt sql.NullTime

	if err := scanner.Scan(&user.ID, &user.Password, &handle, &createdAt); err != nil {
		return User{}, err
	}

	if handle.Valid {
		user.Handle = handle.String
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
	}
	return user, nil
}
