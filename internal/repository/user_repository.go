package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"focusflow/internal/db"
	"focusflow/internal/model"
)

const userColumns = `id, email, password_hash, created_at, updated_at`

// UserRepository stores sync accounts. Emails are stored normalized; the
// caller lowercases them before every lookup.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash,
		db.FormatTime(user.CreatedAt), db.FormatTime(user.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

// findOne loads the single user whose column equals value. column is always
// a constant chosen by this package.
func (r *UserRepository) findOne(ctx context.Context, column, value string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`
	var (
		user                 model.User
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}

	if user.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("user %s created_at: %w", user.ID, err)
	}
	if user.UpdatedAt, err = db.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("user %s updated_at: %w", user.ID, err)
	}
	return &user, nil
}
