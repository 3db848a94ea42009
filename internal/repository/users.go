package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dan9191/task-service/internal/models"
)

// UsernameExists reports whether a user with this exact username exists
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM users WHERE username = ?`
	if err := r.db.QueryRowContext(ctx, r.rebind(query), username).Scan(&n); err != nil {
		return false, storeErr("check username", err)
	}
	return n > 0, nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.rebind(query), user.ID, user.Username, user.PasswordHash)
	if isUniqueViolation(err) {
		return models.ErrDuplicateUsername
	}
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, password_hash
		FROM users
		WHERE username = ?`
	err := r.db.QueryRowContext(ctx, r.rebind(query), username).
		Scan(&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return user, nil
}
