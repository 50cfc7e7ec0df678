package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLUserRepository stores the local user records behind OIDC identities.
type SQLUserRepository struct {
	db *sqlx.DB
}

// NewSQLUserRepository creates a new SQLUserRepository.
func NewSQLUserRepository(db *sqlx.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// GetByUsername finds a user by username.
func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE username = ?", username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// GetBySubject finds the user signed in through the given OIDC subject.
func (r *SQLUserRepository) GetBySubject(ctx context.Context, subject string) (*User, error) {
	var user User
	if err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE oidc_subject = ?", subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with subject %q: %w", subject, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by subject: %w", err)
	}
	return &user, nil
}

// GetByID finds a user by ID.
func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a user and returns its ID.
func (r *SQLUserRepository) Create(ctx context.Context, user *User) (int64, error) {
	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (username, first_name, last_name, email, created_at, oidc_subject)
		VALUES (:username, :first_name, :last_name, :email, :created_at, :oidc_subject)`, user)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("user %q: %w", user.Username, ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

// UpdateProfile saves the editable profile fields.
func (r *SQLUserRepository) UpdateProfile(ctx context.Context, user *User) error {
	_, err := r.db.NamedExecContext(ctx,
		`UPDATE users SET first_name = :first_name, last_name = :last_name, email = :email WHERE id = :id`, user)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}
