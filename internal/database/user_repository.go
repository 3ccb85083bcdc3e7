package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, first_name, last_name, birth_date, email, password_hash, role, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser inserts a new account with the default user role
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, first_name, last_name, birth_date, email,
			password_hash, role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.BirthDate,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, normalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// EmailTakenByOther checks whether another user already owns the email
func (r *UserRepository) EmailTakenByOther(ctx context.Context, email string, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
	if err := r.db.GetContext(ctx, &exists, query, normalizeEmail(email), userID); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates the personal fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, birth_date = $4, email = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.BirthDate, user.Email, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// PromoteToAdmin grants the admin role to the account with the given email.
// It reports whether an account was found.
func (r *UserRepository) PromoteToAdmin(ctx context.Context, email string) (bool, error) {
	query := `UPDATE users SET role = 'admin', updated_at = NOW() WHERE email = $1`
	result, err := r.db.ExecContext(ctx, query, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("failed to promote admin: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
