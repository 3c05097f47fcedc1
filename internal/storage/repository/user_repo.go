package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// UserRepository handles database operations for user profiles.
type UserRepository interface {
	// Create inserts a new user. A taken display name returns storage.ErrConflict.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByDisplayName retrieves a user by display name, ignoring case. Returns nil if not found.
	GetByDisplayName(ctx context.Context, displayName string) (*models.User, error)

	// GetBySubjectHash retrieves a user by hashed identity subject. Returns nil if not found.
	GetBySubjectHash(ctx context.Context, subjectHash string) (*models.User, error)

	// UpdateDisplayName renames a user.
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

type userRepository struct {
	db Querier
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db Querier) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, display_name, subject_hash, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.DisplayName, user.SubjectHash, user.CreatedAt); err != nil {
		return wrap(err, "failed to create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *userRepository) GetByDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	return r.getOne(ctx, `WHERE display_name = ? COLLATE NOCASE`, displayName)
}

func (r *userRepository) GetBySubjectHash(ctx context.Context, subjectHash string) (*models.User, error) {
	return r.getOne(ctx, `WHERE subject_hash = ?`, subjectHash)
}

func (r *userRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET display_name = ? WHERE id = ?`, displayName, id)
	if err != nil {
		return wrap(err, "failed to update user %s", id)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `SELECT id, display_name, subject_hash, created_at FROM users ` + where

	user := &models.User{}
	var subjectHash sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.DisplayName, &subjectHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "failed to get user")
	}
	if subjectHash.Valid {
		user.SubjectHash = &subjectHash.String
	}
	return user, nil
}
