package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/logger"
)

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(id string) (*domain.User, error) {
	query := `
		SELECT id, username, full_name, balance, rank, referral_count,
			referred_by, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`

	var user domain.User
	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		logger.Error("Failed to get user by ID",
			logger.String("user_id", id),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(username string) (*domain.User, error) {
	query := `
		SELECT id, username, full_name, balance, rank, referral_count,
			referred_by, is_active, created_at, updated_at
		FROM users WHERE username = $1
	`

	var user domain.User
	err := r.db.Get(&user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		logger.Error("Failed to get user by username",
			logger.String("username", username),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
