package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = `user_id, first_name, last_name, email, phone_number, password_hash, role, created_at, updated_at`

// UserPatch carries the optional fields of a partial user update.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// CreateUser inserts a user unless the email is already registered. The existence check
// and the insert share one transaction; a concurrent insert that wins the race still
// surfaces as ErrDuplicate through the unique index on email.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", user.Email); err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}

		query := `
			INSERT INTO users (first_name, last_name, email, phone_number, password_hash, role)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING user_id, created_at, updated_at`

		if err := tx.GetContext(ctx, user, query,
			user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.PasswordHash, user.Role); err != nil {
			return fmt.Errorf("insert user: %w", translate(err))
		}
		return nil
	})
}

// GetUserByEmail looks a user up by exact email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email); err != nil {
		return nil, fmt.Errorf("get user by email: %w", translate(err))
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE user_id = $1", id); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, translate(err))
	}
	return &user, nil
}

// ListUsers returns one page of users matching search and the total number of matches.
// An empty search matches everyone.
func (s *Store) ListUsers(ctx context.Context, search string, p Pagination) ([]models.User, int64, error) {
	pattern := "%" + search + "%"
	filter := ` WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1`

	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+filter, pattern); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users"+filter+" ORDER BY user_id LIMIT $2 OFFSET $3",
		pattern, p.Limit, p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser applies the non-nil fields of patch.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		UPDATE users SET
			first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			email = COALESCE($3, email),
			updated_at = NOW()
		WHERE user_id = $4
		RETURNING `+userColumns,
		patch.FirstName, patch.LastName, patch.Email, id)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, translate(err))
	}
	return &user, nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, translate(err))
	}
	return expectRow(res, fmt.Sprintf("delete user %d", id))
}
