package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	createUser(ctx context.Context, user *User) error
	userExistsByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	getUserByID(ctx context.Context, id string) (*User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const selectUserColumns = `
	SELECT id, username, email, password_hash, two_factor_enabled, two_factor_secret, created_at, updated_at
	FROM users
`

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, two_factor_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.TwoFactorEnabled, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *userRepository) userExistsByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	return r.queryUser(ctx, selectUserColumns+` WHERE username = $1 OR email = $2 LIMIT 1`, username, email)
}

// getUserByLoginOrEmail matches the username exactly and the email case-insensitively.
func (r *userRepository) getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return r.queryUser(ctx, selectUserColumns+` WHERE username = $1 OR email = LOWER($1) LIMIT 1`, loginOrEmail)
}

func (r *userRepository) getUserByID(ctx context.Context, id string) (*User, error) {
	return r.queryUser(ctx, selectUserColumns+` WHERE id = $1`, id)
}

func (r *userRepository) queryUser(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var (
		user   User
		secret sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.TwoFactorEnabled, &secret, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	user.TwoFactorSecret = secret.String
	return &user, nil
}
