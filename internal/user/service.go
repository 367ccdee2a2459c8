package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	database "github.com/sebuszqo/FinanceTracker/internal/db"
	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

const (
	maxEmailLength    = 255
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

// bcryptCost is lowered by tests.
var bcryptCost = 12

var (
	ErrMissingFields         = errors.New("username, email and password are required")
	ErrInvalidEmail          = errors.New("email address is not valid")
	ErrUsernameLength        = fmt.Errorf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	ErrPasswordLength        = fmt.Errorf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInternalError         = errors.New("internal Server Error")
)

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	TwoFactorSecret  string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Service interface {
	Register(ctx context.Context, username, email, password string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewUserService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logging.WithComponent(logger, logging.ComponentUser),
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

// IsValidationError reports whether err is caused by bad registration input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrUsernameLength) ||
		errors.Is(err, ErrPasswordLength)
}

func validateEmailAddress(email string) error {
	if len(email) > maxEmailLength {
		return ErrInvalidEmail
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func validateRegistration(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return ErrMissingFields
	}
	if n := len([]rune(username)); n < minUsernameLength || n > maxUsernameLength {
		return ErrUsernameLength
	}
	if err := validateEmailAddress(email); err != nil {
		return err
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

func (s *service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	existingUser, err := s.repo.userExistsByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.logger.Error("checking existing user failed", "error", err)
		return nil, ErrInternalError
	}
	if existingUser != nil {
		return nil, conflictFor(existingUser, username)
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("hashing password failed", "error", err)
		return nil, ErrInternalError
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.createUser(ctx, user); err != nil {
		// A concurrent registration can win the race past the pre-check.
		if database.IsUniqueViolation(err) {
			if existingUser, lookupErr := s.repo.userExistsByUsernameOrEmail(ctx, username, email); lookupErr == nil {
				return nil, conflictFor(existingUser, username)
			}
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("creating user failed", "error", err)
		return nil, ErrInternalError
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func conflictFor(existingUser *User, username string) error {
	if existingUser.Username == username {
		return ErrUsernameAlreadyExists
	}
	return ErrEmailAlreadyExists
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.getUserByID(ctx, userID)
}

func (s *service) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return s.repo.getUserByLoginOrEmail(ctx, strings.TrimSpace(loginOrEmail))
}
