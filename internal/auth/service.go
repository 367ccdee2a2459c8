package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/FinanceTracker/internal/logging"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInternalError         = errors.New("internal Server Error")
	ErrUser2FANotEnabled     = errors.New("two factor auth is not enabled")
	ErrUser2FAAlreadyEnabled = errors.New("2fa auth already enabled")
	ErrInvalid2FACode        = errors.New("2fa code is invalid")
)

// LoginResult carries either an access token or, when the account uses a
// second factor, a session token for the verify step.
type LoginResult struct {
	User              *user.User
	Token             string
	SessionToken      string
	TwoFactorRequired bool
}

type Service interface {
	Login(ctx context.Context, loginOrEmail, password string) (*LoginResult, error)
	VerifyToken(tokenString string) (*AccessTokenCustomClaims, error)
	VerifyTwoFactor(ctx context.Context, sessionToken, code string) (*LoginResult, error)
	SetupTwoFactor(ctx context.Context, userID string) (string, error)
	EnableTwoFactor(ctx context.Context, userID, code string) error
	DisableTwoFactor(ctx context.Context, userID, code string) error
	GetUser(ctx context.Context, userID string) (*user.User, error)
	TokenTTL() int
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	repo           TwoFactorRepository
	userService    user.Service
	sessionManager SessionManagerInterface
	jwtManager     JWTManagerInterface
	authenticator  TwoFactorAuthenticator
	logger         *slog.Logger
}

func NewAuthService(repo TwoFactorRepository, userService user.Service, sessionManager SessionManagerInterface, jwtManager JWTManagerInterface, authenticator TwoFactorAuthenticator, logger *slog.Logger) Service {
	return &service{
		repo:           repo,
		userService:    userService,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		authenticator:  authenticator,
		logger:         logging.WithComponent(logger, logging.ComponentAuth),
	}
}

// TokenTTL is the access token lifetime in seconds, used as the cookie Max-Age.
func (s *service) TokenTTL() int {
	return int(s.jwtManager.TTL().Seconds())
}

func (s *service) Login(ctx context.Context, loginOrEmail, password string) (*LoginResult, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("loading user for login failed", "error", err)
		return nil, ErrInternalError
	}

	if !doPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if existingUser.TwoFactorEnabled {
		sessionToken, err := s.sessionManager.GenerateSessionToken(existingUser.ID)
		if err != nil {
			return nil, ErrInternalError
		}
		return &LoginResult{User: existingUser, SessionToken: sessionToken, TwoFactorRequired: true}, nil
	}

	return s.issueToken(existingUser)
}

func (s *service) issueToken(u *user.User) (*LoginResult, error) {
	jwtToken, err := s.jwtManager.GenerateAccessJWT(u)
	if err != nil {
		s.logger.Error("JWT generation failed", "error", err)
		return nil, ErrInternalError
	}
	return &LoginResult{User: u, Token: jwtToken}, nil
}

func (s *service) VerifyToken(tokenString string) (*AccessTokenCustomClaims, error) {
	return s.jwtManager.ValidateAccessToken(tokenString)
}

func (s *service) GetUser(ctx context.Context, userID string) (*user.User, error) {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("loading user failed", "error", err)
		return nil, ErrInternalError
	}
	return existingUser, nil
}

func (s *service) VerifyTwoFactor(ctx context.Context, sessionToken, code string) (*LoginResult, error) {
	userID, err := s.sessionManager.VerifySessionToken(sessionToken)
	if err != nil {
		return nil, err
	}
	existingUser, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !existingUser.TwoFactorEnabled {
		return nil, ErrUser2FANotEnabled
	}

	if err := s.checkCode(ctx, userID, code); err != nil {
		return nil, err
	}

	s.sessionManager.DeleteSessionToken(sessionToken)
	return s.issueToken(existingUser)
}

// SetupTwoFactor stores a fresh TOTP secret and returns its otpauth URI.
// The second factor is not active until EnableTwoFactor confirms a code.
func (s *service) SetupTwoFactor(ctx context.Context, userID string) (string, error) {
	existingUser, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if existingUser.TwoFactorEnabled {
		return "", ErrUser2FAAlreadyEnabled
	}

	otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Email)
	if err != nil {
		s.logger.Error("TOTP secret generation failed", "error", err)
		return "", ErrInternalError
	}
	if err := s.repo.SaveTwoFactorSecret(ctx, userID, secret); err != nil {
		s.logger.Error("saving TOTP secret failed", "error", err)
		return "", ErrInternalError
	}
	return otpURI, nil
}

func (s *service) EnableTwoFactor(ctx context.Context, userID, code string) error {
	existingUser, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}

	if err := s.checkCode(ctx, userID, code); err != nil {
		return err
	}

	if err := s.repo.EnableTwoFactor(ctx, userID); err != nil {
		s.logger.Error("enabling 2FA failed", "error", err)
		return ErrInternalError
	}
	return nil
}

func (s *service) DisableTwoFactor(ctx context.Context, userID, code string) error {
	existingUser, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}

	if err := s.checkCode(ctx, userID, code); err != nil {
		return err
	}

	if err := s.repo.DisableTwoFactor(ctx, userID); err != nil {
		s.logger.Error("disabling 2FA failed", "error", err)
		return ErrInternalError
	}
	return nil
}

func (s *service) checkCode(ctx context.Context, userID, code string) error {
	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrTwoFactorNotSetUp) {
			return err
		}
		s.logger.Error("reading TOTP secret failed", "error", err)
		return ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}
	return nil
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hashedPassword), []byte(currPassword))
	return err == nil
}
