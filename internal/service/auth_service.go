package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"authsvc/internal/auth"
	"authsvc/internal/cache"
	"authsvc/internal/errors"
	"authsvc/internal/model"
	"authsvc/internal/repository"
)

const bcryptCost = 10

const (
	// verificationTokenTTL bounds email verification tokens.
	verificationTokenTTL = 30 * time.Minute
	// resetTokenTTL bounds password reset tokens.
	resetTokenTTL = 15 * time.Minute
)

// TokenPair is the credential pair returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RegisterParams carries the fields accepted at registration.
type RegisterParams struct {
	Username *string
	Email    string
	Password string
	FullName string
}

// AuthService orchestrates the credential lifecycle: registration, login,
// token refresh, revocation, email verification and password recovery.
type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Revoke(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.User, error)
	InitiateEmailVerification(ctx context.Context, user *model.User) (string, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	revocation auth.RevocationStore
	cache      *cache.Client
	logger     zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	revocation auth.RevocationStore,
	cacheClient *cache.Client,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		revocation: revocation,
		cache:      cacheClient,
		logger:     logger,
	}
}

// Register creates a new user with a bcrypt-hashed password. Fails when the
// email or the requested username is already taken.
func (s *authService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	existing, err := s.userRepo.FindByEmailOrUsername(ctx, params.Email, params.Username)
	if err == nil && existing != nil {
		s.logger.Warn().Str("email", params.Email).Msg("registration with existing email or username")
		return nil, errors.ErrEmailOrUsernameTaken
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     params.Username,
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Msg("registered new user")
	return user, nil
}

// Login verifies credentials, records last_login and issues an access/refresh
// token pair.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn().Str("email", email).Msg("failed login attempt")
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("email", email).Msg("failed login attempt")
		return nil, errors.ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.IssueAccessToken(user.ID.String(), user.Email, usernameOrEmpty(user))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.jwtService.IssueRefreshToken(user.ID.String(), user.Email, usernameOrEmpty(user))
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	s.invalidateProfile(ctx, user)

	s.logger.Info().Str("email", email).Msg("successful login")
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is passed through unchanged; there is no rotation, so a leaked
// refresh token stays valid until its natural expiry.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.Decode(refreshToken)
	if err != nil {
		return nil, errors.ErrUnauthenticated
	}

	accessToken, err := s.jwtService.IssueAccessToken(claims.UserID, claims.Subject, claims.Username)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Revoke puts the presented token string on the deny-list for its remaining
// natural lifetime. Logout and explicit revocation are the same operation.
func (s *authService) Revoke(ctx context.Context, token string) error {
	return s.revocation.Revoke(ctx, token, s.jwtService.RemainingLifetime(token))
}

// Authenticate is the guard in front of every protected operation: the token
// must not be revoked, must decode, and its subject must still resolve to a
// stored user.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	revoked, err := s.revocation.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, errors.ErrTokenRevoked
	}

	claims, err := s.jwtService.Decode(token)
	if err != nil {
		return nil, errors.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, errors.ErrUnauthenticated
	}
	return user, nil
}

// InitiateEmailVerification issues a short-lived verification token bound to
// the user's email. Delivery is out of band.
func (s *authService) InitiateEmailVerification(ctx context.Context, user *model.User) (string, error) {
	return s.jwtService.IssueScopedToken(user.Email, verificationTokenTTL)
}

// VerifyEmail marks the token's subject as verified.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.jwtService.Decode(token)
	if err != nil {
		return errors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	user.EmailVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.invalidateProfile(ctx, user)
	return nil
}

// ForgotPassword issues a reset token when the email is known. The empty
// return for unknown emails lets the handler answer uniformly either way, so
// the endpoint cannot be used to enumerate accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil
	}
	return s.jwtService.IssueScopedToken(user.Email, resetTokenTTL)
}

// ResetPassword replaces the password hash of the reset token's subject.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwtService.Decode(token)
	if err != nil {
		return errors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.logger.Info().Str("email", user.Email).Msg("password reset")
	return nil
}

// ChangePassword replaces the hash after verifying the old password. The
// stored hash is never touched when the old password does not verify.
func (s *authService) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return errors.ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.logger.Info().Str("email", user.Email).Msg("password changed")
	return nil
}

func (s *authService) invalidateProfile(ctx context.Context, user *model.User) {
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
}

func usernameOrEmpty(user *model.User) string {
	if user.Username != nil {
		return *user.Username
	}
	return ""
}
