package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"authsvc/internal/auth"
	"authsvc/internal/cache"
	"authsvc/internal/errors"
	"authsvc/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmailOrUsername(ctx context.Context, email string, username *string) (*model.User, error) {
	args := m.Called(ctx, email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestAuthService(repo *MockUserRepository) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", 0, 0)
	revocation := auth.NewMemoryRevocationStore()
	svc := NewAuthService(repo, jwtService, revocation, (*cache.Client)(nil), zerolog.Nop())
	return svc, jwtService
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register(t *testing.T) {
	username := "newuser"
	tests := []struct {
		name          string
		params        RegisterParams
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:   "successful registration",
			params: RegisterParams{Email: "test@example.com", Password: "password123", FullName: "Test User"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailOrUsername", mock.Anything, "test@example.com", (*string)(nil)).
					Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:   "email already exists",
			params: RegisterParams{Email: "existing@example.com", Password: "password123", FullName: "Existing"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailOrUsername", mock.Anything, "existing@example.com", (*string)(nil)).
					Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: errors.ErrEmailOrUsernameTaken,
		},
		{
			name:   "username already exists",
			params: RegisterParams{Username: &username, Email: "new@example.com", Password: "password123", FullName: "New"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailOrUsername", mock.Anything, "new@example.com", &username).
					Return(&model.User{Username: &username}, nil)
			},
			expectedError: errors.ErrEmailOrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc, _ := newTestAuthService(repo)

			user, err := svc.Register(context.Background(), tt.params)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.params.Email, user.Email)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.params.Password, user.PasswordHash)
				assert.True(t, user.IsActive)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	user := &model.User{
		ID:           uuid.New(),
		Email:        "a@b.com",
		PasswordHash: hashOf(t, "p1"),
	}

	t.Run("successful login issues decodable pair", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@b.com").Return(user, nil)
		repo.On("Update", mock.Anything, user).Return(nil)
		svc, jwtService := newTestAuthService(repo)

		pair, err := svc.Login(context.Background(), "a@b.com", "p1")

		assert.NoError(t, err)
		assert.Equal(t, "bearer", pair.TokenType)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
		assert.NotNil(t, user.LastLogin)

		claims, err := jwtService.Decode(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, "a@b.com", claims.Subject)
		assert.Equal(t, user.ID.String(), claims.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "nobody@b.com").Return(nil, gorm.ErrRecordNotFound)
		svc, _ := newTestAuthService(repo)

		pair, err := svc.Login(context.Background(), "nobody@b.com", "p1")

		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
		assert.Nil(t, pair)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@b.com").Return(user, nil)
		svc, _ := newTestAuthService(repo)

		pair, err := svc.Login(context.Background(), "a@b.com", "wrong")

		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
		assert.Nil(t, pair)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "a@b.com"}

	t.Run("reissues access and passes refresh token through", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, jwtService := newTestAuthService(repo)

		refreshToken, err := jwtService.IssueRefreshToken(user.ID.String(), user.Email, "")
		assert.NoError(t, err)

		pair, err := svc.Refresh(context.Background(), refreshToken)

		assert.NoError(t, err)
		assert.Equal(t, refreshToken, pair.RefreshToken)

		claims, err := jwtService.Decode(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, user.Email, claims.Subject)
		assert.Equal(t, user.ID.String(), claims.UserID)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)

		pair, err := svc.Refresh(context.Background(), "not-a-token")

		assert.ErrorIs(t, err, errors.ErrUnauthenticated)
		assert.Nil(t, pair)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "a@b.com"}

	t.Run("accepts valid token", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@b.com").Return(user, nil)
		svc, jwtService := newTestAuthService(repo)

		token, err := jwtService.IssueAccessToken(user.ID.String(), user.Email, "")
		assert.NoError(t, err)

		got, err := svc.Authenticate(context.Background(), token)
		assert.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("rejects revoked token before its natural expiry", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, jwtService := newTestAuthService(repo)

		token, err := jwtService.IssueAccessToken(user.ID.String(), user.Email, "")
		assert.NoError(t, err)
		assert.NoError(t, svc.Revoke(context.Background(), token))

		got, err := svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, errors.ErrTokenRevoked)
		assert.Nil(t, got)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("rejects token whose subject no longer resolves", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "gone@b.com").Return(nil, gorm.ErrRecordNotFound)
		svc, jwtService := newTestAuthService(repo)

		token, err := jwtService.IssueAccessToken(uuid.NewString(), "gone@b.com", "")
		assert.NoError(t, err)

		got, err := svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, errors.ErrUnauthenticated)
		assert.Nil(t, got)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)

		got, err := svc.Authenticate(context.Background(), "garbage")
		assert.ErrorIs(t, err, errors.ErrUnauthenticated)
		assert.Nil(t, got)
	})
}

func TestAuthService_EmailVerification(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "a@b.com"}

	t.Run("round trip marks email verified", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@b.com").Return(user, nil)
		repo.On("Update", mock.Anything, user).Return(nil)
		svc, _ := newTestAuthService(repo)

		token, err := svc.InitiateEmailVerification(context.Background(), user)
		assert.NoError(t, err)

		assert.NoError(t, svc.VerifyEmail(context.Background(), token))
		assert.True(t, user.EmailVerified)
		repo.AssertExpectations(t)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)

		err := svc.VerifyEmail(context.Background(), "garbage")
		assert.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("unknown subject", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "gone@b.com").Return(nil, gorm.ErrRecordNotFound)
		svc, jwtService := newTestAuthService(repo)

		token, err := jwtService.IssueScopedToken("gone@b.com", time.Minute)
		assert.NoError(t, err)

		assert.ErrorIs(t, svc.VerifyEmail(context.Background(), token), errors.ErrUserNotFound)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	t.Run("forgot password is silent for unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "nobody@b.com").Return(nil, gorm.ErrRecordNotFound)
		svc, _ := newTestAuthService(repo)

		token, err := svc.ForgotPassword(context.Background(), "nobody@b.com")
		assert.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("reset replaces the stored hash", func(t *testing.T) {
		user := &model.User{ID: uuid.New(), Email: "a@b.com", PasswordHash: hashOf(t, "old")}
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@b.com").Return(user, nil)
		repo.On("Update", mock.Anything, user).Return(nil)
		svc, _ := newTestAuthService(repo)

		token, err := svc.ForgotPassword(context.Background(), "a@b.com")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		assert.NoError(t, svc.ResetPassword(context.Background(), token, "brand-new"))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("brand-new")))
	})

	t.Run("reset rejects malformed token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)

		err := svc.ResetPassword(context.Background(), "garbage", "whatever")
		assert.ErrorIs(t, err, errors.ErrInvalidToken)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("wrong old password leaves the hash untouched", func(t *testing.T) {
		user := &model.User{ID: uuid.New(), Email: "a@b.com", PasswordHash: hashOf(t, "correct")}
		before := user.PasswordHash
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)

		err := svc.ChangePassword(context.Background(), user, "wrong", "new-password")

		assert.ErrorIs(t, err, errors.ErrWrongPassword)
		assert.Equal(t, before, user.PasswordHash)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("correct old password replaces the hash", func(t *testing.T) {
		user := &model.User{ID: uuid.New(), Email: "a@b.com", PasswordHash: hashOf(t, "correct")}
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, user).Return(nil)
		svc, _ := newTestAuthService(repo)

		assert.NoError(t, svc.ChangePassword(context.Background(), user, "correct", "new-password"))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password")))
		repo.AssertExpectations(t)
	})
}
