package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authsvc/internal/cache"
	"authsvc/internal/errors"
	"authsvc/internal/model"
	"authsvc/internal/repository"
)

// profileCacheTTL matches the cache window of the profile endpoint.
const profileCacheTTL = 300 * time.Second

func profileCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:profile:%s", id)
}

// ProfileUpdate carries the fields accepted on a partial profile update. Nil
// means "leave untouched".
type ProfileUpdate struct {
	Username      *string
	FullName      *string
	Age           *int
	Gender        *string
	LanguageLevel *string
}

// UserService exposes profile operations on the current user.
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error)
	UpdateEmail(ctx context.Context, user *model.User, newEmail string) (*model.User, error)
	Deactivate(ctx context.Context, user *model.User) error
	DeletePermanently(ctx context.Context, user *model.User) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cacheClient *cache.Client) UserService {
	return &userService{repo: repo, cache: cacheClient}
}

// GetProfile reads through the cache; the stored projection lives for 300s or
// until the next mutation, whichever comes first.
func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, profileCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, profileCacheKey(id), payload, profileCacheTTL)
	}
	return user, nil
}

// UpdateProfile applies only the supplied fields. A requested username that
// belongs to another user is a conflict.
func (s *userService) UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error) {
	if update.Username != nil && *update.Username != "" &&
		(user.Username == nil || *user.Username != *update.Username) {
		taken, err := s.repo.UsernameTaken(ctx, *update.Username, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, errors.ErrUsernameTaken
		}
	}

	if update.Username != nil {
		user.Username = update.Username
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Age != nil {
		user.Age = update.Age
	}
	if update.Gender != nil {
		user.Gender = update.Gender
	}
	if update.LanguageLevel != nil {
		user.LanguageLevel = update.LanguageLevel
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
	return user, nil
}

// UpdateEmail changes the address and drops the verified flag; an unchanged
// address is a no-op.
func (s *userService) UpdateEmail(ctx context.Context, user *model.User, newEmail string) (*model.User, error) {
	if user.Email == newEmail {
		return user, nil
	}

	user.Email = newEmail
	user.EmailVerified = false
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
	return user, nil
}

// Deactivate soft-deletes the account by clearing is_active.
func (s *userService) Deactivate(ctx context.Context, user *model.User) error {
	user.IsActive = false
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
	return nil
}

// DeletePermanently removes the record entirely.
func (s *userService) DeletePermanently(ctx context.Context, user *model.User) error {
	if err := s.repo.Delete(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
	return nil
}
