package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"authsvc/internal/cache"
	"authsvc/internal/errors"
	"authsvc/internal/model"
	"authsvc/internal/repository"
)

// defaultExamDuration is used when a start request does not name one.
const defaultExamDuration = 3600

// ExamWindow is the externally visible state of a user's exam timer.
type ExamWindow struct {
	TimeStart        *time.Time `json:"time_start"`
	Duration         *int       `json:"duration"`
	TimeEnd          *time.Time `json:"time_end"`
	RemainingSeconds int        `json:"remaining_seconds"`
	IsActive         bool       `json:"is_active"`
}

// ExamService tracks a bounded per-user time window stored on the user record.
type ExamService interface {
	Start(ctx context.Context, user *model.User, durationSeconds int) (*ExamWindow, error)
	Status(user *model.User) *ExamWindow
	End(ctx context.Context, user *model.User) (*ExamWindow, error)
	Reset(ctx context.Context, user *model.User) (*ExamWindow, error)
}

type examService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewExamService builds an ExamService with repository and cache.
func NewExamService(repo repository.UserRepository, cacheClient *cache.Client) ExamService {
	return &examService{repo: repo, cache: cacheClient}
}

// Start opens a new window, or returns the running one unchanged. Starting
// while a window is active is a no-op, not an extension.
func (s *examService) Start(ctx context.Context, user *model.User, durationSeconds int) (*ExamWindow, error) {
	if w := s.Status(user); w.IsActive {
		return w, nil
	}

	if durationSeconds <= 0 {
		durationSeconds = defaultExamDuration
	}

	now := time.Now().UTC()
	end := now.Add(time.Duration(durationSeconds) * time.Second)
	user.TimeStart = &now
	user.Duration = &durationSeconds
	user.TimeEnd = &end

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.invalidate(ctx, user)

	return &ExamWindow{
		TimeStart:        user.TimeStart,
		Duration:         user.Duration,
		TimeEnd:          user.TimeEnd,
		RemainingSeconds: durationSeconds,
		IsActive:         true,
	}, nil
}

// Status reports the current window. A past window is returned with its
// stored endpoints but zero remaining time.
func (s *examService) Status(user *model.User) *ExamWindow {
	w := &ExamWindow{
		TimeStart: user.TimeStart,
		Duration:  user.Duration,
		TimeEnd:   user.TimeEnd,
	}

	if user.TimeStart != nil && user.TimeEnd != nil {
		if remaining := time.Until(*user.TimeEnd); remaining > 0 {
			w.RemainingSeconds = int(math.Ceil(remaining.Seconds()))
			w.IsActive = true
		}
	}
	return w
}

// End terminates a running window early by moving time_end to now. Ending a
// window that already ran out returns the ended state unchanged; ending a
// window that was never started is an error.
func (s *examService) End(ctx context.Context, user *model.User) (*ExamWindow, error) {
	if user.TimeStart == nil || user.TimeEnd == nil {
		return nil, errors.ErrNoExamRunning
	}

	now := time.Now().UTC()
	if !now.Before(*user.TimeEnd) {
		return s.Status(user), nil
	}

	user.TimeEnd = &now
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.invalidate(ctx, user)

	return &ExamWindow{
		TimeStart: user.TimeStart,
		Duration:  user.Duration,
		TimeEnd:   user.TimeEnd,
	}, nil
}

// Reset clears the window endpoints unconditionally; the stored duration is
// left as-is for the next start.
func (s *examService) Reset(ctx context.Context, user *model.User) (*ExamWindow, error) {
	user.TimeStart = nil
	user.TimeEnd = nil

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.invalidate(ctx, user)

	return &ExamWindow{Duration: user.Duration}, nil
}

func (s *examService) invalidate(ctx context.Context, user *model.User) {
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
}
