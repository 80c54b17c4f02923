package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// PrayerService manages prayer requests.
type PrayerService struct {
	prayerRepo repository.PrayerRepository
	logger     zerolog.Logger
}

// NewPrayerService creates a new PrayerService.
func NewPrayerService(prayerRepo repository.PrayerRepository, logger zerolog.Logger) *PrayerService {
	return &PrayerService{
		prayerRepo: prayerRepo,
		logger:     logger.With().Str("service", "prayer").Logger(),
	}
}

// CreatePrayerInput contains the data needed to record a prayer request.
type CreatePrayerInput struct {
	Title       string
	Description string
	Category    string
	Reminders   []string
}

// Create records a prayer request for the given user.
func (s *PrayerService) Create(ctx context.Context, userID string, input CreatePrayerInput) (*domain.Prayer, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	reminders := input.Reminders
	if reminders == nil {
		reminders = []string{}
	}

	prayer := &domain.Prayer{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Reminders:   reminders,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.prayerRepo.Create(ctx, prayer); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create prayer")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("prayer_id", prayer.ID).Str("user_id", userID).Msg("prayer created")
	return prayer, nil
}

// List returns all prayer requests owned by the user, newest first.
func (s *PrayerService) List(ctx context.Context, userID string) ([]*domain.Prayer, error) {
	prayers, err := s.prayerRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if prayers == nil {
		prayers = []*domain.Prayer{}
	}
	return prayers, nil
}

// UpdatePrayerInput contains a partial prayer update. Nil fields are
// left untouched.
type UpdatePrayerInput struct {
	Title       *string
	Description *string
	Category    *string
	IsAnswered  *bool
	Reminders   []string
}

// Update applies a partial update to a prayer owned by the user.
func (s *PrayerService) Update(ctx context.Context, userID, prayerID string, input UpdatePrayerInput) (*domain.Prayer, error) {
	prayer, err := s.prayerRepo.GetByID(ctx, prayerID)
	if err != nil {
		if errors.Is(err, domain.ErrPrayerNotFound) {
			return nil, ErrPrayerNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if prayer.UserID != userID {
		// Ownership is not disclosed.
		return nil, ErrPrayerNotFound
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		prayer.Title = *input.Title
	}
	if input.Description != nil {
		prayer.Description = *input.Description
	}
	if input.Category != nil {
		prayer.Category = *input.Category
	}
	if input.IsAnswered != nil {
		prayer.IsAnswered = *input.IsAnswered
	}
	if input.Reminders != nil {
		prayer.Reminders = input.Reminders
	}

	if err := s.prayerRepo.Update(ctx, prayer); err != nil {
		if errors.Is(err, domain.ErrPrayerNotFound) {
			return nil, ErrPrayerNotFound
		}
		s.logger.Error().Err(err).Str("prayer_id", prayerID).Msg("failed to update prayer")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return prayer, nil
}
