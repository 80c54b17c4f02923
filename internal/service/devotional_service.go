package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// DevotionalService manages devotional entries.
type DevotionalService struct {
	devotionalRepo repository.DevotionalRepository
	logger         zerolog.Logger
}

// NewDevotionalService creates a new DevotionalService.
func NewDevotionalService(devotionalRepo repository.DevotionalRepository, logger zerolog.Logger) *DevotionalService {
	return &DevotionalService{
		devotionalRepo: devotionalRepo,
		logger:         logger.With().Str("service", "devotional").Logger(),
	}
}

// CreateDevotionalInput contains the data needed to write a devotional.
type CreateDevotionalInput struct {
	Title   string
	Content string
	Theme   string
	Date    time.Time
}

// Create records a devotional for the given user. A zero date defaults
// to now.
func (s *DevotionalService) Create(ctx context.Context, userID string, input CreateDevotionalInput) (*domain.Devotional, error) {
	if input.Title == "" || input.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	now := time.Now().UTC()
	devotional := &domain.Devotional{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		Theme:     input.Theme,
		Date:      date,
		CreatedAt: now,
	}

	if err := s.devotionalRepo.Create(ctx, devotional); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create devotional")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("devotional_id", devotional.ID).Str("user_id", userID).Msg("devotional created")
	return devotional, nil
}

// List returns all devotionals written by the user, most recent date
// first.
func (s *DevotionalService) List(ctx context.Context, userID string) ([]*domain.Devotional, error) {
	devotionals, err := s.devotionalRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if devotionals == nil {
		devotionals = []*domain.Devotional{}
	}
	return devotionals, nil
}
