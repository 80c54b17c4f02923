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

// VerseService manages memorization verses. All operations are scoped to
// the owning user; touching someone else's verse reads as not found.
type VerseService struct {
	verseRepo repository.VerseRepository
	logger    zerolog.Logger
}

// NewVerseService creates a new VerseService.
func NewVerseService(verseRepo repository.VerseRepository, logger zerolog.Logger) *VerseService {
	return &VerseService{
		verseRepo: verseRepo,
		logger:    logger.With().Str("service", "verse").Logger(),
	}
}

// CreateVerseInput contains the data needed to add a verse.
type CreateVerseInput struct {
	Reference string
	Content   string
}

// Create adds a verse for the given user.
func (s *VerseService) Create(ctx context.Context, userID string, input CreateVerseInput) (*domain.Verse, error) {
	if input.Reference == "" || input.Content == "" {
		return nil, fmt.Errorf("%w: reference and content are required", ErrInvalidInput)
	}

	verse := domain.NewVerse(uuid.NewString(), userID, input.Reference, input.Content)

	if err := s.verseRepo.Create(ctx, verse); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create verse")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("verse_id", verse.ID).Str("user_id", userID).Msg("verse created")
	return verse, nil
}

// List returns all verses owned by the user, newest first.
func (s *VerseService) List(ctx context.Context, userID string) ([]*domain.Verse, error) {
	verses, err := s.verseRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if verses == nil {
		verses = []*domain.Verse{}
	}
	return verses, nil
}

// UpdateVerseInput contains a partial verse update. Nil fields are left
// untouched.
type UpdateVerseInput struct {
	Reference    *string
	Content      *string
	Progress     *int
	LastReviewed *time.Time
}

// Update applies a partial update to a verse owned by the user.
func (s *VerseService) Update(ctx context.Context, userID, verseID string, input UpdateVerseInput) (*domain.Verse, error) {
	verse, err := s.verseRepo.GetByID(ctx, verseID)
	if err != nil {
		if errors.Is(err, domain.ErrVerseNotFound) {
			return nil, ErrVerseNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if verse.UserID != userID {
		// Ownership is not disclosed.
		return nil, ErrVerseNotFound
	}

	if input.Reference != nil {
		verse.Reference = *input.Reference
	}
	if input.Content != nil {
		verse.Content = *input.Content
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
		}
		verse.Progress = *input.Progress
	}
	if input.LastReviewed != nil {
		verse.LastReviewed = input.LastReviewed
	}

	if err := s.verseRepo.Update(ctx, verse); err != nil {
		if errors.Is(err, domain.ErrVerseNotFound) {
			return nil, ErrVerseNotFound
		}
		s.logger.Error().Err(err).Str("verse_id", verseID).Msg("failed to update verse")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return verse, nil
}
