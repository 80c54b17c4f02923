package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
)

// MockVerseRepository is a mock implementation of repository.VerseRepository.
type MockVerseRepository struct {
	verses map[string]*domain.Verse
}

func NewMockVerseRepository() *MockVerseRepository {
	return &MockVerseRepository{verses: make(map[string]*domain.Verse)}
}

func (m *MockVerseRepository) Create(ctx context.Context, verse *domain.Verse) error {
	m.verses[verse.ID] = verse
	return nil
}

func (m *MockVerseRepository) GetByID(ctx context.Context, id string) (*domain.Verse, error) {
	if verse, exists := m.verses[id]; exists {
		return verse, nil
	}
	return nil, domain.ErrVerseNotFound
}

func (m *MockVerseRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Verse, error) {
	var result []*domain.Verse
	for _, verse := range m.verses {
		if verse.UserID == userID {
			result = append(result, verse)
		}
	}
	return result, nil
}

func (m *MockVerseRepository) Update(ctx context.Context, verse *domain.Verse) error {
	if _, exists := m.verses[verse.ID]; !exists {
		return domain.ErrVerseNotFound
	}
	m.verses[verse.ID] = verse
	return nil
}

// MockPrayerRepository is a mock implementation of repository.PrayerRepository.
type MockPrayerRepository struct {
	prayers map[string]*domain.Prayer
}

func NewMockPrayerRepository() *MockPrayerRepository {
	return &MockPrayerRepository{prayers: make(map[string]*domain.Prayer)}
}

func (m *MockPrayerRepository) Create(ctx context.Context, prayer *domain.Prayer) error {
	m.prayers[prayer.ID] = prayer
	return nil
}

func (m *MockPrayerRepository) GetByID(ctx context.Context, id string) (*domain.Prayer, error) {
	if prayer, exists := m.prayers[id]; exists {
		return prayer, nil
	}
	return nil, domain.ErrPrayerNotFound
}

func (m *MockPrayerRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Prayer, error) {
	var result []*domain.Prayer
	for _, prayer := range m.prayers {
		if prayer.UserID == userID {
			result = append(result, prayer)
		}
	}
	return result, nil
}

func (m *MockPrayerRepository) Update(ctx context.Context, prayer *domain.Prayer) error {
	if _, exists := m.prayers[prayer.ID]; !exists {
		return domain.ErrPrayerNotFound
	}
	m.prayers[prayer.ID] = prayer
	return nil
}

// =============================================================================
// Tests
// =============================================================================

func TestVerseService_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateVerseInput
		wantErr error
	}{
		{
			name:    "success",
			input:   CreateVerseInput{Reference: "John 3:16", Content: "For God so loved the world..."},
			wantErr: nil,
		},
		{
			name:    "missing reference",
			input:   CreateVerseInput{Content: "text"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing content",
			input:   CreateVerseInput{Reference: "John 3:16"},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockVerseRepository()
			svc := NewVerseService(repo, zerolog.Nop())

			verse, err := svc.Create(context.Background(), "u1", tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verse.UserID != "u1" {
				t.Errorf("expected owner u1, got %s", verse.UserID)
			}
			if verse.Progress != 0 {
				t.Errorf("new verse should start at progress 0, got %d", verse.Progress)
			}
			if verse.LastReviewed != nil {
				t.Error("new verse should have no review timestamp")
			}
		})
	}
}

func TestVerseService_Update(t *testing.T) {
	repo := NewMockVerseRepository()
	svc := NewVerseService(repo, zerolog.Nop())

	verse, err := svc.Create(context.Background(), "u1", CreateVerseInput{
		Reference: "Psalm 23:1",
		Content:   "The Lord is my shepherd",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("progress and review", func(t *testing.T) {
		progress := 60
		reviewed := time.Now().UTC()

		updated, err := svc.Update(context.Background(), "u1", verse.ID, UpdateVerseInput{
			Progress:     &progress,
			LastReviewed: &reviewed,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Progress != 60 {
			t.Errorf("expected progress 60, got %d", updated.Progress)
		}
		if updated.LastReviewed == nil {
			t.Error("expected review timestamp")
		}
		if updated.Reference != "Psalm 23:1" {
			t.Error("untouched fields must survive")
		}
	})

	t.Run("progress out of range", func(t *testing.T) {
		progress := 101
		_, err := svc.Update(context.Background(), "u1", verse.ID, UpdateVerseInput{Progress: &progress})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("other user's verse reads as not found", func(t *testing.T) {
		progress := 10
		_, err := svc.Update(context.Background(), "u2", verse.ID, UpdateVerseInput{Progress: &progress})
		if !errors.Is(err, ErrVerseNotFound) {
			t.Errorf("expected ErrVerseNotFound, got %v", err)
		}
	})

	t.Run("unknown verse", func(t *testing.T) {
		progress := 10
		_, err := svc.Update(context.Background(), "u1", "missing", UpdateVerseInput{Progress: &progress})
		if !errors.Is(err, ErrVerseNotFound) {
			t.Errorf("expected ErrVerseNotFound, got %v", err)
		}
	})
}

func TestVerseService_ListScopedToOwner(t *testing.T) {
	repo := NewMockVerseRepository()
	svc := NewVerseService(repo, zerolog.Nop())

	for _, owner := range []string{"u1", "u1", "u2"} {
		if _, err := svc.Create(context.Background(), owner, CreateVerseInput{
			Reference: "Gen 1:1",
			Content:   "In the beginning",
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	verses, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verses) != 2 {
		t.Errorf("expected 2 verses for u1, got %d", len(verses))
	}

	empty, err := svc.List(context.Background(), "u3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}
}

func TestPrayerService_CreateAndUpdate(t *testing.T) {
	repo := NewMockPrayerRepository()
	svc := NewPrayerService(repo, zerolog.Nop())

	prayer, err := svc.Create(context.Background(), "u1", CreatePrayerInput{
		Title:     "health",
		Category:  "family",
		Reminders: []string{"07:00", "21:30"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prayer.IsAnswered {
		t.Error("new prayer should not be answered")
	}
	if len(prayer.Reminders) != 2 {
		t.Errorf("expected 2 reminders, got %d", len(prayer.Reminders))
	}

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "u1", CreatePrayerInput{})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("mark answered", func(t *testing.T) {
		answered := true
		updated, err := svc.Update(context.Background(), "u1", prayer.ID, UpdatePrayerInput{IsAnswered: &answered})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.IsAnswered {
			t.Error("expected prayer marked answered")
		}
	})

	t.Run("other user's prayer reads as not found", func(t *testing.T) {
		answered := true
		_, err := svc.Update(context.Background(), "u2", prayer.ID, UpdatePrayerInput{IsAnswered: &answered})
		if !errors.Is(err, ErrPrayerNotFound) {
			t.Errorf("expected ErrPrayerNotFound, got %v", err)
		}
	})
}
