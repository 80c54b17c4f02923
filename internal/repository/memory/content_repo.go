package memory

import (
	"context"
	"sort"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

type verseRepository struct {
	store *Store
}

func (r *verseRepository) Create(ctx context.Context, verse *domain.Verse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *verse
	r.store.verses[verse.ID] = &clone
	return nil
}

func (r *verseRepository) GetByID(ctx context.Context, id string) (*domain.Verse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	verse, ok := r.store.verses[id]
	if !ok {
		return nil, domain.ErrVerseNotFound
	}
	clone := *verse
	return &clone, nil
}

func (r *verseRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Verse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var verses []*domain.Verse
	for _, verse := range r.store.verses {
		if verse.UserID == userID {
			clone := *verse
			verses = append(verses, &clone)
		}
	}
	sort.Slice(verses, func(i, j int) bool {
		return verses[i].CreatedAt.After(verses[j].CreatedAt)
	})
	return verses, nil
}

func (r *verseRepository) Update(ctx context.Context, verse *domain.Verse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.verses[verse.ID]; !ok {
		return domain.ErrVerseNotFound
	}
	clone := *verse
	r.store.verses[verse.ID] = &clone
	return nil
}

var _ repository.VerseRepository = (*verseRepository)(nil)

type devotionalRepository struct {
	store *Store
}

func (r *devotionalRepository) Create(ctx context.Context, devotional *domain.Devotional) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *devotional
	r.store.devotionals[devotional.ID] = &clone
	return nil
}

func (r *devotionalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Devotional, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var devotionals []*domain.Devotional
	for _, devotional := range r.store.devotionals {
		if devotional.UserID == userID {
			clone := *devotional
			devotionals = append(devotionals, &clone)
		}
	}
	sort.Slice(devotionals, func(i, j int) bool {
		return devotionals[i].Date.After(devotionals[j].Date)
	})
	return devotionals, nil
}

var _ repository.DevotionalRepository = (*devotionalRepository)(nil)

type prayerRepository struct {
	store *Store
}

func (r *prayerRepository) Create(ctx context.Context, prayer *domain.Prayer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *prayer
	clone.Reminders = append([]string(nil), prayer.Reminders...)
	r.store.prayers[prayer.ID] = &clone
	return nil
}

func (r *prayerRepository) GetByID(ctx context.Context, id string) (*domain.Prayer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	prayer, ok := r.store.prayers[id]
	if !ok {
		return nil, domain.ErrPrayerNotFound
	}
	clone := *prayer
	clone.Reminders = append([]string(nil), prayer.Reminders...)
	return &clone, nil
}

func (r *prayerRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Prayer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var prayers []*domain.Prayer
	for _, prayer := range r.store.prayers {
		if prayer.UserID == userID {
			clone := *prayer
			clone.Reminders = append([]string(nil), prayer.Reminders...)
			prayers = append(prayers, &clone)
		}
	}
	sort.Slice(prayers, func(i, j int) bool {
		return prayers[i].CreatedAt.After(prayers[j].CreatedAt)
	})
	return prayers, nil
}

func (r *prayerRepository) Update(ctx context.Context, prayer *domain.Prayer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.prayers[prayer.ID]; !ok {
		return domain.ErrPrayerNotFound
	}
	clone := *prayer
	clone.Reminders = append([]string(nil), prayer.Reminders...)
	r.store.prayers[prayer.ID] = &clone
	return nil
}

var _ repository.PrayerRepository = (*prayerRepository)(nil)
