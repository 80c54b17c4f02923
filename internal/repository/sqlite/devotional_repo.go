package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// devotionalRepository implements repository.DevotionalRepository for SQLite.
type devotionalRepository struct {
	db *DB
}

// NewDevotionalRepository creates a new SQLite devotional repository.
func NewDevotionalRepository(db *DB) repository.DevotionalRepository {
	return &devotionalRepository{db: db}
}

// Create creates a new devotional.
func (r *devotionalRepository) Create(ctx context.Context, devotional *domain.Devotional) error {
	query := `
		INSERT INTO devotionals (id, user_id, title, content, theme, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		devotional.ID,
		devotional.UserID,
		devotional.Title,
		devotional.Content,
		devotional.Theme,
		devotional.Date.Format(time.RFC3339),
		devotional.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create devotional: %w", err)
	}

	return nil
}

// ListByUserID returns all devotionals written by a user, newest first.
func (r *devotionalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Devotional, error) {
	query := `
		SELECT id, user_id, title, content, theme, date, created_at
		FROM devotionals
		WHERE user_id = ?
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devotionals: %w", err)
	}
	defer rows.Close()

	var devotionals []*domain.Devotional
	for rows.Next() {
		devotional := &domain.Devotional{}
		var date, createdAt string

		err := rows.Scan(
			&devotional.ID,
			&devotional.UserID,
			&devotional.Title,
			&devotional.Content,
			&devotional.Theme,
			&date,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan devotional: %w", err)
		}

		devotional.Date, _ = time.Parse(time.RFC3339, date)
		devotional.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		devotionals = append(devotionals, devotional)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devotionals: %w", err)
	}

	return devotionals, nil
}

// Ensure devotionalRepository implements repository.DevotionalRepository.
var _ repository.DevotionalRepository = (*devotionalRepository)(nil)
