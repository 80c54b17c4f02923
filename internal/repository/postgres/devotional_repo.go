package postgres

import (
	"context"
	"fmt"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// devotionalRepository implements repository.DevotionalRepository for PostgreSQL.
type devotionalRepository struct {
	db *DB
}

// NewDevotionalRepository creates a new PostgreSQL devotional repository.
func NewDevotionalRepository(db *DB) repository.DevotionalRepository {
	return &devotionalRepository{db: db}
}

func (r *devotionalRepository) Create(ctx context.Context, devotional *domain.Devotional) error {
	query := `
		INSERT INTO devotionals (id, user_id, title, content, theme, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		devotional.ID,
		devotional.UserID,
		devotional.Title,
		devotional.Content,
		devotional.Theme,
		devotional.Date,
		devotional.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create devotional: %w", err)
	}
	return nil
}

func (r *devotionalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Devotional, error) {
	query := `
		SELECT id, user_id, title, content, theme, date, created_at
		FROM devotionals WHERE user_id = $1 ORDER BY date DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devotionals: %w", err)
	}
	defer rows.Close()

	var devotionals []*domain.Devotional
	for rows.Next() {
		devotional := &domain.Devotional{}
		err := rows.Scan(
			&devotional.ID,
			&devotional.UserID,
			&devotional.Title,
			&devotional.Content,
			&devotional.Theme,
			&devotional.Date,
			&devotional.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan devotional: %w", err)
		}
		devotionals = append(devotionals, devotional)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devotionals: %w", err)
	}

	return devotionals, nil
}

var _ repository.DevotionalRepository = (*devotionalRepository)(nil)
