package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// verseRepository implements repository.VerseRepository for PostgreSQL.
type verseRepository struct {
	db *DB
}

// NewVerseRepository creates a new PostgreSQL verse repository.
func NewVerseRepository(db *DB) repository.VerseRepository {
	return &verseRepository{db: db}
}

const verseColumns = `id, user_id, reference, content, progress, last_reviewed, created_at`

func (r *verseRepository) Create(ctx context.Context, verse *domain.Verse) error {
	query := `
		INSERT INTO verses (` + verseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		verse.ID,
		verse.UserID,
		verse.Reference,
		verse.Content,
		verse.Progress,
		verse.LastReviewed,
		verse.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create verse: %w", err)
	}
	return nil
}

func (r *verseRepository) GetByID(ctx context.Context, id string) (*domain.Verse, error) {
	query := `SELECT ` + verseColumns + ` FROM verses WHERE id = $1`

	verse, err := scanVerse(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVerseNotFound
		}
		return nil, fmt.Errorf("failed to get verse: %w", err)
	}
	return verse, nil
}

func (r *verseRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Verse, error) {
	query := `SELECT ` + verseColumns + ` FROM verses WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verses: %w", err)
	}
	defer rows.Close()

	var verses []*domain.Verse
	for rows.Next() {
		verse, err := scanVerse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verse: %w", err)
		}
		verses = append(verses, verse)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating verses: %w", err)
	}

	return verses, nil
}

func (r *verseRepository) Update(ctx context.Context, verse *domain.Verse) error {
	query := `
		UPDATE verses
		SET reference = $1, content = $2, progress = $3, last_reviewed = $4
		WHERE id = $5
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		verse.Reference,
		verse.Content,
		verse.Progress,
		verse.LastReviewed,
		verse.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update verse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVerseNotFound
	}
	return nil
}

func scanVerse(row pgx.Row) (*domain.Verse, error) {
	verse := &domain.Verse{}
	err := row.Scan(
		&verse.ID,
		&verse.UserID,
		&verse.Reference,
		&verse.Content,
		&verse.Progress,
		&verse.LastReviewed,
		&verse.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return verse, nil
}

var _ repository.VerseRepository = (*verseRepository)(nil)
