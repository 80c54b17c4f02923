package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// verseRepository implements repository.VerseRepository for SQLite.
type verseRepository struct {
	db *DB
}

// NewVerseRepository creates a new SQLite verse repository.
func NewVerseRepository(db *DB) repository.VerseRepository {
	return &verseRepository{db: db}
}

// Create creates a new verse.
func (r *verseRepository) Create(ctx context.Context, verse *domain.Verse) error {
	query := `
		INSERT INTO verses (id, user_id, reference, content, progress, last_reviewed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		verse.ID,
		verse.UserID,
		verse.Reference,
		verse.Content,
		verse.Progress,
		formatNullTime(verse.LastReviewed),
		verse.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create verse: %w", err)
	}

	return nil
}

// GetByID retrieves a verse by ID.
func (r *verseRepository) GetByID(ctx context.Context, id string) (*domain.Verse, error) {
	query := `
		SELECT id, user_id, reference, content, progress, last_reviewed, created_at
		FROM verses
		WHERE id = ?
	`

	verse, err := scanVerse(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrVerseNotFound
		}
		return nil, fmt.Errorf("failed to get verse: %w", err)
	}
	return verse, nil
}

// ListByUserID returns all verses owned by a user.
func (r *verseRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Verse, error) {
	query := `
		SELECT id, user_id, reference, content, progress, last_reviewed, created_at
		FROM verses
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
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

// Update updates an existing verse.
func (r *verseRepository) Update(ctx context.Context, verse *domain.Verse) error {
	query := `
		UPDATE verses
		SET reference = ?, content = ?, progress = ?, last_reviewed = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		verse.Reference,
		verse.Content,
		verse.Progress,
		formatNullTime(verse.LastReviewed),
		verse.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update verse: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrVerseNotFound
	}

	return nil
}

// scanVerse scans one verse row.
func scanVerse(row rowScanner) (*domain.Verse, error) {
	verse := &domain.Verse{}
	var lastReviewed sql.NullString
	var createdAt string

	err := row.Scan(
		&verse.ID,
		&verse.UserID,
		&verse.Reference,
		&verse.Content,
		&verse.Progress,
		&lastReviewed,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewed.Valid && lastReviewed.String != "" {
		if t, err := time.Parse(time.RFC3339, lastReviewed.String); err == nil {
			verse.LastReviewed = &t
		}
	}
	verse.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return verse, nil
}

// Ensure verseRepository implements repository.VerseRepository.
var _ repository.VerseRepository = (*verseRepository)(nil)
