package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// prayerRepository implements repository.PrayerRepository for PostgreSQL.
// Reminders are stored as a JSONB array.
type prayerRepository struct {
	db *DB
}

// NewPrayerRepository creates a new PostgreSQL prayer repository.
func NewPrayerRepository(db *DB) repository.PrayerRepository {
	return &prayerRepository{db: db}
}

const prayerColumns = `id, user_id, title, description, category, is_answered, reminders, created_at`

func (r *prayerRepository) Create(ctx context.Context, prayer *domain.Prayer) error {
	reminders, err := marshalReminders(prayer.Reminders)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO prayers (` + prayerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		prayer.ID,
		prayer.UserID,
		prayer.Title,
		prayer.Description,
		prayer.Category,
		prayer.IsAnswered,
		reminders,
		prayer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prayer: %w", err)
	}
	return nil
}

func (r *prayerRepository) GetByID(ctx context.Context, id string) (*domain.Prayer, error) {
	query := `SELECT ` + prayerColumns + ` FROM prayers WHERE id = $1`

	prayer, err := scanPrayer(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPrayerNotFound
		}
		return nil, fmt.Errorf("failed to get prayer: %w", err)
	}
	return prayer, nil
}

func (r *prayerRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Prayer, error) {
	query := `SELECT ` + prayerColumns + ` FROM prayers WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prayers: %w", err)
	}
	defer rows.Close()

	var prayers []*domain.Prayer
	for rows.Next() {
		prayer, err := scanPrayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prayer: %w", err)
		}
		prayers = append(prayers, prayer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prayers: %w", err)
	}

	return prayers, nil
}

func (r *prayerRepository) Update(ctx context.Context, prayer *domain.Prayer) error {
	reminders, err := marshalReminders(prayer.Reminders)
	if err != nil {
		return err
	}

	query := `
		UPDATE prayers
		SET title = $1, description = $2, category = $3, is_answered = $4, reminders = $5
		WHERE id = $6
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		prayer.Title,
		prayer.Description,
		prayer.Category,
		prayer.IsAnswered,
		reminders,
		prayer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prayer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrayerNotFound
	}
	return nil
}

func scanPrayer(row pgx.Row) (*domain.Prayer, error) {
	prayer := &domain.Prayer{}
	var reminders []byte

	err := row.Scan(
		&prayer.ID,
		&prayer.UserID,
		&prayer.Title,
		&prayer.Description,
		&prayer.Category,
		&prayer.IsAnswered,
		&reminders,
		&prayer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(reminders) > 0 {
		if err := json.Unmarshal(reminders, &prayer.Reminders); err != nil {
			return nil, fmt.Errorf("failed to decode reminders: %w", err)
		}
	}
	if prayer.Reminders == nil {
		prayer.Reminders = []string{}
	}

	return prayer, nil
}

func marshalReminders(reminders []string) ([]byte, error) {
	if reminders == nil {
		reminders = []string{}
	}
	data, err := json.Marshal(reminders)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reminders: %w", err)
	}
	return data, nil
}

var _ repository.PrayerRepository = (*prayerRepository)(nil)
