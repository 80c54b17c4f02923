package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// prayerRepository implements repository.PrayerRepository for SQLite.
// Reminders are stored as a JSON array in a TEXT column.
type prayerRepository struct {
	db *DB
}

// NewPrayerRepository creates a new SQLite prayer repository.
func NewPrayerRepository(db *DB) repository.PrayerRepository {
	return &prayerRepository{db: db}
}

// Create creates a new prayer request.
func (r *prayerRepository) Create(ctx context.Context, prayer *domain.Prayer) error {
	reminders, err := marshalReminders(prayer.Reminders)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO prayers (id, user_id, title, description, category, is_answered, reminders, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		prayer.ID,
		prayer.UserID,
		prayer.Title,
		prayer.Description,
		prayer.Category,
		boolToInt(prayer.IsAnswered),
		reminders,
		prayer.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create prayer: %w", err)
	}

	return nil
}

// GetByID retrieves a prayer by ID.
func (r *prayerRepository) GetByID(ctx context.Context, id string) (*domain.Prayer, error) {
	query := `
		SELECT id, user_id, title, description, category, is_answered, reminders, created_at
		FROM prayers
		WHERE id = ?
	`

	prayer, err := scanPrayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPrayerNotFound
		}
		return nil, fmt.Errorf("failed to get prayer: %w", err)
	}
	return prayer, nil
}

// ListByUserID returns all prayer requests owned by a user.
func (r *prayerRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Prayer, error) {
	query := `
		SELECT id, user_id, title, description, category, is_answered, reminders, created_at
		FROM prayers
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
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

// Update updates an existing prayer.
func (r *prayerRepository) Update(ctx context.Context, prayer *domain.Prayer) error {
	reminders, err := marshalReminders(prayer.Reminders)
	if err != nil {
		return err
	}

	query := `
		UPDATE prayers
		SET title = ?, description = ?, category = ?, is_answered = ?, reminders = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		prayer.Title,
		prayer.Description,
		prayer.Category,
		boolToInt(prayer.IsAnswered),
		reminders,
		prayer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prayer: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrPrayerNotFound
	}

	return nil
}

// scanPrayer scans one prayer row.
func scanPrayer(row rowScanner) (*domain.Prayer, error) {
	prayer := &domain.Prayer{}
	var isAnswered int
	var reminders, createdAt string

	err := row.Scan(
		&prayer.ID,
		&prayer.UserID,
		&prayer.Title,
		&prayer.Description,
		&prayer.Category,
		&isAnswered,
		&reminders,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	prayer.IsAnswered = isAnswered != 0
	if err := json.Unmarshal([]byte(reminders), &prayer.Reminders); err != nil {
		prayer.Reminders = []string{}
	}
	if prayer.Reminders == nil {
		prayer.Reminders = []string{}
	}
	prayer.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return prayer, nil
}

// marshalReminders encodes the reminders slice for storage.
func marshalReminders(reminders []string) (string, error) {
	if reminders == nil {
		reminders = []string{}
	}
	data, err := json.Marshal(reminders)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reminders: %w", err)
	}
	return string(data), nil
}

// boolToInt converts a boolean to an integer (SQLite doesn't have native boolean).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure prayerRepository implements repository.PrayerRepository.
var _ repository.PrayerRepository = (*prayerRepository)(nil)
