package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/scts-api/internal/models"
)

// SlotRepository handles persistence for the fixed teaching-period grid.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository creates a new repository instance.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ListAll returns every slot ordered by period index, then day name.
func (r *SlotRepository) ListAll(ctx context.Context) ([]models.Slot, error) {
	const query = `SELECT id, day, start_time, end_time, period_index, created_at FROM slots ORDER BY period_index ASC, day ASC`
	var slots []models.Slot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// FindByID returns a slot by id.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.Slot, error) {
	const query = `SELECT id, day, start_time, end_time, period_index, created_at FROM slots WHERE id = $1`
	var slot models.Slot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Count returns the number of configured slots.
func (r *SlotRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM slots`); err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}
	return count, nil
}

// EnsureDefaults seeds the standard weekday grid. Already-present slot ids
// are left untouched, so re-running at startup is safe.
func (r *SlotRepository) EnsureDefaults(ctx context.Context) error {
	const query = `INSERT INTO slots (id, day, start_time, end_time, period_index, created_at) VALUES (:id, :day, :start_time, :end_time, :period_index, :created_at) ON CONFLICT (id) DO NOTHING`

	now := time.Now().UTC()
	for _, slot := range models.DefaultSlotGrid() {
		slot.CreatedAt = now
		if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
			return fmt.Errorf("seed slot %s: %w", slot.ID, err)
		}
	}
	return nil
}
