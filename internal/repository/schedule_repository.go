package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/scts-api/internal/models"
)

// ScheduleRepository handles persistence for committed schedule entries.
// The position column is sequence-assigned on insert and preserves the
// order entries were committed in; every listing orders by it so repeated
// reads return identical sequences.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new repository instance.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns entries matching the filter in committed order. Day filters
// resolve through the slot grid.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, error) {
	base := "FROM schedule_entries e WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SlotID != "" {
		conditions = append(conditions, fmt.Sprintf("e.slot_id = $%d", len(args)+1))
		args = append(args, filter.SlotID)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("e.batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("e.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("e.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("e.slot_id IN (SELECT id FROM slots WHERE day = $%d)", len(args)+1))
		args = append(args, strings.ToUpper(filter.Day))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT e.id, e.slot_id, e.subject_id, e.faculty_id, e.room_id, e.batch_id, e.is_locked, e.position, e.created_at %s ORDER BY e.position ASC", base)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// ListAll returns every committed entry in committed order.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, slot_id, subject_id, faculty_id, room_id, batch_id, is_locked, position, created_at FROM schedule_entries ORDER BY position ASC`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list all schedule entries: %w", err)
	}
	return entries, nil
}

// Create appends a single entry. Position comes from the table sequence.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_entries (id, slot_id, subject_id, faculty_id, room_id, batch_id, is_locked, created_at) VALUES (:id, :slot_id, :subject_id, :faculty_id, :room_id, :batch_id, :is_locked, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// ReplaceAllWithTx atomically swaps the committed schedule for the given
// entries, inserting them in slice order.
func (r *ScheduleRepository) ReplaceAllWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_entries`); err != nil {
		return fmt.Errorf("clear schedule entries: %w", err)
	}

	const query = `INSERT INTO schedule_entries (id, slot_id, subject_id, faculty_id, room_id, batch_id, is_locked, created_at) VALUES (:id, :slot_id, :subject_id, :faculty_id, :room_id, :batch_id, :is_locked, :created_at)`
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, entries[i]); err != nil {
			return fmt.Errorf("insert schedule entry %s: %w", entries[i].ID, err)
		}
	}
	return nil
}

// DeleteAll removes every committed entry.
func (r *ScheduleRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries`); err != nil {
		return fmt.Errorf("delete schedule entries: %w", err)
	}
	return nil
}
