package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/scts-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "slot_id", "subject_id", "faculty_id", "room_id", "batch_id", "is_locked", "position", "created_at"})
}

func TestScheduleRepositoryListAllOrdersByPosition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := scheduleRows().
		AddRow("entry-1", "MON-0", "s1", "f1", "r1", "b1", false, 1, time.Now()).
		AddRow("manual-2", "TUE-0", "s1", "f1", "r1", "b1", true, 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_id, subject_id, faculty_id, room_id, batch_id, is_locked, position, created_at FROM schedule_entries ORDER BY position ASC")).
		WillReturnRows(rows)

	entries, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "entry-1", entries[0].ID)
	assert.True(t, entries[1].IsLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("e.batch_id = $1")).
		WithArgs("b1", "MON").
		WillReturnRows(scheduleRows().AddRow("entry-1", "MON-0", "s1", "f1", "r1", "b1", false, 1, time.Now()))

	entries, err := repo.List(context.Background(), models.ScheduleEntryFilter{BatchID: "b1", Day: "mon"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b1", entries[0].BatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO schedule_entries").
		WithArgs("manual-1", "MON-0", "s1", "f1", "r1", "b1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ScheduleEntry{
		ID:        "manual-1",
		SlotID:    "MON-0",
		SubjectID: "s1",
		FacultyID: "f1",
		RoomID:    "r1",
		BatchID:   "b1",
		IsLocked:  true,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceAllWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO schedule_entries").
		WithArgs("entry-1", "MON-0", "s1", "f1", "r1", "b1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").
		WithArgs("entry-2", "TUE-0", "s1", "f1", "r1", "b1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	entries := []models.ScheduleEntry{
		{ID: "entry-1", SlotID: "MON-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
		{ID: "entry-2", SlotID: "TUE-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
	}
	require.NoError(t, repo.ReplaceAllWithTx(context.Background(), tx, entries))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
