package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/scts-api/internal/models"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

type facultyListStub []models.Faculty

func (s facultyListStub) ListAll(ctx context.Context) ([]models.Faculty, error) { return s, nil }

type subjectListStub []models.Subject

func (s subjectListStub) ListAll(ctx context.Context) ([]models.Subject, error) { return s, nil }

type roomListStub []models.Room

func (s roomListStub) ListAll(ctx context.Context) ([]models.Room, error) { return s, nil }

type batchListStub []models.Batch

func (s batchListStub) ListAll(ctx context.Context) ([]models.Batch, error) { return s, nil }

type slotListStub []models.Slot

func (s slotListStub) ListAll(ctx context.Context) ([]models.Slot, error) { return s, nil }

type generationObserverStub struct {
	runs      int
	scheduled int
	conflicts int
}

func (o *generationObserverStub) ObserveGenerationRun(scheduled, conflicts int) {
	o.runs++
	o.scheduled += scheduled
	o.conflicts += conflicts
}

func newGenerationTxMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return sqlxdb, mock
}

type timetableFixture struct {
	svc     *TimetableService
	store   *memoryScheduleStore
	metrics *generationObserverStub
	mock    sqlmock.Sqlmock
}

func newTimetableFixture(t *testing.T, slots []models.Slot) *timetableFixture {
	t.Helper()
	store := &memoryScheduleStore{}
	metrics := &generationObserverStub{}
	db, mock := newGenerationTxMock(t)

	svc := NewTimetableService(
		facultyListStub{
			{ID: "f1", Name: "Dr. Rao", Expertise: []string{"s1", "lab"}},
		},
		subjectListStub{
			lectureSubject("s1", "CS101", "Programming", 2),
			labSubject("lab", "PH102", "Physics Lab", 0, 1),
			lectureSubject("orphan", "XX999", "Unstaffed", 1),
		},
		roomListStub{
			{ID: "r1", Name: "Hall 1", Capacity: 60, Type: models.RoomTypeLecture},
			{ID: "r2", Name: "Lab 1", Capacity: 60, Type: models.RoomTypeLab},
		},
		batchListStub{
			{ID: "b1", Name: "CS-A", Size: 40, Subjects: []string{"s1", "lab", "orphan"}},
		},
		slotListStub(slots),
		store,
		db,
		metrics,
		nil,
	)
	return &timetableFixture{svc: svc, store: store, metrics: metrics, mock: mock}
}

func TestTimetableGenerateCommitsAndReports(t *testing.T) {
	fx := newTimetableFixture(t, weekOfSingleSlots())
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.Generate(context.Background())
	require.NoError(t, err)

	// 2 lectures + 1 lab scheduled, 1 unstaffed subject reported.
	assert.Equal(t, 4, resp.Stats.Requests)
	assert.Equal(t, 3, resp.Stats.Scheduled)
	assert.Equal(t, 1, resp.Stats.Conflicts)
	assert.Len(t, resp.Schedule, 3)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.ConflictCapacityMismatch, resp.Conflicts[0].Type)

	assert.Len(t, fx.store.entries, 3)
	assert.Equal(t, 1, fx.metrics.runs)
	assert.Equal(t, 3, fx.metrics.scheduled)
	assert.Equal(t, 1, fx.metrics.conflicts)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableGenerateIsRepeatable(t *testing.T) {
	fx := newTimetableFixture(t, weekOfSingleSlots())
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	first, err := fx.svc.Generate(context.Background())
	require.NoError(t, err)
	second, err := fx.svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Schedule, second.Schedule)
	assert.Equal(t, first.Conflicts, second.Conflicts)
}

func TestTimetableGenerateRequiresSlots(t *testing.T) {
	fx := newTimetableFixture(t, nil)

	_, err := fx.svc.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fx.store.entries)
}

func TestTimetableClearRemovesEverything(t *testing.T) {
	fx := newTimetableFixture(t, weekOfSingleSlots())
	fx.store.entries = []models.ScheduleEntry{{ID: "e1"}, {ID: "e2"}}

	require.NoError(t, fx.svc.Clear(context.Background()))
	assert.Empty(t, fx.store.entries)
}

func TestTimetableListDelegatesFilter(t *testing.T) {
	fx := newTimetableFixture(t, weekOfSingleSlots())
	fx.store.entries = []models.ScheduleEntry{
		{ID: "e1", SlotID: "MON-0", BatchID: "b1"},
		{ID: "e2", SlotID: "TUE-0", BatchID: "b2"},
	}

	entries, err := fx.svc.List(context.Background(), models.ScheduleEntryFilter{BatchID: "b2"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e2", entries[0].ID)
}
