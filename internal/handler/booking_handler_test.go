package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/scts-api/internal/models"
	"github.com/campuskit/scts-api/internal/service"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

type entryStoreStub struct {
	entries []models.ScheduleEntry
}

func (m *entryStoreStub) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, error) {
	var out []models.ScheduleEntry
	for _, entry := range m.entries {
		if filter.BatchID != "" && entry.BatchID != filter.BatchID {
			continue
		}
		if filter.SlotID != "" && entry.SlotID != filter.SlotID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *entryStoreStub) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	return m.entries, nil
}

func (m *entryStoreStub) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *entryStoreStub) ReplaceAllWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) error {
	m.entries = append([]models.ScheduleEntry(nil), entries...)
	return nil
}

func (m *entryStoreStub) DeleteAll(ctx context.Context) error {
	m.entries = nil
	return nil
}

type slotStub map[string]models.Slot

func (m slotStub) FindByID(ctx context.Context, id string) (*models.Slot, error) {
	if v, ok := m[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

type subjectStub map[string]models.Subject

func (m subjectStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if v, ok := m[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

type facultyStub map[string]models.Faculty

func (m facultyStub) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if v, ok := m[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

type roomStub map[string]models.Room

func (m roomStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if v, ok := m[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

type batchStub map[string]models.Batch

func (m batchStub) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if v, ok := m[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

type bookingObserverStub struct {
	outcomes []string
}

func (o *bookingObserverStub) ObserveBooking(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

type cacheSpy struct {
	deletedPatterns []string
}

func (c *cacheSpy) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (c *cacheSpy) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *cacheSpy) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deletedPatterns = append(c.deletedPatterns, pattern)
	return nil
}

func newBookingRouter(t *testing.T, store *entryStoreStub, observer *bookingObserverStub, dashboard *service.DashboardService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewBookingService(
		store,
		slotStub{"MON-0": {ID: "MON-0", Day: "MON", PeriodIndex: 0}},
		subjectStub{"s1": {ID: "s1", Code: "CS101", Name: "Programming", LectureHours: 2}},
		facultyStub{"f1": {ID: "f1", Name: "Dr. Rao", Expertise: []string{"s1"}}},
		roomStub{"r1": {ID: "r1", Name: "Hall 1", Capacity: 50, Type: models.RoomTypeLecture}},
		batchStub{"b1": {ID: "b1", Name: "CS-A", Size: 30, Subjects: []string{"s1"}}},
		nil,
		nil,
	)

	r := gin.New()
	h := NewBookingHandler(svc, observer, dashboard)
	r.POST("/api/v1/timetable/entries", h.Create)
	return r
}

func postEntry(t *testing.T, r *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetable/entries", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validEntryPayload = `{"slotId":"MON-0","subjectId":"s1","facultyId":"f1","roomId":"r1","batchId":"b1"}`

func TestBookingHandlerCreatesEntry(t *testing.T) {
	store := &entryStoreStub{}
	observer := &bookingObserverStub{}
	r := newBookingRouter(t, store, observer, nil)

	w := postEntry(t, r, validEntryPayload)

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data models.ScheduleEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.Data.ID, "manual-"))
	assert.True(t, body.Data.IsLocked)
	assert.Len(t, store.entries, 1)
	assert.Equal(t, []string{"committed"}, observer.outcomes)
}

func TestBookingHandlerRejectsClash(t *testing.T) {
	store := &entryStoreStub{entries: []models.ScheduleEntry{
		{ID: "e1", SlotID: "MON-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
	}}
	observer := &bookingObserverStub{}
	r := newBookingRouter(t, store, observer, nil)

	w := postEntry(t, r, validEntryPayload)

	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body.Error.Code)
	assert.Equal(t, "This batch already has a class in this slot.", body.Error.Message)
	assert.Len(t, store.entries, 1)
	assert.Equal(t, []string{"rejected"}, observer.outcomes)
}

func TestBookingHandlerInvalidatesDashboardCache(t *testing.T) {
	store := &entryStoreStub{}
	spy := &cacheSpy{}
	dashboard := service.NewDashboardService(
		store,
		facultyCatalogStub{},
		subjectCatalogStub{},
		roomCatalogStub{},
		slotCatalogStub{{ID: "MON-0", Day: "MON", PeriodIndex: 0}},
		spy,
		nil,
		time.Minute,
		nil,
	)
	r := newBookingRouter(t, store, &bookingObserverStub{}, dashboard)

	w := postEntry(t, r, validEntryPayload)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"dashboard:*"}, spy.deletedPatterns)
}

func TestBookingHandlerKeepsCacheOnRejection(t *testing.T) {
	store := &entryStoreStub{entries: []models.ScheduleEntry{
		{ID: "e1", SlotID: "MON-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
	}}
	spy := &cacheSpy{}
	dashboard := service.NewDashboardService(
		store,
		facultyCatalogStub{},
		subjectCatalogStub{},
		roomCatalogStub{},
		slotCatalogStub{{ID: "MON-0", Day: "MON", PeriodIndex: 0}},
		spy,
		nil,
		time.Minute,
		nil,
	)
	r := newBookingRouter(t, store, &bookingObserverStub{}, dashboard)

	w := postEntry(t, r, validEntryPayload)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, spy.deletedPatterns)
}

func TestBookingHandlerRejectsMalformedJSON(t *testing.T) {
	r := newBookingRouter(t, &entryStoreStub{}, &bookingObserverStub{}, nil)

	w := postEntry(t, r, `{"slotId":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerRejectsUnknownSlot(t *testing.T) {
	r := newBookingRouter(t, &entryStoreStub{}, &bookingObserverStub{}, nil)

	w := postEntry(t, r, `{"slotId":"SAT-9","subjectId":"s1","facultyId":"f1","roomId":"r1","batchId":"b1"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
