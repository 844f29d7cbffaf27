package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/internal/models"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

type cacheStub struct {
	values map[string]interface{}
	gets   int
	sets   int
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: make(map[string]interface{})}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	value, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if stats, ok := value.(*dto.DashboardStatsResponse); ok {
		if out, ok := dest.(*dto.DashboardStatsResponse); ok {
			*out = *stats
			return nil
		}
	}
	return appErrors.ErrCacheMiss
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	if stats, ok := value.(*dto.DashboardStatsResponse); ok {
		c.values[key] = stats
	}
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.values = make(map[string]interface{})
	return nil
}

func newDashboardFixture(t *testing.T, cache dashboardCache) (*DashboardService, *memoryScheduleStore) {
	t.Helper()
	store := &memoryScheduleStore{}
	svc := NewDashboardService(
		store,
		facultyListStub{
			{ID: "f1", Name: "Dr. Rao", MaxLoad: 2, Expertise: []string{"s1"}},
			{ID: "f2", Name: "Dr. Iyer", MaxLoad: 10, Expertise: []string{"lab"}},
		},
		subjectListStub{
			lectureSubject("s1", "CS101", "Programming", 2),
			labSubject("lab", "PH102", "Physics Lab", 0, 1),
		},
		roomListStub{
			{ID: "r1", Name: "Hall 1", Capacity: 60, Type: models.RoomTypeLecture},
			{ID: "r2", Name: "Lab 1", Capacity: 30, Type: models.RoomTypeLab},
		},
		slotListStub(weekOfSingleSlots()),
		cache,
		nil,
		time.Minute,
		nil,
	)
	return svc, store
}

func TestDashboardStatsAggregates(t *testing.T) {
	svc, store := newDashboardFixture(t, nil)
	store.entries = []models.ScheduleEntry{
		{ID: "e1", SlotID: "MON-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
		{ID: "e2", SlotID: "TUE-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
		{ID: "e3", SlotID: "WED-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
		{ID: "e4", SlotID: "MON-0", SubjectID: "lab", FacultyID: "f2", RoomID: "r2", BatchID: "b2"},
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalSessions)
	assert.Equal(t, 3, stats.LectureSessions)
	assert.Equal(t, 1, stats.LabSessions)

	require.Len(t, stats.RoomUtilization, 2)
	assert.Equal(t, "r1", stats.RoomUtilization[0].RoomID)
	assert.Equal(t, 3, stats.RoomUtilization[0].Sessions)
	assert.InDelta(t, 60.0, stats.RoomUtilization[0].Utilization, 0.001)

	require.Len(t, stats.FacultyLoad, 2)
	assert.Equal(t, "f1", stats.FacultyLoad[0].FacultyID)
	assert.Equal(t, 3, stats.FacultyLoad[0].AssignedHours)
	assert.True(t, stats.FacultyLoad[0].OverCap, "3 assigned hours exceed the advisory cap of 2")
	assert.False(t, stats.FacultyLoad[1].OverCap)
}

func TestDashboardStatsSplitSessionTypesByRoom(t *testing.T) {
	svc, store := newDashboardFixture(t, nil)
	// A lab-flagged subject holds its lecture sessions in lecture rooms;
	// those must count as lectures, not labs.
	store.entries = []models.ScheduleEntry{
		{ID: "e1", SlotID: "MON-0", SubjectID: "lab", FacultyID: "f2", RoomID: "r1", BatchID: "b1"},
		{ID: "e2", SlotID: "TUE-0", SubjectID: "lab", FacultyID: "f2", RoomID: "r2", BatchID: "b1"},
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, stats.LectureSessions)
	assert.Equal(t, 1, stats.LabSessions)
}

func TestDashboardStatsServedFromCache(t *testing.T) {
	cache := newCacheStub()
	svc, store := newDashboardFixture(t, cache)
	store.entries = []models.ScheduleEntry{
		{ID: "e1", SlotID: "MON-0", SubjectID: "s1", FacultyID: "f1", RoomID: "r1", BatchID: "b1"},
	}

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Mutating the store must not change the cached answer.
	store.entries = nil
	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.TotalSessions, second.TotalSessions)
	assert.Equal(t, 1, cache.sets)

	svc.InvalidateCache(context.Background())
	third, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, third.TotalSessions)
}
