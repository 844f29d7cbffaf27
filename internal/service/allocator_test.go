package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/models"
)

func testSlot(day string, period int) models.Slot {
	return models.Slot{
		ID:          day + "-" + string(rune('0'+period)),
		Day:         day,
		PeriodIndex: period,
	}
}

func weekOfSingleSlots() []models.Slot {
	slots := make([]models.Slot, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		slots = append(slots, testSlot(day, 0))
	}
	return slots
}

func lectureSubject(id, code, name string, hours int) models.Subject {
	return models.Subject{ID: id, Code: code, Name: name, LectureHours: hours}
}

func labSubject(id, code, name string, lectureHours, labHours int) models.Subject {
	return models.Subject{ID: id, Code: code, Name: name, LectureHours: lectureHours, LabHours: labHours, IsLab: true}
}

func TestAllocateSpreadsRepeatedSessionsAcrossDays(t *testing.T) {
	catalog := &models.Catalog{
		Faculty:  []models.Faculty{{ID: "f1", Name: "Dr. Rao", Expertise: []string{"s1"}}},
		Subjects: []models.Subject{lectureSubject("s1", "CS101", "Programming", 3)},
		Rooms:    []models.Room{{ID: "r1", Name: "Hall 1", Capacity: 60, Type: models.RoomTypeLecture}},
		Batches:  []models.Batch{{ID: "b1", Name: "CS-A", Size: 40, Subjects: []string{"s1"}}},
		Slots:    weekOfSingleSlots(),
	}

	requests := buildSessionDemand(catalog, zap.NewNop())
	require.Len(t, requests, 3)

	result := allocate(catalog, requests)
	require.Len(t, result.Entries, 3)
	assert.Empty(t, result.Conflicts)

	days := make(map[string]bool)
	for _, entry := range result.Entries {
		days[strings.SplitN(entry.SlotID, "-", 2)[0]] = true
	}
	assert.Len(t, days, 3, "each weekly session should land on a different day")
}

func TestAllocateSlotOrderIsPeriodThenDayName(t *testing.T) {
	catalog := &models.Catalog{
		Faculty:  []models.Faculty{{ID: "f1", Expertise: []string{"s1"}}},
		Subjects: []models.Subject{lectureSubject("s1", "CS101", "Programming", 1)},
		Rooms:    []models.Room{{ID: "r1", Capacity: 50, Type: models.RoomTypeLecture}},
		Batches:  []models.Batch{{ID: "b1", Name: "CS-A", Size: 30, Subjects: []string{"s1"}}},
		Slots:    weekOfSingleSlots(),
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	require.Len(t, result.Entries, 1)

	// Same period on every day, so the lexicographically smallest day name
	// wins.
	assert.Equal(t, "FRI-0", result.Entries[0].SlotID)
}

func TestAllocateLabSessionsPlacedBeforeLectures(t *testing.T) {
	catalog := &models.Catalog{
		Faculty: []models.Faculty{{ID: "f1", Expertise: []string{"lec", "lab"}}},
		Subjects: []models.Subject{
			lectureSubject("lec", "MA101", "Calculus", 1),
			labSubject("lab", "PH102", "Physics Lab", 0, 1),
		},
		Rooms: []models.Room{
			{ID: "hall", Capacity: 50, Type: models.RoomTypeLecture},
			{ID: "lab-room", Capacity: 50, Type: models.RoomTypeLab},
		},
		Batches: []models.Batch{{ID: "b1", Name: "CS-A", Size: 30, Subjects: []string{"lec", "lab"}}},
		Slots:   weekOfSingleSlots(),
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	require.Len(t, result.Entries, 2)

	// The lab request is served first, so it takes the earliest slot even
	// though the lecture appears first in demand order.
	assert.Equal(t, "lab", result.Entries[0].SubjectID)
	assert.Equal(t, "FRI-0", result.Entries[0].SlotID)
	assert.Equal(t, "lec", result.Entries[1].SubjectID)
}

func TestAllocateLargerBatchesFirst(t *testing.T) {
	catalog := &models.Catalog{
		Faculty:  []models.Faculty{{ID: "f1", Expertise: []string{"s1"}}},
		Subjects: []models.Subject{lectureSubject("s1", "CS101", "Programming", 1)},
		Rooms:    []models.Room{{ID: "r1", Capacity: 100, Type: models.RoomTypeLecture}},
		Batches: []models.Batch{
			{ID: "small", Name: "CS-B", Size: 20, Subjects: []string{"s1"}},
			{ID: "big", Name: "CS-A", Size: 60, Subjects: []string{"s1"}},
		},
		Slots: weekOfSingleSlots(),
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "big", result.Entries[0].BatchID)
	assert.Equal(t, "FRI-0", result.Entries[0].SlotID)
	assert.Equal(t, "small", result.Entries[1].BatchID)
}

func TestAllocateReportsMissingExpertise(t *testing.T) {
	catalog := &models.Catalog{
		Faculty:  []models.Faculty{{ID: "f1", Expertise: []string{"other"}}},
		Subjects: []models.Subject{lectureSubject("s1", "CS101", "Programming", 1)},
		Rooms:    []models.Room{{ID: "r1", Capacity: 50, Type: models.RoomTypeLecture}},
		Batches:  []models.Batch{{ID: "b1", Name: "CS-A", Size: 30, Subjects: []string{"s1"}}},
		Slots:    weekOfSingleSlots(),
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	assert.Empty(t, result.Entries)
	require.Len(t, result.Conflicts, 1)

	conflict := result.Conflicts[0]
	assert.Equal(t, "conf-b1-s1-LEC-0", conflict.ID)
	assert.Equal(t, models.ConflictCapacityMismatch, conflict.Type)
	assert.Equal(t, models.SeverityHigh, conflict.Severity)
	assert.Equal(t, "No faculty found for Programming (LECTURE)", conflict.Description)
}

func TestAllocateReportsNoViableRoom(t *testing.T) {
	catalog := &models.Catalog{
		Faculty:  []models.Faculty{{ID: "f1", Expertise: []string{"s1"}}},
		Subjects: []models.Subject{lectureSubject("s1", "CS101", "Programming", 1)},
		Rooms:    []models.Room{{ID: "tiny", Capacity: 10, Type: models.RoomTypeLecture}},
		Batches:  []models.Batch{{ID: "b1", Name: "CS-A", Size: 30, Subjects: []string{"s1"}}},
		Slots:    weekOfSingleSlots(),
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	assert.Empty(t, result.Entries)
	require.Len(t, result.Conflicts, 1)

	conflict := result.Conflicts[0]
	assert.Equal(t, "unassigned-b1-s1-LEC-0", conflict.ID)
	assert.Equal(t, models.ConflictRoomDoubleBooking, conflict.Type)
	assert.Equal(t, models.SeverityMedium, conflict.Severity)
	assert.Equal(t, "Could not find slot/room for CS-A - CS101 (LECTURE)", conflict.Description)
}

func TestAllocateLabRequiresLabRoom(t *testing.T) {
	catalog := &models.Catalog{
		Faculty:  []models.Faculty{{ID: "f1", Expertise: []string{"lab"}}},
		Subjects: []models.Subject{labSubject("lab", "PH102", "Physics Lab", 0, 1)},
		Rooms:    []models.Room{{ID: "hall", Capacity: 100, Type: models.RoomTypeLecture}},
		Batches:  []models.Batch{{ID: "b1", Name: "CS-A", Size: 30, Subjects: []string{"lab"}}},
		Slots:    weekOfSingleSlots(),
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	assert.Empty(t, result.Entries)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "Could not find slot/room for CS-A - PH102 (LAB)", result.Conflicts[0].Description)
}

func TestAllocateNeverDoubleBooks(t *testing.T) {
	catalog := &models.Catalog{
		Faculty: []models.Faculty{
			{ID: "f1", Expertise: []string{"s1", "s2"}},
			{ID: "f2", Expertise: []string{"s1", "s2"}},
		},
		Subjects: []models.Subject{
			lectureSubject("s1", "CS101", "Programming", 2),
			lectureSubject("s2", "MA101", "Calculus", 2),
		},
		Rooms: []models.Room{
			{ID: "r1", Capacity: 60, Type: models.RoomTypeLecture},
			{ID: "r2", Capacity: 60, Type: models.RoomTypeLecture},
		},
		Batches: []models.Batch{
			{ID: "b1", Name: "CS-A", Size: 50, Subjects: []string{"s1", "s2"}},
			{ID: "b2", Name: "CS-B", Size: 45, Subjects: []string{"s1", "s2"}},
		},
		Slots: weekOfSingleSlots(),
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	require.Len(t, result.Entries, 8)
	assert.Empty(t, result.Conflicts)

	type key struct{ slot, entity string }
	batchSeen := make(map[key]bool)
	facultySeen := make(map[key]bool)
	roomSeen := make(map[key]bool)
	for _, entry := range result.Entries {
		assert.False(t, batchSeen[key{entry.SlotID, entry.BatchID}], "batch double booked")
		assert.False(t, facultySeen[key{entry.SlotID, entry.FacultyID}], "faculty double booked")
		assert.False(t, roomSeen[key{entry.SlotID, entry.RoomID}], "room double booked")
		batchSeen[key{entry.SlotID, entry.BatchID}] = true
		facultySeen[key{entry.SlotID, entry.FacultyID}] = true
		roomSeen[key{entry.SlotID, entry.RoomID}] = true
	}
}

func TestAllocateAccountsForEveryRequest(t *testing.T) {
	catalog := &models.Catalog{
		Faculty: []models.Faculty{{ID: "f1", Expertise: []string{"s1"}}},
		Subjects: []models.Subject{
			lectureSubject("s1", "CS101", "Programming", 4),
			lectureSubject("s2", "MA101", "Calculus", 2),
		},
		Rooms: []models.Room{{ID: "r1", Capacity: 60, Type: models.RoomTypeLecture}},
		Batches: []models.Batch{
			{ID: "b1", Name: "CS-A", Size: 50, Subjects: []string{"s1", "s2"}},
		},
		Slots: weekOfSingleSlots(),
	}

	requests := buildSessionDemand(catalog, zap.NewNop())
	result := allocate(catalog, requests)

	assert.Equal(t, len(requests), len(result.Entries)+len(result.Conflicts))
	for _, entry := range result.Entries {
		assert.False(t, entry.IsLocked)
		assert.True(t, strings.HasPrefix(entry.ID, "entry-"))
	}
}

func TestAllocateIsDeterministic(t *testing.T) {
	catalog := &models.Catalog{
		Faculty: []models.Faculty{
			{ID: "f1", Expertise: []string{"s1", "s2", "lab"}},
			{ID: "f2", Expertise: []string{"s2", "lab"}},
		},
		Subjects: []models.Subject{
			lectureSubject("s1", "CS101", "Programming", 2),
			lectureSubject("s2", "MA101", "Calculus", 2),
			labSubject("lab", "PH102", "Physics Lab", 1, 2),
		},
		Rooms: []models.Room{
			{ID: "r1", Capacity: 60, Type: models.RoomTypeLecture},
			{ID: "r2", Capacity: 40, Type: models.RoomTypeLab},
		},
		Batches: []models.Batch{
			{ID: "b1", Name: "CS-A", Size: 50, Subjects: []string{"s1", "s2", "lab"}},
			{ID: "b2", Name: "CS-B", Size: 30, Subjects: []string{"s2", "lab"}},
		},
		Slots: weekOfSingleSlots(),
	}

	first := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	second := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))

	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Conflicts, second.Conflicts)
}

func TestAllocateNoBacktracking(t *testing.T) {
	// One slot, one faculty: the larger batch takes it and the smaller
	// batch is reported, not retried.
	catalog := &models.Catalog{
		Faculty:  []models.Faculty{{ID: "f1", Expertise: []string{"s1"}}},
		Subjects: []models.Subject{lectureSubject("s1", "CS101", "Programming", 1)},
		Rooms:    []models.Room{{ID: "r1", Capacity: 100, Type: models.RoomTypeLecture}},
		Batches: []models.Batch{
			{ID: "small", Name: "CS-B", Size: 20, Subjects: []string{"s1"}},
			{ID: "big", Name: "CS-A", Size: 60, Subjects: []string{"s1"}},
		},
		Slots: []models.Slot{testSlot("MON", 0)},
	}

	result := allocate(catalog, buildSessionDemand(catalog, zap.NewNop()))
	require.Len(t, result.Entries, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "big", result.Entries[0].BatchID)
	assert.Equal(t, "unassigned-small-s1-LEC-0", result.Conflicts[0].ID)
}
