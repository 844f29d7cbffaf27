package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOccupancyTrackerDimensionsAreIndependent(t *testing.T) {
	tracker := newOccupancyTracker()

	tracker.MarkBusy(occupancyBatch, "MON-0", "b1", "req-1")

	assert.True(t, tracker.IsBusy(occupancyBatch, "MON-0", "b1"))
	assert.False(t, tracker.IsBusy(occupancyFaculty, "MON-0", "b1"))
	assert.False(t, tracker.IsBusy(occupancyRoom, "MON-0", "b1"))
	assert.False(t, tracker.IsBusy(occupancyBatch, "TUE-0", "b1"))
	assert.False(t, tracker.IsBusy(occupancyBatch, "MON-0", "b2"))
}

func TestOccupancyTrackerEntriesPersistForTheRun(t *testing.T) {
	tracker := newOccupancyTracker()

	tracker.MarkBusy(occupancyFaculty, "MON-0", "f1", "req-1")
	tracker.MarkBusy(occupancyRoom, "MON-0", "r1", "req-1")

	assert.True(t, tracker.IsBusy(occupancyFaculty, "MON-0", "f1"))
	assert.True(t, tracker.IsBusy(occupancyRoom, "MON-0", "r1"))

	// A second mark for the same pair overwrites the owner but never frees it.
	tracker.MarkBusy(occupancyFaculty, "MON-0", "f1", "req-2")
	assert.True(t, tracker.IsBusy(occupancyFaculty, "MON-0", "f1"))
}
