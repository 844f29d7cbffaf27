package service

import (
	"fmt"
	"sort"

	"github.com/campuskit/scts-api/internal/models"
)

// allocationResult pairs the committed entries with the conflicts for the
// requests that could not be placed. Every session request ends up in
// exactly one of the two slices.
type allocationResult struct {
	Entries   []models.ScheduleEntry
	Conflicts []models.Conflict
}

// allocate runs the deterministic single-pass greedy assignment. Ordering
// is part of the observable contract:
//   - requests: LAB before LECTURE, then descending batch size, ties in
//     demand order (stable sort);
//   - slots: periodIndex ascending, then day name ascending, so repeated
//     sessions of a subject land on different weekdays before stacking up
//     within one day.
//
// There is no backtracking; a request that cannot be placed becomes a
// conflict and later requests are unaffected.
func allocate(catalog *models.Catalog, requests []sessionRequest) allocationResult {
	sorted := make([]sessionRequest, len(requests))
	copy(sorted, requests)
	sort.SliceStable(sorted, func(i, j int) bool {
		if (sorted[i].Type == models.SessionLab) != (sorted[j].Type == models.SessionLab) {
			return sorted[i].Type == models.SessionLab
		}
		return sorted[i].Batch.Size > sorted[j].Batch.Size
	})

	slots := make([]models.Slot, len(catalog.Slots))
	copy(slots, catalog.Slots)
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].PeriodIndex != slots[j].PeriodIndex {
			return slots[i].PeriodIndex < slots[j].PeriodIndex
		}
		return slots[i].Day < slots[j].Day
	})

	tracker := newOccupancyTracker()
	result := allocationResult{
		Entries:   make([]models.ScheduleEntry, 0, len(sorted)),
		Conflicts: make([]models.Conflict, 0),
	}

	for _, req := range sorted {
		eligible := eligibleFaculty(catalog.Faculty, req.Subject.ID)
		if len(eligible) == 0 {
			result.Conflicts = append(result.Conflicts, models.Conflict{
				ID:          "conf-" + req.ID,
				Type:        models.ConflictCapacityMismatch,
				Description: fmt.Sprintf("No faculty found for %s (%s)", req.Subject.Name, req.Type),
				Severity:    models.SeverityHigh,
			})
			continue
		}

		entry, placed := placeRequest(req, slots, eligible, catalog.Rooms, tracker)
		if !placed {
			result.Conflicts = append(result.Conflicts, models.Conflict{
				ID:          "unassigned-" + req.ID,
				Type:        models.ConflictRoomDoubleBooking,
				Description: fmt.Sprintf("Could not find slot/room for %s - %s (%s)", req.Batch.Name, req.Subject.Code, req.Type),
				Severity:    models.SeverityMedium,
			})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	return result
}

// placeRequest walks slots, then eligible faculty, then type/capacity
// matched rooms, committing the first fully free triple.
func placeRequest(
	req sessionRequest,
	slots []models.Slot,
	faculty []models.Faculty,
	rooms []models.Room,
	tracker *occupancyTracker,
) (models.ScheduleEntry, bool) {
	needType := req.Type.RoomType()

	for _, slot := range slots {
		if tracker.IsBusy(occupancyBatch, slot.ID, req.Batch.ID) {
			continue
		}
		for _, fac := range faculty {
			if tracker.IsBusy(occupancyFaculty, slot.ID, fac.ID) {
				continue
			}
			for _, room := range rooms {
				if room.Capacity < req.Batch.Size || room.Type != needType {
					continue
				}
				if tracker.IsBusy(occupancyRoom, slot.ID, room.ID) {
					continue
				}

				tracker.MarkBusy(occupancyBatch, slot.ID, req.Batch.ID, req.ID)
				tracker.MarkBusy(occupancyFaculty, slot.ID, fac.ID, req.ID)
				tracker.MarkBusy(occupancyRoom, slot.ID, room.ID, req.ID)

				return models.ScheduleEntry{
					ID:        "entry-" + req.ID,
					SlotID:    slot.ID,
					SubjectID: req.Subject.ID,
					FacultyID: fac.ID,
					RoomID:    room.ID,
					BatchID:   req.Batch.ID,
					IsLocked:  false,
				}, true
			}
			// Room availability is independent of faculty: if the first
			// free faculty finds no room in this slot, none will.
			break
		}
	}
	return models.ScheduleEntry{}, false
}

func eligibleFaculty(faculty []models.Faculty, subjectID string) []models.Faculty {
	var eligible []models.Faculty
	for _, f := range faculty {
		if f.CanTeach(subjectID) {
			eligible = append(eligible, f)
		}
	}
	return eligible
}
