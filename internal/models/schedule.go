package models

import "time"

// SessionType distinguishes lecture hours from lab hours.
type SessionType string

const (
	SessionLecture SessionType = "LECTURE"
	SessionLab     SessionType = "LAB"
)

// RoomType returns the room type a session of this type requires.
func (t SessionType) RoomType() RoomType {
	if t == SessionLab {
		return RoomTypeLab
	}
	return RoomTypeLecture
}

// ScheduleEntry is a committed (slot, subject, faculty, room, batch)
// assignment. IsLocked marks manually booked entries.
type ScheduleEntry struct {
	ID        string    `db:"id" json:"id"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	IsLocked  bool      `db:"is_locked" json:"is_locked"`
	Position  int       `db:"position" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScheduleEntryFilter describes query params for listing schedule entries.
type ScheduleEntryFilter struct {
	SlotID    string
	BatchID   string
	FacultyID string
	RoomID    string
	SubjectID string
	Day       string
}

// ConflictType classifies why a session request could not be satisfied.
type ConflictType string

const (
	// ConflictCapacityMismatch means no faculty in the catalog is
	// qualified for the requested subject.
	ConflictCapacityMismatch ConflictType = "CAPACITY_MISMATCH"
	// ConflictRoomDoubleBooking is the catch-all for "no viable
	// slot/faculty/room combination found".
	ConflictRoomDoubleBooking ConflictType = "ROOM_DOUBLE_BOOKING"
)

// ConflictSeverity ranks conflicts for operator triage.
type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "HIGH"
	SeverityMedium ConflictSeverity = "MEDIUM"
)

// Conflict is a session request the allocator could not satisfy.
type Conflict struct {
	ID          string           `json:"id"`
	Type        ConflictType     `json:"type"`
	Description string           `json:"description"`
	Severity    ConflictSeverity `json:"severity"`
}
