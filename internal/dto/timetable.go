package dto

import "github.com/campuskit/scts-api/internal/models"

// TimetableRunStats summarises one generation run. Requests always equals
// Scheduled plus Conflicts.
type TimetableRunStats struct {
	Requests  int `json:"requests"`
	Scheduled int `json:"scheduled"`
	Conflicts int `json:"conflicts"`
}

// GenerateTimetableResponse returns the committed schedule and the
// unsatisfiable requests of a generation run.
type GenerateTimetableResponse struct {
	Schedule  []models.ScheduleEntry `json:"schedule"`
	Conflicts []models.Conflict      `json:"conflicts"`
	Stats     TimetableRunStats      `json:"stats"`
}

// CreateEntryRequest books a single manual schedule entry.
type CreateEntryRequest struct {
	SlotID    string `json:"slotId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	FacultyID string `json:"facultyId" validate:"required"`
	RoomID    string `json:"roomId" validate:"required"`
	BatchID   string `json:"batchId" validate:"required"`
}

// TimetableQuery filters the committed schedule listing.
type TimetableQuery struct {
	SlotID    string `form:"slotId" json:"slotId"`
	BatchID   string `form:"batchId" json:"batchId"`
	FacultyID string `form:"facultyId" json:"facultyId"`
	RoomID    string `form:"roomId" json:"roomId"`
	SubjectID string `form:"subjectId" json:"subjectId"`
	Day       string `form:"day" json:"day"`
}
