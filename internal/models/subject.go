package models

import "time"

// Subject represents an academic subject with weekly hour requirements.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	LectureHours int       `db:"lecture_hours" json:"lecture_hours"`
	LabHours     int       `db:"lab_hours" json:"lab_hours"`
	IsLab        bool      `db:"is_lab" json:"is_lab"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Search    string
	LabOnly   *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
