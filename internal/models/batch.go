package models

import (
	"time"

	"github.com/lib/pq"
)

// Batch represents a student cohort and the subject ids it must take.
type Batch struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Size      int            `db:"size" json:"size"`
	Program   string         `db:"program" json:"program"`
	Subjects  pq.StringArray `db:"subjects" json:"subjects"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// BatchFilter defines filter criteria for listing batches.
type BatchFilter struct {
	Program   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
