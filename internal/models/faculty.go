package models

import (
	"time"

	"github.com/lib/pq"
)

// Faculty represents an instructor record. Expertise lists the subject ids
// the instructor may teach; MaxLoad is an advisory weekly-hour cap and is
// not enforced by the allocator.
type Faculty struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Email      string         `db:"email" json:"email"`
	Department string         `db:"department" json:"department"`
	MaxLoad    int            `db:"max_load" json:"max_load"`
	Expertise  pq.StringArray `db:"expertise" json:"expertise"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// CanTeach reports whether the subject id appears in the expertise set.
func (f Faculty) CanTeach(subjectID string) bool {
	for _, id := range f.Expertise {
		if id == subjectID {
			return true
		}
	}
	return false
}

// FacultyFilter captures filtering options for listing faculty.
type FacultyFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
