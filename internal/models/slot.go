package models

import (
	"fmt"
	"time"
)

// Weekdays covered by the teaching grid, in calendar order.
var Weekdays = []string{"MON", "TUE", "WED", "THU", "FRI"}

// Slot is one fixed weekday/hour teaching period.
type Slot struct {
	ID          string    `db:"id" json:"id"`
	Day         string    `db:"day" json:"day"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	PeriodIndex int       `db:"period_index" json:"period_index"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DefaultSlotGrid builds the standard MON-FRI grid of 1-hour slots
// from 9:00 to 17:00. Slot ids follow the <DAY>-<hour> convention.
func DefaultSlotGrid() []Slot {
	const (
		startHour = 9
		endHour   = 17
	)

	slots := make([]Slot, 0, len(Weekdays)*(endHour-startHour))
	for _, day := range Weekdays {
		for h := startHour; h < endHour; h++ {
			slots = append(slots, Slot{
				ID:          fmt.Sprintf("%s-%d", day, h),
				Day:         day,
				StartTime:   fmt.Sprintf("%d:00", h),
				EndTime:     fmt.Sprintf("%d:00", h+1),
				PeriodIndex: h - startHour,
			})
		}
	}
	return slots
}
