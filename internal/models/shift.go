package models

import (
	"fmt"
	"time"
)

// StartOn resolves the shift's start instant for a given calendar date,
// in that date's location.
func (s Shift) StartOn(day time.Time) (time.Time, error) {
	return clockOn(day, s.StartTime)
}

// EndOn resolves the shift's end instant for a given calendar date. For
// overnight shifts the end lands on the next day.
func (s Shift) EndOn(day time.Time) (time.Time, error) {
	end, err := clockOn(day, s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	if s.IsOvernight() {
		end = end.AddDate(0, 0, 1)
	}
	return end, nil
}

// IsOvernight reports whether the shift crosses midnight. Comparison on
// the "HH:MM" strings is lexicographic, which matches clock order.
func (s Shift) IsOvernight() bool {
	return s.EndTime < s.StartTime
}

func clockOn(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse shift time %q: %w", hhmm, err)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
