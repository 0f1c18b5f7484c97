package dto

import (
	"time"

	"github.com/google/uuid"
)

// RecognizeResponse is returned for a successful check-in/check-out.
type RecognizeResponse struct {
	EmployeeID         uuid.UUID  `json:"employee_id"`
	EmployeeCode       string     `json:"employee_code"`
	EmployeeName       string     `json:"employee_name"`
	Action             string     `json:"action"`
	CombinedScore      float64    `json:"combined_score"`
	Similarity         float64    `json:"similarity"`
	RecencyBonus       float64    `json:"recency_bonus"`
	LivenessConfidence float64    `json:"liveness_confidence"`
	CheckInTime        *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime       *time.Time `json:"check_out_time,omitempty"`
	WorkedHours        float64    `json:"worked_hours"`
}

// AttendanceEventResponse is one attendance row in listings and reports.
type AttendanceEventResponse struct {
	ID           uuid.UUID  `json:"id"`
	EmployeeID   uuid.UUID  `json:"employee_id"`
	EmployeeCode string     `json:"employee_code,omitempty"`
	EmployeeName string     `json:"employee_name,omitempty"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Status       string     `json:"status"`
	WorkedHours  float64    `json:"worked_hours"`
	// ShiftStatus is "on_time", "late" or "" when the employee has no shift.
	ShiftStatus string `json:"shift_status,omitempty"`
	LateBy      string `json:"late_by,omitempty"`
}

// DayStatsResponse summarizes one day.
type DayStatsResponse struct {
	Date           string  `json:"date"`
	TotalEmployees int     `json:"total_employees"`
	CheckedIn      int     `json:"checked_in"`
	CheckedOut     int     `json:"checked_out"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// WeeklyOverviewResponse is the per-day headcount for one week.
type WeeklyOverviewResponse struct {
	From string             `json:"from"`
	To   string             `json:"to"`
	Days []DayStatsResponse `json:"days"`
}

// CalendarEntry is one event annotated with shift punctuality.
type CalendarEntry struct {
	ID           uuid.UUID  `json:"id"`
	EmployeeID   uuid.UUID  `json:"employee_id"`
	EmployeeCode string     `json:"employee_code"`
	EmployeeName string     `json:"employee_name"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Status       string     `json:"status"`
	WorkedHours  float64    `json:"worked_hours"`
	// ShiftStatus is on_time, late, early or late_early; empty when the
	// employee has no assigned shift.
	ShiftStatus string `json:"shift_status,omitempty"`
}

// CalendarResponse groups entries for a date range with status totals.
type CalendarResponse struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Entries []CalendarEntry `json:"entries"`
	Summary map[string]int  `json:"summary"`
}

// WeeklyHoursResponse is one employee's worked hours per day.
type WeeklyHoursResponse struct {
	EmployeeID uuid.UUID   `json:"employee_id"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Days       []DailyHour `json:"days"`
	TotalHours float64     `json:"total_hours"`
}

type DailyHour struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// WSNotice is the message the WebSocket hub pushes to dashboards.
type WSNotice struct {
	Type               string    `json:"type"`
	EventID            uuid.UUID `json:"event_id"`
	EmployeeID         uuid.UUID `json:"employee_id"`
	EmployeeCode       string    `json:"employee_code"`
	EmployeeName       string    `json:"employee_name"`
	Action             string    `json:"action"`
	OccurredAt         time.Time `json:"occurred_at"`
	CombinedScore      float64   `json:"combined_score"`
	LivenessConfidence float64   `json:"liveness_confidence"`
}

// NotificationResponse is one persisted feed entry.
type NotificationResponse struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Action     string    `json:"action"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
