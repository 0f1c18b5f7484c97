package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceEvent is the single attendance row for one employee and one
// calendar date. A recognized check-in on a day whose event is already
// closed reopens it in place rather than creating a second row.
type AttendanceEvent struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	EmployeeID       uuid.UUID  `json:"employee_id" db:"employee_id"`
	Date             time.Time  `json:"date" db:"attendance_date"`
	CheckInTime      *time.Time `json:"check_in_time,omitempty" db:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time,omitempty" db:"check_out_time"`
	CheckInImageKey  string     `json:"-" db:"check_in_image_key"`
	CheckOutImageKey string     `json:"-" db:"check_out_image_key"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the event has a check-in but no check-out yet.
func (a AttendanceEvent) IsOpen() bool {
	return a.CheckInTime != nil && a.CheckOutTime == nil
}

// WorkingHours returns the worked duration in hours, or 0 when the event
// is not complete.
func (a AttendanceEvent) WorkingHours() float64 {
	if a.CheckInTime == nil || a.CheckOutTime == nil {
		return 0
	}
	return a.CheckOutTime.Sub(*a.CheckInTime).Hours()
}

func (a AttendanceEvent) Status() string {
	switch {
	case a.CheckInTime == nil:
		return "Absent"
	case a.CheckOutTime == nil:
		return "Working"
	default:
		return "Completed"
	}
}

// CheckInRecord is the slim history row the recency booster consumes.
type CheckInRecord struct {
	EmployeeID  uuid.UUID `json:"employee_id" db:"employee_id"`
	CheckInTime time.Time `json:"check_in_time" db:"check_in_time"`
}

// AttendanceNotice is the message published to NATS after a recognition
// commits a state transition.
type AttendanceNotice struct {
	EventID            uuid.UUID `json:"event_id"`
	EmployeeID         uuid.UUID `json:"employee_id"`
	EmployeeCode       string    `json:"employee_code"`
	EmployeeName       string    `json:"employee_name"`
	Action             string    `json:"action"` // check_in or check_out
	OccurredAt         time.Time `json:"occurred_at"`
	CombinedScore      float64   `json:"combined_score"`
	LivenessConfidence float64   `json:"liveness_confidence"`
	ImageKey           string    `json:"image_key,omitempty"`
}

// Notification is a persisted feed entry derived from attendance notices.
type Notification struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Action     string    `json:"action" db:"action"`
	Message    string    `json:"message" db:"message"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
