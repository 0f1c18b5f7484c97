package models

import (
	"time"

	"github.com/google/uuid"
)

type Department struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Shift times are wall-clock "HH:MM" strings; an end time earlier than the
// start time means the shift runs past midnight.
type Shift struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	StartTime   string    `json:"start_time" db:"start_time"`
	EndTime     string    `json:"end_time" db:"end_time"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Employee struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Code         string     `json:"code" db:"code"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Email        *string    `json:"email,omitempty" db:"email"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty" db:"department_id"`
	ShiftID      *uuid.UUID `json:"shift_id,omitempty" db:"shift_id"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// FaceDescriptor is one enrolled face record. Payload holds the encoded
// descriptor record (see recognition.DecodeRecord); Embedding duplicates the
// vector in a pgvector column for nearest-neighbour queries.
type FaceDescriptor struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	EmployeeID         uuid.UUID `json:"employee_id" db:"employee_id"`
	Format             string    `json:"format" db:"format"`
	Payload            []byte    `json:"-" db:"payload"`
	Embedding          []float32 `json:"-" db:"embedding"`
	LivenessConfidence float64   `json:"liveness_confidence" db:"liveness_confidence"`
	ImageKey           string    `json:"image_key" db:"image_key"`
	EnrolledAt         time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// Descriptor record format tags.
const (
	FormatVector = "vector"
	FormatLegacy = "legacy"
)
