package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEmployeeRequest struct {
	Code         string     `json:"code" binding:"required"`
	FirstName    string     `json:"first_name" binding:"required"`
	LastName     string     `json:"last_name" binding:"required"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	DepartmentID *uuid.UUID `json:"department_id"`
	ShiftID      *uuid.UUID `json:"shift_id"`
}

type UpdateEmployeeRequest struct {
	Code         *string    `json:"code"`
	FirstName    *string    `json:"first_name"`
	LastName     *string    `json:"last_name"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	DepartmentID *uuid.UUID `json:"department_id"`
	ShiftID      *uuid.UUID `json:"shift_id"`
	IsActive     *bool      `json:"is_active"`
}

type EmployeeResponse struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	ShiftID      *uuid.UUID `json:"shift_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	HasFaceData  bool       `json:"has_face_data"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FaceDataResponse describes an employee's enrollment without exposing
// the descriptor vector itself.
type FaceDataResponse struct {
	EmployeeID         uuid.UUID `json:"employee_id"`
	Format             string    `json:"format"`
	LivenessConfidence float64   `json:"liveness_confidence"`
	ImageKey           string    `json:"image_key,omitempty"`
	EnrolledAt         time.Time `json:"enrolled_at"`
}

// RegisterFaceResponse reports a completed enrollment. NearDuplicate is
// set when another employee's descriptor is suspiciously close.
type RegisterFaceResponse struct {
	EmployeeID         uuid.UUID      `json:"employee_id"`
	LivenessConfidence float64        `json:"liveness_confidence"`
	EnrolledAt         time.Time      `json:"enrolled_at"`
	NearDuplicate      *NearDuplicate `json:"near_duplicate,omitempty"`
}

type NearDuplicate struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Similarity float64   `json:"similarity"`
}
