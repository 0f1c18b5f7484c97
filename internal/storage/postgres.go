package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/faceattend/internal/config"
	"github.com/your-org/faceattend/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the schema. The UNIQUE constraint on (employee_id,
// attendance_date) backs the one-row-per-day invariant that MarkAttendance
// relies on.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS departments (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS shifts (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			department_id UUID REFERENCES departments(id),
			shift_id UUID REFERENCES shifts(id),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS face_descriptors (
			id UUID PRIMARY KEY,
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			format TEXT NOT NULL,
			payload BYTEA NOT NULL,
			embedding vector(512),
			liveness_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			image_key TEXT NOT NULL DEFAULT '',
			enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_face_descriptors_employee ON face_descriptors(employee_id)`,
		`CREATE TABLE IF NOT EXISTS attendance_events (
			id UUID PRIMARY KEY,
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			attendance_date DATE NOT NULL,
			check_in_time TIMESTAMPTZ,
			check_out_time TIMESTAMPTZ,
			check_in_image_key TEXT NOT NULL DEFAULT '',
			check_out_image_key TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (employee_id, attendance_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_events_date ON attendance_events(attendance_date)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			employee_id UUID NOT NULL,
			action TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- Departments ---

func (s *PostgresStore) CreateDepartment(ctx context.Context, name, description string) (*models.Department, error) {
	d := &models.Department{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO departments (id, name, description) VALUES ($1, $2, $3) RETURNING created_at`,
		d.ID, d.Name, d.Description,
	).Scan(&d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, nil
}

func (s *PostgresStore) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("department not found")
	}
	return nil
}

// --- Shifts ---

func (s *PostgresStore) CreateShift(ctx context.Context, sh *models.Shift) error {
	sh.ID = uuid.New()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO shifts (id, name, start_time, end_time, description) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		sh.ID, sh.Name, sh.StartTime, sh.EndTime, sh.Description,
	).Scan(&sh.CreatedAt)
	if err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListShifts(ctx context.Context) ([]models.Shift, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, start_time, end_time, description, created_at FROM shifts ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []models.Shift
	for rows.Next() {
		var sh models.Shift
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.StartTime, &sh.EndTime, &sh.Description, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, nil
}

func (s *PostgresStore) GetShift(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	sh := &models.Shift{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, start_time, end_time, description, created_at FROM shifts WHERE id = $1`, id,
	).Scan(&sh.ID, &sh.Name, &sh.StartTime, &sh.EndTime, &sh.Description, &sh.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) DeleteShift(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shift not found")
	}
	return nil
}

// --- Employees ---

func (s *PostgresStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	e.ID = uuid.New()
	e.IsActive = true
	err := s.pool.QueryRow(ctx,
		`INSERT INTO employees (id, code, first_name, last_name, email, phone, department_id, shift_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`,
		e.ID, e.Code, e.FirstName, e.LastName, e.Email, e.Phone, e.DepartmentID, e.ShiftID, e.IsActive,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE employees
		 SET code = $2, first_name = $3, last_name = $4, email = $5, phone = $6,
		     department_id = $7, shift_id = $8, is_active = $9, updated_at = now()
		 WHERE id = $1 RETURNING updated_at`,
		e.ID, e.Code, e.FirstName, e.LastName, e.Email, e.Phone, e.DepartmentID, e.ShiftID, e.IsActive,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("employee not found")
		}
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e := &models.Employee{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, first_name, last_name, email, phone, department_id, shift_id, is_active, created_at, updated_at
		 FROM employees WHERE id = $1`, id,
	).Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.DepartmentID, &e.ShiftID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error) {
	e := &models.Employee{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, first_name, last_name, email, phone, department_id, shift_id, is_active, created_at, updated_at
		 FROM employees WHERE code = $1`, code,
	).Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.DepartmentID, &e.ShiftID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee by code: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListEmployees(ctx context.Context, activeOnly bool) ([]models.Employee, error) {
	query := `SELECT id, code, first_name, last_name, email, phone, department_id, shift_id, is_active, created_at, updated_at
	          FROM employees`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY code`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
			&e.DepartmentID, &e.ShiftID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// DeactivateEmployee soft-deletes: attendance history outlives employment.
func (s *PostgresStore) DeactivateEmployee(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE employees SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee not found")
	}
	return nil
}

// --- Face descriptors ---

// ReplaceDescriptor deletes any previous enrollment for the employee and
// inserts the new record, in one transaction. The advisory lock serializes
// concurrent re-registrations of the same employee so two racing requests
// cannot leave two rows behind.
func (s *PostgresStore) ReplaceDescriptor(ctx context.Context, desc *models.FaceDescriptor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace descriptor: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, "descriptor:"+desc.EmployeeID.String()); err != nil {
		return fmt.Errorf("lock descriptor row: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM face_descriptors WHERE employee_id = $1`, desc.EmployeeID); err != nil {
		return fmt.Errorf("delete old descriptor: %w", err)
	}

	var vec *pgvector.Vector
	if len(desc.Embedding) > 0 {
		v := pgvector.NewVector(desc.Embedding)
		vec = &v
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO face_descriptors (id, employee_id, format, payload, embedding, liveness_confidence, image_key, enrolled_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		desc.ID, desc.EmployeeID, desc.Format, desc.Payload, vec,
		desc.LivenessConfidence, desc.ImageKey, desc.EnrolledAt); err != nil {
		return fmt.Errorf("insert descriptor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace descriptor: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDescriptors(ctx context.Context) ([]models.FaceDescriptor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.employee_id, d.format, d.payload, d.liveness_confidence, d.image_key, d.enrolled_at
		 FROM face_descriptors d
		 JOIN employees e ON e.id = d.employee_id
		 WHERE e.is_active`)
	if err != nil {
		return nil, fmt.Errorf("list descriptors: %w", err)
	}
	defer rows.Close()

	var descriptors []models.FaceDescriptor
	for rows.Next() {
		var d models.FaceDescriptor
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Format, &d.Payload,
			&d.LivenessConfidence, &d.ImageKey, &d.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan descriptor: %w", err)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func (s *PostgresStore) GetDescriptor(ctx context.Context, employeeID uuid.UUID) (*models.FaceDescriptor, error) {
	d := &models.FaceDescriptor{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, employee_id, format, payload, liveness_confidence, image_key, enrolled_at
		 FROM face_descriptors WHERE employee_id = $1`, employeeID,
	).Scan(&d.ID, &d.EmployeeID, &d.Format, &d.Payload,
		&d.LivenessConfidence, &d.ImageKey, &d.EnrolledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get descriptor: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) DeleteDescriptor(ctx context.Context, employeeID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM face_descriptors WHERE employee_id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("delete descriptor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("descriptor not found")
	}
	return nil
}

func (s *PostgresStore) CountDescriptors(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM face_descriptors`).Scan(&count)
	return count, err
}

type NearMatch struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Similarity float64   `json:"similarity"`
}

// NearestDescriptor returns the enrolled employee whose embedding is
// closest to the given one. Used to warn when a new enrollment looks like
// a near-duplicate of an existing employee.
func (s *PostgresStore) NearestDescriptor(ctx context.Context, embedding []float32, excludeEmployee uuid.UUID) (*NearMatch, error) {
	vec := pgvector.NewVector(embedding)
	m := &NearMatch{}
	err := s.pool.QueryRow(ctx,
		`SELECT employee_id, 1 - (embedding <=> $1) AS similarity
		 FROM face_descriptors
		 WHERE embedding IS NOT NULL AND employee_id <> $2
		 ORDER BY embedding <=> $1
		 LIMIT 1`, vec, excludeEmployee,
	).Scan(&m.EmployeeID, &m.Similarity)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("nearest descriptor: %w", err)
	}
	return m, nil
}

// --- Attendance ---

const attendanceColumns = `id, employee_id, attendance_date, check_in_time, check_out_time,
	check_in_image_key, check_out_image_key, created_at, updated_at`

func scanAttendance(row pgx.Row) (*models.AttendanceEvent, error) {
	ev := &models.AttendanceEvent{}
	err := row.Scan(&ev.ID, &ev.EmployeeID, &ev.Date, &ev.CheckInTime, &ev.CheckOutTime,
		&ev.CheckInImageKey, &ev.CheckOutImageKey, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// MarkAttendance applies one recognition to the employee's attendance row
// for the given day and reports the action taken: "check_in" or
// "check_out". Open event means check-out; a closed or missing event means
// check-in, reopening the closed row in place instead of creating a second
// one. The whole decision runs under a per-(employee, day) advisory lock
// so concurrent recognitions serialize into in/out pairs.
func (s *PostgresStore) MarkAttendance(ctx context.Context, employeeID uuid.UUID, day time.Time, at time.Time, imageKey string) (*models.AttendanceEvent, string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin mark attendance: %w", err)
	}
	defer tx.Rollback(ctx)

	lockKey := fmt.Sprintf("attendance:%s:%s", employeeID, day.Format("2006-01-02"))
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return nil, "", fmt.Errorf("lock attendance row: %w", err)
	}

	ev, err := scanAttendance(tx.QueryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_events
		 WHERE employee_id = $1 AND attendance_date = $2 FOR UPDATE`,
		employeeID, day))

	switch {
	case err == pgx.ErrNoRows:
		ev = &models.AttendanceEvent{
			ID:              uuid.New(),
			EmployeeID:      employeeID,
			Date:            day,
			CheckInTime:     &at,
			CheckInImageKey: imageKey,
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO attendance_events (id, employee_id, attendance_date, check_in_time, check_in_image_key)
			 VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`,
			ev.ID, ev.EmployeeID, ev.Date, ev.CheckInTime, ev.CheckInImageKey,
		).Scan(&ev.CreatedAt, &ev.UpdatedAt)
		if err != nil {
			return nil, "", fmt.Errorf("insert attendance: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, "", fmt.Errorf("commit mark attendance: %w", err)
		}
		return ev, "check_in", nil

	case err != nil:
		return nil, "", fmt.Errorf("load attendance: %w", err)
	}

	if ev.IsOpen() {
		ev.CheckOutTime = &at
		ev.CheckOutImageKey = imageKey
		err = tx.QueryRow(ctx,
			`UPDATE attendance_events
			 SET check_out_time = $2, check_out_image_key = $3, updated_at = now()
			 WHERE id = $1 RETURNING updated_at`,
			ev.ID, ev.CheckOutTime, ev.CheckOutImageKey,
		).Scan(&ev.UpdatedAt)
		if err != nil {
			return nil, "", fmt.Errorf("update attendance check-out: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, "", fmt.Errorf("commit mark attendance: %w", err)
		}
		return ev, "check_out", nil
	}

	// closed event: reopen in place
	ev.CheckInTime = &at
	ev.CheckInImageKey = imageKey
	ev.CheckOutTime = nil
	ev.CheckOutImageKey = ""
	err = tx.QueryRow(ctx,
		`UPDATE attendance_events
		 SET check_in_time = $2, check_in_image_key = $3,
		     check_out_time = NULL, check_out_image_key = '', updated_at = now()
		 WHERE id = $1 RETURNING updated_at`,
		ev.ID, ev.CheckInTime, ev.CheckInImageKey,
	).Scan(&ev.UpdatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("reopen attendance: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit mark attendance: %w", err)
	}
	return ev, "check_in", nil
}

func (s *PostgresStore) GetAttendanceByID(ctx context.Context, id uuid.UUID) (*models.AttendanceEvent, error) {
	ev, err := scanAttendance(s.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_events WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance by id: %w", err)
	}
	return ev, nil
}

func (s *PostgresStore) GetAttendanceEvent(ctx context.Context, employeeID uuid.UUID, day time.Time) (*models.AttendanceEvent, error) {
	ev, err := scanAttendance(s.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_events
		 WHERE employee_id = $1 AND attendance_date = $2`,
		employeeID, day))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return ev, nil
}

// RecentCheckIns feeds the recency booster: every check-in at or after
// the cutoff, across all employees.
func (s *PostgresStore) RecentCheckIns(ctx context.Context, since time.Time) ([]models.CheckInRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT employee_id, check_in_time FROM attendance_events
		 WHERE check_in_time IS NOT NULL AND check_in_time >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("recent check-ins: %w", err)
	}
	defer rows.Close()

	var records []models.CheckInRecord
	for rows.Next() {
		var rec models.CheckInRecord
		if err := rows.Scan(&rec.EmployeeID, &rec.CheckInTime); err != nil {
			return nil, fmt.Errorf("scan check-in record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// AttendanceRow joins the event with the employee identity for listings.
type AttendanceRow struct {
	Event        models.AttendanceEvent `json:"event"`
	EmployeeCode string                 `json:"employee_code"`
	EmployeeName string                 `json:"employee_name"`
}

func (s *PostgresStore) AttendanceForDay(ctx context.Context, day time.Time) ([]AttendanceRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.employee_id, a.attendance_date, a.check_in_time, a.check_out_time,
		        a.check_in_image_key, a.check_out_image_key, a.created_at, a.updated_at,
		        e.code, e.first_name || ' ' || e.last_name
		 FROM attendance_events a
		 JOIN employees e ON e.id = a.employee_id
		 WHERE a.attendance_date = $1
		 ORDER BY a.check_in_time`, day)
	if err != nil {
		return nil, fmt.Errorf("attendance for day: %w", err)
	}
	defer rows.Close()

	var result []AttendanceRow
	for rows.Next() {
		var r AttendanceRow
		ev := &r.Event
		if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ev.Date, &ev.CheckInTime, &ev.CheckOutTime,
			&ev.CheckInImageKey, &ev.CheckOutImageKey, &ev.CreatedAt, &ev.UpdatedAt,
			&r.EmployeeCode, &r.EmployeeName); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		result = append(result, r)
	}
	return result, nil
}

// AttendanceRange returns an employee's events between two dates inclusive.
func (s *PostgresStore) AttendanceRange(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]models.AttendanceEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_events
		 WHERE employee_id = $1 AND attendance_date BETWEEN $2 AND $3
		 ORDER BY attendance_date`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("attendance range: %w", err)
	}
	defer rows.Close()

	var events []models.AttendanceEvent
	for rows.Next() {
		ev := models.AttendanceEvent{}
		if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ev.Date, &ev.CheckInTime, &ev.CheckOutTime,
			&ev.CheckInImageKey, &ev.CheckOutImageKey, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// CalendarRow carries an event together with the identity and shift of its
// employee, for shift-aware calendar views.
type CalendarRow struct {
	Event        models.AttendanceEvent `json:"event"`
	EmployeeCode string                 `json:"employee_code"`
	EmployeeName string                 `json:"employee_name"`
	ShiftID      *uuid.UUID             `json:"shift_id,omitempty"`
}

// CalendarRange returns events between two dates inclusive, optionally
// restricted to one employee.
func (s *PostgresStore) CalendarRange(ctx context.Context, from, to time.Time, employeeID *uuid.UUID) ([]CalendarRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.employee_id, a.attendance_date, a.check_in_time, a.check_out_time,
		        a.check_in_image_key, a.check_out_image_key, a.created_at, a.updated_at,
		        e.code, e.first_name || ' ' || e.last_name, e.shift_id
		 FROM attendance_events a
		 JOIN employees e ON e.id = a.employee_id
		 WHERE a.attendance_date BETWEEN $1 AND $2
		   AND ($3::uuid IS NULL OR a.employee_id = $3)
		 ORDER BY a.attendance_date, e.code`, from, to, employeeID)
	if err != nil {
		return nil, fmt.Errorf("calendar range: %w", err)
	}
	defer rows.Close()

	var result []CalendarRow
	for rows.Next() {
		var r CalendarRow
		ev := &r.Event
		if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ev.Date, &ev.CheckInTime, &ev.CheckOutTime,
			&ev.CheckInImageKey, &ev.CheckOutImageKey, &ev.CreatedAt, &ev.UpdatedAt,
			&r.EmployeeCode, &r.EmployeeName, &r.ShiftID); err != nil {
			return nil, fmt.Errorf("scan calendar row: %w", err)
		}
		result = append(result, r)
	}
	return result, nil
}

// DayStats summarizes one day across all active employees.
type DayStats struct {
	Date           time.Time `json:"date"`
	TotalEmployees int       `json:"total_employees"`
	CheckedIn      int       `json:"checked_in"`
	CheckedOut     int       `json:"checked_out"`
}

func (s *PostgresStore) StatsForDay(ctx context.Context, day time.Time) (*DayStats, error) {
	st := &DayStats{Date: day}
	err := s.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM employees WHERE is_active),
		   COUNT(*) FILTER (WHERE a.check_in_time IS NOT NULL),
		   COUNT(*) FILTER (WHERE a.check_out_time IS NOT NULL)
		 FROM attendance_events a WHERE a.attendance_date = $1`, day,
	).Scan(&st.TotalEmployees, &st.CheckedIn, &st.CheckedOut)
	if err != nil {
		return nil, fmt.Errorf("stats for day: %w", err)
	}
	return st, nil
}

// --- Notifications ---

func (s *PostgresStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO notifications (id, employee_id, action, message) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		n.ID, n.EmployeeID, n.Action, n.Message,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, employee_id, action, message, created_at FROM notifications
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Action, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}
