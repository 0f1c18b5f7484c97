package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/models"
	"github.com/your-org/faceattend/internal/recognition"
	"github.com/your-org/faceattend/internal/storage"
	"github.com/your-org/faceattend/pkg/dto"
)

// lateGrace is how far past shift start a check-in still counts on time.
const lateGrace = 15 * time.Minute

type AttendanceHandler struct {
	db     *storage.PostgresStore
	minio  *storage.MinIOStore
	engine *recognition.Engine
}

func NewAttendanceHandler(db *storage.PostgresStore, minio *storage.MinIOStore, engine *recognition.Engine) *AttendanceHandler {
	return &AttendanceHandler{db: db, minio: minio, engine: engine}
}

// Recognize accepts one capture, identifies the employee and records a
// check-in or check-out. Rejections map onto distinct error codes so the
// kiosk can show a meaningful message.
func (h *AttendanceHandler) Recognize(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	outcome, err := h.engine.RecognizeAndMark(c.Request.Context(), imageData)
	if err != nil {
		writeRecognitionError(c, err)
		return
	}

	resp := dto.RecognizeResponse{
		EmployeeID:         outcome.Employee.ID,
		EmployeeCode:       outcome.Employee.Code,
		EmployeeName:       outcome.Employee.FullName(),
		Action:             outcome.Action,
		CombinedScore:      outcome.CombinedScore,
		Similarity:         outcome.Similarity,
		RecencyBonus:       outcome.RecencyBonus,
		LivenessConfidence: outcome.LivenessConfidence,
		CheckInTime:        outcome.Event.CheckInTime,
		CheckOutTime:       outcome.Event.CheckOutTime,
		WorkedHours:        outcome.Event.WorkingHours(),
	}
	c.JSON(http.StatusOK, resp)
}

func writeRecognitionError(c *gin.Context, err error) {
	var (
		inputErr    *recognition.InputError
		livenessErr *recognition.LivenessError
		noMatchErr  *recognition.NoMatchError
	)

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":  "rejected_input",
			"error": inputErr.Reason,
		})
	case errors.As(err, &livenessErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":       "liveness_rejected",
			"error":      livenessErr.Error(),
			"confidence": livenessErr.Confidence,
			"reason":     livenessErr.Reason,
		})
	case errors.Is(err, recognition.ErrNoEnrollment):
		c.JSON(http.StatusNotFound, gin.H{
			"code":  "no_enrollment",
			"error": err.Error(),
		})
	case errors.As(err, &noMatchErr):
		c.JSON(http.StatusNotFound, gin.H{
			"code":       "no_match",
			"error":      noMatchErr.Error(),
			"best_score": noMatchErr.Score,
			"threshold":  noMatchErr.Threshold,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "system_error",
			"error": err.Error(),
		})
	}
}

// Today lists every attendance row for one day (default: today).
func (h *AttendanceHandler) Today(c *gin.Context) {
	day, err := parseDay(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	rows, err := h.db.AttendanceForDay(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AttendanceEventResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, dto.AttendanceEventResponse{
			ID:           r.Event.ID,
			EmployeeID:   r.Event.EmployeeID,
			EmployeeCode: r.EmployeeCode,
			EmployeeName: r.EmployeeName,
			Date:         r.Event.Date.Format("2006-01-02"),
			CheckInTime:  r.Event.CheckInTime,
			CheckOutTime: r.Event.CheckOutTime,
			Status:       r.Event.Status(),
			WorkedHours:  r.Event.WorkingHours(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "events": resp, "total": len(resp)})
}

// Stats summarizes one day: headcount, check-ins, check-outs, absences.
func (h *AttendanceHandler) Stats(c *gin.Context) {
	day, err := parseDay(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	st, err := h.db.StatsForDay(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dayStatsResponse(st))
}

func dayStatsResponse(st *storage.DayStats) dto.DayStatsResponse {
	absent := st.TotalEmployees - st.CheckedIn
	if absent < 0 {
		absent = 0
	}
	rate := 0.0
	if st.TotalEmployees > 0 {
		rate = float64(st.CheckedIn) / float64(st.TotalEmployees)
	}
	return dto.DayStatsResponse{
		Date:           st.Date.Format("2006-01-02"),
		TotalEmployees: st.TotalEmployees,
		CheckedIn:      st.CheckedIn,
		CheckedOut:     st.CheckedOut,
		Absent:         absent,
		AttendanceRate: rate,
	}
}

// WeeklyOverview returns the per-day stats for the 7 days starting at
// ?from (default: the current week's Monday).
func (h *AttendanceHandler) WeeklyOverview(c *gin.Context) {
	var from time.Time
	var err error
	if fromStr := c.Query("from"); fromStr != "" {
		if from, err = parseDay(fromStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
	} else {
		from = mondayOf(time.Now())
	}
	to := from.AddDate(0, 0, 6)

	resp := dto.WeeklyOverviewResponse{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		st, err := h.db.StatsForDay(c.Request.Context(), d)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp.Days = append(resp.Days, dayStatsResponse(st))
	}
	c.JSON(http.StatusOK, resp)
}

// Calendar returns shift-aware attendance entries for a date range,
// optionally restricted to one employee via ?employee_id.
func (h *AttendanceHandler) Calendar(c *gin.Context) {
	from, err := parseDay(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to := from
	if toStr := c.Query("to"); toStr != "" {
		if to, err = parseDay(toStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
	}

	var employeeID *uuid.UUID
	if idStr := c.Query("employee_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
			return
		}
		employeeID = &id
	}

	rows, err := h.db.CalendarRange(c.Request.Context(), from, to, employeeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	shifts, err := h.db.ListShifts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	shiftByID := make(map[uuid.UUID]models.Shift, len(shifts))
	for _, sh := range shifts {
		shiftByID[sh.ID] = sh
	}

	resp := dto.CalendarResponse{
		From:    from.Format("2006-01-02"),
		To:      to.Format("2006-01-02"),
		Entries: make([]dto.CalendarEntry, 0, len(rows)),
		Summary: make(map[string]int),
	}
	for _, r := range rows {
		ev := r.Event
		entry := dto.CalendarEntry{
			ID:           ev.ID,
			EmployeeID:   ev.EmployeeID,
			EmployeeCode: r.EmployeeCode,
			EmployeeName: r.EmployeeName,
			Date:         ev.Date.Format("2006-01-02"),
			CheckInTime:  ev.CheckInTime,
			CheckOutTime: ev.CheckOutTime,
			Status:       ev.Status(),
			WorkedHours:  ev.WorkingHours(),
		}
		if r.ShiftID != nil {
			if sh, ok := shiftByID[*r.ShiftID]; ok {
				entry.ShiftStatus = calendarShiftStatus(sh, ev)
			}
		}
		if entry.ShiftStatus != "" {
			resp.Summary[entry.ShiftStatus]++
		}
		resp.Entries = append(resp.Entries, entry)
	}
	c.JSON(http.StatusOK, resp)
}

// calendarShiftStatus classifies an event against the shift window: late
// check-in, early check-out, both, or on time, each with the grace window.
func calendarShiftStatus(shift models.Shift, ev models.AttendanceEvent) string {
	if ev.CheckInTime == nil {
		return ""
	}
	start, err := shift.StartOn(ev.Date)
	if err != nil {
		return ""
	}
	end, err := shift.EndOn(ev.Date)
	if err != nil {
		return ""
	}

	late := ev.CheckInTime.After(start.Add(lateGrace))
	early := ev.CheckOutTime != nil && ev.CheckOutTime.Before(end.Add(-lateGrace))

	switch {
	case late && early:
		return "late_early"
	case late:
		return "late"
	case early:
		return "early"
	default:
		return "on_time"
	}
}

// Report returns one employee's events in a date range, annotated with
// shift punctuality when the employee has an assigned shift.
func (h *AttendanceHandler) Report(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	from, err := parseDay(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to := from.AddDate(0, 0, 6)
	if toStr := c.Query("to"); toStr != "" {
		if to, err = parseDay(toStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
	}

	emp, err := h.db.GetEmployee(c.Request.Context(), employeeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}

	var shift *models.Shift
	if emp.ShiftID != nil {
		if shift, err = h.db.GetShift(c.Request.Context(), *emp.ShiftID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	events, err := h.db.AttendanceRange(c.Request.Context(), employeeID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AttendanceEventResponse, 0, len(events))
	for _, ev := range events {
		row := dto.AttendanceEventResponse{
			ID:           ev.ID,
			EmployeeID:   ev.EmployeeID,
			EmployeeCode: emp.Code,
			EmployeeName: emp.FullName(),
			Date:         ev.Date.Format("2006-01-02"),
			CheckInTime:  ev.CheckInTime,
			CheckOutTime: ev.CheckOutTime,
			Status:       ev.Status(),
			WorkedHours:  ev.WorkingHours(),
		}
		if shift != nil && ev.CheckInTime != nil {
			row.ShiftStatus, row.LateBy = shiftStatus(*shift, ev.Date, *ev.CheckInTime)
		}
		resp = append(resp, row)
	}
	c.JSON(http.StatusOK, gin.H{"employee_id": employeeID, "events": resp, "total": len(resp)})
}

// shiftStatus classifies a check-in against the shift start with a grace
// window.
func shiftStatus(shift models.Shift, day, checkIn time.Time) (string, string) {
	start, err := shift.StartOn(day)
	if err != nil {
		return "", ""
	}
	deadline := start.Add(lateGrace)
	if !checkIn.After(deadline) {
		return "on_time", ""
	}
	return "late", checkIn.Sub(start).Round(time.Minute).String()
}

// Weekly returns an employee's hours per day for the 7 days starting at
// ?from (default: the current week's Monday).
func (h *AttendanceHandler) Weekly(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	var from time.Time
	if fromStr := c.Query("from"); fromStr != "" {
		if from, err = parseDay(fromStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
	} else {
		from = mondayOf(time.Now())
	}
	to := from.AddDate(0, 0, 6)

	events, err := h.db.AttendanceRange(c.Request.Context(), employeeID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byDate := make(map[string]float64, len(events))
	for _, ev := range events {
		byDate[ev.Date.Format("2006-01-02")] = ev.WorkingHours()
	}

	resp := dto.WeeklyHoursResponse{
		EmployeeID: employeeID,
		From:       from.Format("2006-01-02"),
		To:         to.Format("2006-01-02"),
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		hours := byDate[key]
		resp.Days = append(resp.Days, dto.DailyHour{Date: key, Hours: hours})
		resp.TotalHours += hours
	}
	c.JSON(http.StatusOK, resp)
}

// Image streams the stored capture for an attendance event. ?which=out
// selects the check-out capture; the default is the check-in one.
func (h *AttendanceHandler) Image(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendance id"})
		return
	}

	ev, err := h.db.GetAttendanceByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attendance event not found"})
		return
	}

	key := ev.CheckInImageKey
	if c.Query("which") == "out" {
		key = ev.CheckOutImageKey
	}
	if key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no capture stored"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "capture unavailable"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

func mondayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
