package handlers

import (
	"testing"
	"time"

	"github.com/your-org/faceattend/internal/models"
)

func ts(day time.Time, hour, minute int) *time.Time {
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	return &t
}

func TestCalendarShiftStatus(t *testing.T) {
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	dayShift := models.Shift{StartTime: "09:00", EndTime: "17:00"}
	nightShift := models.Shift{StartTime: "22:00", EndTime: "06:00"}

	tests := []struct {
		name  string
		shift models.Shift
		in    *time.Time
		out   *time.Time
		want  string
	}{
		{"on time within grace", dayShift, ts(day, 9, 10), ts(day, 17, 5), "on_time"},
		{"late check-in", dayShift, ts(day, 9, 30), ts(day, 17, 30), "late"},
		{"early check-out", dayShift, ts(day, 8, 55), ts(day, 16, 0), "early"},
		{"late and early", dayShift, ts(day, 10, 0), ts(day, 15, 0), "late_early"},
		{"still working counts check-in only", dayShift, ts(day, 9, 45), nil, "late"},
		{"no check-in", dayShift, nil, nil, ""},
		{"overnight shift end lands next day", nightShift, ts(day, 22, 5), ts(day.AddDate(0, 0, 1), 6, 0), "on_time"},
		{"overnight early check-out", nightShift, ts(day, 22, 0), ts(day, 23, 30), "early"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := models.AttendanceEvent{
				Date:         day,
				CheckInTime:  tt.in,
				CheckOutTime: tt.out,
			}
			if got := calendarShiftStatus(tt.shift, ev); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShiftStatusGrace(t *testing.T) {
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	shift := models.Shift{StartTime: "09:00", EndTime: "17:00"}

	status, lateBy := shiftStatus(shift, day, *ts(day, 9, 15))
	if status != "on_time" || lateBy != "" {
		t.Errorf("at grace boundary: status = %q late_by = %q, want on_time", status, lateBy)
	}

	status, lateBy = shiftStatus(shift, day, *ts(day, 9, 40))
	if status != "late" {
		t.Fatalf("status = %q, want late", status)
	}
	if lateBy != "40m0s" {
		t.Errorf("late_by = %q, want 40m0s", lateBy)
	}
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"wednesday", time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC), "2026-03-16"},
		{"monday itself", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), "2026-03-16"},
		{"sunday belongs to the week before", time.Date(2026, 3, 22, 10, 0, 0, 0, time.UTC), "2026-03-16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mondayOf(tt.in).Format("2006-01-02"); got != tt.want {
				t.Errorf("mondayOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	got, err := parseDay("2026-03-16")
	if err != nil {
		t.Fatalf("parseDay: %v", err)
	}
	if got.Format("2006-01-02") != "2026-03-16" {
		t.Errorf("parsed = %v", got)
	}

	if _, err := parseDay("16/03/2026"); err == nil {
		t.Error("parseDay accepted a non ISO date")
	}

	today, err := parseDay("")
	if err != nil {
		t.Fatalf("parseDay empty: %v", err)
	}
	if today.Hour() != 0 || today.Minute() != 0 {
		t.Errorf("empty input should resolve to midnight, got %v", today)
	}
}
