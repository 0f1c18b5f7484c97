package models

import (
	"testing"
	"time"
)

func TestShiftClockResolution(t *testing.T) {
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		shift     Shift
		wantStart time.Time
		wantEnd   time.Time
		overnight bool
	}{
		{
			name:      "day shift",
			shift:     Shift{StartTime: "09:00", EndTime: "17:30"},
			wantStart: time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 16, 17, 30, 0, 0, time.UTC),
		},
		{
			name:      "night shift ends next day",
			shift:     Shift{StartTime: "22:00", EndTime: "06:00"},
			wantStart: time.Date(2026, 3, 16, 22, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 17, 6, 0, 0, 0, time.UTC),
			overnight: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shift.IsOvernight(); got != tt.overnight {
				t.Errorf("IsOvernight = %v, want %v", got, tt.overnight)
			}

			start, err := tt.shift.StartOn(day)
			if err != nil {
				t.Fatalf("StartOn: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}

			end, err := tt.shift.EndOn(day)
			if err != nil {
				t.Fatalf("EndOn: %v", err)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestShiftRejectsMalformedTimes(t *testing.T) {
	day := time.Now()
	sh := Shift{StartTime: "9am", EndTime: "17:00"}

	if _, err := sh.StartOn(day); err == nil {
		t.Error("StartOn accepted a non HH:MM value")
	}
	if _, err := (Shift{StartTime: "09:00", EndTime: "25:00"}).EndOn(day); err == nil {
		t.Error("EndOn accepted an out-of-range hour")
	}
}
