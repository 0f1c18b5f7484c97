package recognition

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/config"
	"github.com/your-org/faceattend/internal/models"
)

func recencyConfig() config.RecognitionConfig {
	return config.RecognitionConfig{
		CombinedThreshold: 0.55,
		FaceWeight:        0.8,
		RecencyWeight:     0.2,
		RecencyBonus:      0.05,
		RecencyFloor:      0.5,
		DecayDays:         14,
		LookbackDays:      7,
	}
}

func TestBoostCandidatesNoHistory(t *testing.T) {
	emp := uuid.New()
	candidates := map[uuid.UUID]*Candidate{
		emp: {EmployeeID: emp, Similarity: 0.9},
	}

	BoostCandidates(candidates, nil, time.Now(), recencyConfig())

	if candidates[emp].RecencyBonus != 0 {
		t.Errorf("bonus = %v, want 0 for empty history", candidates[emp].RecencyBonus)
	}
}

func TestBoostCandidatesAccumulates(t *testing.T) {
	now := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	emp := uuid.New()
	candidates := map[uuid.UUID]*Candidate{
		emp: {EmployeeID: emp, Similarity: 0.6},
	}

	// three check-ins earlier today: decay factor 1.0 each
	history := []models.CheckInRecord{
		{EmployeeID: emp, CheckInTime: now.Add(-1 * time.Hour)},
		{EmployeeID: emp, CheckInTime: now.Add(-2 * time.Hour)},
		{EmployeeID: emp, CheckInTime: now.Add(-3 * time.Hour)},
	}

	BoostCandidates(candidates, history, now, recencyConfig())

	want := 3 * 0.05
	if math.Abs(candidates[emp].RecencyBonus-want) > 1e-9 {
		t.Errorf("bonus = %v, want %v", candidates[emp].RecencyBonus, want)
	}
}

func TestBoostCandidatesDecay(t *testing.T) {
	now := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	emp := uuid.New()

	tests := []struct {
		name    string
		checkIn time.Time
		want    float64
	}{
		{"same day", now.Add(-2 * time.Hour), 0.05 * 1.0},
		{"7 days ago", now.AddDate(0, 0, -7), 0.05 * (1.0 - 7.0/14.0)},
		{"floor applies far back", now.AddDate(0, 0, -13), 0.05 * 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := map[uuid.UUID]*Candidate{
				emp: {EmployeeID: emp},
			}
			history := []models.CheckInRecord{{EmployeeID: emp, CheckInTime: tt.checkIn}}

			BoostCandidates(candidates, history, now, recencyConfig())

			if math.Abs(candidates[emp].RecencyBonus-tt.want) > 1e-9 {
				t.Errorf("bonus = %v, want %v", candidates[emp].RecencyBonus, tt.want)
			}
		})
	}
}

func TestBoostCandidatesIgnoresUnknownEmployees(t *testing.T) {
	known := uuid.New()
	stranger := uuid.New()
	candidates := map[uuid.UUID]*Candidate{
		known: {EmployeeID: known},
	}
	history := []models.CheckInRecord{
		{EmployeeID: stranger, CheckInTime: time.Now()},
	}

	BoostCandidates(candidates, history, time.Now(), recencyConfig())

	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want booster to never add entries", len(candidates))
	}
	if candidates[known].RecencyBonus != 0 {
		t.Errorf("bonus = %v, want 0", candidates[known].RecencyBonus)
	}
}
