package recognition

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/config"
	"github.com/your-org/faceattend/internal/models"
)

// BoostCandidates adds an attendance-recency bonus to candidates that
// checked in during the lookback window. History rows for employees not
// already in the candidate map are ignored; the booster never introduces
// new candidates. Bonuses accumulate across records; the cap to 1.0 is
// applied later, when the decision engine weighs the bonus.
func BoostCandidates(candidates map[uuid.UUID]*Candidate, history []models.CheckInRecord, now time.Time, cfg config.RecognitionConfig) {
	for _, rec := range history {
		c, ok := candidates[rec.EmployeeID]
		if !ok {
			continue
		}

		daysAgo := int(now.Sub(rec.CheckInTime).Hours() / 24)
		factor := 1.0 - float64(daysAgo)/float64(cfg.DecayDays)
		if factor < cfg.RecencyFloor {
			factor = cfg.RecencyFloor
		}

		c.RecencyBonus += cfg.RecencyBonus * factor
	}
}
