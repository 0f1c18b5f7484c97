package recognition

import (
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/models"
	"github.com/your-org/faceattend/internal/observability"
)

// Candidate tracks the best similarity seen so far and the accumulated
// recency bonus for one employee. It lives only for the duration of a
// single recognition request.
type Candidate struct {
	EmployeeID   uuid.UUID
	Similarity   float64
	RecencyBonus float64
}

// MatchDescriptors scores the unknown descriptor against every stored
// record and keeps the single best match per employee. Records that fail
// to decode (corrupt, legacy, unknown format) are skipped and logged,
// never fatal to the pass.
func MatchDescriptors(unknown []float32, stored []models.FaceDescriptor) map[uuid.UUID]*Candidate {
	candidates := make(map[uuid.UUID]*Candidate)

	for _, d := range stored {
		rec, err := DecodeRecord(d.Payload)
		if err != nil {
			if errors.Is(err, ErrLegacyFormat) {
				slog.Info("skipping legacy descriptor record", "descriptor", d.ID, "employee", d.EmployeeID)
			} else {
				slog.Warn("skipping unreadable descriptor record", "descriptor", d.ID, "employee", d.EmployeeID, "error", err)
				observability.CorruptDescriptors.Inc()
			}
			continue
		}

		sim := CosineSimilarity(unknown, rec.Encoding)
		if sim < 0 {
			sim = 0
		}

		c, ok := candidates[d.EmployeeID]
		if !ok {
			candidates[d.EmployeeID] = &Candidate{EmployeeID: d.EmployeeID, Similarity: sim}
			continue
		}
		if sim > c.Similarity {
			c.Similarity = sim
		}
	}

	return candidates
}

// CosineSimilarity computes cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero-norm inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Min(1.0, math.Max(-1.0, cos))
}
