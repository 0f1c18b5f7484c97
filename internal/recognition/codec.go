package recognition

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/models"
)

// Record is the serialized form of one enrolled descriptor. Older
// deployments stored raw face crops under the "legacy" tag; those rows are
// still present in some databases and must be skipped, not misread.
type Record struct {
	Format     string    `json:"format"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Encoding   []float32 `json:"encoding,omitempty"`
	Liveness   float64   `json:"liveness,omitempty"`
}

// EncodeRecord serializes a descriptor vector in the current format.
func EncodeRecord(employeeID uuid.UUID, encoding []float32, livenessConfidence float64) ([]byte, error) {
	rec := Record{
		Format:     models.FormatVector,
		EmployeeID: employeeID,
		Encoding:   encoding,
		Liveness:   livenessConfidence,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode descriptor record: %w", err)
	}
	return payload, nil
}

// DecodeRecord parses a stored payload. Legacy and unknown formats return
// the corresponding sentinel so callers can route them to skip-and-log.
func DecodeRecord(payload []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode descriptor record: %w", err)
	}

	switch rec.Format {
	case models.FormatVector:
		if len(rec.Encoding) == 0 {
			return nil, fmt.Errorf("decode descriptor record: empty encoding")
		}
		return &rec, nil
	case models.FormatLegacy:
		return nil, ErrLegacyFormat
	default:
		return nil, ErrUnknownFormat
	}
}
