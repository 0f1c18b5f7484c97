package recognition

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/models"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical basis", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"scaled copies", []float32{2, 0}, []float32{5, 0}, 1.0},
		{"known angle", []float32{1, 0}, []float32{0.6, 0.8}, 0.6},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	// inputs are float32, so expectations carry float32 quantization error
	const tolerance = 1e-6

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func mustEncode(t *testing.T, employeeID uuid.UUID, encoding []float32) []byte {
	t.Helper()
	payload, err := EncodeRecord(employeeID, encoding, 0.9)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	return payload
}

func TestMatchDescriptorsBestPerEmployee(t *testing.T) {
	emp := uuid.New()
	stored := []models.FaceDescriptor{
		{ID: uuid.New(), EmployeeID: emp, Payload: mustEncode(t, emp, []float32{0.6, 0.8})},
		{ID: uuid.New(), EmployeeID: emp, Payload: mustEncode(t, emp, []float32{1, 0})},
		{ID: uuid.New(), EmployeeID: emp, Payload: mustEncode(t, emp, []float32{0, 1})},
	}

	candidates := MatchDescriptors([]float32{1, 0}, stored)
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(candidates))
	}
	c := candidates[emp]
	if c == nil {
		t.Fatal("no candidate for employee")
	}
	if math.Abs(c.Similarity-1.0) > 1e-9 {
		t.Errorf("similarity = %v, want best of the three records (1.0)", c.Similarity)
	}
}

func TestMatchDescriptorsSkipsUnreadableRecords(t *testing.T) {
	good := uuid.New()
	legacy := uuid.New()
	corrupt := uuid.New()

	stored := []models.FaceDescriptor{
		{ID: uuid.New(), EmployeeID: good, Payload: mustEncode(t, good, []float32{1, 0})},
		{ID: uuid.New(), EmployeeID: legacy, Payload: []byte(`{"format":"legacy"}`)},
		{ID: uuid.New(), EmployeeID: corrupt, Payload: []byte("\x80\x03garbage")},
	}

	candidates := MatchDescriptors([]float32{1, 0}, stored)
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want only the decodable record", len(candidates))
	}
	if candidates[good] == nil {
		t.Error("decodable record did not produce a candidate")
	}
}

func TestMatchDescriptorsClampsNegativeSimilarity(t *testing.T) {
	emp := uuid.New()
	stored := []models.FaceDescriptor{
		{ID: uuid.New(), EmployeeID: emp, Payload: mustEncode(t, emp, []float32{-1, 0})},
	}

	candidates := MatchDescriptors([]float32{1, 0}, stored)
	if c := candidates[emp]; c == nil || c.Similarity != 0 {
		t.Errorf("similarity = %+v, want clamp to 0", c)
	}
}
