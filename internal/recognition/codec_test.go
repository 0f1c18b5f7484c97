package recognition

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestEncodeDecodeRecord(t *testing.T) {
	employeeID := uuid.New()
	encoding := []float32{0.1, -0.5, 0.25}

	payload, err := EncodeRecord(employeeID, encoding, 0.82)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}

	rec, err := DecodeRecord(payload)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if rec.EmployeeID != employeeID {
		t.Errorf("employee id = %s, want %s", rec.EmployeeID, employeeID)
	}
	if len(rec.Encoding) != len(encoding) {
		t.Fatalf("encoding length = %d, want %d", len(rec.Encoding), len(encoding))
	}
	for i := range encoding {
		if rec.Encoding[i] != encoding[i] {
			t.Errorf("encoding[%d] = %v, want %v", i, rec.Encoding[i], encoding[i])
		}
	}
	if rec.Liveness != 0.82 {
		t.Errorf("liveness = %v, want 0.82", rec.Liveness)
	}
}

func TestDecodeRecordRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"legacy format", `{"format":"legacy","employee_id":"` + uuid.Nil.String() + `"}`, ErrLegacyFormat},
		{"unknown format", `{"format":"v2-experimental"}`, ErrUnknownFormat},
		{"missing format", `{"encoding":[0.1]}`, ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeRecord error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeRecordCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "\x80\x03not-a-record"},
		{"empty payload", ""},
		{"vector with no encoding", `{"format":"vector","encoding":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRecord([]byte(tt.payload)); err == nil {
				t.Error("DecodeRecord succeeded, want error")
			}
		})
	}
}
