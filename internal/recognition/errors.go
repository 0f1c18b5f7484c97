package recognition

import (
	"errors"
	"fmt"
)

// InputError rejects a request before any matching happens: the submitted
// image cannot be used. Nothing is persisted.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

var (
	ErrNoFace        = &InputError{Reason: "no face detected in image"}
	ErrMultipleFaces = &InputError{Reason: "multiple faces detected in image"}
)

// ErrNoEnrollment means the descriptor store holds no records at all.
var ErrNoEnrollment = errors.New("no enrolled face descriptors")

// LivenessError rejects a detected face classified as spoofed.
type LivenessError struct {
	Confidence float64
	Reason     string
}

func (e *LivenessError) Error() string {
	return fmt.Sprintf("face rejected as not live (confidence %.2f)", e.Confidence)
}

// NoMatchError carries the best combined score so operators can tune the
// threshold from the rejection itself.
type NoMatchError struct {
	Score     float64
	Threshold float64
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching employee (best combined score %.3f, threshold %.3f)", e.Score, e.Threshold)
}

// Descriptor record decode failures. Both are recovered per record during
// matching and never abort the overall pass.
var (
	ErrLegacyFormat  = errors.New("legacy descriptor format")
	ErrUnknownFormat = errors.New("unknown descriptor format")
)

// SystemError wraps unexpected failures (decode, I/O) caught at the request
// boundary. The attendance write only happens after every matching and
// decision step succeeded, so a SystemError implies nothing was persisted.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *SystemError) Unwrap() error { return e.Err }
