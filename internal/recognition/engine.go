package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/config"
	"github.com/your-org/faceattend/internal/liveness"
	"github.com/your-org/faceattend/internal/models"
	"github.com/your-org/faceattend/internal/observability"
)

// Actions the engine can take for one submitted image.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
	ActionNoMatch  = "no_match"
)

// ExtractedFace is the output of the detection and embedding pipeline for
// a single submitted image.
type ExtractedFace struct {
	// Embedding is the L2-normalized descriptor vector.
	Embedding []float32
	// Crop is the padded face region, used for the liveness check.
	Crop image.Image
	// Score is the detector confidence.
	Score float32
}

// FaceExtractor turns raw image bytes into exactly one face. Zero or
// multiple detections come back as ErrNoFace / ErrMultipleFaces.
type FaceExtractor interface {
	ExtractFace(data []byte) (*ExtractedFace, error)
}

// LivenessGate classifies a face crop as live or spoofed.
type LivenessGate interface {
	Check(img image.Image) liveness.Result
}

// Store is the persistence surface the engine needs. MarkAttendance makes
// the full check-in/check-out decision inside one transaction and reports
// which action it took.
type Store interface {
	ListDescriptors(ctx context.Context) ([]models.FaceDescriptor, error)
	RecentCheckIns(ctx context.Context, since time.Time) ([]models.CheckInRecord, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	MarkAttendance(ctx context.Context, employeeID uuid.UUID, day time.Time, at time.Time, imageKey string) (*models.AttendanceEvent, string, error)
	ReplaceDescriptor(ctx context.Context, desc *models.FaceDescriptor) error
}

// ImageStore persists the submitted capture for later audit.
type ImageStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Publisher fans attendance notices out to subscribers. Publishing is
// best effort; the attendance write is already committed when it runs.
type Publisher interface {
	PublishAttendance(ctx context.Context, notice *models.AttendanceNotice) error
}

// Outcome is the successful result of a recognition request.
type Outcome struct {
	Employee           *models.Employee
	Action             string
	CombinedScore      float64
	Similarity         float64
	RecencyBonus       float64
	LivenessConfidence float64
	Event              *models.AttendanceEvent
	ImageKey           string
}

// Engine owns the full decision flow: extract, liveness gate, match,
// boost, decide, persist, notify.
type Engine struct {
	cfg       config.RecognitionConfig
	extractor FaceExtractor
	gate      LivenessGate
	store     Store
	images    ImageStore
	publisher Publisher
	nowFn     func() time.Time
}

func NewEngine(cfg config.RecognitionConfig, extractor FaceExtractor, gate LivenessGate, store Store, images ImageStore, publisher Publisher) *Engine {
	return &Engine{
		cfg:       cfg,
		extractor: extractor,
		gate:      gate,
		store:     store,
		images:    images,
		publisher: publisher,
		nowFn:     time.Now,
	}
}

// RecognizeAndMark identifies the employee in the submitted image and
// records a check-in or check-out. All rejections happen before anything
// is written; by the time the attendance row is touched the decision is
// final.
func (e *Engine) RecognizeAndMark(ctx context.Context, imageData []byte) (*Outcome, error) {
	now := e.nowFn()

	face, err := e.extractFace(imageData)
	if err != nil {
		return nil, err
	}

	live := e.gate.Check(face.Crop)
	if !live.IsLive {
		observability.LivenessRejections.Inc()
		observability.RecognitionsTotal.WithLabelValues("liveness_rejected").Inc()
		return nil, &LivenessError{Confidence: live.Confidence, Reason: live.Reason}
	}

	stored, err := e.store.ListDescriptors(ctx)
	if err != nil {
		return nil, &SystemError{Op: "list descriptors", Err: err}
	}
	if len(stored) == 0 {
		observability.RecognitionsTotal.WithLabelValues("no_enrollment").Inc()
		return nil, ErrNoEnrollment
	}

	candidates := MatchDescriptors(face.Embedding, stored)

	since := now.AddDate(0, 0, -e.cfg.LookbackDays)
	history, err := e.store.RecentCheckIns(ctx, since)
	if err != nil {
		return nil, &SystemError{Op: "load check-in history", Err: err}
	}
	BoostCandidates(candidates, history, now, e.cfg)

	winner, best := e.decide(candidates)
	if winner == nil || best < e.cfg.CombinedThreshold {
		observability.RecognitionsTotal.WithLabelValues(ActionNoMatch).Inc()
		return nil, &NoMatchError{Score: best, Threshold: e.cfg.CombinedThreshold}
	}

	emp, err := e.store.GetEmployee(ctx, winner.EmployeeID)
	if err != nil {
		return nil, &SystemError{Op: "load employee", Err: err}
	}
	if emp == nil || !emp.IsActive {
		observability.RecognitionsTotal.WithLabelValues(ActionNoMatch).Inc()
		return nil, &NoMatchError{Score: best, Threshold: e.cfg.CombinedThreshold}
	}

	imageKey := fmt.Sprintf("attendance/%s/%s.jpg", emp.Code, now.UTC().Format("20060102T150405.000"))
	if err := e.images.PutObject(ctx, imageKey, imageData, "image/jpeg"); err != nil {
		return nil, &SystemError{Op: "store attendance image", Err: err}
	}

	event, action, err := e.store.MarkAttendance(ctx, emp.ID, dateOf(now), now, imageKey)
	if err != nil {
		return nil, &SystemError{Op: "mark attendance", Err: err}
	}
	observability.RecognitionsTotal.WithLabelValues(action).Inc()

	e.notify(ctx, emp, event, action, best, live.Confidence, imageKey, now)

	return &Outcome{
		Employee:           emp,
		Action:             action,
		CombinedScore:      best,
		Similarity:         winner.Similarity,
		RecencyBonus:       math.Min(1.0, winner.RecencyBonus),
		LivenessConfidence: live.Confidence,
		Event:              event,
		ImageKey:           imageKey,
	}, nil
}

// RegisterFace enrolls (or re-enrolls) the face for an employee. The new
// descriptor atomically replaces any previous one.
func (e *Engine) RegisterFace(ctx context.Context, employeeID uuid.UUID, imageData []byte) (*models.FaceDescriptor, *liveness.Result, error) {
	now := e.nowFn()

	emp, err := e.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, nil, &SystemError{Op: "load employee", Err: err}
	}
	if emp == nil {
		return nil, nil, &InputError{Reason: "employee not found"}
	}

	face, err := e.extractFace(imageData)
	if err != nil {
		return nil, nil, err
	}

	live := e.gate.Check(face.Crop)
	if !live.IsLive {
		observability.LivenessRejections.Inc()
		return nil, &live, &LivenessError{Confidence: live.Confidence, Reason: live.Reason}
	}

	payload, err := EncodeRecord(employeeID, face.Embedding, live.Confidence)
	if err != nil {
		return nil, &live, &SystemError{Op: "encode descriptor", Err: err}
	}

	imageKey := fmt.Sprintf("enroll/%s/%s.jpg", emp.Code, now.UTC().Format("20060102T150405.000"))
	if err := e.images.PutObject(ctx, imageKey, imageData, "image/jpeg"); err != nil {
		return nil, &live, &SystemError{Op: "store enrollment image", Err: err}
	}

	desc := &models.FaceDescriptor{
		ID:                 uuid.New(),
		EmployeeID:         employeeID,
		Format:             models.FormatVector,
		Payload:            payload,
		Embedding:          face.Embedding,
		LivenessConfidence: live.Confidence,
		ImageKey:           imageKey,
		EnrolledAt:         now,
	}
	if err := e.store.ReplaceDescriptor(ctx, desc); err != nil {
		return nil, &live, &SystemError{Op: "replace descriptor", Err: err}
	}
	observability.FaceRegistrations.Inc()

	slog.Info("face registered", "employee", emp.Code, "liveness", live.Confidence)
	return desc, &live, nil
}

// extractFace runs the detection pipeline and maps its failures onto the
// request error taxonomy.
func (e *Engine) extractFace(imageData []byte) (*ExtractedFace, error) {
	face, err := e.extractor.ExtractFace(imageData)
	if err != nil {
		var ie *InputError
		if errors.As(err, &ie) {
			observability.RecognitionsTotal.WithLabelValues("rejected_input").Inc()
			return nil, ie
		}
		return nil, &SystemError{Op: "extract face", Err: err}
	}
	return face, nil
}

// decide picks the strict maximum combined score. Ties leave the first
// seen candidate in place; with float scores off real embeddings a true
// tie does not occur in practice.
func (e *Engine) decide(candidates map[uuid.UUID]*Candidate) (*Candidate, float64) {
	var winner *Candidate
	best := 0.0

	for _, c := range candidates {
		bonus := math.Min(1.0, c.RecencyBonus)
		combined := e.cfg.FaceWeight*c.Similarity + e.cfg.RecencyWeight*bonus
		if winner == nil || combined > best {
			winner = c
			best = combined
		}
	}
	return winner, best
}

func (e *Engine) notify(ctx context.Context, emp *models.Employee, event *models.AttendanceEvent, action string, score, liveConf float64, imageKey string, at time.Time) {
	if e.publisher == nil {
		return
	}

	notice := &models.AttendanceNotice{
		EventID:            event.ID,
		EmployeeID:         emp.ID,
		EmployeeCode:       emp.Code,
		EmployeeName:       emp.FullName(),
		Action:             action,
		OccurredAt:         at,
		CombinedScore:      score,
		LivenessConfidence: liveConf,
		ImageKey:           imageKey,
	}
	if err := e.publisher.PublishAttendance(ctx, notice); err != nil {
		slog.Warn("failed to publish attendance notice", "employee", emp.Code, "action", action, "error", err)
	}
}

// dateOf truncates a timestamp to its calendar date in local time.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
