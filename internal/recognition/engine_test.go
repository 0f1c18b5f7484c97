package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/config"
	"github.com/your-org/faceattend/internal/liveness"
	"github.com/your-org/faceattend/internal/models"
)

// --- fakes ---

type fakeStore struct {
	descriptors []models.FaceDescriptor
	history     []models.CheckInRecord
	employees   map[uuid.UUID]*models.Employee
	events      map[string]*models.AttendanceEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: make(map[uuid.UUID]*models.Employee),
		events:    make(map[string]*models.AttendanceEvent),
	}
}

func (f *fakeStore) addEmployee(code string, active bool) *models.Employee {
	emp := &models.Employee{
		ID:        uuid.New(),
		Code:      code,
		FirstName: "Test",
		LastName:  code,
		IsActive:  active,
	}
	f.employees[emp.ID] = emp
	return emp
}

func (f *fakeStore) enroll(t *testing.T, employeeID uuid.UUID, encoding []float32) {
	t.Helper()
	payload, err := EncodeRecord(employeeID, encoding, 0.9)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	f.descriptors = append(f.descriptors, models.FaceDescriptor{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Format:     models.FormatVector,
		Payload:    payload,
	})
}

func eventKey(employeeID uuid.UUID, day time.Time) string {
	return employeeID.String() + ":" + day.Format("2006-01-02")
}

func (f *fakeStore) ListDescriptors(ctx context.Context) ([]models.FaceDescriptor, error) {
	return f.descriptors, nil
}

func (f *fakeStore) RecentCheckIns(ctx context.Context, since time.Time) ([]models.CheckInRecord, error) {
	var recent []models.CheckInRecord
	for _, rec := range f.history {
		if !rec.CheckInTime.Before(since) {
			recent = append(recent, rec)
		}
	}
	return recent, nil
}

func (f *fakeStore) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	return f.employees[id], nil
}

func (f *fakeStore) MarkAttendance(ctx context.Context, employeeID uuid.UUID, day time.Time, at time.Time, imageKey string) (*models.AttendanceEvent, string, error) {
	key := eventKey(employeeID, day)
	ev, ok := f.events[key]
	if !ok {
		ev = &models.AttendanceEvent{
			ID:              uuid.New(),
			EmployeeID:      employeeID,
			Date:            day,
			CheckInTime:     &at,
			CheckInImageKey: imageKey,
		}
		f.events[key] = ev
		return ev, "check_in", nil
	}

	if ev.IsOpen() {
		ev.CheckOutTime = &at
		ev.CheckOutImageKey = imageKey
		return ev, "check_out", nil
	}

	ev.CheckInTime = &at
	ev.CheckInImageKey = imageKey
	ev.CheckOutTime = nil
	ev.CheckOutImageKey = ""
	return ev, "check_in", nil
}

func (f *fakeStore) ReplaceDescriptor(ctx context.Context, desc *models.FaceDescriptor) error {
	kept := f.descriptors[:0]
	for _, d := range f.descriptors {
		if d.EmployeeID != desc.EmployeeID {
			kept = append(kept, d)
		}
	}
	f.descriptors = append(kept, *desc)
	return nil
}

type fakeExtractor struct {
	face *ExtractedFace
	err  error
}

func (f *fakeExtractor) ExtractFace(data []byte) (*ExtractedFace, error) {
	return f.face, f.err
}

type fakeGate struct {
	result liveness.Result
}

func (f *fakeGate) Check(img image.Image) liveness.Result {
	return f.result
}

type fakeImages struct {
	keys []string
	err  error
}

func (f *fakeImages) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

type fakePublisher struct {
	notices []*models.AttendanceNotice
	err     error
}

func (f *fakePublisher) PublishAttendance(ctx context.Context, notice *models.AttendanceNotice) error {
	if f.err != nil {
		return f.err
	}
	f.notices = append(f.notices, notice)
	return nil
}

// --- harness ---

type engineHarness struct {
	engine    *Engine
	store     *fakeStore
	extractor *fakeExtractor
	gate      *fakeGate
	images    *fakeImages
	publisher *fakePublisher
	now       time.Time
}

func newHarness(cfg config.RecognitionConfig) *engineHarness {
	h := &engineHarness{
		store: newFakeStore(),
		extractor: &fakeExtractor{
			face: &ExtractedFace{Embedding: []float32{1, 0, 0}, Score: 0.99},
		},
		gate: &fakeGate{
			result: liveness.Result{IsLive: true, Confidence: 0.85},
		},
		images:    &fakeImages{},
		publisher: &fakePublisher{},
		now:       time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC),
	}
	h.engine = NewEngine(cfg, h.extractor, h.gate, h.store, h.images, h.publisher)
	h.engine.nowFn = func() time.Time { return h.now }
	return h
}

// --- RecognizeAndMark ---

func TestRecognizeEmptyStore(t *testing.T) {
	h := newHarness(recencyConfig())

	_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	if !errors.Is(err, ErrNoEnrollment) {
		t.Fatalf("error = %v, want ErrNoEnrollment", err)
	}
	if len(h.store.events) != 0 {
		t.Error("attendance written despite empty store")
	}
}

func TestRecognizeCheckInThenOutThenReopen(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E123", true)
	h.store.enroll(t, emp.ID, []float32{1, 0, 0})

	// first recognition: check-in
	out, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("first recognition: %v", err)
	}
	if out.Action != ActionCheckIn {
		t.Fatalf("action = %q, want check_in", out.Action)
	}
	if out.Employee.ID != emp.ID {
		t.Errorf("matched %s, want %s", out.Employee.ID, emp.ID)
	}
	if out.Event.CheckInTime == nil || !out.Event.CheckInTime.Equal(h.now) {
		t.Errorf("check-in time = %v, want %v", out.Event.CheckInTime, h.now)
	}

	// second recognition the same day: check-out
	h.now = h.now.Add(8 * time.Hour)
	out, err = h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("second recognition: %v", err)
	}
	if out.Action != ActionCheckOut {
		t.Fatalf("action = %q, want check_out", out.Action)
	}
	if got := out.Event.WorkingHours(); got != 8 {
		t.Errorf("worked hours = %v, want 8", got)
	}

	// third recognition: reopen the same row
	h.now = h.now.Add(time.Hour)
	out, err = h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("third recognition: %v", err)
	}
	if out.Action != ActionCheckIn {
		t.Fatalf("action = %q, want check_in (reopen)", out.Action)
	}
	if out.Event.CheckOutTime != nil {
		t.Error("check-out time survived the reopen")
	}
	if len(h.store.events) != 1 {
		t.Errorf("events = %d, want a single row per day", len(h.store.events))
	}

	if len(h.publisher.notices) != 3 {
		t.Errorf("published notices = %d, want 3", len(h.publisher.notices))
	}
}

func TestRecognizeNoMatchBelowThreshold(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E200", true)
	h.store.enroll(t, emp.ID, []float32{0, 1, 0}) // orthogonal to the query

	_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("error = %v, want NoMatchError", err)
	}
	if noMatch.Score >= noMatch.Threshold {
		t.Errorf("score %v not below threshold %v", noMatch.Score, noMatch.Threshold)
	}
	if len(h.store.events) != 0 || len(h.images.keys) != 0 {
		t.Error("no-match request left writes behind")
	}
}

func TestRecognizeThresholdBoundary(t *testing.T) {
	// identical basis vectors give exactly similarity 1.0, so the combined
	// score equals FaceWeight and the >= comparison can be pinned down
	tests := []struct {
		name       string
		faceWeight float64
		wantMatch  bool
	}{
		{"combined equal to threshold matches", 0.55, true},
		{"combined below threshold rejected", 0.54, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := recencyConfig()
			cfg.FaceWeight = tt.faceWeight
			cfg.RecencyWeight = 0

			h := newHarness(cfg)
			emp := h.store.addEmployee("E300", true)
			h.store.enroll(t, emp.ID, []float32{1, 0, 0})

			_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
			if tt.wantMatch && err != nil {
				t.Fatalf("recognition failed: %v", err)
			}
			if !tt.wantMatch {
				var noMatch *NoMatchError
				if !errors.As(err, &noMatch) {
					t.Fatalf("error = %v, want NoMatchError", err)
				}
			}
		})
	}
}

func TestRecognizeLivenessRejected(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E400", true)
	h.store.enroll(t, emp.ID, []float32{1, 0, 0})
	h.gate.result = liveness.Result{IsLive: false, Confidence: 0.12, Reason: liveness.ReasonSpoofSuspected}

	_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	var livenessErr *LivenessError
	if !errors.As(err, &livenessErr) {
		t.Fatalf("error = %v, want LivenessError", err)
	}
	if livenessErr.Confidence != 0.12 {
		t.Errorf("confidence = %v, want 0.12", livenessErr.Confidence)
	}
	if len(h.store.events) != 0 {
		t.Error("attendance written despite liveness rejection")
	}
}

func TestRecognizeFaceTooSmall(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E401", true)
	h.store.enroll(t, emp.ID, []float32{1, 0, 0})
	h.gate.result = liveness.Result{IsLive: false, Confidence: 0.1, Reason: liveness.ReasonFaceTooSmall}

	_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	var livenessErr *LivenessError
	if !errors.As(err, &livenessErr) {
		t.Fatalf("error = %v, want LivenessError", err)
	}
	if livenessErr.Reason != liveness.ReasonFaceTooSmall {
		t.Errorf("reason = %q, want %q", livenessErr.Reason, liveness.ReasonFaceTooSmall)
	}
}

func TestRecognizeInputErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"no face", ErrNoFace},
		{"multiple faces", ErrMultipleFaces},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(recencyConfig())
			h.extractor.err = tt.err

			_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("error = %v, want InputError", err)
			}
			if len(h.store.events) != 0 {
				t.Error("attendance written despite rejected input")
			}
		})
	}
}

func TestRecognizeInactiveEmployee(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E500", false)
	h.store.enroll(t, emp.ID, []float32{1, 0, 0})

	_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("error = %v, want NoMatchError for inactive employee", err)
	}
}

func TestRecognizeImageUploadFailureWritesNothing(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E600", true)
	h.store.enroll(t, emp.ID, []float32{1, 0, 0})
	h.images.err = fmt.Errorf("bucket unavailable")

	_, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	var sysErr *SystemError
	if !errors.As(err, &sysErr) {
		t.Fatalf("error = %v, want SystemError", err)
	}
	if len(h.store.events) != 0 {
		t.Error("attendance written despite failed image upload")
	}
}

func TestRecognizeRecencyTipsTheDecision(t *testing.T) {
	cfg := recencyConfig()
	cfg.CombinedThreshold = 0.4

	h := newHarness(cfg)
	regular := h.store.addEmployee("E700", true)
	stranger := h.store.addEmployee("E701", true)

	// both descriptors equally similar to the query
	h.store.enroll(t, regular.ID, []float32{0.6, 0.8, 0})
	h.store.enroll(t, stranger.ID, []float32{0.6, 0.8, 0})

	// only the regular has recent check-ins
	for d := 1; d <= 3; d++ {
		h.store.history = append(h.store.history, models.CheckInRecord{
			EmployeeID:  regular.ID,
			CheckInTime: h.now.AddDate(0, 0, -d),
		})
	}

	out, err := h.engine.RecognizeAndMark(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("recognition failed: %v", err)
	}
	if out.Employee.ID != regular.ID {
		t.Errorf("matched %s, want the recently seen employee", out.Employee.Code)
	}
	if out.RecencyBonus <= 0 {
		t.Errorf("recency bonus = %v, want > 0", out.RecencyBonus)
	}
}

func TestDecideScenarioArithmetic(t *testing.T) {
	h := newHarness(recencyConfig())

	e1 := uuid.New()
	e2 := uuid.New()
	candidates := map[uuid.UUID]*Candidate{
		// 0.8*0.60 + 0.2*0.15 = 0.51
		e1: {EmployeeID: e1, Similarity: 0.60, RecencyBonus: 0.15},
		// 0.8*0.65 + 0.2*0 = 0.52
		e2: {EmployeeID: e2, Similarity: 0.65},
	}

	winner, best := h.engine.decide(candidates)
	if winner.EmployeeID != e2 {
		t.Errorf("winner = %s, want the higher combined score", winner.EmployeeID)
	}
	if best <= 0.51 || best >= 0.53 {
		t.Errorf("best = %v, want about 0.52", best)
	}
}

func TestDecideCapsRecencyBonus(t *testing.T) {
	h := newHarness(recencyConfig())

	emp := uuid.New()
	candidates := map[uuid.UUID]*Candidate{
		emp: {EmployeeID: emp, Similarity: 0.5, RecencyBonus: 3.0},
	}

	_, best := h.engine.decide(candidates)
	want := 0.8*0.5 + 0.2*1.0
	if math.Abs(best-want) > 1e-9 {
		t.Errorf("best = %v, want bonus capped at 1.0 (%v)", best, want)
	}
}

// --- RegisterFace ---

func TestRegisterFaceReplaces(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E800", true)

	for i := 0; i < 2; i++ {
		if _, _, err := h.engine.RegisterFace(context.Background(), emp.ID, []byte("img")); err != nil {
			t.Fatalf("registration %d: %v", i+1, err)
		}
	}

	count := 0
	for _, d := range h.store.descriptors {
		if d.EmployeeID == emp.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("descriptors = %d, want re-registration to replace", count)
	}
	if len(h.images.keys) != 2 {
		t.Errorf("stored images = %d, want 2", len(h.images.keys))
	}
}

func TestRegisterFaceUnknownEmployee(t *testing.T) {
	h := newHarness(recencyConfig())

	_, _, err := h.engine.RegisterFace(context.Background(), uuid.New(), []byte("img"))
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("error = %v, want InputError", err)
	}
}

func TestRegisterFaceLivenessRejected(t *testing.T) {
	h := newHarness(recencyConfig())
	emp := h.store.addEmployee("E900", true)
	h.gate.result = liveness.Result{IsLive: false, Confidence: 0.2, Reason: liveness.ReasonSpoofSuspected}

	_, res, err := h.engine.RegisterFace(context.Background(), emp.ID, []byte("img"))
	var livenessErr *LivenessError
	if !errors.As(err, &livenessErr) {
		t.Fatalf("error = %v, want LivenessError", err)
	}
	if res == nil || res.Confidence != 0.2 {
		t.Errorf("result = %+v, want the gate verdict back", res)
	}
	if len(h.store.descriptors) != 0 {
		t.Error("descriptor stored despite liveness rejection")
	}
}
