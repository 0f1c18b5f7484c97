// Package vision wraps the ONNX face models (RetinaFace detection,
// ArcFace embedding) behind a single-face extraction pipeline.
package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/faceattend/internal/config"
	"github.com/your-org/faceattend/internal/observability"
	"github.com/your-org/faceattend/internal/recognition"
)

// Extractor runs detection and embedding for attendance captures. It
// requires exactly one face per image; kiosks photograph one person at a
// time and a second face in frame means the capture cannot be trusted.
//
// The ONNX sessions reuse pre-allocated tensors, so calls are serialized
// with a mutex.
type Extractor struct {
	mu       sync.Mutex
	detector *Detector
	embedder *Embedder
}

// NewExtractor loads both ONNX models from cfg.ModelsDir.
func NewExtractor(cfg config.VisionConfig) (*Extractor, error) {
	detPath := filepath.Join(cfg.ModelsDir, "det_10g.onnx")
	embPath := filepath.Join(cfg.ModelsDir, "w600k_r50.onnx")

	slog.Info("loading detection model", "path", detPath)
	det, err := NewDetector(detPath, float32(cfg.DetectionThreshold), nil)
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	slog.Info("loading embedding model", "path", embPath)
	emb, err := NewEmbedder(embPath, nil)
	if err != nil {
		det.Close()
		return nil, fmt.Errorf("load embedder: %w", err)
	}

	slog.Info("vision extractor ready")
	return &Extractor{detector: det, embedder: emb}, nil
}

// ExtractFace decodes the image, detects faces and embeds the single
// detected face. Zero detections return recognition.ErrNoFace, two or
// more return recognition.ErrMultipleFaces.
func (e *Extractor) ExtractFace(data []byte) (*recognition.ExtractedFace, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	detInput := preprocessForDetection(img, e.detector.inputW, e.detector.inputH)
	observability.InferenceDuration.WithLabelValues("preprocess").Observe(time.Since(start).Seconds())

	start = time.Now()
	detections, err := e.detector.Detect(detInput, origW, origH)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	observability.InferenceDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())

	switch {
	case len(detections) == 0:
		return nil, recognition.ErrNoFace
	case len(detections) > 1:
		return nil, recognition.ErrMultipleFaces
	}

	det := detections[0]
	faceCrop := cropFace(img, det.BBox)
	if faceCrop == nil {
		return nil, recognition.ErrNoFace
	}

	start = time.Now()
	embInput := preprocessForEmbedding(faceCrop, e.embedder.inputW, e.embedder.inputH)
	embedding, err := e.embedder.Extract(embInput)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	observability.InferenceDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())

	return &recognition.ExtractedFace{
		Embedding: embedding,
		Crop:      faceCrop,
		Score:     det.Confidence,
	}, nil
}

// Close releases both ONNX sessions.
func (e *Extractor) Close() {
	if e.detector != nil {
		e.detector.Close()
	}
	if e.embedder != nil {
		e.embedder.Close()
	}
}

// InitRuntime initialises the shared ONNX Runtime environment. Call once
// before constructing an Extractor; DestroyRuntime releases it.
func InitRuntime(libraryPath string) error {
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

func DestroyRuntime() {
	_ = ort.DestroyEnvironment()
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}
