// Package liveness classifies a face crop as captured from a present
// person or replayed from a photo/screen, using plain image statistics
// rather than a learned model. The three heuristics are deliberately
// explainable: spoofed captures tend to be blurrier, flatter and poorer
// in edge detail than a live camera frame.
package liveness

import (
	"image"
	"math"

	"github.com/your-org/faceattend/internal/config"
)

// Reasons reported in Result for rejected or degraded checks.
const (
	ReasonFaceTooSmall    = "face_too_small"
	ReasonSpoofSuspected  = "spoof_suspected"
	ReasonProcessingError = "processing_error"
)

// Scores carries the per-heuristic diagnostics for operator tuning.
type Scores struct {
	Sharpness     float64 `json:"sharpness"`
	Texture       float64 `json:"texture"`
	EdgeDensity   float64 `json:"edge_density"`
	NormSharpness float64 `json:"norm_sharpness"`
	NormTexture   float64 `json:"norm_texture"`
	NormEdge      float64 `json:"norm_edge"`
	Final         float64 `json:"final"`
}

type Result struct {
	IsLive     bool    `json:"is_live"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	Scores     Scores  `json:"scores"`
}

// Gate is a pure classifier over pixel data; it holds no state beyond
// its configuration and is safe for concurrent use.
type Gate struct {
	cfg config.LivenessConfig
}

func NewGate(cfg config.LivenessConfig) *Gate {
	return &Gate{cfg: cfg}
}

// gradient magnitudes above this count as edge pixels
const edgeGradientThreshold = 100.0

// Check classifies one face crop. A region smaller than the configured
// minimum is rejected immediately without running the heuristics.
func (g *Gate) Check(img image.Image) Result {
	if img == nil {
		return g.failResult()
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return g.failResult()
	}

	if w < g.cfg.MinFaceSize || h < g.cfg.MinFaceSize {
		return Result{
			IsLive:     false,
			Confidence: 0.1,
			Reason:     ReasonFaceTooSmall,
		}
	}

	gray := toGrayscale(img)

	sharpness := laplacianVariance(gray, w, h)
	texture := stddev(gray)
	edges := edgeDensity(gray, w, h)

	normSharp := clamp01(sharpness / g.cfg.SharpnessNorm)
	// printed photos and screens are suspiciously uniform: low intensity
	// deviation scores low, pushing the verdict toward spoof
	normTexture := clamp01(texture / g.cfg.TextureNorm)
	normEdge := clamp01(edges / g.cfg.EdgeNorm)

	final := g.cfg.SharpnessWeight*normSharp +
		g.cfg.TextureWeight*normTexture +
		g.cfg.EdgeWeight*normEdge

	res := Result{
		IsLive:     final >= g.cfg.Threshold,
		Confidence: final,
		Scores: Scores{
			Sharpness:     sharpness,
			Texture:       texture,
			EdgeDensity:   edges,
			NormSharpness: normSharp,
			NormTexture:   normTexture,
			NormEdge:      normEdge,
			Final:         final,
		},
	}
	if !res.IsLive {
		res.Reason = ReasonSpoofSuspected
	}
	return res
}

// failResult implements the configured policy for internal processing
// failures: fail open accepts the face with a fixed confidence so the
// attendance pipeline keeps working, fail closed rejects it.
func (g *Gate) failResult() Result {
	if g.cfg.FailOpen {
		return Result{
			IsLive:     true,
			Confidence: 0.7,
			Reason:     ReasonProcessingError,
		}
	}
	return Result{
		IsLive:     false,
		Confidence: 0.0,
		Reason:     ReasonProcessingError,
	}
}

// toGrayscale converts the image to 8-bit luminance values in row-major
// order.
func toGrayscale(img image.Image) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)
			gray[y*w+x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}
	return gray
}

// laplacianVariance measures sharpness: the variance of the 3x3 Laplacian
// response over interior pixels. Blurry replays (screens, out-of-focus
// photos) produce a low variance.
func laplacianVariance(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}

	n := (w - 2) * (h - 2)
	resp := make([]float64, 0, n)
	var sum float64

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := gray[(y-1)*w+x] + gray[(y+1)*w+x] + gray[y*w+x-1] + gray[y*w+x+1] - 4*gray[y*w+x]
			resp = append(resp, v)
			sum += v
		}
	}

	mean := sum / float64(n)
	var variance float64
	for _, v := range resp {
		d := v - mean
		variance += d * d
	}
	return variance / float64(n)
}

// stddev measures texture: the standard deviation of pixel intensities.
func stddev(gray []float64) float64 {
	if len(gray) == 0 {
		return 0
	}

	var sum float64
	for _, v := range gray {
		sum += v
	}
	mean := sum / float64(len(gray))

	var variance float64
	for _, v := range gray {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(gray)))
}

// edgeDensity measures the fraction of pixels whose Sobel gradient
// magnitude exceeds a fixed threshold.
func edgeDensity(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}

	edgePixels := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := gray[(y-1)*w+x+1] + 2*gray[y*w+x+1] + gray[(y+1)*w+x+1] -
				gray[(y-1)*w+x-1] - 2*gray[y*w+x-1] - gray[(y+1)*w+x-1]
			gy := gray[(y+1)*w+x-1] + 2*gray[(y+1)*w+x] + gray[(y+1)*w+x+1] -
				gray[(y-1)*w+x-1] - 2*gray[(y-1)*w+x] - gray[(y-1)*w+x+1]

			if math.Sqrt(gx*gx+gy*gy) > edgeGradientThreshold {
				edgePixels++
			}
		}
	}
	return float64(edgePixels) / float64(w*h)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
