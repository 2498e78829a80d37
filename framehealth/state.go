// Package framehealth decides when a scanning session should back off camera
// zoom, based on per-frame sharpness samples and time spent at one zoom level.
package framehealth

import (
	"time"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/sharpness"
)

const (
	DefaultPoorFrameLimit = 25
	DefaultZoomWindow     = 3000 * time.Millisecond
	// DefaultInitialSteps is the starting zoom in zoom units, clamped to the
	// camera maximum.
	DefaultInitialSteps = 10
	DefaultAdvisory     = "Frame quality is poor, reducing zoom by 1. Please move closer."
)

// Tuning holds the controller thresholds.
type Tuning struct {
	SharpnessThreshold float64
	PoorFrameLimit     int
	ZoomWindow         time.Duration
	InitialSteps       float64
	Advisory           string
}

// DefaultTuning returns the calibrated defaults.
func DefaultTuning() Tuning {
	return Tuning{
		SharpnessThreshold: sharpness.Threshold,
		PoorFrameLimit:     DefaultPoorFrameLimit,
		ZoomWindow:         DefaultZoomWindow,
		InitialSteps:       DefaultInitialSteps,
		Advisory:           DefaultAdvisory,
	}
}

// State is the per-session health record. A zero WindowStart means no
// timing window is open.
type State struct {
	PoorFrames  int
	WindowStart time.Time
}

// Sample is one tick's input: the best score among the frame's localized
// regions, if any region was scored.
type Sample struct {
	Score    float64
	HasScore bool
}

// Scored builds a Sample carrying a score.
func Scored(score float64) Sample {
	return Sample{Score: score, HasScore: true}
}

// Step applies one tick to s and reports whether zoom should be reduced.
// The poor-frame counter and the timing window are independent; either one
// firing is enough.
func Step(s State, in Sample, now time.Time, t Tuning) (State, bool) {
	zoomOut := false

	if in.HasScore && in.Score < t.SharpnessThreshold {
		s.PoorFrames++
		if s.PoorFrames >= t.PoorFrameLimit {
			zoomOut = true
			s.PoorFrames = 0
		}
	}

	if s.WindowStart.IsZero() {
		s.WindowStart = now
	} else if now.Sub(s.WindowStart) > t.ZoomWindow {
		zoomOut = true
		s.WindowStart = time.Time{}
	}

	return s, zoomOut
}
