package framehealth

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// percentScaleMin separates cameras reporting zoom near 1 from those
// reporting it near 100.
const percentScaleMin = 1.01

var (
	// ErrCapabilityUnavailable means the camera reported no zoom range.
	ErrCapabilityUnavailable = errors.New("camera reports no zoom capability")
	// ErrClosed is returned by ticks after the controller is closed.
	ErrClosed = errors.New("frame health controller closed")
)

// Capabilities is the zoom range a camera reports. Zero Max means unknown.
type Capabilities struct {
	ZoomMin float64
	ZoomMax float64
}

// Camera is the camera surface the controller needs.
type Camera interface {
	Capabilities() Capabilities
	Zoom() float64
	SetZoom(ctx context.Context, factor float64) error
}

// ZoomRange is the session's detected zoom range and step size.
type ZoomRange struct {
	Min  float64
	Max  float64
	Unit float64
}

// DetectZoomRange derives the session zoom range. Cameras whose minimum is
// above 1 report zoom as a percentage and step by 100.
func DetectZoomRange(c Capabilities) (ZoomRange, error) {
	if c.ZoomMax <= 0 || math.IsNaN(c.ZoomMax) || math.IsNaN(c.ZoomMin) {
		return ZoomRange{}, ErrCapabilityUnavailable
	}
	if c.ZoomMin > c.ZoomMax {
		return ZoomRange{}, fmt.Errorf("%w: min %.2f above max %.2f", ErrCapabilityUnavailable, c.ZoomMin, c.ZoomMax)
	}

	r := ZoomRange{Min: c.ZoomMin, Max: c.ZoomMax, Unit: 1}
	if c.ZoomMin > percentScaleMin {
		r.Unit = 100
	}
	return r, nil
}

// NextZoom returns the zoom one unit below current, floored at Min. It
// reports false when current is already at or below Min.
func (r ZoomRange) NextZoom(current float64) (float64, bool) {
	if current <= r.Min {
		return current, false
	}
	return math.Max(r.Min, current-r.Unit), true
}

// Initial returns the starting zoom for steps units, clamped to the range.
func (r ZoomRange) Initial(steps float64) float64 {
	return r.Clamp(steps * r.Unit)
}

// Clamp limits f to [Min, Max].
func (r ZoomRange) Clamp(f float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, f))
}

// ZoomCommandError reports a zoom change the camera did not apply.
type ZoomCommandError struct {
	From, To float64
	Err      error
}

func (e *ZoomCommandError) Error() string {
	return fmt.Sprintf("set zoom %.2f -> %.2f: %v", e.From, e.To, e.Err)
}

func (e *ZoomCommandError) Unwrap() error {
	return e.Err
}
