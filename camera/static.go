package camera

import (
	"context"
	"sync"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/framehealth"
)

// Static is an in-memory camera that accepts every zoom change within its
// range. It records the commands it received.
type Static struct {
	mu       sync.Mutex
	caps     framehealth.Capabilities
	zoom     float64
	commands []float64
}

func NewStatic(caps framehealth.Capabilities, zoom float64) *Static {
	return &Static{caps: caps, zoom: zoom}
}

func (s *Static) Capabilities() framehealth.Capabilities {
	return s.caps
}

func (s *Static) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

func (s *Static) SetZoom(_ context.Context, factor float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if zr, err := framehealth.DetectZoomRange(s.caps); err == nil {
		factor = zr.Clamp(factor)
	}
	s.zoom = factor
	s.commands = append(s.commands, factor)
	return nil
}

// Commands returns the zoom factors set so far.
func (s *Static) Commands() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.commands...)
}
