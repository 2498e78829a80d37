// Package camera provides framehealth.Camera implementations.
package camera

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/framehealth"
)

var ErrNotAttached = errors.New("no key presser attached")

// Presser sends one key press to the device showing the camera.
type Presser func(ctx context.Context, key int32) error

// KeyZoom changes zoom by pressing a zoom-in or zoom-out key once per zoom
// unit. The device cannot report its zoom, so KeyZoom tracks the factor it
// last set.
type KeyZoom struct {
	mu sync.Mutex

	caps    framehealth.Capabilities
	unit    float64
	zoom    float64
	inKey   int32
	outKey  int32
	presser Presser
}

// NewKeyZoom builds a key-driven camera starting at current.
func NewKeyZoom(caps framehealth.Capabilities, current float64, zoomInKey, zoomOutKey string) (*KeyZoom, error) {
	if zoomInKey == "" {
		zoomInKey = DefaultZoomInKey
	}
	if zoomOutKey == "" {
		zoomOutKey = DefaultZoomOutKey
	}
	in := GetKeyCode(zoomInKey)
	if in < 0 {
		return nil, fmt.Errorf("zoom-in key %q is not usable", zoomInKey)
	}
	out := GetKeyCode(zoomOutKey)
	if out < 0 {
		return nil, fmt.Errorf("zoom-out key %q is not usable", zoomOutKey)
	}

	unit := 1.0
	if zr, err := framehealth.DetectZoomRange(caps); err == nil {
		unit = zr.Unit
		current = zr.Clamp(current)
	}

	return &KeyZoom{
		caps:   caps,
		unit:   unit,
		zoom:   current,
		inKey:  in,
		outKey: out,
	}, nil
}

// Attach sets the presser used by later SetZoom calls.
func (k *KeyZoom) Attach(p Presser) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.presser = p
}

func (k *KeyZoom) Capabilities() framehealth.Capabilities {
	return k.caps
}

func (k *KeyZoom) Zoom() float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.zoom
}

// SetZoom presses the zoom keys until the tracked factor reaches factor.
// A partial failure leaves the tracked zoom at the last confirmed step.
func (k *KeyZoom) SetZoom(ctx context.Context, factor float64) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.presser == nil {
		return ErrNotAttached
	}

	diff := factor - k.zoom
	steps := int(math.Ceil(math.Abs(diff)/k.unit - 1e-9))
	key, step := k.inKey, k.unit
	if diff < 0 {
		key, step = k.outKey, -k.unit
	}

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := k.presser(ctx, key); err != nil {
			return fmt.Errorf("press key %d: %w", key, err)
		}
		k.zoom += step
	}
	k.zoom = factor

	log.Debug().Float64("zoom", factor).Int("presses", steps).Msg("Zoom keys pressed")
	return nil
}
