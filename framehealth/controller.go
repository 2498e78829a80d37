package framehealth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Advisor shows a short user-facing message.
type Advisor interface {
	Show(msg string)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Decision describes what one tick did.
type Decision struct {
	ZoomOut bool    // a trigger fired this tick
	From    float64 // zoom before the command
	To      float64 // zoom requested
	Issued  bool    // a zoom-set command was sent
}

// Controller runs the frame health state machine for one scanning session.
// Every tick holds a single mutex, so the rules stay atomic even when
// callbacks arrive from several goroutines.
type Controller struct {
	mu sync.Mutex

	cam    Camera
	adv    Advisor
	clock  Clock
	tuning Tuning
	logger zerolog.Logger

	state     State
	zoomRange ZoomRange
	enabled   bool
	closed    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(fc *Controller) { fc.clock = c }
}

// WithTuning replaces the default thresholds.
func WithTuning(t Tuning) Option {
	return func(fc *Controller) { fc.tuning = t }
}

// WithLogger sets the logger used for decisions.
func WithLogger(l zerolog.Logger) Option {
	return func(fc *Controller) { fc.logger = l }
}

// New creates a controller. Zoom correction stays disabled until Start
// detects the camera's zoom range.
func New(cam Camera, adv Advisor, opts ...Option) *Controller {
	fc := &Controller{
		cam:    cam,
		adv:    adv,
		clock:  systemClock{},
		tuning: DefaultTuning(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(fc)
	}
	return fc
}

// Start resets the session state, detects the zoom range once and applies
// the initial zoom. A camera without zoom capability leaves the controller
// as a no-op and is not an error.
func (fc *Controller) Start(ctx context.Context) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.closed {
		return ErrClosed
	}
	fc.state = State{}

	caps := fc.cam.Capabilities()
	zr, err := DetectZoomRange(caps)
	if err != nil {
		fc.enabled = false
		fc.logger.Warn().Err(err).
			Float64("min", caps.ZoomMin).
			Float64("max", caps.ZoomMax).
			Msg("Zoom correction disabled")
		return nil
	}
	fc.zoomRange = zr
	fc.enabled = true

	fc.logger.Info().
		Float64("min", zr.Min).
		Float64("max", zr.Max).
		Float64("unit", zr.Unit).
		Msg("Zoom range detected")

	// Non-positive InitialSteps keeps whatever zoom the camera opened with.
	if fc.tuning.InitialSteps <= 0 {
		return nil
	}
	initial := zr.Initial(fc.tuning.InitialSteps)
	from := fc.cam.Zoom()
	if err := fc.cam.SetZoom(ctx, initial); err != nil {
		cmdErr := &ZoomCommandError{From: from, To: initial, Err: err}
		fc.logger.Error().Err(cmdErr).Msg("Failed to apply initial zoom")
		return cmdErr
	}
	return nil
}

// Tick evaluates one frame that localized candidates but decoded nothing.
// A failed zoom command is logged and returned as *ZoomCommandError; the
// state already counts the attempt so the next tick does not retry.
func (fc *Controller) Tick(ctx context.Context, in Sample) (Decision, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.closed {
		return Decision{}, ErrClosed
	}

	var d Decision
	fc.state, d.ZoomOut = Step(fc.state, in, fc.clock.Now(), fc.tuning)

	fc.logger.Debug().
		Bool("has_score", in.HasScore).
		Float64("score", in.Score).
		Int("poor_frames", fc.state.PoorFrames).
		Bool("zoom_out", d.ZoomOut).
		Msg("Frame health tick")

	if !d.ZoomOut || !fc.enabled {
		return d, nil
	}

	current := fc.cam.Zoom()
	next, ok := fc.zoomRange.NextZoom(current)
	if !ok {
		fc.logger.Debug().Float64("zoom", current).Msg("Zoom already at minimum")
		return d, nil
	}

	d.From, d.To, d.Issued = current, next, true
	// The command counts as issued whether or not the camera accepts it.
	fc.state = State{}

	if err := fc.cam.SetZoom(ctx, next); err != nil {
		cmdErr := &ZoomCommandError{From: current, To: next, Err: err}
		fc.logger.Error().Err(cmdErr).Msg("Zoom command failed")
		return d, cmdErr
	}

	fc.logger.Info().Float64("from", current).Float64("to", next).Msg("Zoom reduced")
	if fc.adv != nil {
		fc.adv.Show(fc.tuning.Advisory)
	}
	return d, nil
}

// State returns a copy of the current health record.
func (fc *Controller) State() State {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.state
}

// Range returns the detected zoom range and whether correction is enabled.
func (fc *Controller) Range() (ZoomRange, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.zoomRange, fc.enabled
}

// Close waits for an in-flight tick and rejects later ones. It is safe to
// call more than once.
func (fc *Controller) Close() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.closed = true
}

// IsClosed reports whether err came from a closed controller.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
