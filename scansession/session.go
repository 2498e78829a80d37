// Package scansession wires frame callbacks from a scanner into the region
// extractor, the sharpness estimator and the frame health controller.
package scansession

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/advisory"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/framehealth"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/region"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/sharpness"
)

// FrameSource returns the frame's original image. It is only called when
// the frame has at least one region to score.
type FrameSource func() (image.Image, error)

// Options configures a Session.
type Options struct {
	Tuning           framehealth.Tuning
	AdvisoryDuration time.Duration
	Display          advisory.Display
	Clock            framehealth.Clock
	Concurrent       bool
	DebugDir         string
}

// DefaultOptions returns options with the calibrated tuning.
func DefaultOptions() Options {
	return Options{
		Tuning:           framehealth.DefaultTuning(),
		AdvisoryDuration: advisory.DefaultDuration,
		Display:          advisory.LogDisplay{},
		Concurrent:       true,
	}
}

// Outcome reports whether a callback completed a frame and what the
// controller decided.
type Outcome struct {
	Ticked   bool
	Sample   framehealth.Sample
	Decision framehealth.Decision
}

// frame collects the two callbacks of one camera frame.
type frame struct {
	id        uint64
	localized bool
	result    sharpness.Result
	decoded   bool
	decodes   int
}

// Session is one scanning session. It owns its controller and advisory
// notifier; nothing is shared between sessions.
type Session struct {
	ID uuid.UUID

	mu         sync.Mutex
	controller *framehealth.Controller
	notifier   *advisory.Notifier
	concurrent bool
	debugDir   string
	logger     zerolog.Logger

	pending *frame
	closed  bool
	frames  atomic.Uint64
}

// New creates a session for cam. Call Start before feeding frames.
func New(cam framehealth.Camera, opts Options) *Session {
	id := uuid.New()
	logger := log.With().Str("session", id.String()).Logger()

	display := opts.Display
	if display == nil {
		display = advisory.LogDisplay{}
	}
	notifier := advisory.New(display, opts.AdvisoryDuration)

	fcOpts := []framehealth.Option{
		framehealth.WithTuning(opts.Tuning),
		framehealth.WithLogger(logger),
	}
	if opts.Clock != nil {
		fcOpts = append(fcOpts, framehealth.WithClock(opts.Clock))
	}

	return &Session{
		ID:         id,
		controller: framehealth.New(cam, notifier, fcOpts...),
		notifier:   notifier,
		concurrent: opts.Concurrent,
		debugDir:   opts.DebugDir,
		logger:     logger,
	}
}

// Start detects the camera zoom range and applies the initial zoom.
func (s *Session) Start(ctx context.Context) error {
	return s.controller.Start(ctx)
}

// NextFrameID hands out increasing frame ids for hosts that do not number
// frames themselves.
func (s *Session) NextFrameID() uint64 {
	return s.frames.Add(1)
}

// Localized records the regions the localizer found in a frame and scores
// them. Degenerate regions are skipped. An error from src is returned and the
// frame counts as having no score.
func (s *Session) Localized(ctx context.Context, frameID uint64, src FrameSource, quads []region.Quad) (Outcome, error) {
	res := sharpness.Result{BestIndex: -1}
	var scoreErr error
	if len(quads) > 0 {
		res, scoreErr = s.score(src, quads)
	}
	out, err := s.record(ctx, frameID, res)
	if errors.Is(err, framehealth.ErrClosed) {
		return out, err
	}
	return out, errors.Join(scoreErr, err)
}

// Scored handles a frame whose regions were scored by the caller.
func (s *Session) Scored(ctx context.Context, frameID uint64, res sharpness.Result, decodes int) (Outcome, error) {
	if _, err := s.record(ctx, frameID, res); err != nil {
		if errors.Is(err, framehealth.ErrClosed) {
			return Outcome{}, err
		}
		s.logger.Warn().Err(err).Uint64("frame", frameID).Msg("Localization callback failed")
	}
	return s.Decoded(ctx, frameID, decodes)
}

func (s *Session) record(ctx context.Context, frameID uint64, res sharpness.Result) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, flushed, flushErr, err := s.frameLocked(ctx, frameID)
	if f == nil {
		return flushed, err
	}
	f.localized = true
	f.result = res

	out, err := s.completeLocked(ctx, f)
	return merge(flushed, out), errors.Join(flushErr, err)
}

// Decoded records how many barcodes the decoder returned for a frame.
func (s *Session) Decoded(ctx context.Context, frameID uint64, count int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, flushed, flushErr, err := s.frameLocked(ctx, frameID)
	if f == nil {
		return flushed, err
	}
	f.decoded = true
	f.decodes = count

	out, err := s.completeLocked(ctx, f)
	return merge(flushed, out), errors.Join(flushErr, err)
}

// merge picks the outcome that ticked. A callback that flushes an older frame
// starts a new record holding only its own half, so at most one of the two
// can have ticked.
func merge(flushed, current Outcome) Outcome {
	if current.Ticked {
		return current
	}
	return flushed
}

// Evaluate handles a frame whose localization and decode results are known
// together.
func (s *Session) Evaluate(ctx context.Context, frameID uint64, src FrameSource, quads []region.Quad, decodes int) (Outcome, error) {
	if _, err := s.Localized(ctx, frameID, src, quads); err != nil {
		if errors.Is(err, framehealth.ErrClosed) {
			return Outcome{}, err
		}
		s.logger.Warn().Err(err).Uint64("frame", frameID).Msg("Localization callback failed")
	}
	return s.Decoded(ctx, frameID, decodes)
}

func (s *Session) score(src FrameSource, quads []region.Quad) (sharpness.Result, error) {
	res := sharpness.Result{BestIndex: -1}
	img, err := src()
	if err != nil {
		return res, fmt.Errorf("fetch frame: %w", err)
	}
	if img == nil {
		return res, errors.New("fetch frame: nil image")
	}

	start := time.Now()
	res, err = sharpness.Best(img, quads, s.concurrent)
	if err != nil {
		return sharpness.Result{BestIndex: -1}, err
	}
	s.logger.Debug().
		Int("regions", len(quads)).
		Int("skipped", res.Skipped).
		Float64("sharpness", res.Score).
		Dur("elapsed", time.Since(start)).
		Msg("Frame scored")

	if s.debugDir != "" && res.BestIndex >= 0 {
		if sub, err := region.Extract(img, quads[res.BestIndex]); err == nil {
			path := region.SaveDebugImage(s.debugDir, fmt.Sprintf("region_%s", s.ID), sub)
			s.logger.Debug().Str("path", path).Float64("coverage", region.Coverage(sub)).Msg("Best region saved")
		}
	}
	return res, nil
}

// frameLocked returns the record for frameID, flushing an older pending
// frame first. A nil record means the callback is late and dropped, or the
// session is closed (err is framehealth.ErrClosed).
func (s *Session) frameLocked(ctx context.Context, frameID uint64) (f *frame, flushed Outcome, flushErr, err error) {
	if s.closed {
		return nil, Outcome{}, nil, framehealth.ErrClosed
	}
	if s.pending != nil {
		if s.pending.id == frameID {
			return s.pending, Outcome{}, nil, nil
		}
		if frameID < s.pending.id {
			s.logger.Debug().Uint64("frame", frameID).Uint64("pending", s.pending.id).Msg("Dropping late callback")
			return nil, Outcome{}, nil, nil
		}
		flushed, flushErr = s.flushLocked(ctx)
	}
	s.pending = &frame{id: frameID}
	return s.pending, flushed, flushErr, nil
}

// flushLocked evaluates a pending frame whose localization never arrived.
func (s *Session) flushLocked(ctx context.Context) (Outcome, error) {
	f := s.pending
	s.pending = nil
	if f.decoded && f.decodes == 0 {
		return s.tickLocked(ctx, framehealth.Sample{})
	}
	return Outcome{}, nil
}

// completeLocked ticks once both halves of the pending frame are in.
func (s *Session) completeLocked(ctx context.Context, f *frame) (Outcome, error) {
	if !f.localized || !f.decoded {
		return Outcome{}, nil
	}
	s.pending = nil
	if f.decodes > 0 {
		return Outcome{}, nil
	}
	sample := framehealth.Sample{}
	if f.result.HasScore() {
		sample = framehealth.Scored(f.result.Score)
	}
	return s.tickLocked(ctx, sample)
}

func (s *Session) tickLocked(ctx context.Context, sample framehealth.Sample) (Outcome, error) {
	d, err := s.controller.Tick(ctx, sample)
	return Outcome{Ticked: true, Sample: sample, Decision: d}, err
}

// Controller exposes the session's controller for inspection.
func (s *Session) Controller() *framehealth.Controller {
	return s.controller
}

// Advisory returns the message currently shown, if any.
func (s *Session) Advisory() (string, bool) {
	return s.notifier.Current()
}

// Close stops the session. In-flight ticks finish first; later callbacks
// return framehealth.ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	s.controller.Close()
	s.notifier.Stop()
	s.logger.Info().Msg("Session closed")
}
