package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MaaXYZ/maa-framework-go/v3"
	"github.com/rs/zerolog/log"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/camera"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/framehealth"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/scansession"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/sharpness"
)

const (
	defaultSession = "default"
	keyHold        = 50 * time.Millisecond
)

// frameHealthParam is the custom_action_param of FrameHealth.
type frameHealthParam struct {
	Session    string  `json:"session"`
	ZoomMin    float64 `json:"zoom_min"`
	ZoomMax    float64 `json:"zoom_max"`
	Zoom       float64 `json:"zoom"`
	ZoomInKey  string  `json:"zoom_in_key"`
	ZoomOutKey string  `json:"zoom_out_key"`
	Close      bool    `json:"close"`
}

// frameHealthAction feeds a FrameSharpness result into the named session,
// which may zoom out and show an advisory.
type frameHealthAction struct {
	displays displays
}

func (a *frameHealthAction) Run(ctx *maa.Context, arg *maa.CustomActionArg) bool {
	var p frameHealthParam
	if err := unmarshalParam(arg.CustomActionParam, &p); err != nil {
		log.Error().Err(err).Str("param", arg.CustomActionParam).Msg("[FrameHealth] Invalid param")
		return false
	}

	detail, ok := parseFrameDetail(arg.RecognitionDetail.DetailJson)
	name := p.Session
	if name == "" {
		name = detail.Session
	}
	if name == "" {
		name = defaultSession
	}

	if p.Close {
		if s, ok := sessions.Get(name); ok {
			st := s.Controller().State()
			log.Info().Str("session", name).Int("poor_frames", st.PoorFrames).Msg("[FrameHealth] Closing session")
		}
		closed := sessions.Close(name)
		a.displays.drop(name)
		log.Info().Str("session", name).Bool("closed", closed).Msg("[FrameHealth] Session closed")
		return true
	}
	if !ok {
		log.Error().Str("detail", arg.RecognitionDetail.DetailJson).Msg("[FrameHealth] Failed to parse frame detail")
		return false
	}

	display := a.displays.get(name)
	unbind := display.bind(focusSink(ctx))
	defer unbind()

	s, err := sessions.GetOrStart(context.Background(), name, func() (*scansession.Session, error) {
		return a.newSession(ctx, p, display)
	})
	if err != nil {
		log.Error().Err(err).Str("session", name).Msg("[FrameHealth] Failed to create session")
		return false
	}

	res := sharpness.Result{BestIndex: -1, Skipped: detail.Skipped}
	if detail.HasScore && detail.Sharpness != nil {
		res.Score = *detail.Sharpness
		res.BestIndex = detail.BestIndex
		res.Evaluated = detail.Localized - detail.Skipped
	}

	out, err := s.Scored(context.Background(), s.NextFrameID(), res, detail.Decoded)
	if err != nil {
		if framehealth.IsClosed(err) {
			log.Warn().Str("session", name).Msg("[FrameHealth] Session already closed")
			return false
		}
		// A failed zoom command is not retried; scanning goes on.
		log.Warn().Err(err).Str("session", name).Msg("[FrameHealth] Zoom command failed")
	}
	if out.Decision.Issued {
		log.Info().
			Float64("from", out.Decision.From).
			Float64("to", out.Decision.To).
			Msg("[FrameHealth] Zoomed out")
	}
	return true
}

func (a *frameHealthAction) newSession(ctx *maa.Context, p frameHealthParam, display *focusDisplay) (*scansession.Session, error) {
	cfg := currentConfig()
	inKey, outKey := p.ZoomInKey, p.ZoomOutKey
	if inKey == "" {
		inKey = cfg.ZoomInKey
	}
	if outKey == "" {
		outKey = cfg.ZoomOutKey
	}

	cam, err := camera.NewKeyZoom(framehealth.Capabilities{ZoomMin: p.ZoomMin, ZoomMax: p.ZoomMax}, p.Zoom, inKey, outKey)
	if err != nil {
		return nil, err
	}
	ctrl := ctx.GetTasker().GetController()
	cam.Attach(func(ctx context.Context, key int32) error {
		ctrl.PostKeyDown(key).Wait()
		select {
		case <-time.After(keyHold):
		case <-ctx.Done():
		}
		ctrl.PostKeyUp(key).Wait()
		return ctx.Err()
	})

	opts := scansession.DefaultOptions()
	opts.Tuning = cfg.FrameHealth()
	opts.AdvisoryDuration = cfg.AdvisoryDuration
	opts.Concurrent = cfg.Concurrent
	opts.DebugDir = cfg.DebugDir
	opts.Display = display
	return scansession.New(cam, opts), nil
}

// parseFrameDetail reads a FrameSharpness detail, either as is or wrapped
// in the pipeline's best.detail envelope.
func parseFrameDetail(raw string) (frameDetail, bool) {
	var detail frameDetail
	if err := json.Unmarshal([]byte(raw), &detail); err == nil && (detail.HasScore || detail.Localized > 0 || detail.Decoded > 0 || detail.Session != "") {
		return detail, true
	}

	var wrapped struct {
		Best struct {
			Detail frameDetail `json:"detail"`
		} `json:"best"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		return wrapped.Best.Detail, true
	}
	return frameDetail{}, false
}
