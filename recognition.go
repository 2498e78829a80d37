package main

import (
	"encoding/json"
	"image"
	"math"
	"time"

	"github.com/MaaXYZ/maa-framework-go/v3"
	"github.com/rs/zerolog/log"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/region"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/sharpness"
)

// frameSharpnessParam is the custom_recognition_param of FrameSharpness.
type frameSharpnessParam struct {
	Session    string          `json:"session"`
	Quads      [][4][2]float64 `json:"quads"`
	LocateNode string          `json:"locate_node"`
	DecodeNode string          `json:"decode_node"`
}

// frameDetail is the recognition detail handed to FrameHealth.
type frameDetail struct {
	Session   string   `json:"session"`
	Decoded   int      `json:"decoded"`
	Localized int      `json:"localized"`
	Skipped   int      `json:"skipped"`
	BestIndex int      `json:"best_index"`
	Sharpness *float64 `json:"sharpness"`
	HasScore  bool     `json:"has_score"`
}

// frameSharpnessRecognition scores the localized regions of the current
// screenshot and reports whether the decoder read anything.
type frameSharpnessRecognition struct{}

func (r *frameSharpnessRecognition) Run(ctx *maa.Context, arg *maa.CustomRecognitionArg) (*maa.CustomRecognitionResult, bool) {
	var p frameSharpnessParam
	if err := unmarshalParam(arg.CustomRecognitionParam, &p); err != nil {
		log.Error().Err(err).Str("param", arg.CustomRecognitionParam).Msg("[FrameSharpness] Invalid param")
		return nil, false
	}

	img := arg.Img
	if img == nil {
		log.Error().Msg("[FrameSharpness] No image")
		return nil, false
	}

	quads := make([]region.Quad, 0, len(p.Quads))
	for _, q := range p.Quads {
		quads = append(quads, region.Quad{
			{X: q[0][0], Y: q[0][1]},
			{X: q[1][0], Y: q[1][1]},
			{X: q[2][0], Y: q[2][1]},
			{X: q[3][0], Y: q[3][1]},
		})
	}
	if p.LocateNode != "" {
		quads = append(quads, locate(ctx, p.LocateNode, img)...)
	}

	decoded := 0
	if p.DecodeNode != "" {
		decoded = decode(ctx, p.DecodeNode, img)
	}

	start := time.Now()
	cfg := currentConfig()
	res, err := sharpness.Best(img, quads, cfg.Concurrent)
	if err != nil {
		log.Error().Err(err).Msg("[FrameSharpness] Scoring failed")
		return nil, false
	}
	log.Debug().
		Int("regions", len(quads)).
		Int("skipped", res.Skipped).
		Int("decoded", decoded).
		Float64("sharpness", res.Score).
		Dur("elapsed", time.Since(start)).
		Msg("[FrameSharpness] Frame scored")

	box := arg.Roi
	detail := frameDetail{
		Session:   p.Session,
		Decoded:   decoded,
		Localized: len(quads),
		Skipped:   res.Skipped,
		BestIndex: res.BestIndex,
		HasScore:  res.HasScore(),
	}
	if res.HasScore() {
		score := res.Score
		detail.Sharpness = &score
		box = boundsRect(quads[res.BestIndex])

		if cfg.DebugDir != "" {
			if sub, err := region.Extract(img, quads[res.BestIndex]); err == nil {
				path := region.SaveDebugImage(cfg.DebugDir, "frame_sharpness", sub)
				log.Debug().Str("path", path).Float64("coverage", region.Coverage(sub)).Msg("[FrameSharpness] Best region saved")
			}
		}
	}

	detailBytes, _ := json.Marshal(detail)
	return &maa.CustomRecognitionResult{
		Box:    box,
		Detail: string(detailBytes),
	}, true
}

// recognitionBoxes is the part of a pipeline recognition detail that lists
// result boxes.
type recognitionBoxes struct {
	Filtered []struct {
		Box []int `json:"box"`
	} `json:"filtered"`
	Best *struct {
		Box []int `json:"box"`
	} `json:"best"`
}

// locate runs the localizer node and turns its boxes into quads.
func locate(ctx *maa.Context, node string, img image.Image) []region.Quad {
	res := ctx.RunRecognition(node, img, map[string]any{})
	if res == nil || !res.Hit {
		return nil
	}

	var boxes recognitionBoxes
	if err := json.Unmarshal([]byte(res.DetailJson), &boxes); err != nil {
		log.Warn().Err(err).Str("node", node).Msg("[FrameSharpness] Unreadable locate detail")
	}

	var quads []region.Quad
	for _, item := range boxes.Filtered {
		if len(item.Box) >= 4 {
			quads = append(quads, rectQuad(item.Box))
		}
	}
	if len(quads) == 0 && boxes.Best != nil && len(boxes.Best.Box) >= 4 {
		quads = append(quads, rectQuad(boxes.Best.Box))
	}
	if len(quads) == 0 {
		quads = append(quads, region.QuadFromRect(
			float64(res.Box.X()), float64(res.Box.Y()),
			float64(res.Box.Width()), float64(res.Box.Height()),
		))
	}
	return quads
}

// decode runs the decoder node and returns how many codes it read.
func decode(ctx *maa.Context, node string, img image.Image) int {
	res := ctx.RunRecognition(node, img, map[string]any{})
	if res == nil || !res.Hit {
		return 0
	}
	var boxes recognitionBoxes
	if err := json.Unmarshal([]byte(res.DetailJson), &boxes); err == nil && len(boxes.Filtered) > 0 {
		return len(boxes.Filtered)
	}
	return 1
}

func rectQuad(b []int) region.Quad {
	return region.QuadFromRect(float64(b[0]), float64(b[1]), float64(b[2]), float64(b[3]))
}

func boundsRect(q region.Quad) maa.Rect {
	minX, minY, maxX, maxY := q.Bounds()
	return maa.Rect{int(math.Round(minX)), int(math.Round(minY)), int(maxX - minX), int(maxY - minY)}
}

// unmarshalParam accepts a JSON object or a JSON string holding one.
func unmarshalParam(raw string, v any) error {
	if raw == "" {
		return nil
	}
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	var s string
	if err2 := json.Unmarshal([]byte(raw), &s); err2 == nil {
		return json.Unmarshal([]byte(s), v)
	}
	return err
}
