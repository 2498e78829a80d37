package sharpness

import (
	"errors"
	"image"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/region"
)

// Result summarises the regions scored for one frame.
type Result struct {
	Score     float64 // maximum score, 0 when nothing was evaluated
	BestIndex int     // index of the sharpest quad, -1 when none
	Evaluated int
	Skipped   int
}

// HasScore reports whether at least one region produced a score.
func (r Result) HasScore() bool {
	return r.Evaluated > 0
}

// Best extracts every quad from img and returns the sharpest. Degenerate
// quads are skipped; any other extraction error is returned.
func Best(img image.Image, quads []region.Quad, concurrent bool) (Result, error) {
	res := Result{BestIndex: -1}
	if len(quads) == 0 {
		return res, nil
	}

	scores := make([]float64, len(quads))
	errs := make([]error, len(quads))

	score := func(i int) {
		sub, err := region.Extract(img, quads[i])
		if err != nil {
			errs[i] = err
			return
		}
		scores[i] = Estimate(sub)
	}

	if concurrent && len(quads) > 1 {
		var wg sync.WaitGroup
		wg.Add(len(quads))
		for i := range quads {
			go func(i int) {
				defer wg.Done()
				score(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range quads {
			score(i)
		}
	}

	for i, err := range errs {
		if err != nil {
			if errors.Is(err, region.ErrDegenerateRegion) {
				log.Debug().Err(err).Int("index", i).Msg("Skipping degenerate region")
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Evaluated++
		if res.BestIndex < 0 || scores[i] > res.Score {
			res.Score = scores[i]
			res.BestIndex = i
		}
	}
	return res, nil
}
