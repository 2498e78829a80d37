package main

import (
	"sync"

	"github.com/MaaXYZ/maa-framework-go/v3"
	"github.com/rs/zerolog/log"
)

// focusDisplay shows one session's advisories as a pipeline focus message.
// MAA only lets a custom action run tasks on its own context, so each call
// binds a sink for its duration. A later bind wins; an unbind only clears
// its own binding.
type focusDisplay struct {
	mu   sync.Mutex
	sink func(msg string)
	gen  uint64
}

func (d *focusDisplay) bind(sink func(msg string)) func() {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.sink = sink
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		if d.gen == gen {
			d.sink = nil
		}
		d.mu.Unlock()
	}
}

func (d *focusDisplay) Show(msg string) {
	d.mu.Lock()
	sink := d.sink
	d.mu.Unlock()

	log.Info().Str("message", msg).Msg("[FrameHealth] Advisory")
	if sink != nil {
		sink(msg)
	}
}

// Hide has nothing to clear: focus messages are transient.
func (d *focusDisplay) Hide() {
	log.Debug().Msg("[FrameHealth] Advisory dismissed")
}

// focusSink runs the focus message task on ctx.
func focusSink(ctx *maa.Context) func(msg string) {
	return func(msg string) {
		ctx.RunTask("FrameHealthShowMessage", map[string]interface{}{
			"FrameHealthShowMessage": map[string]interface{}{
				"recognition": "DirectHit",
				"action":      "DoNothing",
				"focus": map[string]interface{}{
					"Node.Action.Starting": msg,
				},
			},
		})
	}
}

// displays hands out one focusDisplay per session name.
type displays struct {
	mu sync.Mutex
	m  map[string]*focusDisplay
}

func (ds *displays) get(name string) *focusDisplay {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.m == nil {
		ds.m = make(map[string]*focusDisplay)
	}
	d, ok := ds.m[name]
	if !ok {
		d = &focusDisplay{}
		ds.m[name] = d
	}
	return d
}

func (ds *displays) drop(name string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.m, name)
}
