package framehealth

import (
	"errors"
	"testing"
	"time"
)

func TestDetectZoomRange(t *testing.T) {
	tests := []struct {
		name     string
		caps     Capabilities
		wantUnit float64
		wantErr  bool
	}{
		{"unit scale", Capabilities{ZoomMin: 1, ZoomMax: 8}, 1, false},
		{"percent scale", Capabilities{ZoomMin: 1.5, ZoomMax: 8}, 100, false},
		{"percent range", Capabilities{ZoomMin: 100, ZoomMax: 1000}, 100, false},
		{"just above one", Capabilities{ZoomMin: 1.01, ZoomMax: 8}, 1, false},
		{"no max", Capabilities{ZoomMin: 1}, 0, true},
		{"inverted", Capabilities{ZoomMin: 9, ZoomMax: 8}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectZoomRange(tt.caps)
			if tt.wantErr {
				if !errors.Is(err, ErrCapabilityUnavailable) {
					t.Fatalf("err = %v, want ErrCapabilityUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got.Unit != tt.wantUnit || got.Min != tt.caps.ZoomMin || got.Max != tt.caps.ZoomMax {
				t.Errorf("DetectZoomRange() = %+v", got)
			}
		})
	}
}

func TestNextZoom(t *testing.T) {
	r := ZoomRange{Min: 1, Max: 8, Unit: 1}
	tests := []struct {
		current float64
		want    float64
		ok      bool
	}{
		{5, 4, true},
		{1.4, 1, true},
		{1, 1, false},
		{0.5, 0.5, false},
	}
	for _, tt := range tests {
		got, ok := r.NextZoom(tt.current)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NextZoom(%v) = %v, %v; want %v, %v", tt.current, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStepRules(t *testing.T) {
	tuning := DefaultTuning()
	t0 := time.Unix(100, 0)

	s, fire := Step(State{}, Scored(299.9), t0, tuning)
	if fire || s.PoorFrames != 1 || !s.WindowStart.Equal(t0) {
		t.Errorf("first poor tick = %+v, %v", s, fire)
	}

	s, fire = Step(s, Scored(300), t0.Add(time.Second), tuning)
	if fire || s.PoorFrames != 1 {
		t.Errorf("sharp tick must not touch counter: %+v, %v", s, fire)
	}

	s = State{PoorFrames: 24, WindowStart: t0}
	s, fire = Step(s, Scored(0), t0.Add(time.Second), tuning)
	if !fire || s.PoorFrames != 0 || !s.WindowStart.Equal(t0) {
		t.Errorf("counter trigger = %+v, %v; window must be untouched", s, fire)
	}

	s = State{PoorFrames: 7, WindowStart: t0}
	s, fire = Step(s, Scored(1000), t0.Add(3001*time.Millisecond), tuning)
	if !fire || s.PoorFrames != 7 || !s.WindowStart.IsZero() {
		t.Errorf("window trigger = %+v, %v; counter must be untouched", s, fire)
	}
}
