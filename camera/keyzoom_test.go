package camera

import (
	"context"
	"errors"
	"testing"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/framehealth"
)

func TestGetKeyCode(t *testing.T) {
	if got := GetKeyCode("Minus"); got != 0xBD {
		t.Errorf("GetKeyCode(Minus) = %#x", got)
	}
	if got := GetKeyCode("Unbound"); got != -1 {
		t.Errorf("GetKeyCode(Unbound) = %d, want -1", got)
	}
	if got := GetKeyCode("Nope"); got != -2 {
		t.Errorf("GetKeyCode(Nope) = %d, want -2", got)
	}
}

func TestKeyZoomSetZoom(t *testing.T) {
	caps := framehealth.Capabilities{ZoomMin: 1, ZoomMax: 8}
	cam, err := NewKeyZoom(caps, 5, "", "")
	if err != nil {
		t.Fatalf("NewKeyZoom() error = %v", err)
	}

	if err := cam.SetZoom(context.Background(), 4); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("SetZoom() without presser error = %v", err)
	}

	var pressed []int32
	cam.Attach(func(_ context.Context, key int32) error {
		pressed = append(pressed, key)
		return nil
	})

	if err := cam.SetZoom(context.Background(), 3); err != nil {
		t.Fatalf("SetZoom() error = %v", err)
	}
	if len(pressed) != 2 || pressed[0] != KeyEnum["Minus"] {
		t.Errorf("pressed = %v, want two Minus presses", pressed)
	}
	if cam.Zoom() != 3 {
		t.Errorf("Zoom() = %v, want 3", cam.Zoom())
	}

	pressed = nil
	if err := cam.SetZoom(context.Background(), 4.5); err != nil {
		t.Fatalf("SetZoom() error = %v", err)
	}
	if len(pressed) != 2 || pressed[0] != KeyEnum["Plus"] {
		t.Errorf("pressed = %v, want two Plus presses", pressed)
	}
}

func TestKeyZoomPercentUnit(t *testing.T) {
	caps := framehealth.Capabilities{ZoomMin: 100, ZoomMax: 800}
	cam, err := NewKeyZoom(caps, 500, "PageUp", "PageDown")
	if err != nil {
		t.Fatalf("NewKeyZoom() error = %v", err)
	}
	presses := 0
	cam.Attach(func(context.Context, int32) error { presses++; return nil })

	if err := cam.SetZoom(context.Background(), 400); err != nil {
		t.Fatalf("SetZoom() error = %v", err)
	}
	if presses != 1 {
		t.Errorf("presses = %d, want 1", presses)
	}
}

func TestKeyZoomPartialFailure(t *testing.T) {
	cam, err := NewKeyZoom(framehealth.Capabilities{ZoomMin: 1, ZoomMax: 8}, 6, "", "")
	if err != nil {
		t.Fatalf("NewKeyZoom() error = %v", err)
	}
	calls := 0
	cam.Attach(func(context.Context, int32) error {
		calls++
		if calls == 2 {
			return errors.New("device gone")
		}
		return nil
	})

	if err := cam.SetZoom(context.Background(), 3); err == nil {
		t.Fatal("SetZoom() error = nil, want failure")
	}
	if cam.Zoom() != 5 {
		t.Errorf("Zoom() = %v, want 5 after one confirmed press", cam.Zoom())
	}
}

func TestNewKeyZoomRejectsUnknownKey(t *testing.T) {
	if _, err := NewKeyZoom(framehealth.Capabilities{}, 1, "Nope", ""); err == nil {
		t.Error("NewKeyZoom() accepted unknown key")
	}
	if _, err := NewKeyZoom(framehealth.Capabilities{}, 1, "", "Unbound"); err == nil {
		t.Error("NewKeyZoom() accepted unbound key")
	}
}

func TestStaticClamps(t *testing.T) {
	cam := NewStatic(framehealth.Capabilities{ZoomMin: 1, ZoomMax: 8}, 2)
	cam.SetZoom(context.Background(), 20)
	cam.SetZoom(context.Background(), 0)
	got := cam.Commands()
	if len(got) != 2 || got[0] != 8 || got[1] != 1 {
		t.Errorf("Commands() = %v, want [8 1]", got)
	}
}
