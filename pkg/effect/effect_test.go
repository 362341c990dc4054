package effect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

// fakeLight records colors written to it.
type fakeLight struct {
	mu     sync.Mutex
	writes []color.RGB
	offs   int
	fail   error
}

func (f *fakeLight) Info() light.Info { return light.Info{Name: "fake"} }

func (f *fakeLight) On(c color.RGB) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, c)
	return nil
}

func (f *fakeLight) Off() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offs++
	return nil
}

func (f *fakeLight) Close() error { return nil }

func (f *fakeLight) snapshot() ([]color.RGB, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]color.RGB, len(f.writes))
	copy(out, f.writes)
	return out, f.offs
}

func TestBlinkColors(t *testing.T) {
	e := NewBlink(color.Red, light.Fast)
	colors := e.Colors()
	if len(colors) != 2 {
		t.Fatalf("blink should have 2 frames, got %d", len(colors))
	}
	if colors[0] != color.Red || !colors[1].IsOff() {
		t.Fatalf("unexpected blink frames: %v", colors)
	}
	if e.Interval() != light.Fast.Interval() {
		t.Fatalf("unexpected interval %s", e.Interval())
	}
}

func TestGradientRampsUpAndDown(t *testing.T) {
	e := NewGradient(color.Blue, light.Medium)
	colors := e.Colors()
	if len(colors) != 2*gradientSteps-2 {
		t.Fatalf("unexpected frame count %d", len(colors))
	}
	if !colors[0].IsOff() {
		t.Fatalf("pulse should start from off")
	}
	if colors[gradientSteps-1] != color.Blue {
		t.Fatalf("pulse peak should be the color, got %v", colors[gradientSteps-1])
	}
	// Cycle is symmetric: frame after the peak mirrors the frame before it.
	if colors[gradientSteps] != colors[gradientSteps-2] {
		t.Fatalf("pulse should ramp back down symmetrically")
	}
}

func TestForName(t *testing.T) {
	for _, name := range []string{"steady", "blink", "PULSE", "gradient", "rainbow", "Spectrum"} {
		if _, err := ForName(name, color.Red, light.Slow); err != nil {
			t.Fatalf("ForName(%q) error: %v", name, err)
		}
	}
	if _, err := ForName("sparkle", color.Red, light.Slow); err == nil {
		t.Fatalf("expected error for unknown effect")
	}
}

func TestExecuteStopsOnCancel(t *testing.T) {
	l := &fakeLight{}
	e := &Effect{
		name:     "test",
		colors:   []color.RGB{color.Red, color.Green},
		interval: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Execute(ctx, l) }()

	deadline := time.Now().Add(time.Second)
	for {
		writes, _ := l.snapshot()
		if len(writes) >= 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("effect made no progress")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Execute returned error on cancel: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Execute did not stop after cancel")
	}

	writes, offs := l.snapshot()
	if offs != 1 {
		t.Fatalf("light should be turned off once, got %d", offs)
	}
	// Frames alternate.
	for i := 1; i < len(writes); i++ {
		if writes[i] == writes[i-1] {
			t.Fatalf("consecutive identical frames at %d", i)
		}
	}
}

func TestExecuteReturnsWriteError(t *testing.T) {
	wantErr := errors.New("device gone")
	l := &fakeLight{fail: wantErr}
	e := NewBlink(color.Red, light.Fast)

	err := e.Execute(context.Background(), l)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected write error, got %v", err)
	}
}
