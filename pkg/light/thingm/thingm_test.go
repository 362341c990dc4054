package thingm

import (
	"bytes"
	"testing"
	"time"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
)

func TestSetNowCommand(t *testing.T) {
	got := setNowCommand(color.RGB{R: 0xAA, G: 0xBB, B: 0xCC})
	want := []byte{'n', 0xAA, 0xBB, 0xCC, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("setNowCommand = %x, want %x", got, want)
	}
}

func TestFadeCommand(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		led      byte
		wantHi   byte
		wantLo   byte
	}{
		{"one second", time.Second, LEDAll, 0x00, 0x64},
		{"ten seconds", 10 * time.Second, LED1, 0x03, 0xE8},
		{"clamped", 20 * time.Minute, LEDAll, 0xFF, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fadeCommand(color.Red, tt.duration, tt.led)
			want := []byte{'c', 0xFF, 0x00, 0x00, tt.wantHi, tt.wantLo, tt.led, 0}
			if !bytes.Equal(got, want) {
				t.Fatalf("fadeCommand = %x, want %x", got, want)
			}
		})
	}
}

func TestOnWritesFeatureReport(t *testing.T) {
	dev := hid.NewMockDevice()
	l, err := New(dev, hid.Info{VendorID: VendorID, ProductID: ProductID})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := l.On(color.Blue); err != nil {
		t.Fatalf("On: %v", err)
	}

	r, ok := dev.LastReport()
	if !ok {
		t.Fatalf("no report written")
	}
	if !r.Feature || r.ID != reportID {
		t.Fatalf("expected feature report %d, got %+v", reportID, r)
	}
	if r.Data[0] != cmdSetNow {
		t.Fatalf("expected 'n' command, got %q", r.Data[0])
	}
}
