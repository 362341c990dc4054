package luxafor

import (
	"bytes"
	"testing"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

func TestCommands(t *testing.T) {
	red := color.RGB{R: 0xFF}

	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"static all", staticCommand(LEDAll, red), []byte{0x01, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"static front", staticCommand(LEDFront, red), []byte{0x01, 0x41, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"fade", fadeCommand(LEDAll, red, 0x20), []byte{0x02, 0xFF, 0xFF, 0x00, 0x00, 0x20, 0x00, 0x00}},
		{"strobe", strobeCommand(LEDAll, red, 0x0A, 3), []byte{0x03, 0xFF, 0xFF, 0x00, 0x00, 0x0A, 0x00, 0x03}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Fatalf("got %x, want %x", tt.got, tt.want)
			}
		})
	}
}

func TestOnWritesStaticReport(t *testing.T) {
	dev := hid.NewMockDevice()
	l, err := New(dev, hid.Info{Product: "LUXAFOR FLAG"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := l.On(color.RGB{G: 0x80}); err != nil {
		t.Fatalf("On: %v", err)
	}

	r, ok := dev.LastReport()
	if !ok {
		t.Fatalf("no report written")
	}
	if r.ID != 0 || r.Feature {
		t.Fatalf("expected output report 0, got %+v", r)
	}
	if !bytes.Equal(r.Data, []byte{0x01, 0xFF, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00}) {
		t.Fatalf("unexpected payload: %x", r.Data)
	}
}

func TestNamesFromProductString(t *testing.T) {
	tests := []struct {
		product string
		want    string
	}{
		{"LUXAFOR FLAG", "Luxafor Flag"},
		{"LUXAFOR MUTE", "Luxafor Mute"},
		{"Luxafor Orb", "Luxafor Orb"},
		{"", "Luxafor Flag"},
	}
	for _, tt := range tests {
		l, err := New(hid.NewMockDevice(), hid.Info{Product: tt.product})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if got := l.Info().Name; got != tt.want {
			t.Fatalf("Name for %q = %q, want %q", tt.product, got, tt.want)
		}
	}
}

func TestFlashUsesStrobeMode(t *testing.T) {
	dev := hid.NewMockDevice()
	l, _ := New(dev, hid.Info{})

	flasher, ok := l.(light.Flasher)
	if !ok {
		t.Fatalf("luxafor should implement light.Flasher")
	}
	if err := flasher.Flash(color.Red, color.Off, light.Fast); err != nil {
		t.Fatalf("Flash: %v", err)
	}
	r, _ := dev.LastReport()
	if r.Data[0] != modeStrobe {
		t.Fatalf("expected strobe mode, got 0x%02x", r.Data[0])
	}
	if r.Data[5] != 0x0A {
		t.Fatalf("expected fast speed byte 0x0A, got 0x%02x", r.Data[5])
	}
}
