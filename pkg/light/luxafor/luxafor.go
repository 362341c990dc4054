// Package luxafor drives Luxafor Flag, Mute and Orb lights. Every model
// shares the Microchip VID/PID pair and is told apart by its product string.
package luxafor

import (
	"fmt"
	"strings"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

const (
	VendorID  uint16 = 0x04D8
	ProductID uint16 = 0xF372
)

// Command modes, byte 0 of the output report.
const (
	modeStatic byte = 0x01
	modeFade   byte = 0x02
	modeStrobe byte = 0x03
)

// LED targets, byte 1.
const (
	LEDAll   byte = 0xFF
	LEDFront byte = 0x41
	LEDBack  byte = 0x42
)

func init() {
	light.Register(light.Driver{
		Name:      "Luxafor",
		VendorIDs: []uint16{VendorID},
		Supports: func(info hid.Info) bool {
			return info.VendorID == VendorID && info.ProductID == ProductID
		},
		Open: New,
	})
}

// Light is an opened Luxafor device.
type Light struct {
	dev  hid.Device
	name string
}

// New opens a Luxafor light from an already-opened HID device.
func New(dev hid.Device, info hid.Info) (light.Light, error) {
	name := "Luxafor Flag"
	switch {
	case strings.Contains(strings.ToLower(info.Product), "mute"):
		name = "Luxafor Mute"
	case strings.Contains(strings.ToLower(info.Product), "orb"):
		name = "Luxafor Orb"
	}
	return &Light{dev: dev, name: name}, nil
}

func (l *Light) Info() light.Info {
	return light.Info{Name: l.name, Vendor: "Luxafor"}
}

func staticCommand(led byte, c color.RGB) []byte {
	return []byte{modeStatic, led, c.R, c.G, c.B, 0, 0, 0}
}

func fadeCommand(led byte, c color.RGB, duration byte) []byte {
	return []byte{modeFade, led, c.R, c.G, c.B, duration, 0, 0}
}

// strobeCommand flashes the color; repeat 0 strobes until replaced.
func strobeCommand(led byte, c color.RGB, speed, repeat byte) []byte {
	return []byte{modeStrobe, led, c.R, c.G, c.B, speed, 0, repeat}
}

func (l *Light) send(cmd []byte) error {
	if err := hid.WriteOutput(l.dev, 0, cmd); err != nil {
		return fmt.Errorf("luxafor write: %w", err)
	}
	return nil
}

func (l *Light) On(c color.RGB) error {
	return l.send(staticCommand(LEDAll, c))
}

func (l *Light) Off() error {
	return l.send(staticCommand(LEDAll, color.Off))
}

// Fade transitions to the color over the device-defined duration unit.
func (l *Light) Fade(c color.RGB, duration byte) error {
	return l.send(fadeCommand(LEDAll, c, duration))
}

// Flash implements light.Flasher with the hardware strobe mode. The off
// color is ignored; the device strobes against black.
func (l *Light) Flash(on, _ color.RGB, speed light.Speed) error {
	var hw byte
	switch speed {
	case light.Fast:
		hw = 0x0A
	case light.Medium:
		hw = 0x14
	default:
		hw = 0x28
	}
	return l.send(strobeCommand(LEDAll, on, hw, 0))
}

func (l *Light) Close() error {
	return l.dev.Close()
}
