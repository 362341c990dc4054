// Package thingm drives the ThingM blink(1) family. All control is through
// feature report 1 with a single-letter command byte; fade times are in
// 10ms units, big endian.
package thingm

import (
	"fmt"
	"time"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

const (
	VendorID  uint16 = 0x27B8
	ProductID uint16 = 0x01ED
)

const reportID byte = 1

// Command bytes.
const (
	cmdSetNow byte = 'n'
	cmdFade   byte = 'c'
)

// LED targets for fade commands.
const (
	LEDAll byte = 0
	LED1   byte = 1
	LED2   byte = 2
)

func init() {
	light.Register(light.Driver{
		Name:      "ThingM",
		VendorIDs: []uint16{VendorID},
		Supports: func(info hid.Info) bool {
			return info.VendorID == VendorID && info.ProductID == ProductID
		},
		Open: New,
	})
}

// Light is an opened blink(1).
type Light struct {
	dev hid.Device
}

// New opens a blink(1) from an already-opened HID device.
func New(dev hid.Device, _ hid.Info) (light.Light, error) {
	return &Light{dev: dev}, nil
}

func (l *Light) Info() light.Info {
	return light.Info{Name: "blink(1)", Vendor: "ThingM"}
}

func setNowCommand(c color.RGB) []byte {
	return []byte{cmdSetNow, c.R, c.G, c.B, 0, 0, 0, 0}
}

func fadeCommand(c color.RGB, d time.Duration, led byte) []byte {
	centis := d.Milliseconds() / 10
	if centis > 0xFFFF {
		centis = 0xFFFF
	}
	return []byte{cmdFade, c.R, c.G, c.B, byte(centis >> 8), byte(centis), led, 0}
}

func (l *Light) send(cmd []byte) error {
	if err := hid.WriteFeature(l.dev, reportID, cmd); err != nil {
		return fmt.Errorf("blink(1) write: %w", err)
	}
	return nil
}

func (l *Light) On(c color.RGB) error {
	return l.send(setNowCommand(c))
}

func (l *Light) Off() error {
	return l.send(setNowCommand(color.Off))
}

// Fade transitions every LED to the color over d.
func (l *Light) Fade(c color.RGB, d time.Duration) error {
	return l.send(fadeCommand(c, d, LEDAll))
}

func (l *Light) Close() error {
	return l.dev.Close()
}
