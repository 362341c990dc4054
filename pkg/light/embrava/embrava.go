// Package embrava drives Embrava Blynclight devices. The device consumes a
// 9-byte output report carrying a packed command word: color bytes in RBG
// order, a flag byte with off/dim/flash bits and a one-hot flash speed, and
// a fixed two-byte trailer.
package embrava

import (
	"fmt"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

const (
	VendorIDEmbrava uint16 = 0x2C0D
	VendorIDPlenom  uint16 = 0x0E53
)

var productIDs = map[uint16]string{
	0x0001: "Blynclight",
	0x0002: "Blynclight Mini",
	0x0010: "Blynclight Plus",
}

// Flag byte layout (byte 4 of the report).
const (
	offBit   byte = 1 << 0
	dimBit   byte = 1 << 1
	flashBit byte = 1 << 2

	speedShift      = 3
	speedMask  byte = 0x7 << speedShift

	speedSlow   byte = 1 << speedShift
	speedMedium byte = 2 << speedShift
	speedFast   byte = 4 << speedShift
)

// Report trailer, bytes 7-8.
const (
	trailerHi byte = 0xFF
	trailerLo byte = 0x22
)

func init() {
	light.Register(light.Driver{
		Name:      "Embrava",
		VendorIDs: []uint16{VendorIDEmbrava, VendorIDPlenom},
		Supports: func(info hid.Info) bool {
			if info.VendorID != VendorIDEmbrava && info.VendorID != VendorIDPlenom {
				return false
			}
			_, ok := productIDs[info.ProductID]
			return ok
		},
		Open: New,
	})
}

// state is the device command word prior to packing.
type state struct {
	color color.RGB
	off   bool
	dim   bool
	flash bool
	speed byte // one-hot, already shifted
}

// pack renders the command word as the 9-byte report (report ID at byte 0).
func (s state) pack() []byte {
	flags := s.speed & speedMask
	if s.off {
		flags |= offBit
	}
	if s.dim {
		flags |= dimBit
	}
	if s.flash {
		flags |= flashBit
		if flags&speedMask == 0 {
			flags |= speedSlow
		}
	}
	return []byte{
		0x00,
		s.color.R,
		s.color.B, // device expects RBG order
		s.color.G,
		flags,
		0x00,
		0x00,
		trailerHi,
		trailerLo,
	}
}

func hwSpeed(speed light.Speed) byte {
	switch speed {
	case light.Fast:
		return speedFast
	case light.Medium:
		return speedMedium
	default:
		return speedSlow
	}
}

// Light is an opened Blynclight.
type Light struct {
	dev   hid.Device
	name  string
	state state
}

// New opens a Blynclight from an already-opened HID device.
func New(dev hid.Device, info hid.Info) (light.Light, error) {
	name, ok := productIDs[info.ProductID]
	if !ok {
		return nil, fmt.Errorf("%w: embrava product 0x%04X", light.ErrLightUnsupported, info.ProductID)
	}
	return &Light{dev: dev, name: name, state: state{off: true}}, nil
}

func (l *Light) Info() light.Info {
	return light.Info{Name: l.name, Vendor: "Embrava"}
}

func (l *Light) apply(s state) error {
	report := s.pack()
	if _, err := l.dev.Write(report); err != nil {
		return fmt.Errorf("embrava write: %w", err)
	}
	l.state = s
	return nil
}

func (l *Light) On(c color.RGB) error {
	return l.apply(state{color: c, off: c.IsOff()})
}

func (l *Light) Off() error {
	return l.apply(state{off: true})
}

// SetBrightness implements light.Dimmer with the device's single dim bit:
// anything below half brightness sets it.
func (l *Light) SetBrightness(percent uint8) error {
	s := l.state
	s.dim = percent < 50
	return l.apply(s)
}

// Flash implements light.Flasher using the hardware flash bit and speed
// field. The off color is ignored; the device flashes against black.
func (l *Light) Flash(on, _ color.RGB, speed light.Speed) error {
	return l.apply(state{color: on, flash: true, speed: hwSpeed(speed)})
}

func (l *Light) Close() error {
	return l.dev.Close()
}
