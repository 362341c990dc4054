// Package light defines the device model for USB-connected LED lights: the
// Light interface implemented by vendor drivers, the driver registry, and a
// Manager for working with multiple lights at once.
package light

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/busylight-go/busylight/pkg/color"
)

// Light is a single USB LED light.
type Light interface {
	Info() Info
	On(c color.RGB) error
	Off() error
	Close() error
}

// Dimmer is implemented by lights with a native brightness register.
type Dimmer interface {
	SetBrightness(percent uint8) error
}

// Flasher is implemented by lights with hardware blink support.
type Flasher interface {
	Flash(on, off color.RGB, speed Speed) error
}

// EffectPlayer drives a light until the context is cancelled.
type EffectPlayer interface {
	Name() string
	Execute(ctx context.Context, l Light) error
}

// Info describes a discovered light.
type Info struct {
	Index        int    `json:"light_id"`
	Name         string `json:"name"`
	Vendor       string `json:"vendor"`
	Path         string `json:"path"`
	VendorID     uint16 `json:"vendor_id"`
	ProductID    uint16 `json:"product_id"`
	SerialNumber string `json:"serial_number,omitempty"`
}

func (i Info) String() string {
	return fmt.Sprintf("%3d %s", i.Index, i.Name)
}

// Speed selects the cadence of blink and pulse effects.
type Speed int

const (
	Slow Speed = iota + 1
	Medium
	Fast
)

// ParseSpeed maps a case-insensitive speed name to a Speed, defaulting to
// Slow for an empty value.
func ParseSpeed(value string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "slow":
		return Slow, nil
	case "medium":
		return Medium, nil
	case "fast":
		return Fast, nil
	}
	return 0, fmt.Errorf("unknown speed %q", value)
}

// Interval is the per-frame hold time for software effects at this speed.
func (s Speed) Interval() time.Duration {
	switch s {
	case Medium:
		return 500 * time.Millisecond
	case Fast:
		return 250 * time.Millisecond
	default:
		return 750 * time.Millisecond
	}
}

func (s Speed) String() string {
	switch s {
	case Medium:
		return "medium"
	case Fast:
		return "fast"
	default:
		return "slow"
	}
}
