// Package usbraw opens lights over raw USB for platforms where the control
// interface enumerates as vendor-specific instead of HID.
package usbraw

import (
	"fmt"

	"github.com/karalabe/usb"
)

// Device is a raw USB handle for a write-only LED controller.
type Device struct {
	dev       usb.Device
	writeSize int
}

// Open finds and opens the first device matching vid/pid.
func Open(vid, pid uint16) (*Device, error) {
	infos, err := usb.Enumerate(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("usb enumerate: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("device not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}

	dev, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}

	return &Device{dev: dev, writeSize: 64}, nil
}

// Send writes one control report. Lights never answer, so there is no
// matching read.
func (d *Device) Send(report []byte) error {
	n, err := d.dev.Write(report)
	if err != nil {
		return fmt.Errorf("usb write: %w", err)
	}
	if n != len(report) {
		return fmt.Errorf("usb write: short write %d of %d bytes", n, len(report))
	}
	return nil
}

// Close releases the device.
func (d *Device) Close() error {
	return d.dev.Close()
}
