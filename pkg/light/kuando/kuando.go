// Package kuando drives Plenom Kuando Busylight devices. The device runs a
// small step program delivered in 64-byte reports with a trailing 16-bit
// checksum, and shuts its LEDs off unless it hears from the host within its
// keep-alive timeout. An opened light therefore runs a background goroutine
// refreshing the device until it is closed.
package kuando

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

const VendorID uint16 = 0x27BB

var productIDs = map[uint16]string{
	0x3BCA: "Busylight Alpha",
	0x3BCB: "Busylight UC Alpha",
	0x3BCD: "Busylight UC Omega",
	0x3BCF: "Busylight Omega",
}

const (
	reportLen = 64

	// Step opcodes, high nibble of step byte 0.
	opJump      byte = 0x10
	opKeepAlive byte = 0x80

	// Device keep-alive timeout in seconds, carried in the low nibble of a
	// keep-alive step. The refresh period stays well inside it.
	keepAliveTimeout byte = 0x0F
)

// keepAlivePeriod is how often the background goroutine refreshes the
// device. Overridden in tests.
var keepAlivePeriod = 5 * time.Second

func init() {
	light.Register(light.Driver{
		Name:      "Kuando",
		VendorIDs: []uint16{VendorID},
		Supports: func(info hid.Info) bool {
			if info.VendorID != VendorID {
				return false
			}
			_, ok := productIDs[info.ProductID]
			return ok
		},
		Open: New,
	})
}

// checksum sums every byte before the checksum field itself.
func checksum(report []byte) uint16 {
	var sum uint16
	for _, b := range report[:reportLen-2] {
		sum += uint16(b)
	}
	return sum
}

// finalize writes the fixed footer sentinel and the checksum into report.
func finalize(report []byte) {
	report[56] = 0x06
	report[57] = 0x04
	report[58] = 0x55
	report[59] = 0xFF
	report[60] = 0xFF
	report[61] = 0xFF
	binary.BigEndian.PutUint16(report[62:], checksum(report))
}

// colorReport programs step 0 to jump to itself displaying the color.
// Zero on/off times hold the color steady; nonzero times blink with the
// given deciseconds on and off.
func colorReport(c color.RGB, onDecis, offDecis byte) []byte {
	report := make([]byte, reportLen)
	report[0] = opJump | 0x00 // jump target: step 0
	report[1] = 0x00          // repeat forever
	report[2] = c.R
	report[3] = c.G
	report[4] = c.B
	report[5] = onDecis
	report[6] = offDecis
	report[7] = 0x01 // update
	finalize(report)
	return report
}

// keepAliveReport refreshes the device watchdog without altering the
// running program.
func keepAliveReport() []byte {
	report := make([]byte, reportLen)
	report[0] = opKeepAlive | keepAliveTimeout
	finalize(report)
	return report
}

// Light is an opened Kuando Busylight.
type Light struct {
	dev  hid.Device
	name string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New opens a Busylight and starts its keep-alive goroutine.
func New(dev hid.Device, info hid.Info) (light.Light, error) {
	name, ok := productIDs[info.ProductID]
	if !ok {
		return nil, fmt.Errorf("%w: kuando product 0x%04X", light.ErrLightUnsupported, info.ProductID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Light{
		dev:    dev,
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go l.keepAlive(ctx)
	return l, nil
}

func (l *Light) keepAlive(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.send(keepAliveReport()); err != nil {
				slog.Warn("kuando keepalive failed",
					slog.String("light", l.name),
					slog.Any("error", err))
			}
		}
	}
}

func (l *Light) send(report []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := hid.WriteOutput(l.dev, 0, report); err != nil {
		return fmt.Errorf("kuando write: %w", err)
	}
	return nil
}

func (l *Light) Info() light.Info {
	return light.Info{Name: l.name, Vendor: "Kuando"}
}

func (l *Light) On(c color.RGB) error {
	return l.send(colorReport(c, 0, 0))
}

func (l *Light) Off() error {
	return l.send(colorReport(color.Off, 0, 0))
}

// Flash implements light.Flasher with the device's on/off step times. The
// off color is ignored; the device blinks against black.
func (l *Light) Flash(on, _ color.RGB, speed light.Speed) error {
	var decis byte
	switch speed {
	case light.Fast:
		decis = 3
	case light.Medium:
		decis = 5
	default:
		decis = 10
	}
	return l.send(colorReport(on, decis, decis))
}

// Close stops the keep-alive goroutine and closes the device.
func (l *Light) Close() error {
	l.cancel()
	<-l.done
	return l.dev.Close()
}
