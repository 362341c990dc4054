// Package blinkstick drives Agile Innovative BlinkStick devices. All
// variants share one VID/PID pair; the variant (and with it the LED count
// and report layout) is detected from the serial number's major version,
// falling back to the USB release number.
package blinkstick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

const (
	VendorID  uint16 = 0x20A0
	ProductID uint16 = 0x41E5
)

// Feature report IDs.
const (
	reportSingle  byte = 1
	reportIndexed byte = 5
	reportLeds8   byte = 6
	reportLeds16  byte = 7
	reportLeds32  byte = 8
	reportLeds64  byte = 9
)

func init() {
	light.Register(light.Driver{
		Name:      "Agile Innovative",
		VendorIDs: []uint16{VendorID},
		Supports: func(info hid.Info) bool {
			return info.VendorID == VendorID && info.ProductID == ProductID
		},
		Open: New,
	})
}

// reportForLeds selects the feature report that can carry n LEDs.
func reportForLeds(n int) (byte, error) {
	switch {
	case n == 1:
		return reportSingle, nil
	case n <= 8:
		return reportLeds8, nil
	case n <= 16:
		return reportLeds16, nil
	case n <= 32:
		return reportLeds32, nil
	case n <= 64:
		return reportLeds64, nil
	}
	return 0, fmt.Errorf("no report for %d leds", n)
}

// reportCapacity is the LED count a multi-LED report is padded to.
func reportCapacity(report byte) int {
	switch report {
	case reportLeds8:
		return 8
	case reportLeds16:
		return 16
	case reportLeds32:
		return 32
	case reportLeds64:
		return 64
	default:
		return 1
	}
}

// Variant identifies the BlinkStick hardware family.
type Variant uint16

const (
	BlinkStick Variant = 0x001
	Pro        Variant = 0x002
	Square     Variant = 0x200
	Strip      Variant = 0x201
	Nano       Variant = 0x202
	Flex       Variant = 0x203
)

var variantNames = map[Variant]string{
	BlinkStick: "BlinkStick",
	Pro:        "BlinkStick Pro",
	Square:     "BlinkStick Square",
	Strip:      "BlinkStick Strip",
	Nano:       "BlinkStick Nano",
	Flex:       "BlinkStick Flex",
}

var variantLeds = map[Variant]int{
	BlinkStick: 1,
	Pro:        192,
	Square:     8,
	Strip:      8,
	Nano:       2,
	Flex:       32,
}

func (v Variant) valid() bool {
	_, ok := variantNames[v]
	return ok
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("BlinkStick(0x%03X)", uint16(v))
}

// variantFromInfo detects the variant from the serial number's major version
// ("BS012345-1.0" -> 1), falling back to the release number for hardware
// whose serial major does not map to a known variant.
func variantFromInfo(info hid.Info) (Variant, error) {
	if info.SerialNumber != "" {
		parts := strings.Split(info.SerialNumber, "-")
		major := strings.SplitN(parts[len(parts)-1], ".", 2)[0]
		if n, err := strconv.ParseUint(major, 10, 16); err == nil {
			if v := Variant(n); v.valid() {
				return v, nil
			}
		}
	}

	if v := Variant(info.ReleaseNumber); v.valid() {
		return v, nil
	}

	return 0, fmt.Errorf("%w: blinkstick serial %q release 0x%04X",
		light.ErrLightUnsupported, info.SerialNumber, info.ReleaseNumber)
}

// Light is an opened BlinkStick.
type Light struct {
	dev     hid.Device
	info    hid.Info
	variant Variant
	nleds   int
	report  byte
}

// New opens a BlinkStick from an already-opened HID device.
func New(dev hid.Device, info hid.Info) (light.Light, error) {
	variant, err := variantFromInfo(info)
	if err != nil {
		return nil, err
	}
	nleds := variantLeds[variant]
	report, err := reportForLeds(nleds)
	if err != nil {
		return nil, err
	}
	return &Light{
		dev:     dev,
		info:    info,
		variant: variant,
		nleds:   nleds,
		report:  report,
	}, nil
}

func (l *Light) Info() light.Info {
	return light.Info{
		Name:   l.variant.String(),
		Vendor: "Agile Innovative",
	}
}

// frame builds the feature report payload (without the report ID) that sets
// every LED to c. Multi-LED reports carry channel 0 followed by GRB triples
// padded to the report's capacity.
func (l *Light) frame(c color.RGB) []byte {
	if l.report == reportSingle {
		return []byte{c.R, c.G, c.B}
	}
	capacity := reportCapacity(l.report)
	payload := make([]byte, 1+3*capacity)
	for i := 0; i < l.nleds && i < capacity; i++ {
		payload[1+3*i] = c.G
		payload[2+3*i] = c.R
		payload[3+3*i] = c.B
	}
	return payload
}

func (l *Light) On(c color.RGB) error {
	if err := hid.WriteFeature(l.dev, l.report, l.frame(c)); err != nil {
		return fmt.Errorf("blinkstick on: %w", err)
	}
	return nil
}

func (l *Light) Off() error {
	return l.On(color.Off)
}

func (l *Light) Close() error {
	return l.dev.Close()
}
