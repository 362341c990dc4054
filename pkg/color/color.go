// Package color provides the 24-bit RGB color model used by light drivers
// and effects, including named-color and hex parsing.
package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrBadColor is returned when a color value cannot be parsed.
var ErrBadColor = errors.New("unrecognized color")

// RGB is a 24-bit color as written to devices.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	Off   = RGB{}
	Red   = RGB{R: 0xFF}
	Green = RGB{G: 0xFF}
	Blue  = RGB{B: 0xFF}
	White = RGB{R: 0xFF, G: 0xFF, B: 0xFF}
)

// Parse accepts CSS/X11 color names (case-insensitive), "#rgb", "#rrggbb",
// "0xrrggbb" and bare six-digit hex.
func Parse(value string) (RGB, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return RGB{}, fmt.Errorf("%w: empty value", ErrBadColor)
	}

	if c, ok := colornames.Map[v]; ok {
		return RGB{R: c.R, G: c.G, B: c.B}, nil
	}

	hexDigits := v
	switch {
	case strings.HasPrefix(v, "#"):
		hexDigits = v[1:]
	case strings.HasPrefix(v, "0x"):
		hexDigits = v[2:]
	}

	switch len(hexDigits) {
	case 3:
		n, err := strconv.ParseUint(hexDigits, 16, 16)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrBadColor, value)
		}
		// Expand each nibble: 0xf71 -> 0xff7711
		r := uint8(n >> 8 & 0xF)
		g := uint8(n >> 4 & 0xF)
		b := uint8(n & 0xF)
		return RGB{R: r<<4 | r, G: g<<4 | g, B: b<<4 | b}, nil
	case 6:
		n, err := strconv.ParseUint(hexDigits, 16, 32)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrBadColor, value)
		}
		return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
	}

	return RGB{}, fmt.Errorf("%w: %q", ErrBadColor, value)
}

// Scale returns the color dimmed by the given factor, clamped to [0, 1].
func (c RGB) Scale(dim float64) RGB {
	if dim >= 1 {
		return c
	}
	if dim <= 0 {
		return RGB{}
	}
	return RGB{
		R: uint8(float64(c.R) * dim),
		G: uint8(float64(c.G) * dim),
		B: uint8(float64(c.B) * dim),
	}
}

// Hex renders the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// IsOff reports whether the color is black.
func (c RGB) IsOff() bool {
	return c == RGB{}
}

func (c RGB) String() string { return c.Hex() }

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Gradient interpolates between two colors in the given number of steps,
// inclusive of both endpoints.
func Gradient(from, to RGB, steps int) []RGB {
	if steps < 2 {
		return []RGB{from}
	}
	f, t := from.colorful(), to.colorful()
	out := make([]RGB, steps)
	for i := range out {
		out[i] = fromColorful(f.BlendRgb(t, float64(i)/float64(steps-1)))
	}
	return out
}

// Spectrum returns a full hue sweep at the given saturation and value.
func Spectrum(steps int, saturation, value float64) []RGB {
	if steps < 1 {
		return nil
	}
	out := make([]RGB, steps)
	for i := range out {
		hue := 360 * float64(i) / float64(steps)
		out[i] = fromColorful(colorful.Hsv(hue, saturation, value))
	}
	return out
}
