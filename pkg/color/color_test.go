package color

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  RGB
	}{
		{"named", "red", RGB{R: 0xFF}},
		{"named mixed case", "DodgerBlue", RGB{R: 0x1E, G: 0x90, B: 0xFF}},
		{"named with spaces trimmed", "  green ", RGB{G: 0x80}},
		{"hash six", "#00ff00", RGB{G: 0xFF}},
		{"hash three", "#f71", RGB{R: 0xFF, G: 0x77, B: 0x11}},
		{"0x prefix", "0x0000ff", RGB{B: 0xFF}},
		{"bare hex", "ff8000", RGB{R: 0xFF, G: 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseBadValues(t *testing.T) {
	for _, value := range []string{"", "notacolor", "#12345", "0xzzzzzz", "#ggg"} {
		if _, err := Parse(value); !errors.Is(err, ErrBadColor) {
			t.Fatalf("Parse(%q) expected ErrBadColor, got %v", value, err)
		}
	}
}

func TestScale(t *testing.T) {
	c := RGB{R: 200, G: 100, B: 50}

	if got := c.Scale(0.5); got != (RGB{R: 100, G: 50, B: 25}) {
		t.Fatalf("Scale(0.5) = %v", got)
	}
	if got := c.Scale(1.5); got != c {
		t.Fatalf("Scale(1.5) should clamp to original, got %v", got)
	}
	if got := c.Scale(-1); !got.IsOff() {
		t.Fatalf("Scale(-1) should be off, got %v", got)
	}
}

func TestHex(t *testing.T) {
	if got := (RGB{R: 0xDE, G: 0xAD, B: 0x01}).Hex(); got != "#dead01" {
		t.Fatalf("Hex() = %q", got)
	}
}

func TestGradientEndpoints(t *testing.T) {
	g := Gradient(Off, Red, 5)
	if len(g) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(g))
	}
	if !g[0].IsOff() {
		t.Fatalf("gradient should start at off, got %v", g[0])
	}
	if g[4] != Red {
		t.Fatalf("gradient should end at red, got %v", g[4])
	}
	// monotonically non-decreasing red channel
	for i := 1; i < len(g); i++ {
		if g[i].R < g[i-1].R {
			t.Fatalf("red channel regressed at step %d: %v < %v", i, g[i].R, g[i-1].R)
		}
	}
}

func TestSpectrum(t *testing.T) {
	s := Spectrum(64, 1, 1)
	if len(s) != 64 {
		t.Fatalf("expected 64 steps, got %d", len(s))
	}
	if s[0] != Red {
		t.Fatalf("spectrum should start at red, got %v", s[0])
	}
	for i, c := range s {
		if c.IsOff() {
			t.Fatalf("spectrum step %d is off", i)
		}
	}
}
