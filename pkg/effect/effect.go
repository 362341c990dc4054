// Package effect implements software light effects as color sequences
// cycled at an interval. Effects run until their context is cancelled, so
// hardware without native blink support behaves like hardware with it.
package effect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

const (
	gradientSteps = 16
	spectrumSteps = 64
)

// Effect is a named color sequence with a per-frame hold time. It satisfies
// light.EffectPlayer.
type Effect struct {
	name     string
	colors   []color.RGB
	interval time.Duration
}

func (e *Effect) Name() string            { return e.name }
func (e *Effect) Colors() []color.RGB     { return e.colors }
func (e *Effect) Interval() time.Duration { return e.interval }

func (e *Effect) String() string {
	return fmt.Sprintf("%s interval=%s frames=%d", e.name, e.interval, len(e.colors))
}

// Execute cycles the effect's colors on the light until ctx is cancelled,
// turning the light off on the way out. Cancellation is the normal way an
// effect ends and is not an error.
func (e *Effect) Execute(ctx context.Context, l light.Light) error {
	if len(e.colors) == 0 {
		return nil
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		if err := l.On(e.colors[i%len(e.colors)]); err != nil {
			return fmt.Errorf("effect %s: %w", e.name, err)
		}
		select {
		case <-ctx.Done():
			_ = l.Off()
			return nil
		case <-ticker.C:
		}
	}
}

// NewSteady holds a single color. The long interval keeps the refresh loop
// nearly idle.
func NewSteady(c color.RGB) *Effect {
	return &Effect{
		name:     "steady",
		colors:   []color.RGB{c},
		interval: time.Minute,
	}
}

// NewBlink alternates the color with off at the given speed.
func NewBlink(c color.RGB, speed light.Speed) *Effect {
	return &Effect{
		name:     "blink",
		colors:   []color.RGB{c, color.Off},
		interval: speed.Interval(),
	}
}

// NewGradient pulses the color: a ramp from off up to the color and back
// down.
func NewGradient(c color.RGB, speed light.Speed) *Effect {
	up := color.Gradient(color.Off, c, gradientSteps)
	colors := make([]color.RGB, 0, 2*gradientSteps-2)
	colors = append(colors, up...)
	for i := len(up) - 2; i > 0; i-- {
		colors = append(colors, up[i])
	}
	return &Effect{
		name:     "pulse",
		colors:   colors,
		interval: speed.Interval() / gradientSteps,
	}
}

// NewSpectrum sweeps the full hue circle.
func NewSpectrum(speed light.Speed) *Effect {
	return &Effect{
		name:     "rainbow",
		colors:   color.Spectrum(spectrumSteps, 1, 1),
		interval: speed.Interval() / 8,
	}
}

// ForName builds the named effect, case-insensitively. "pulse"/"gradient"
// and "rainbow"/"spectrum" are synonyms.
func ForName(name string, c color.RGB, speed light.Speed) (*Effect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "steady":
		return NewSteady(c), nil
	case "blink":
		return NewBlink(c, speed), nil
	case "pulse", "gradient":
		return NewGradient(c, speed), nil
	case "rainbow", "spectrum":
		return NewSpectrum(speed), nil
	}
	return nil, fmt.Errorf("unknown effect %q", name)
}

// Names lists every effect ForName accepts, canonical names only.
func Names() []string {
	return []string{"steady", "blink", "pulse", "rainbow"}
}
