package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/busylight-go/busylight/pkg/color"

	_ "github.com/busylight-go/busylight/pkg/light/blinkstick"
	_ "github.com/busylight-go/busylight/pkg/light/luxafor"
)

func TestDimFactor(t *testing.T) {
	tests := []struct {
		name string
		dim  int
		want float64
	}{
		{"full", 100, 1},
		{"half", 50, 0.5},
		{"zero", 0, 0},
		{"clamped high", 150, 1},
		{"clamped low", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &rootFlags{dim: tt.dim}
			require.InDelta(t, tt.want, f.dimFactor(), 1e-9)
		})
	}
}

func TestColorArg(t *testing.T) {
	c, err := colorArg(nil, "green")
	require.NoError(t, err)
	require.Equal(t, color.RGB{G: 0x80}, c)

	c, err = colorArg([]string{"#ff0000"}, "green")
	require.NoError(t, err)
	require.Equal(t, color.Red, c)

	_, err = colorArg([]string{"not-a-color"}, "green")
	require.Error(t, err)
}

func TestTargets(t *testing.T) {
	f := &rootFlags{lights: []int{0, 2}}
	require.Equal(t, []int{0, 2}, f.targets())

	f = &rootFlags{lights: []int{0, 2}, all: true}
	require.Nil(t, f.targets())
}

func TestUdevCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newUdevCmd()
	cmd.SetOut(&out)
	require.NoError(t, cmd.RunE(cmd, nil))

	// BlinkStick and Luxafor vendors are registered by the test imports.
	require.Contains(t, out.String(), `ATTRS{idVendor}=="20a0"`)
	require.Contains(t, out.String(), `ATTRS{idVendor}=="04d8"`)
	require.Contains(t, out.String(), `KERNEL=="hidraw*"`)
}

func TestSupportedCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newSupportedCmd()
	cmd.SetOut(&out)
	require.NoError(t, cmd.RunE(cmd, nil))
	require.Contains(t, out.String(), "Agile Innovative")
	require.Contains(t, out.String(), "Luxafor")
}
