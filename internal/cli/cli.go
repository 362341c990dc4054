// Package cli implements the busylight command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

type rootFlags struct {
	lights  []int
	all     bool
	dim     int // percent
	timeout time.Duration
	debug   bool
}

// Root builds the busylight command tree.
func Root() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "busylight",
		Short:         "Control USB connected LED lights",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flags.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.PersistentFlags().IntSliceVarP(&flags.lights, "light-id", "l", nil, "light(s) to target by id, repeatable")
	root.PersistentFlags().BoolVarP(&flags.all, "all", "a", false, "target all lights")
	root.PersistentFlags().IntVar(&flags.dim, "dim", 100, "brightness percentage, 0-100")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "turn lights off after this duration")
	root.PersistentFlags().BoolVarP(&flags.debug, "debug", "D", false, "enable debug logging")

	root.AddCommand(
		newListCmd(flags),
		newOnCmd(flags),
		newOffCmd(flags),
		newBlinkCmd(flags),
		newPulseCmd(flags),
		newRainbowCmd(flags),
		newSupportedCmd(),
		newUdevCmd(),
	)
	return root
}

// targets converts the selection flags to manager indices. Empty means all.
func (f *rootFlags) targets() []int {
	if f.all {
		return nil
	}
	return f.lights
}

// dimFactor converts the percent flag to a scale factor clamped to [0, 1].
func (f *rootFlags) dimFactor() float64 {
	d := cast.ToFloat64(f.dim) / 100
	if d > 1 {
		return 1
	}
	if d < 0 {
		return 0
	}
	return d
}

// colorArg parses the optional positional color argument.
func colorArg(args []string, fallback string) (color.RGB, error) {
	value := fallback
	if len(args) > 0 {
		value = args[0]
	}
	return color.Parse(value)
}

// openManager opens the light manager, translating the empty case to a
// friendly error.
func openManager() (*light.Manager, error) {
	m, err := light.NewManager(nil)
	if err != nil {
		return nil, fmt.Errorf("open lights: %w", err)
	}
	return m, nil
}

// speedFlag adds the shared --speed flag and returns its target.
func speedFlag(cmd *cobra.Command) *string {
	return cmd.Flags().String("speed", "slow", "effect speed: slow, medium or fast")
}
