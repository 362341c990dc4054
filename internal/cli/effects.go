package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/busylight-go/busylight/pkg/effect"
	"github.com/busylight-go/busylight/pkg/light"
)

// runEffect drives the effect until interrupted or the timeout elapses,
// then turns the lights off.
func runEffect(cmd *cobra.Command, flags *rootFlags, player light.EffectPlayer) error {
	m, err := openManager()
	if err != nil {
		return err
	}
	defer m.Release()

	ctx := cmd.Context()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}
	return m.ApplyEffect(ctx, player, flags.targets()...)
}

func newBlinkCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blink [color]",
		Short: "Blink lights, red by default",
		Args:  cobra.MaximumNArgs(1),
	}
	speed := speedFlag(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := colorArg(args, "red")
		if err != nil {
			return err
		}
		sp, err := light.ParseSpeed(*speed)
		if err != nil {
			return err
		}
		return runEffect(cmd, flags, effect.NewBlink(c.Scale(flags.dimFactor()), sp))
	}
	return cmd
}

func newPulseCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse [color]",
		Short: "Pulse lights, red by default",
		Args:  cobra.MaximumNArgs(1),
	}
	speed := speedFlag(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := colorArg(args, "red")
		if err != nil {
			return err
		}
		sp, err := light.ParseSpeed(*speed)
		if err != nil {
			return err
		}
		return runEffect(cmd, flags, effect.NewGradient(c.Scale(flags.dimFactor()), sp))
	}
	return cmd
}

func newRainbowCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rainbow",
		Short: "Cycle lights through the color spectrum",
	}
	speed := speedFlag(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		sp, err := light.ParseSpeed(*speed)
		if err != nil {
			return err
		}
		return runEffect(cmd, flags, effect.NewSpectrum(sp))
	}
	return cmd
}
