package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newOnCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "on [color]",
		Short: "Turn lights on, green by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := colorArg(args, "green")
			if err != nil {
				return err
			}

			m, err := openManager()
			if err != nil {
				return err
			}

			if err := m.On(c.Scale(flags.dimFactor()), flags.targets()...); err != nil {
				return err
			}

			// Without a timeout the light stays on after exit; hardware
			// that needs a keep-alive will shut itself off eventually.
			if flags.timeout <= 0 {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			<-ctx.Done()
			return m.Off(flags.targets()...)
		},
	}
}
