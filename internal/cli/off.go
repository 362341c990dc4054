package cli

import (
	"github.com/spf13/cobra"
)

func newOffCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Turn lights off",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager()
			if err != nil {
				return err
			}
			return m.Off(flags.targets()...)
		},
	}
}
