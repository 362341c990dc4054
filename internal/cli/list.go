package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connected lights",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager()
			if err != nil {
				return err
			}

			lights := m.Lights()
			if len(lights) == 0 {
				return fmt.Errorf("no lights found")
			}

			for _, info := range lights {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d %s\n", info.Index, info.Name)
				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "      vendor: %s\n", info.Vendor)
					fmt.Fprintf(cmd.OutOrStdout(), "      device: %04x:%04x\n", info.VendorID, info.ProductID)
					if info.SerialNumber != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "      serial: %s\n", info.SerialNumber)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "      path:   %s\n", info.Path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show device details")
	return cmd
}
