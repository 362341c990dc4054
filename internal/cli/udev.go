package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busylight-go/busylight/pkg/light"
)

func newSupportedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supported",
		Short: "List supported light vendors",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range light.Supported() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newUdevCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "udev",
		Short: "Print udev rules granting user access to supported lights",
		Long: `Print udev rules granting user access to supported lights.

Write the output to /etc/udev/rules.d/99-busylights.rules and reload
with "udevadm control --reload-rules".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "# udev rules for busylight supported devices")
			for _, vid := range light.VendorIDs() {
				fmt.Fprintf(out, "SUBSYSTEMS==\"usb\", ATTRS{idVendor}==\"%04x\", MODE=\"0666\"\n", vid)
				fmt.Fprintf(out, "KERNEL==\"hidraw*\", ATTRS{idVendor}==\"%04x\", MODE=\"0666\"\n", vid)
			}
			return nil
		},
	}
}
