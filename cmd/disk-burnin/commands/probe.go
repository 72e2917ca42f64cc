package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"disk-burnin/internal/report"
	"disk-burnin/internal/smart"
)

var probeCmd = &cobra.Command{
	Use:   "probe <device>",
	Short: "Print the drive attributes the burn-in would use (read-only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool := smart.NewSmartCtlTool()
		if !tool.IsAvailable() {
			return fmt.Errorf("smartctl not found in PATH")
		}

		drive, err := tool.Probe(args[0])
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, report.DescribeDrive(drive))
		return nil
	},
}
