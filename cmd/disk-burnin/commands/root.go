package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "disk-burnin",
	Short: "Unattended burn-in testing for storage drives",
	Long: `Runs a SMART short self-test, a destructive multi-pattern write/verify
scan, and a SMART extended self-test against a drive, in that order,
and records every phase outcome. All data on the target is destroyed.`,
	SilenceUsage: true,
}

// Execute runs the CLI. Any error, including a failed or aborted
// burn-in phase, maps to exit code 2.
func Execute(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.String("log-dir", ".", "Directory for run logs and bad-block lists")
	persistent.String("history-db", "burnin-history.db", "SQLite run-history database path")

	viper.BindPFlag("log-dir", persistent.Lookup("log-dir"))
	viper.BindPFlag("history-db", persistent.Lookup("history-db"))

	flags := runCmd.Flags()
	flags.Int("block-size", 8192, "Scan block size in bytes")
	flags.Int("concurrency", 64, "Blocks per in-flight scan I/O batch")
	flags.Bool("full-pass", false, "Scan all patterns to completion instead of stopping at the first bad block")
	flags.String("scan-limit", "", "Scan only the first N bytes (e.g. 64MB); empty scans the whole device")
	flags.Bool("dry-run", false, "Log actions without touching the device")
	flags.Duration("poll-interval-short", 15*time.Second, "Poll interval for the SMART short self-test")
	flags.Duration("poll-interval-long", 3*time.Minute, "Poll interval for the extended self-test and the scan")
	flags.Duration("max-wait-short", 30*time.Minute, "Maximum wait for the SMART short self-test")
	flags.Duration("max-wait-long", 12*time.Hour, "Maximum wait for the extended self-test and the scan")
	flags.String("metrics-listen", "", "Address for the Prometheus /metrics listener (empty disables)")

	viper.BindPFlag("block-size", flags.Lookup("block-size"))
	viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	viper.BindPFlag("full-pass", flags.Lookup("full-pass"))
	viper.BindPFlag("scan-limit", flags.Lookup("scan-limit"))
	viper.BindPFlag("dry-run", flags.Lookup("dry-run"))
	viper.BindPFlag("poll-interval-short", flags.Lookup("poll-interval-short"))
	viper.BindPFlag("poll-interval-long", flags.Lookup("poll-interval-long"))
	viper.BindPFlag("max-wait-short", flags.Lookup("max-wait-short"))
	viper.BindPFlag("max-wait-long", flags.Lookup("max-wait-long"))
	viper.BindPFlag("metrics-listen", flags.Lookup("metrics-listen"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(listCmd)
}
