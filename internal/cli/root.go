// Package cli wires the collegeload commands: run, migrate, report, version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "collegeload",
	Short: "Load IPEDS and College Scorecard extracts into PostgreSQL",
	Long: `collegeload loads federal higher-education data extracts into a
PostgreSQL reporting database.

It recognizes two sources by filename:
  hd<year>.csv            IPEDS institutional characteristics
  MERGED<yyyy>_<yy>_PP.csv  College Scorecard merged extract

Rows are coerced (missing-value sentinels and formatted currency become
typed nulls) and committed in fixed-size transactional batches. A row the
database rejects rolls back its whole batch, and the report names the
source line, column, and violated constraint.

Exit Codes:
  0  - Success, every batch committed
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - Source file unreadable or missing expected columns
  13 - One or more batches rolled back on a constraint violation`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for collegeload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
