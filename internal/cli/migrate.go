package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/db"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Migrate applies the embedded schema migrations to the target database.

It is idempotent: migrations the database has already seen are skipped, so
it is safe to run before every load.

Examples:
  collegeload migrate -d college_data
  collegeload migrate --connection "postgresql://user@host/college_data"`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var migrateFlags connFlagValues

func init() {
	rootCmd.AddCommand(migrateCmd)
	registerConnFlags(migrateCmd, &migrateFlags)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	_ = godotenv.Load()

	projectConfig, err := loadProjectConfig()
	if err != nil {
		return err
	}

	connCfg, err := resolveConnection(&migrateFlags, projectConfig)
	if err != nil {
		return err
	}

	return db.RunMigrations(connCfg, logger)
}
