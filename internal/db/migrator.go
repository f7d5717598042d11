package db

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/raoabdulhannan/College-Data-Pipeline/migrations"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

// migrationError wraps a migration failure so callers can classify it
// with errors.Is(err, collegedata.ErrMigrationFailed).
func migrationError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, err, collegedata.ErrMigrationFailed)
}

// RunMigrations applies pending schema migrations to the target database.
// It is idempotent: only migrations the database has not seen are applied.
//
// golang-migrate requires database/sql, so this opens its own short-lived
// connection through the pgx stdlib driver rather than reusing the pool.
func RunMigrations(config *collegedata.ConnectionConfig, logger collegedata.Logger) error {
	connStr := BuildConnectionString(config)

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return migrationError("failed to open migration connection", err)
	}
	defer sqlDB.Close()

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		return migrationError("failed to create migration driver", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return migrationError("failed to read embedded migrations", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, config.Database, driver)
	if err != nil {
		return migrationError("failed to create migration instance", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Verbose("Failed to close migration source: %v", srcErr)
		}
		if dbErr != nil {
			logger.Verbose("Failed to close migration database: %v", dbErr)
		}
	}()

	err = m.Up()
	if err == migrate.ErrNoChange {
		logger.Info("Schema up to date, no migrations to apply")
		return nil
	}
	if err != nil {
		return migrationError("failed to run migrations", err)
	}

	version, _, _ := m.Version()
	logger.Info("Applied migrations, schema now at version %d", version)
	return nil
}
