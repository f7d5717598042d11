package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/config"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use one of these methods instead:
//  1. $PGPASSWORD environment variable
//  2. .pgpass file (PostgreSQL standard)
//  3. Connection string with embedded password
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// Database is excluded because it can override the database in a connection
// string without conflicting with it.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags represents cloud authentication CLI flags. These override the
// corresponding environment variables and collegeload.yaml values.
//
// Note: Azure client secret is NOT a CLI flag for security reasons.
// Use the AZURE_CLIENT_SECRET environment variable instead.
type CloudFlags struct {
	AWSRegion      string // Overrides AWS_REGION
	GoogleInstance string // project:region:instance
	AzureTenantID  string // Overrides AZURE_TENANT_ID
	AzureClientID  string // Overrides AZURE_CLIENT_ID
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// Cloud provider environment variables (SDK standard names)
	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves connection parameters using
// PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) - if provided, parse and use directly
//  2. Granular flags (-h, -p, -U, -d) - if any provided, build config from flags
//  3. Environment variables (PGHOST, PGPORT, etc.)
//  4. DATABASE_URL environment variable - fallback if no granular params
//  5. collegeload.yaml connection section
//  6. Defaults (localhost:5432, prefer SSL)
//
// Cloud authentication: if cloud flags, environment variables, or the
// config file select AWS IAM, Google IAM, or Azure Entra ID, the
// AuthMethod and its parameters are attached to the config. CLI flags
// take precedence over environment variables, which take precedence
// over collegeload.yaml.
//
// Returns an error if BOTH --connection AND granular flags are provided;
// mixing the two makes the user's intent ambiguous.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*collegedata.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n" +
				"Choose one approach:\n" +
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/college_data\"\n" +
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d college_data\n" +
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser",
		)
	}

	var cfg *collegedata.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	if err := applyCloudAuth(cfg, cloudFlags, envVars, projectConfig); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyCloudAuth selects the authentication method and attaches its
// parameters. Explicit selection comes from collegeload.yaml's auth_method;
// Azure credentials in flags or environment also switch to Azure auth, and
// a --google-instance flag switches to Google IAM, mirroring how operators
// actually signal cloud intent.
func applyCloudAuth(cfg *collegedata.ConnectionConfig, flags *CloudFlags, env *EnvVars, projectConfig *config.ProjectConfig) error {
	var fileAuth, fileAWSRegion, fileGoogleInstance, fileTenantID, fileClientID string
	if projectConfig != nil {
		pc := projectConfig.Connection
		fileAuth = pc.AuthMethod
		fileAWSRegion = pc.AWSRegion
		fileGoogleInstance = pc.GoogleInstance
		fileTenantID = pc.AzureTenantID
		fileClientID = pc.AzureClientID
	}

	cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, fileAWSRegion)
	cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, fileGoogleInstance)
	cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, fileTenantID)
	cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, fileClientID)
	cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET

	switch fileAuth {
	case "", "standard":
		// Implicit selection below
	case "aws-iam":
		cfg.AuthMethod = collegedata.AuthMethodAWSIAM
		return nil
	case "google-iam":
		cfg.AuthMethod = collegedata.AuthMethodGoogleIAM
		return nil
	case "azure":
		cfg.AuthMethod = collegedata.AuthMethodAzureEntraID
		return nil
	default:
		return fmt.Errorf("invalid auth_method %q in %s (want standard, aws-iam, google-iam, or azure): %w",
			fileAuth, config.ConfigFileName, collegedata.ErrUnsupportedAuthMethod)
	}

	switch {
	case flags.GoogleInstance != "":
		cfg.AuthMethod = collegedata.AuthMethodGoogleIAM
	case cfg.AzureTenantID != "" || cfg.AzureClientID != "":
		cfg.AuthMethod = collegedata.AuthMethodAzureEntraID
	case flags.AWSRegion != "":
		cfg.AuthMethod = collegedata.AuthMethodAWSIAM
	}
	return nil
}

// resolveFromConnectionString parses a connection string, applying
// environment variables as fallbacks for parameters it does not specify
// (following PostgreSQL's libpq behavior).
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*collegedata.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	if cfg.SSLMode == "" && envVars != nil && envVars.PGSSLMODE != "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig from granular flags,
// environment variables, and the project config, in that precedence order.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*collegedata.ConnectionConfig, error) {
	cfg := &collegedata.ConnectionConfig{
		AuthMethod:       collegedata.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer", envVars.PGPORT)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username,
		os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
