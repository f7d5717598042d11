package collegedata

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM authentication parameters (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance connection name in project:region:instance
	// format (used when AuthMethod is AuthMethodGoogleIAM)
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ViolationPolicy controls what happens to the remainder of a load run
// after a batch is rolled back on a constraint violation.
//
// Batch atomicity is per-batch, not per-file: earlier committed batches
// stay committed either way. The policy only decides whether later
// batches are attempted.
type ViolationPolicy int

const (
	// ViolationHalt stops the run at the first failed batch.
	ViolationHalt ViolationPolicy = iota

	// ViolationContinue skips the failed batch and keeps loading, to
	// maximize loaded rows. Every violation is still reported.
	ViolationContinue
)

// String returns the configuration-file spelling of the policy.
func (p ViolationPolicy) String() string {
	switch p {
	case ViolationHalt:
		return "halt"
	case ViolationContinue:
		return "continue"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseViolationPolicy parses the configuration-file spelling of a policy.
func ParseViolationPolicy(s string) (ViolationPolicy, error) {
	switch s {
	case "", "halt":
		return ViolationHalt, nil
	case "continue":
		return ViolationContinue, nil
	default:
		return ViolationHalt, fmt.Errorf("invalid on_violation value %q (want halt or continue): %w", s, ErrInvalidConfig)
	}
}

// LoadConfig contains all parameters needed for one load run.
type LoadConfig struct {
	// SourcePath is the CSV extract to load
	SourcePath string

	// ConnectionString is the PostgreSQL connection string for the target database
	ConnectionString string

	// BatchSize is the number of rows per transaction (default DefaultBatchSize)
	BatchSize int

	// OnViolation decides whether a failed batch halts the run or is skipped
	OnViolation ViolationPolicy

	// Timeout is the global timeout for the entire run
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch size cannot be negative: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// CoercionWarning records a field that failed to parse into its target type
// and was mapped to null. Non-fatal; collected for operator audit.
type CoercionWarning struct {
	Line   int64  // 1-based line number in the source file
	Column string // Source column name
	Value  string // Raw value that failed to parse
	Reason string // Parse failure detail
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("line %d, column %s: %q coerced to null (%s)", w.Line, w.Column, truncateValue(w.Value), w.Reason)
}

// ConstraintKind classifies the database constraint that rejected a row.
type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "primary key"
	ConstraintForeignKey ConstraintKind = "foreign key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not null"
	ConstraintUnknown    ConstraintKind = "constraint"
)

// ConstraintViolation describes a row the database rejected at insert time.
// The whole containing batch was rolled back.
type ConstraintViolation struct {
	Line       int64          // 1-based line number of the failing row in the source file
	Table      string         // Target table
	Column     string         // Implicated column, when the driver reports one
	Value      string         // Implicated value, when attributable
	Constraint string         // Constraint name as declared in the schema
	Kind       ConstraintKind // Constraint classification from the SQLSTATE
	BatchFirst int64          // First source line of the rolled-back batch
	BatchLast  int64          // Last source line of the rolled-back batch
	Detail     string         // Driver detail message
}

func (v ConstraintViolation) String() string {
	s := fmt.Sprintf("line %d, table %s: %s violation", v.Line, v.Table, v.Kind)
	if v.Constraint != "" {
		s += fmt.Sprintf(" (%s)", v.Constraint)
	}
	if v.Column != "" {
		s += fmt.Sprintf(", column %s", v.Column)
	}
	if v.Value != "" {
		s += fmt.Sprintf(" = %s", truncateValue(v.Value))
	}
	s += fmt.Sprintf("; batch lines %d-%d rolled back", v.BatchFirst, v.BatchLast)
	return s
}

// LoadSummary is the final accounting for one table of one load run.
type LoadSummary struct {
	RunID            uuid.UUID
	Table            string
	RowsRead         int64 // Data rows seen in the source file
	RowsAttempted    int64 // Rows submitted to the database
	RowsCommitted    int64 // Rows in committed batches
	BatchesCommitted int64
	Warnings         []CoercionWarning
	Violations       []ConstraintViolation
	Elapsed          time.Duration
}

// Failed reports whether any batch was rolled back.
func (s *LoadSummary) Failed() bool {
	return len(s.Violations) > 0
}

func truncateValue(v string) string {
	if len(v) > MaxValuePreviewLength {
		return v[:MaxValuePreviewLength] + "..."
	}
	return v
}
