package collegedata

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess             = 0  // Load completed, every batch committed
	ExitGeneralError        = 1  // Unknown or unclassified error
	ExitUsageError          = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic               = 3  // Internal panic (unexpected crash)
	ExitConfigError         = 10 // Invalid configuration or parameters
	ExitConnectionError     = 11 // Failed to connect to database
	ExitSourceFormatError   = 12 // Source file unreadable or missing expected columns
	ExitConstraintViolation = 13 // One or more batches rolled back on a constraint
)

const (
	// DefaultBatchSize is the number of rows committed per transaction.
	DefaultBatchSize = 1000

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	// Retries apply only to connection establishment; a constraint violation
	// is a data-quality defect and is never retried.
	DefaultRetryMaxAttempts = 3

	// MaxValuePreviewLength is the maximum number of characters of a raw
	// field value shown in warning and violation reports.
	MaxValuePreviewLength = 80

	// DefaultTimeout bounds a whole load run. This is catastrophic failure
	// protection against network hangs, not normal pacing control.
	DefaultTimeout = 30 * time.Minute
)
