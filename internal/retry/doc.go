// Package retry provides automatic retry logic with exponential backoff
// for transient database connection failures.
//
// # Example Usage
//
//	classifier := retry.NewPostgreSQLErrorClassifier()
//	strategy := retry.NewExponentialBackoff(3)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return connectToDatabase(ctx)
//	})
//
// # Error Classification
//
// The ErrorClassifier interface determines which errors are transient
// (retryable) versus fatal. The PostgreSQLErrorClassifier recognizes
// transient conditions like connection refused and server shutdown, and
// deliberately treats integrity constraint violations as fatal: those
// reflect bad input data and only a data fix can resolve them.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to
// create independent configurations per goroutine.
package retry
