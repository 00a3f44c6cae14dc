package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// analyzes an error and returns its category and sanitized message
func classifyError(err error) classification {
	if err == nil {
		return classification{CategoryUnknown, ""}
	}

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	// domain taxonomy first, stores wrap driver errors in these
	switch {
	case errors.Is(err, ErrValidation):
		return classification{CategoryValidation, ternary(isProduction, "validation failed", err.Error())}
	case errors.Is(err, ErrNotFound):
		return classification{CategoryNotFound, ternary(isProduction, "resource not found", err.Error())}
	case errors.Is(err, ErrConditionFailed):
		return classification{CategoryConflict, ternary(isProduction, "resource conflict", err.Error())}
	case errors.Is(err, ErrStoreUnavailable):
		return classification{CategoryUnavailable, ternary(isProduction, "storage temporarily unavailable", err.Error())}
	}

	// database errors (pgx-specific)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classification{CategoryDatabase, ternary(isProduction, "database operation failed", err.Error())}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, redis.Nil) {
		return classification{CategoryNotFound, ternary(isProduction, "resource not found", err.Error())}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return classification{CategoryTimeout, ternary(isProduction, "request timed out", err.Error())}
	}

	if errors.Is(err, context.Canceled) {
		return classification{CategoryTimeout, ternary(isProduction, "request canceled", err.Error())}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return classification{CategoryTimeout, ternary(isProduction, "request timed out", err.Error())}
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return classification{CategoryNetwork, ternary(isProduction, "connection error occurred", err.Error())}
	}

	if strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "forbidden") ||
		strings.Contains(errMsg, "permission") || strings.Contains(errMsg, "auth") {
		return classification{CategoryAuth, ternary(isProduction, "permission denied", err.Error())}
	}

	return classification{CategoryUnknown, ternary(isProduction, "an error occurred", err.Error())}
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// ternary helper for cleaner conditional assignment
func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
