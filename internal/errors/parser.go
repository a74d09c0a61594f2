package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: a stable code plus a safe message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps database and infrastructure errors onto the code taxonomy
// without leaking driver internals to the caller. Context is a short hint
// ("business", "verification", ...) used to pick a more specific message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "an internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Unique constraint violation (PostgreSQL 23505, SQLite "UNIQUE constraint failed")
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "the referenced record does not exist or is still in use",
		}
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "a required field is missing",
		}
	}

	// Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "a field value is out of range",
		}
	}

	// Connectivity failures against the database or the storage gateway.
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "context deadline exceeded") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalStorageError,
			Message: "a backing service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "an internal error occurred, please try again later",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "this email address is already registered",
		}
	}

	if strings.Contains(errLower, "slug") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "a listing with this identifier already exists",
		}
	}

	if strings.Contains(errLower, "storage_path") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "this upload has already been recorded",
		}
	}

	if strings.Contains(errLower, "idx_business_user_rating") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "you have already rated this business",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "the record already exists",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "business"):
		return "business not found"
	case strings.Contains(contextLower, "user"):
		return "user not found"
	case strings.Contains(contextLower, "rating"):
		return "rating not found"
	case strings.Contains(contextLower, "media"):
		return "media not found"
	case strings.Contains(contextLower, "verification"):
		return "verification request not found"
	}

	return "the requested record was not found"
}
