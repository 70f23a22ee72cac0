package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// Attribute keys shared across the codebase so log entries stay
// machine-filterable.
const (
	KeyOperation = "operation"
	KeyAccount   = "account"
	KeyUserHash  = "user_hash"
	KeyCalendar  = "calendar"
	KeyEvent     = "event"
	KeyEvents    = "events"
	KeyChunks    = "chunks"
	KeyBatchSize = "batch_size"
	KeyRemaining = "remaining"
	KeySucceeded = "succeeded"
	KeyFailed    = "failed"
	KeyRetryable = "retryable"
	KeyWait      = "wait"
	KeyError     = "error"
)

// WithOperation returns a logger whose entries carry the operation name.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithAccount returns a logger whose entries carry the account name.
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(slog.String(KeyAccount, account))
}

// WithCalendar returns a logger whose entries carry the calendar ID.
func WithCalendar(logger *slog.Logger, calendarID string) *slog.Logger {
	return logger.With(slog.String(KeyCalendar, calendarID))
}

// Err returns an error attribute, or an empty group that slog omits when
// err is nil, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail hashes an email address into a stable identifier, so log
// entries can be correlated per user without recording PII.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(sum[:8])
}

// UserHash returns the anonymized-user attribute for an email address.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}
