// Package logging provides the structured logging conventions for
// calsweep, built on the standard library's slog.
//
// It defines the attribute keys used across the codebase, small helpers
// for attaching common attributes (operation, account, calendar), and a
// Logger interface with an slog-backed adapter so that packages can be
// handed a logger without depending on a concrete implementation.
//
// User emails are never logged directly; AnonymizeEmail hashes them into
// stable identifiers that allow correlation without exposing PII.
package logging
