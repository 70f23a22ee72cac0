// Package cmd implements the command-line interface for calsweep.
//
// This package provides the following commands:
//   - auth: Authorize access to a Google account via the OAuth device flow
//   - calendars: List the calendars accessible to an account
//   - list: Preview the events a purge would target
//   - purge: Bulk-delete matching events in rate-limited batches
//   - version: Display version information
package cmd
