package purge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// AuthError indicates the credential provider could not supply a usable
// credential, or that a refreshed credential was rejected again. Fatal to
// the affected deletion attempt, not to the run.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authorization failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// HTTPError indicates the remote service rejected the request. The status
// code is preserved for retryable classification.
type HTTPError struct {
	Status     int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s", e.Status, e.StatusText)
}

// NetworkError indicates no response was received from the remote service.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// EngineFault indicates an unexpected failure in chunk orchestration itself
// rather than in an individual deletion attempt.
type EngineFault struct {
	Err error
}

func (e *EngineFault) Error() string {
	return fmt.Sprintf("engine fault: %v", e.Err)
}

func (e *EngineFault) Unwrap() error { return e.Err }

// Transient HTTP statuses that are safe to attempt again later.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// retryable classifies a deletion failure as likely transient. Network
// conditions and timeouts are retryable; auth failures and non-transient
// HTTP statuses are not. Engine faults are retryable because the events
// they cover were never individually attempted.
func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return retryableStatuses[httpErr.Status]
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var fault *EngineFault
	if errors.As(err, &fault) {
		return true
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeoutErr net.Error
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}

	// Fall back to message inspection for errors surfaced by lower layers
	// that lost their type along the way.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}
